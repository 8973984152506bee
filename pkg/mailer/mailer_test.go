package mailer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Harshul8824/BIM/pkg/circuitbreaker"
	"github.com/Harshul8824/BIM/pkg/config"
)

type failingSender struct {
	calls int
}

func (f *failingSender) Send(context.Context, Message) error {
	f.calls++
	return errors.New("connection refused")
}

func TestNewWithoutHostLogsOnly(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := New(config.SMTPConfig{}, zap.New(core))

	_, ok := s.(*LogSender)
	require.True(t, ok)

	err := s.Send(context.Background(), Message{To: "m@example.com", Subject: "Hi", Text: "body"})
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("Mail (not sent, SMTP disabled)").Len())
}

func TestNewWithHostUsesBreaker(t *testing.T) {
	s := New(config.SMTPConfig{Host: "smtp.example.com", Port: 465, From: "noreply@example.com"}, zap.NewNop())
	_, ok := s.(*BreakerSender)
	assert.True(t, ok)
}

func TestBreakerSenderFailsFast(t *testing.T) {
	next := &failingSender{}
	breaker := circuitbreaker.NewCircuitBreaker("smtp", circuitbreaker.Config{
		FailureThreshold:    2,
		SuccessThreshold:    1,
		Timeout:             time.Hour,
		HalfOpenMaxRequests: 1,
	}, nil)
	s := NewBreakerSender(next, breaker)

	for i := 0; i < 2; i++ {
		assert.Error(t, s.Send(context.Background(), Message{}))
	}
	err := s.Send(context.Background(), Message{})
	assert.ErrorIs(t, err, circuitbreaker.ErrCircuitBreakerOpen)
	assert.Equal(t, 2, next.calls)
}

type checkingSender struct {
	failingSender
	checks int
}

func (c *checkingSender) Check(msg Message) error {
	c.checks++
	if msg.To == "" {
		return ErrInvalidMessage
	}
	return nil
}

func TestBreakerSenderIgnoresInvalidMessages(t *testing.T) {
	next := &checkingSender{}
	breaker := circuitbreaker.NewCircuitBreaker("smtp", circuitbreaker.Config{
		FailureThreshold:    2,
		SuccessThreshold:    1,
		Timeout:             time.Hour,
		HalfOpenMaxRequests: 1,
	}, nil)
	s := NewBreakerSender(next, breaker)

	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, s.Send(context.Background(), Message{}), ErrInvalidMessage)
	}
	assert.Equal(t, 5, next.checks)
	assert.Equal(t, 0, next.calls)
	assert.Equal(t, circuitbreaker.StateClosed, breaker.GetState())

	err := s.Send(context.Background(), Message{To: "manager@example.com"})
	assert.EqualError(t, err, "connection refused")
	assert.Equal(t, 1, next.calls)
}

func TestSMTPSenderCheck(t *testing.T) {
	s := NewSMTPSender(config.SMTPConfig{Host: "smtp.example.com", From: "noreply@example.com"}, zap.NewNop())

	assert.NoError(t, s.Check(Message{To: "manager@example.com", Text: "hi"}))
	assert.ErrorIs(t, s.Check(Message{To: "not an address"}), ErrInvalidMessage)
	assert.ErrorIs(t, s.Check(Message{To: "manager@example.com", ReplyTo: "@@"}), ErrInvalidMessage)
}

func TestBuildMsg(t *testing.T) {
	m, err := buildMsg("noreply@example.com", Message{
		To:      "manager@example.com",
		ReplyTo: "client@example.com",
		Subject: "New Project Message",
		Text:    "hello",
		HTML:    "<p>hello</p>",
	})
	require.NoError(t, err)
	assert.NotNil(t, m)

	_, err = buildMsg("noreply@example.com", Message{To: "not an address"})
	assert.Error(t, err)

	_, err = buildMsg("", Message{To: "manager@example.com"})
	assert.Error(t, err)
}
