package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Harshul8824/BIM/pkg/trace"
)

type recordingBroker struct {
	keys     []string
	payloads []any
	err      error
}

func (b *recordingBroker) Publish(_ context.Context, routingKey, _ string, payload any) error {
	b.keys = append(b.keys, routingKey)
	b.payloads = append(b.payloads, payload)
	return b.err
}

func TestMQPublisherSendsEnvelope(t *testing.T) {
	b := &recordingBroker{}
	p := NewMQPublisher(b, zap.NewNop())
	ctx := trace.WithContext(context.Background(), "trace-1")

	p.Publish(ctx, UserCreated, EntityPayload{ID: "u1"})

	require.Equal(t, []string{UserCreated}, b.keys)
	evt, ok := b.payloads[0].(Event)
	require.True(t, ok)
	assert.Equal(t, UserCreated, evt.Type)
	assert.Equal(t, "trace-1", evt.TraceID)
	assert.Equal(t, EntityPayload{ID: "u1"}, evt.Data)
	assert.NotEmpty(t, evt.ID)
}

func TestMQPublisherSwallowsErrors(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	p := NewMQPublisher(&recordingBroker{err: errors.New("channel closed")}, zap.New(core))

	assert.NotPanics(t, func() {
		p.Publish(context.Background(), ProjectDeleted, EntityPayload{ID: "p1"})
	})
	assert.Equal(t, 1, logs.FilterMessage("Failed to publish event").Len())
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	p.Publish(context.Background(), UserDeleted, nil)
}
