package mailer

import (
	"context"

	"github.com/Harshul8824/BIM/pkg/circuitbreaker"
)

// BreakerSender SMTP 连续失败后快速失败，不做重试
type BreakerSender struct {
	next    Sender
	breaker *circuitbreaker.CircuitBreaker
}

func NewBreakerSender(next Sender, breaker *circuitbreaker.CircuitBreaker) *BreakerSender {
	return &BreakerSender{next: next, breaker: breaker}
}

// Send 消息检查失败时直接返回，不计入熔断
func (s *BreakerSender) Send(ctx context.Context, msg Message) error {
	if c, ok := s.next.(Checker); ok {
		if err := c.Check(msg); err != nil {
			return err
		}
	}
	return s.breaker.Execute(ctx, func(ctx context.Context) error {
		return s.next.Send(ctx, msg)
	})
}
