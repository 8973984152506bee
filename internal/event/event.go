// Package event publishes domain events to the message broker.
package event

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Harshul8824/BIM/internal/model"
	"github.com/Harshul8824/BIM/pkg/logger"
	"github.com/Harshul8824/BIM/pkg/metrics"
	"github.com/Harshul8824/BIM/pkg/mq"
	"github.com/Harshul8824/BIM/pkg/otel"
	"github.com/Harshul8824/BIM/pkg/trace"
)

// Event 通用事件信封
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	TraceID    string    `json:"trace_id,omitempty"`
	Data       any       `json:"data"`
}

// New 构造事件，trace_id 取自 context
func New(ctx context.Context, eventType string, data any) Event {
	return Event{
		ID:         model.NewID(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		TraceID:    trace.FromContext(ctx),
		Data:       data,
	}
}

// Publisher 发布领域事件，发布失败不影响请求结果
type Publisher interface {
	Publish(ctx context.Context, eventType string, data any)
}

// Nop 未配置 MQ 时使用
type Nop struct{}

func (Nop) Publish(context.Context, string, any) {}

// broker 抽象 pkg/mq.Publisher，便于测试
type broker interface {
	Publish(ctx context.Context, routingKey, messageID string, payload any) error
}

// MQPublisher 把事件发布到 events 交换机，routing key 即事件类型
type MQPublisher struct {
	broker broker
	logger *zap.Logger
}

var _ broker = (*mq.Publisher)(nil)

func NewMQPublisher(b broker, logger *zap.Logger) *MQPublisher {
	return &MQPublisher{broker: b, logger: logger}
}

func (p *MQPublisher) Publish(ctx context.Context, eventType string, data any) {
	evt := New(ctx, eventType, data)
	log := logger.WithTrace(ctx, p.logger)

	err := otel.PublishOp(ctx, mq.ExchangeName, eventType, func(ctx context.Context) error {
		return p.broker.Publish(ctx, eventType, evt.ID, evt)
	})
	if err != nil {
		metrics.IncrementEventPublished(eventType, "failed")
		log.Warn("Failed to publish event",
			zap.String("event_type", eventType),
			zap.String("event_id", evt.ID),
			zap.Error(err),
		)
		return
	}

	metrics.IncrementEventPublished(eventType, "success")
	log.Debug("Event published", zap.String("event_type", eventType), zap.String("event_id", evt.ID))
}
