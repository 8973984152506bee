package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// run 在 span 中执行 fn，并记录错误状态
func run(ctx context.Context, name string, kind trace.SpanKind, attrs []attribute.KeyValue, fn func(context.Context) error) error {
	ctx, span := StartSpan(ctx, name,
		trace.WithSpanKind(kind),
		trace.WithAttributes(attrs...),
	)
	defer span.End()

	err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return err
}

// StoreOp 包装一次存储操作，driver 为 postgresql 或 mongodb
func StoreOp(ctx context.Context, driver, operation, table string, fn func(context.Context) error) error {
	return run(ctx, "db."+operation, trace.SpanKindClient, []attribute.KeyValue{
		attribute.String("db.system", driver),
		attribute.String("db.operation", operation),
		attribute.String("db.sql.table", table),
	}, fn)
}

// PublishOp 包装一次 MQ 发布
func PublishOp(ctx context.Context, exchange, routingKey string, fn func(context.Context) error) error {
	return run(ctx, "mq.publish", trace.SpanKindProducer, []attribute.KeyValue{
		attribute.String("messaging.system", "rabbitmq"),
		attribute.String("messaging.destination", exchange),
		attribute.String("messaging.rabbitmq.routing_key", routingKey),
	}, fn)
}

// MailOp 包装一次 SMTP 发送
func MailOp(ctx context.Context, host string, fn func(context.Context) error) error {
	return run(ctx, "smtp.send", trace.SpanKindClient, []attribute.KeyValue{
		attribute.String("net.peer.name", host),
	}, fn)
}
