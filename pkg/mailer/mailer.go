// Package mailer delivers transactional mail over SMTP.
package mailer

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Harshul8824/BIM/pkg/circuitbreaker"
	"github.com/Harshul8824/BIM/pkg/config"
)

// Message 一封待发送的邮件，HTML 为空时只发纯文本
type Message struct {
	To      string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

// Sender 邮件发送接口
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ErrInvalidMessage 消息本身无法投递（如地址无法解析），与 SMTP 服务状态无关
var ErrInvalidMessage = errors.New("invalid mail message")

// Checker 在连接 SMTP 之前检查消息
type Checker interface {
	Check(msg Message) error
}

// New 未配置 SMTP host 时返回只记录日志的 LogSender，否则返回带熔断的 SMTPSender
func New(cfg config.SMTPConfig, logger *zap.Logger) Sender {
	if cfg.Host == "" {
		logger.Warn("SMTP host is not configured, mails are only logged")
		return NewLogSender(logger)
	}

	logger.Info("SMTP sender configured",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("service", cfg.Service),
		zap.String("from", cfg.From),
	)
	breaker := circuitbreaker.NewCircuitBreaker("smtp", circuitbreaker.DefaultConfig(), logger)
	return NewBreakerSender(NewSMTPSender(cfg, logger), breaker)
}
