package mailer

import (
	"context"

	"go.uber.org/zap"

	"github.com/Harshul8824/BIM/pkg/logger"
)

// LogSender 本地开发用，只把邮件内容写到日志
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	logger.WithTrace(ctx, s.logger).Info("Mail (not sent, SMTP disabled)",
		zap.String("to", msg.To),
		zap.String("reply_to", msg.ReplyTo),
		zap.String("subject", msg.Subject),
		zap.String("text", msg.Text),
	)
	return nil
}
