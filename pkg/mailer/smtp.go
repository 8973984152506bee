package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/Harshul8824/BIM/pkg/config"
	"github.com/Harshul8824/BIM/pkg/otel"
)

// SMTPSender 每次发送建立一个连接，不做重试
type SMTPSender struct {
	cfg    config.SMTPConfig
	logger *zap.Logger
}

func NewSMTPSender(cfg config.SMTPConfig, logger *zap.Logger) *SMTPSender {
	return &SMTPSender{cfg: cfg, logger: logger}
}

// Check 只组装消息，不连接服务器
func (s *SMTPSender) Check(msg Message) error {
	_, err := buildMsg(s.cfg.From, msg)
	return err
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m, err := buildMsg(s.cfg.From, msg)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTimeout(10 * time.Second),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	if s.cfg.SSL || s.cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	return otel.MailOp(ctx, s.cfg.Host, func(ctx context.Context) error {
		if err := client.DialAndSendWithContext(ctx, m); err != nil {
			s.logger.Error("SMTP delivery failed",
				zap.String("host", s.cfg.Host),
				zap.String("to", msg.To),
				zap.Error(err),
			)
			return fmt.Errorf("send mail: %w", err)
		}
		s.logger.Info("Mail delivered", zap.String("to", msg.To), zap.String("subject", msg.Subject))
		return nil
	})
}

// buildMsg 组装 MIME 消息，纯文本为主体，HTML 作为 alternative
func buildMsg(from string, msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("%w: from address: %w", ErrInvalidMessage, err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("%w: recipient address: %w", ErrInvalidMessage, err)
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return nil, fmt.Errorf("%w: reply-to address: %w", ErrInvalidMessage, err)
		}
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}
	return m, nil
}
