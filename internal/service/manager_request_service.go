package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Harshul8824/BIM/internal/apperr"
	"github.com/Harshul8824/BIM/internal/event"
	"github.com/Harshul8824/BIM/internal/mailtemplate"
	"github.com/Harshul8824/BIM/internal/repository"
	"github.com/Harshul8824/BIM/pkg/logger"
	"github.com/Harshul8824/BIM/pkg/mailer"
	"github.com/Harshul8824/BIM/pkg/metrics"
	"github.com/Harshul8824/BIM/pkg/rbac"
)

// dedupScope 经理请求在 Redis 中的去重前缀
const dedupScope = "manager_request"

// ManagerRequest 客户发给项目经理的消息
type ManagerRequest struct {
	ClientID  string `json:"clientId"`
	ManagerID string `json:"managerId"`
	Message   string `json:"message"`
	Subject   string `json:"subject"`
}

// ManagerRequestService 校验双方角色后把客户消息通过邮件转发给经理
type ManagerRequestService struct {
	users   repository.UserRepository
	sender  mailer.Sender
	dedup   RequestDeduper
	events  event.Publisher
	logger  *zap.Logger
	appName string
	// dashboardURL 为空时邮件不带链接
	dashboardURL string
	now          func() time.Time
}

// ManagerRequestOption 可选配置
type ManagerRequestOption func(*ManagerRequestService)

// WithDeduper 开启重复请求抑制
func WithDeduper(d RequestDeduper) ManagerRequestOption {
	return func(s *ManagerRequestService) {
		if d != nil {
			s.dedup = d
		}
	}
}

// WithEvents 发送成功后发布 manager_request.sent
func WithEvents(p event.Publisher) ManagerRequestOption {
	return func(s *ManagerRequestService) {
		if p != nil {
			s.events = p
		}
	}
}

// WithClock 测试中固定时间
func WithClock(now func() time.Time) ManagerRequestOption {
	return func(s *ManagerRequestService) { s.now = now }
}

// WithAppName 邮件中显示的应用名
func WithAppName(name string) ManagerRequestOption {
	return func(s *ManagerRequestService) { s.appName = name }
}

// WithDashboardURL 邮件中“查看仪表盘”链接的地址
func WithDashboardURL(url string) ManagerRequestOption {
	return func(s *ManagerRequestService) { s.dashboardURL = url }
}

func NewManagerRequestService(
	users repository.UserRepository,
	sender mailer.Sender,
	logger *zap.Logger,
	opts ...ManagerRequestOption,
) *ManagerRequestService {
	s := &ManagerRequestService{
		users:  users,
		sender: sender,
		dedup:  noDedup{},
		events: event.Nop{},
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send 按顺序执行：必填检查、ID 校验、查找双方、角色检查、去重、渲染、投递
// 任一步失败都不会发出邮件
func (s *ManagerRequestService) Send(ctx context.Context, req ManagerRequest) error {
	log := logger.WithTrace(ctx, s.logger)

	if missing := req.missingFields(); len(missing) > 0 {
		return &apperr.MissingFieldError{Fields: missing}
	}
	if err := checkID(req.ClientID); err != nil {
		return err
	}
	if err := checkID(req.ManagerID); err != nil {
		return err
	}

	client, err := s.users.FindByID(ctx, req.ClientID)
	if err != nil {
		return notFound(err, "Client", req.ClientID)
	}
	manager, err := s.users.FindByID(ctx, req.ManagerID)
	if err != nil {
		return notFound(err, "Manager", req.ManagerID)
	}

	if err := rbac.RequireRole(client.ID, client.Role, rbac.RoleCustomer, "Only clients can send messages to managers"); err != nil {
		log.Warn("Manager request rejected: sender is not a client",
			zap.String("client_id", client.ID),
			zap.String("role", client.Role),
		)
		return err
	}
	if err := rbac.RequireRole(manager.ID, manager.Role, rbac.RoleManager, "Invalid manager role"); err != nil {
		log.Warn("Manager request rejected: recipient is not a manager",
			zap.String("manager_id", manager.ID),
			zap.String("role", manager.Role),
		)
		return err
	}

	key := req.dedupKey()
	if !s.dedup.AcquireOnce(ctx, dedupScope, key) {
		log.Info("Duplicate manager request suppressed",
			zap.String("client_id", client.ID),
			zap.String("manager_id", manager.ID),
		)
		return apperr.ErrDuplicateRequest
	}

	rendered, err := mailtemplate.Render(mailtemplate.ManagerRequest{
		Subject:      req.Subject,
		ManagerName:  manager.Name,
		ClientName:   client.Name,
		ClientEmail:  client.Email,
		Message:      req.Message,
		ReceivedAt:   s.now(),
		AppName:      s.appName,
		DashboardURL: s.dashboardURL,
	})
	if err != nil {
		s.dedup.Release(ctx, dedupScope, key)
		return err
	}

	err = s.sender.Send(ctx, mailer.Message{
		To:      manager.Email,
		ReplyTo: client.Email,
		Subject: rendered.Subject,
		Text:    rendered.Text,
		HTML:    rendered.HTML,
	})
	if err != nil {
		// 投递失败时释放去重 key，允许客户重新发送
		s.dedup.Release(ctx, dedupScope, key)
		metrics.IncrementMailSent("failed")
		log.Error("Failed to send manager request",
			zap.String("client_id", client.ID),
			zap.String("manager_id", manager.ID),
			zap.Error(err),
		)
		return &apperr.TransportError{Err: err}
	}

	metrics.IncrementMailSent("success")
	s.events.Publish(ctx, event.ManagerRequestSent, event.ManagerRequestPayload{
		ClientID:  client.ID,
		ManagerID: manager.ID,
		Subject:   rendered.Subject,
	})
	log.Info("Manager request sent",
		zap.String("client_id", client.ID),
		zap.String("manager_id", manager.ID),
	)
	return nil
}

func (r ManagerRequest) missingFields() []string {
	var missing []string
	if strings.TrimSpace(r.ClientID) == "" {
		missing = append(missing, "clientId")
	}
	if strings.TrimSpace(r.ManagerID) == "" {
		missing = append(missing, "managerId")
	}
	if strings.TrimSpace(r.Message) == "" {
		missing = append(missing, "message")
	}
	return missing
}

// dedupKey 同一客户、经理、消息内容映射到同一个 key
func (r ManagerRequest) dedupKey() string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(r.ClientID+"\x00"+r.ManagerID+"\x00"+r.Message)).String()
}

