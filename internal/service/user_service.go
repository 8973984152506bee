package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/Harshul8824/BIM/internal/apperr"
	"github.com/Harshul8824/BIM/internal/event"
	"github.com/Harshul8824/BIM/internal/model"
	"github.com/Harshul8824/BIM/internal/repository"
	"github.com/Harshul8824/BIM/internal/validation"
	"github.com/Harshul8824/BIM/pkg/logger"
	"github.com/Harshul8824/BIM/pkg/metrics"
	"github.com/Harshul8824/BIM/pkg/rbac"
	"github.com/Harshul8824/BIM/pkg/util"
)

type UserService struct {
	users  repository.UserRepository
	events event.Publisher
	logger *zap.Logger
}

func NewUserService(users repository.UserRepository, events event.Publisher, logger *zap.Logger) *UserService {
	if events == nil {
		events = event.Nop{}
	}
	return &UserService{
		users:  users,
		events: events,
		logger: logger,
	}
}

// Create 校验、填充默认值并哈希密码后写入
func (s *UserService) Create(ctx context.Context, doc validation.Document) (*model.User, error) {
	model.UserSchema.ApplyDefaults(doc)
	if err := model.UserSchema.Validate(doc, validation.Full); err != nil {
		return nil, err
	}
	if err := hashPassword(doc); err != nil {
		return nil, err
	}

	u := model.NewUser(doc)
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	metrics.IncrementEntityWrite(model.EntityUser, "create")
	s.events.Publish(ctx, event.UserCreated, event.EntityPayload{ID: u.ID})
	logger.WithTrace(ctx, s.logger).Info("User created", zap.String("id", u.ID), zap.String("role", u.Role))
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, model.EntityUser, id)
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]*model.User, error) {
	return s.users.List(ctx, model.UserFilter{})
}

// ListManagers 只返回 role=manager 的用户
func (s *UserService) ListManagers(ctx context.Context) ([]*model.User, error) {
	return s.users.List(ctx, model.UserFilter{Role: rbac.RoleManager})
}

// Update 只写入 patch 中出现的字段
func (s *UserService) Update(ctx context.Context, id string, patch validation.Document) (*model.User, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	if err := model.UserSchema.Validate(patch, validation.Partial); err != nil {
		return nil, err
	}
	if err := hashPassword(patch); err != nil {
		return nil, err
	}

	u, err := s.users.Update(ctx, id, patch)
	if err != nil {
		return nil, notFound(err, model.EntityUser, id)
	}

	metrics.IncrementEntityWrite(model.EntityUser, "update")
	s.events.Publish(ctx, event.UserUpdated, event.EntityPayload{ID: id, Fields: patch.Keys()})
	return u, nil
}

// Delete 不检查记录是否存在
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	metrics.IncrementEntityWrite(model.EntityUser, "delete")
	s.events.Publish(ctx, event.UserDeleted, event.EntityPayload{ID: id})
	return nil
}

// AddClient 把客户加入经理名下，已存在时保持不变
func (s *UserService) AddClient(ctx context.Context, managerID, clientID string) (*model.User, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, &apperr.MissingFieldError{Fields: []string{"client"}}
	}
	if err := checkID(managerID); err != nil {
		return nil, err
	}
	if err := checkID(clientID); err != nil {
		return nil, err
	}

	manager, err := s.users.FindByID(ctx, managerID)
	if err != nil {
		return nil, notFound(err, model.EntityUser, managerID)
	}
	if err := rbac.RequireRole(manager.ID, manager.Role, rbac.RoleManager, "Only managers can have clients"); err != nil {
		logger.WithTrace(ctx, s.logger).Warn("AddClient: target is not a manager",
			zap.String("user_id", managerID),
			zap.String("role", manager.Role),
		)
		return nil, err
	}

	updated, err := s.users.AddClient(ctx, managerID, clientID)
	if err != nil {
		return nil, notFound(err, model.EntityUser, managerID)
	}

	metrics.IncrementEntityWrite(model.EntityUser, "add_client")
	s.events.Publish(ctx, event.UserClientAdded, event.ClientAddedPayload{ManagerID: managerID, ClientID: clientID})
	return updated, nil
}

// hashPassword 文档中出现的非空密码替换为 bcrypt 哈希
func hashPassword(doc validation.Document) error {
	password := doc.String(model.FieldPassword)
	if password == "" {
		return nil
	}
	hash, err := util.HashPassword(password)
	if err != nil {
		return err
	}
	doc[model.FieldPassword] = hash
	return nil
}
