package repository

import (
	"context"

	"github.com/Harshul8824/BIM/internal/model"
	"github.com/Harshul8824/BIM/internal/validation"
)

// UserRepository 用户持久化接口。
// Create 负责分配 ID 和时间戳；Find/Update 在记录不存在时返回 apperr.ErrNotFound；
// 唯一约束冲突返回 *apperr.DuplicateKeyError。
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context, filter model.UserFilter) ([]*model.User, error)
	// Update 只写入 patch 中出现的字段
	Update(ctx context.Context, id string, patch validation.Document) (*model.User, error)
	// Delete 对不存在的 ID 不报错
	Delete(ctx context.Context, id string) error
	// AddClient 以集合语义追加客户
	AddClient(ctx context.Context, managerID, clientID string) (*model.User, error)
}

// ProjectRepository 项目持久化接口
type ProjectRepository interface {
	Create(ctx context.Context, p *model.Project) error
	FindByID(ctx context.Context, id string) (*model.Project, error)
	List(ctx context.Context) ([]*model.Project, error)
	Update(ctx context.Context, id string, patch validation.Document) (*model.Project, error)
	Delete(ctx context.Context, id string) error
}

// ProgressRepository 进度持久化接口
type ProgressRepository interface {
	Create(ctx context.Context, p *model.Progress) error
	FindByID(ctx context.Context, id string) (*model.Progress, error)
	List(ctx context.Context) ([]*model.Progress, error)
	ListByProject(ctx context.Context, projectID string) ([]*model.Progress, error)
	Update(ctx context.Context, id string, patch validation.Document) (*model.Progress, error)
	Delete(ctx context.Context, id string) error
}

// Store 聚合三个仓储以及底层连接的生命周期
type Store struct {
	Users    UserRepository
	Projects ProjectRepository
	Progress ProgressRepository

	// Ping 用于 /readyz
	Ping func(ctx context.Context) error
	// Close 释放连接
	Close func(ctx context.Context) error
}
