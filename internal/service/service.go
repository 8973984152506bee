// Package service holds the business rules for users, projects, progress
// entries and manager requests. Handlers call services; services call the store.
package service

import (
	"context"
	"errors"

	"github.com/Harshul8824/BIM/internal/apperr"
	"github.com/Harshul8824/BIM/internal/model"
)

// checkID 格式非法返回 ErrInvalidID
func checkID(id string) error {
	if !model.ValidID(id) {
		return apperr.ErrInvalidID
	}
	return nil
}

// notFound 把存储层的 ErrNotFound 补充上实体信息
func notFound(err error, entity, id string) error {
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.NotFound(entity, id)
	}
	return err
}

// RequestDeduper 经理请求去重
type RequestDeduper interface {
	AcquireOnce(ctx context.Context, scope, id string) bool
	Release(ctx context.Context, scope, id string)
}

type noDedup struct{}

func (noDedup) AcquireOnce(context.Context, string, string) bool { return true }
func (noDedup) Release(context.Context, string, string)          {}
