// Package postgres stores users, projects and progress entries in PostgreSQL
// through a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serenize/snaker"
	"go.uber.org/zap"

	"github.com/Harshul8824/BIM/internal/apperr"
	"github.com/Harshul8824/BIM/internal/repository"
	"github.com/Harshul8824/BIM/internal/validation"
)

const driver = "postgresql"

const uniqueViolation = "23505"

// New 在已建立的连接池上创建存储，调用前需要执行 EnsureSchema
func New(pool *pgxpool.Pool, logger *zap.Logger) *repository.Store {
	return &repository.Store{
		Users:    NewUserRepository(pool, logger),
		Projects: NewProjectRepository(pool, logger),
		Progress: NewProgressRepository(pool, logger),
		Ping:     pool.Ping,
		Close: func(context.Context) error {
			pool.Close()
			return nil
		},
	}
}

// encoder 把文档中的字段值转换成 SQL 参数
type encoder func(doc validation.Document, key string) (any, error)

func asString(doc validation.Document, key string) (any, error) { return doc.String(key), nil }
func asFloat(doc validation.Document, key string) (any, error)  { return doc.Float(key), nil }
func asTime(doc validation.Document, key string) (any, error)   { return doc.Time(key), nil }

func asOptionalFloat(doc validation.Document, key string) (any, error) {
	return doc.FloatPtr(key), nil
}

func asOptionalTime(doc validation.Document, key string) (any, error) {
	return doc.TimePtr(key), nil
}

func asStrings(doc validation.Document, key string) (any, error) {
	s := doc.Strings(key)
	if s == nil {
		s = []string{}
	}
	return s, nil
}

func asJSON(doc validation.Document, key string) (any, error) {
	return encodeJSON(doc[key])
}

// columnName 文档字段名转列名，如 plannedLabour -> planned_labour
func columnName(field string) string {
	return snaker.CamelToSnake(field)
}

// buildUpdate 生成只包含 patch 中已知字段的 UPDATE 语句，updated_at 总是刷新
func buildUpdate(table string, fields map[string]encoder, patch validation.Document, updatedAt time.Time, id string, returning string) (string, []any, error) {
	sets := make([]string, 0, len(patch)+1)
	args := make([]any, 0, len(patch)+2)

	for _, key := range patch.Keys() {
		enc, ok := fields[key]
		if !ok {
			continue
		}
		v, err := enc(patch, key)
		if err != nil {
			return "", nil, fmt.Errorf("encode %s: %w", key, err)
		}
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", columnName(key), len(args)))
	}

	args = append(args, updatedAt)
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d RETURNING %s",
		table, strings.Join(sets, ", "), len(args), returning)
	return query, args, nil
}

// translate 把驱动错误转换成领域错误
func translate(err error, uniqueField string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && uniqueField != "" {
		return &apperr.DuplicateKeyError{Field: uniqueField, Err: err}
	}
	return err
}

func now() time.Time {
	return time.Now().UTC()
}
