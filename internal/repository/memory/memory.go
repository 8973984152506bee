// Package memory is a map-backed store used by tests and for running the
// server without any database.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Harshul8824/BIM/internal/repository"
)

// New 创建内存存储
func New() *repository.Store {
	return &repository.Store{
		Users:    NewUserRepository(),
		Projects: NewProjectRepository(),
		Progress: NewProgressRepository(),
		Ping:     func(context.Context) error { return nil },
		Close:    func(context.Context) error { return nil },
	}
}

// table keeps rows in insertion order so listings are stable.
type table[T any] struct {
	mu    sync.RWMutex
	rows  map[string]T
	order []string
	now   func() time.Time
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]T), now: time.Now}
}

func (t *table[T]) insert(id string, row T) {
	t.rows[id] = row
	t.order = append(t.order, id)
}

func (t *table[T]) remove(id string) {
	if _, ok := t.rows[id]; !ok {
		return
	}
	delete(t.rows, id)
	t.order = slices.DeleteFunc(t.order, func(v string) bool { return v == id })
}

func (t *table[T]) each(fn func(T)) {
	for _, id := range t.order {
		fn(t.rows[id])
	}
}
