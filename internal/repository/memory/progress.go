package memory

import (
	"context"

	"github.com/Harshul8824/BIM/internal/apperr"
	"github.com/Harshul8824/BIM/internal/model"
	"github.com/Harshul8824/BIM/internal/validation"
)

type ProgressRepository struct {
	t *table[*model.Progress]
}

func NewProgressRepository() *ProgressRepository {
	return &ProgressRepository{t: newTable[*model.Progress]()}
}

func (r *ProgressRepository) Create(ctx context.Context, p *model.Progress) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	p.ID = model.NewID()
	p.CreatedAt = r.t.now()
	p.UpdatedAt = p.CreatedAt
	r.t.insert(p.ID, p.Clone())
	return nil
}

func (r *ProgressRepository) FindByID(ctx context.Context, id string) (*model.Progress, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()

	p, ok := r.t.rows[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *ProgressRepository) List(ctx context.Context) ([]*model.Progress, error) {
	return r.filter(func(*model.Progress) bool { return true }), nil
}

func (r *ProgressRepository) ListByProject(ctx context.Context, projectID string) ([]*model.Progress, error) {
	return r.filter(func(p *model.Progress) bool { return p.Project == projectID }), nil
}

func (r *ProgressRepository) Update(ctx context.Context, id string, patch validation.Document) (*model.Progress, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	p, ok := r.t.rows[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	updated := p.Clone()
	updated.Apply(patch)
	updated.UpdatedAt = r.t.now()
	r.t.rows[id] = updated
	return updated.Clone(), nil
}

func (r *ProgressRepository) Delete(ctx context.Context, id string) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	r.t.remove(id)
	return nil
}

func (r *ProgressRepository) filter(match func(*model.Progress) bool) []*model.Progress {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()

	entries := make([]*model.Progress, 0)
	r.t.each(func(p *model.Progress) {
		if match(p) {
			entries = append(entries, p.Clone())
		}
	})
	return entries
}
