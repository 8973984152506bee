package memory

import (
	"context"

	"github.com/Harshul8824/BIM/internal/apperr"
	"github.com/Harshul8824/BIM/internal/model"
	"github.com/Harshul8824/BIM/internal/validation"
)

type ProjectRepository struct {
	t *table[*model.Project]
}

func NewProjectRepository() *ProjectRepository {
	return &ProjectRepository{t: newTable[*model.Project]()}
}

func (r *ProjectRepository) Create(ctx context.Context, p *model.Project) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	p.ID = model.NewID()
	p.CreatedAt = r.t.now()
	p.UpdatedAt = p.CreatedAt
	r.t.insert(p.ID, p.Clone())
	return nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*model.Project, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()

	p, ok := r.t.rows[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *ProjectRepository) List(ctx context.Context) ([]*model.Project, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()

	projects := make([]*model.Project, 0, len(r.t.rows))
	r.t.each(func(p *model.Project) {
		projects = append(projects, p.Clone())
	})
	return projects, nil
}

func (r *ProjectRepository) Update(ctx context.Context, id string, patch validation.Document) (*model.Project, error) {
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

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	r.t.remove(id)
	return nil
}
