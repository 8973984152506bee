package memory

import (
	"context"

	"github.com/Harshul8824/BIM/internal/apperr"
	"github.com/Harshul8824/BIM/internal/model"
	"github.com/Harshul8824/BIM/internal/validation"
)

type UserRepository struct {
	t *table[*model.User]
}

func NewUserRepository() *UserRepository {
	return &UserRepository{t: newTable[*model.User]()}
}

func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	if r.emailTaken(u.Email, "") {
		return &apperr.DuplicateKeyError{Field: model.FieldEmail}
	}

	u.ID = model.NewID()
	u.CreatedAt = r.t.now()
	u.UpdatedAt = u.CreatedAt
	if u.Clients == nil {
		u.Clients = []string{}
	}
	r.t.insert(u.ID, u.Clone())
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()

	u, ok := r.t.rows[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return u.Clone(), nil
}

func (r *UserRepository) List(ctx context.Context, filter model.UserFilter) ([]*model.User, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()

	users := make([]*model.User, 0, len(r.t.rows))
	r.t.each(func(u *model.User) {
		if filter.Match(u) {
			users = append(users, u.Clone())
		}
	})
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, id string, patch validation.Document) (*model.User, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	u, ok := r.t.rows[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	if patch.Has(model.FieldEmail) && r.emailTaken(patch.String(model.FieldEmail), id) {
		return nil, &apperr.DuplicateKeyError{Field: model.FieldEmail}
	}

	updated := u.Clone()
	updated.Apply(patch)
	updated.UpdatedAt = r.t.now()
	r.t.rows[id] = updated
	return updated.Clone(), nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	r.t.remove(id)
	return nil
}

func (r *UserRepository) AddClient(ctx context.Context, managerID, clientID string) (*model.User, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	u, ok := r.t.rows[managerID]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	if !u.HasClient(clientID) {
		updated := u.Clone()
		updated.Clients = append(updated.Clients, clientID)
		updated.UpdatedAt = r.t.now()
		r.t.rows[managerID] = updated
		u = updated
	}
	return u.Clone(), nil
}

// emailTaken 调用方需持有锁
func (r *UserRepository) emailTaken(email, exceptID string) bool {
	for id, u := range r.t.rows {
		if id != exceptID && u.Email == email {
			return true
		}
	}
	return false
}
