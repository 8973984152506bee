package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harshul8824/BIM/internal/apperr"
	"github.com/Harshul8824/BIM/internal/model"
	"github.com/Harshul8824/BIM/internal/validation"
)

func TestUserRepositoryUniqueEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	first := &model.User{Name: "Ann", Email: "ann@example.com", Role: "customer"}
	require.NoError(t, repo.Create(ctx, first))
	assert.True(t, model.ValidID(first.ID))
	assert.False(t, first.CreatedAt.IsZero())

	err := repo.Create(ctx, &model.User{Name: "Other", Email: "ann@example.com"})
	var dup *apperr.DuplicateKeyError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "email", dup.Field)

	second := &model.User{Name: "Bob", Email: "bob@example.com"}
	require.NoError(t, repo.Create(ctx, second))
	_, err = repo.Update(ctx, second.ID, validation.Document{model.FieldEmail: "ann@example.com"})
	require.True(t, errors.As(err, &dup))

	// 更新为自己原来的邮箱不算冲突
	_, err = repo.Update(ctx, first.ID, validation.Document{model.FieldEmail: "ann@example.com"})
	assert.NoError(t, err)
}

func TestUserRepositoryUpdateIsPartial(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	u := &model.User{Name: "Ann", Email: "ann@example.com", Role: "customer"}
	require.NoError(t, repo.Create(ctx, u))

	updated, err := repo.Update(ctx, u.ID, validation.Document{model.FieldRole: "manager"})
	require.NoError(t, err)
	assert.Equal(t, "manager", updated.Role)
	assert.Equal(t, "Ann", updated.Name)
	assert.Equal(t, "ann@example.com", updated.Email)

	_, err = repo.Update(ctx, model.NewID(), validation.Document{model.FieldRole: "manager"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUserRepositoryListFilterAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	for _, u := range []*model.User{
		{Name: "A", Email: "a@x", Role: "customer"},
		{Name: "B", Email: "b@x", Role: "manager"},
		{Name: "C", Email: "c@x", Role: "manager"},
	} {
		require.NoError(t, repo.Create(ctx, u))
	}

	all, err := repo.List(ctx, model.UserFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "A", all[0].Name)

	managers, err := repo.List(ctx, model.UserFilter{Role: "manager"})
	require.NoError(t, err)
	assert.Len(t, managers, 2)

	require.NoError(t, repo.Delete(ctx, all[0].ID))
	require.NoError(t, repo.Delete(ctx, all[0].ID))
	all, err = repo.List(ctx, model.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUserRepositoryAddClientIsSet(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	m := &model.User{Name: "M", Email: "m@x", Role: "manager"}
	require.NoError(t, repo.Create(ctx, m))
	client := model.NewID()

	got, err := repo.AddClient(ctx, m.ID, client)
	require.NoError(t, err)
	assert.Equal(t, []string{client}, got.Clients)

	got, err = repo.AddClient(ctx, m.ID, client)
	require.NoError(t, err)
	assert.Equal(t, []string{client}, got.Clients)

	_, err = repo.AddClient(ctx, model.NewID(), client)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	u := &model.User{Name: "Ann", Email: "ann@x"}
	require.NoError(t, repo.Create(ctx, u))

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	got.Name = "changed"

	again, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", again.Name)
}

func TestProgressListByProject(t *testing.T) {
	ctx := context.Background()
	repo := NewProgressRepository()

	projectA, projectB := model.NewID(), model.NewID()
	for _, p := range []string{projectA, projectB, projectA} {
		require.NoError(t, repo.Create(ctx, &model.Progress{Project: p, Description: "week"}))
	}

	entries, err := repo.ListByProject(ctx, projectA)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, projectA, e.Project)
	}

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestProjectRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewProjectRepository()

	p := &model.Project{Title: "Tower A", Status: model.StatusPending}
	require.NoError(t, repo.Create(ctx, p))

	updated, err := repo.Update(ctx, p.ID, validation.Document{model.FieldStatus: model.StatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, updated.Status)
	assert.Equal(t, "Tower A", updated.Title)

	require.NoError(t, repo.Delete(ctx, p.ID))
	_, err = repo.FindByID(ctx, p.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
