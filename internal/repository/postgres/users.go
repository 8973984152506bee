package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Harshul8824/BIM/internal/model"
	"github.com/Harshul8824/BIM/internal/repository"
	"github.com/Harshul8824/BIM/internal/validation"
)

const userColumns = `id, name, email, password, role, clients, manager, created_at, updated_at`

var userFields = map[string]encoder{
	model.FieldName:     asString,
	model.FieldEmail:    asString,
	model.FieldPassword: asString,
	model.FieldRole:     asString,
	model.FieldClients:  asStrings,
	model.FieldManager:  asString,
}

type UserRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db *pgxpool.Pool, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.Clients, &u.Manager, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if u.Clients == nil {
		u.Clients = []string{}
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	r.logger.Debug("Inserting user", zap.String("email", u.Email), zap.String("role", u.Role))

	u.ID = model.NewID()
	u.CreatedAt = now()
	u.UpdatedAt = u.CreatedAt
	if u.Clients == nil {
		u.Clients = []string{}
	}

	query := `
        INSERT INTO users (` + userColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	err := repository.Observe(ctx, driver, "insert", "users", func(ctx context.Context) error {
		_, err := r.db.Exec(ctx, query,
			u.ID, u.Name, u.Email, u.Password, u.Role, u.Clients, u.Manager, u.CreatedAt, u.UpdatedAt,
		)
		return err
	})
	if err = translate(err, model.FieldEmail); err != nil {
		r.logger.Error("Failed to insert user", zap.Error(err))
		return err
	}

	r.logger.Info("User inserted successfully", zap.String("id", u.ID))
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var u *model.User
	err := repository.Observe(ctx, driver, "select", "users", func(ctx context.Context) error {
		var err error
		u, err = scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
		return err
	})
	if err != nil {
		return nil, translate(err, "")
	}
	return u, nil
}

func (r *UserRepository) List(ctx context.Context, filter model.UserFilter) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	args := []any{}
	if filter.Role != "" {
		query += ` WHERE role = $1`
		args = append(args, filter.Role)
	}
	query += ` ORDER BY created_at, id`

	users := make([]*model.User, 0)
	err := repository.Observe(ctx, driver, "select", "users", func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				return err
			}
			users = append(users, u)
		}
		return rows.Err()
	})
	if err != nil {
		r.logger.Error("Failed to list users", zap.Error(err))
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, id string, patch validation.Document) (*model.User, error) {
	query, args, err := buildUpdate("users", userFields, patch, now(), id, userColumns)
	if err != nil {
		return nil, err
	}

	var u *model.User
	err = repository.Observe(ctx, driver, "update", "users", func(ctx context.Context) error {
		var err error
		u, err = scanUser(r.db.QueryRow(ctx, query, args...))
		return err
	})
	if err = translate(err, model.FieldEmail); err != nil {
		return nil, err
	}

	r.logger.Info("User updated successfully", zap.String("id", id), zap.Strings("fields", patch.Keys()))
	return u, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return repository.Observe(ctx, driver, "delete", "users", func(ctx context.Context) error {
		tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			r.logger.Error("Failed to delete user", zap.String("id", id), zap.Error(err))
			return err
		}
		r.logger.Info("User deleted", zap.String("id", id), zap.Int64("rows", tag.RowsAffected()))
		return nil
	})
}

// AddClient 已存在的客户不重复追加，也不刷新 updated_at
func (r *UserRepository) AddClient(ctx context.Context, managerID, clientID string) (*model.User, error) {
	query := `
        UPDATE users
        SET clients = CASE WHEN $2::text = ANY(clients) THEN clients ELSE array_append(clients, $2::text) END,
            updated_at = CASE WHEN $2::text = ANY(clients) THEN updated_at ELSE $3 END
        WHERE id = $1
        RETURNING ` + userColumns

	var u *model.User
	err := repository.Observe(ctx, driver, "update", "users", func(ctx context.Context) error {
		var err error
		u, err = scanUser(r.db.QueryRow(ctx, query, managerID, clientID, now()))
		return err
	})
	if err != nil {
		return nil, translate(err, "")
	}
	return u, nil
}
