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

const projectColumns = `id, title, description, start_date, end_date, status, client, manager,
        cost, planned_labour, planned_material, created_at, updated_at`

var projectFields = map[string]encoder{
	model.FieldTitle:           asString,
	model.FieldDescription:     asString,
	model.FieldStartDate:       asTime,
	model.FieldEndDate:         asOptionalTime,
	model.FieldStatus:          asString,
	model.FieldClient:          asString,
	model.FieldManager:         asString,
	model.FieldCost:            asFloat,
	model.FieldPlannedLabour:   asFloat,
	model.FieldPlannedMaterial: asJSON,
}

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

var _ repository.ProjectRepository = (*ProjectRepository)(nil)

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{
		db:     db,
		logger: logger,
	}
}

func scanProject(row pgx.Row) (*model.Project, error) {
	p := &model.Project{}
	var material []byte
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.StartDate, &p.EndDate, &p.Status, &p.Client, &p.Manager,
		&p.Cost, &p.PlannedLabour, &material, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if p.PlannedMaterial, err = decodeJSON(material); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProjectRepository) Create(ctx context.Context, p *model.Project) error {
	r.logger.Debug("Inserting project", zap.String("title", p.Title), zap.String("client", p.Client))

	material, err := encodeJSON(p.PlannedMaterial)
	if err != nil {
		return err
	}

	p.ID = model.NewID()
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt

	query := `
        INSERT INTO projects (` + projectColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `
	err = repository.Observe(ctx, driver, "insert", "projects", func(ctx context.Context) error {
		_, err := r.db.Exec(ctx, query,
			p.ID, p.Title, p.Description, p.StartDate, p.EndDate, p.Status, p.Client, p.Manager,
			p.Cost, p.PlannedLabour, material, p.CreatedAt, p.UpdatedAt,
		)
		return err
	})
	if err != nil {
		r.logger.Error("Failed to insert project", zap.Error(err))
		return translate(err, "")
	}

	r.logger.Info("Project inserted successfully", zap.String("id", p.ID))
	return nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*model.Project, error) {
	var p *model.Project
	err := repository.Observe(ctx, driver, "select", "projects", func(ctx context.Context) error {
		var err error
		p, err = scanProject(r.db.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
		return err
	})
	if err != nil {
		return nil, translate(err, "")
	}
	return p, nil
}

func (r *ProjectRepository) List(ctx context.Context) ([]*model.Project, error) {
	projects := make([]*model.Project, 0)
	err := repository.Observe(ctx, driver, "select", "projects", func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at, id`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanProject(rows)
			if err != nil {
				return err
			}
			projects = append(projects, p)
		}
		return rows.Err()
	})
	if err != nil {
		r.logger.Error("Failed to list projects", zap.Error(err))
		return nil, err
	}
	return projects, nil
}

func (r *ProjectRepository) Update(ctx context.Context, id string, patch validation.Document) (*model.Project, error) {
	query, args, err := buildUpdate("projects", projectFields, patch, now(), id, projectColumns)
	if err != nil {
		return nil, err
	}

	var p *model.Project
	err = repository.Observe(ctx, driver, "update", "projects", func(ctx context.Context) error {
		var err error
		p, err = scanProject(r.db.QueryRow(ctx, query, args...))
		return err
	})
	if err != nil {
		return nil, translate(err, "")
	}

	r.logger.Info("Project updated successfully", zap.String("id", id), zap.Strings("fields", patch.Keys()))
	return p, nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	return repository.Observe(ctx, driver, "delete", "projects", func(ctx context.Context) error {
		tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
		if err != nil {
			r.logger.Error("Failed to delete project", zap.String("id", id), zap.Error(err))
			return err
		}
		r.logger.Info("Project deleted", zap.String("id", id), zap.Int64("rows", tag.RowsAffected()))
		return nil
	})
}
