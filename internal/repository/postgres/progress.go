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

const progressColumns = `id, project, client, manager, description, start_date, end_date,
        five_day_cost, labours_worked, actual_material_used_today, work_completed_today,
        total_work_completed, external_delay, internal_delay, material_cost_in_days,
        created_at, updated_at`

var progressFields = map[string]encoder{
	model.FieldProject:                 asString,
	model.FieldClient:                  asString,
	model.FieldManager:                 asString,
	model.FieldDescription:             asString,
	model.FieldStartDate:               asTime,
	model.FieldEndDate:                 asTime,
	model.FieldFiveDayCost:             asFloat,
	model.FieldLaboursWorked:           asFloat,
	model.FieldActualMaterialUsedToday: asString,
	model.FieldWorkCompletedToday:      asFloat,
	model.FieldTotalWorkCompleted:      asOptionalFloat,
	model.FieldExternalDelay:           asFloat,
	model.FieldInternalDelay:           asFloat,
	model.FieldMaterialCostInDays:      asFloat,
}

type ProgressRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

var _ repository.ProgressRepository = (*ProgressRepository)(nil)

func NewProgressRepository(db *pgxpool.Pool, logger *zap.Logger) *ProgressRepository {
	return &ProgressRepository{
		db:     db,
		logger: logger,
	}
}

func scanProgress(row pgx.Row) (*model.Progress, error) {
	p := &model.Progress{}
	err := row.Scan(&p.ID, &p.Project, &p.Client, &p.Manager, &p.Description, &p.StartDate, &p.EndDate,
		&p.FiveDayCost, &p.LaboursWorked, &p.ActualMaterialUsedToday, &p.WorkCompletedToday,
		&p.TotalWorkCompleted, &p.ExternalDelay, &p.InternalDelay, &p.MaterialCostInDays,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProgressRepository) Create(ctx context.Context, p *model.Progress) error {
	r.logger.Debug("Inserting progress", zap.String("project", p.Project))

	p.ID = model.NewID()
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt

	query := `
        INSERT INTO progress (` + progressColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
    `
	err := repository.Observe(ctx, driver, "insert", "progress", func(ctx context.Context) error {
		_, err := r.db.Exec(ctx, query,
			p.ID, p.Project, p.Client, p.Manager, p.Description, p.StartDate, p.EndDate,
			p.FiveDayCost, p.LaboursWorked, p.ActualMaterialUsedToday, p.WorkCompletedToday,
			p.TotalWorkCompleted, p.ExternalDelay, p.InternalDelay, p.MaterialCostInDays,
			p.CreatedAt, p.UpdatedAt,
		)
		return err
	})
	if err != nil {
		r.logger.Error("Failed to insert progress", zap.Error(err))
		return translate(err, "")
	}

	r.logger.Info("Progress inserted successfully", zap.String("id", p.ID), zap.String("project", p.Project))
	return nil
}

func (r *ProgressRepository) FindByID(ctx context.Context, id string) (*model.Progress, error) {
	var p *model.Progress
	err := repository.Observe(ctx, driver, "select", "progress", func(ctx context.Context) error {
		var err error
		p, err = scanProgress(r.db.QueryRow(ctx, `SELECT `+progressColumns+` FROM progress WHERE id = $1`, id))
		return err
	})
	if err != nil {
		return nil, translate(err, "")
	}
	return p, nil
}

func (r *ProgressRepository) List(ctx context.Context) ([]*model.Progress, error) {
	return r.query(ctx, `SELECT `+progressColumns+` FROM progress ORDER BY created_at, id`)
}

func (r *ProgressRepository) ListByProject(ctx context.Context, projectID string) ([]*model.Progress, error) {
	return r.query(ctx, `SELECT `+progressColumns+` FROM progress WHERE project = $1 ORDER BY created_at, id`, projectID)
}

func (r *ProgressRepository) query(ctx context.Context, query string, args ...any) ([]*model.Progress, error) {
	entries := make([]*model.Progress, 0)
	err := repository.Observe(ctx, driver, "select", "progress", func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanProgress(rows)
			if err != nil {
				return err
			}
			entries = append(entries, p)
		}
		return rows.Err()
	})
	if err != nil {
		r.logger.Error("Failed to list progress", zap.Error(err))
		return nil, err
	}
	return entries, nil
}

func (r *ProgressRepository) Update(ctx context.Context, id string, patch validation.Document) (*model.Progress, error) {
	query, args, err := buildUpdate("progress", progressFields, patch, now(), id, progressColumns)
	if err != nil {
		return nil, err
	}

	var p *model.Progress
	err = repository.Observe(ctx, driver, "update", "progress", func(ctx context.Context) error {
		var err error
		p, err = scanProgress(r.db.QueryRow(ctx, query, args...))
		return err
	})
	if err != nil {
		return nil, translate(err, "")
	}

	r.logger.Info("Progress updated successfully", zap.String("id", id), zap.Strings("fields", patch.Keys()))
	return p, nil
}

func (r *ProgressRepository) Delete(ctx context.Context, id string) error {
	return repository.Observe(ctx, driver, "delete", "progress", func(ctx context.Context) error {
		tag, err := r.db.Exec(ctx, `DELETE FROM progress WHERE id = $1`, id)
		if err != nil {
			r.logger.Error("Failed to delete progress", zap.String("id", id), zap.Error(err))
			return err
		}
		r.logger.Info("Progress deleted", zap.String("id", id), zap.Int64("rows", tag.RowsAffected()))
		return nil
	})
}
