package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/Harshul8824/BIM/internal/model"
	"github.com/Harshul8824/BIM/internal/repository"
	"github.com/Harshul8824/BIM/internal/validation"
)

var progressFields = map[string]value{
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
	coll   *mongo.Collection
	logger *zap.Logger
}

var _ repository.ProgressRepository = (*ProgressRepository)(nil)

func NewProgressRepository(db *mongo.Database, logger *zap.Logger) *ProgressRepository {
	return &ProgressRepository{
		coll:   db.Collection(progressCollection),
		logger: logger,
	}
}

func (r *ProgressRepository) Create(ctx context.Context, p *model.Progress) error {
	p.ID = model.NewID()
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt

	err := repository.Observe(ctx, driver, "insert", progressCollection, func(ctx context.Context) error {
		_, err := r.coll.InsertOne(ctx, p)
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
	p := &model.Progress{}
	err := repository.Observe(ctx, driver, "find", progressCollection, func(ctx context.Context) error {
		return r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(p)
	})
	if err != nil {
		return nil, translate(err, "")
	}
	return p, nil
}

func (r *ProgressRepository) List(ctx context.Context) ([]*model.Progress, error) {
	return r.find(ctx, bson.M{})
}

func (r *ProgressRepository) ListByProject(ctx context.Context, projectID string) ([]*model.Progress, error) {
	return r.find(ctx, bson.M{model.FieldProject: projectID})
}

func (r *ProgressRepository) find(ctx context.Context, filter bson.M) ([]*model.Progress, error) {
	entries := make([]*model.Progress, 0)
	err := repository.Observe(ctx, driver, "find", progressCollection, func(ctx context.Context) error {
		cur, err := r.coll.Find(ctx, filter, sortByCreation)
		if err != nil {
			return err
		}
		return cur.All(ctx, &entries)
	})
	if err != nil {
		r.logger.Error("Failed to list progress", zap.Error(err))
		return nil, err
	}
	return entries, nil
}

func (r *ProgressRepository) Update(ctx context.Context, id string, patch validation.Document) (*model.Progress, error) {
	p := &model.Progress{}
	err := repository.Observe(ctx, driver, "update", progressCollection, func(ctx context.Context) error {
		return r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, buildUpdate(progressFields, patch, now()), returnAfter).Decode(p)
	})
	if err != nil {
		return nil, translate(err, "")
	}

	r.logger.Info("Progress updated successfully", zap.String("id", id), zap.Strings("fields", patch.Keys()))
	return p, nil
}

func (r *ProgressRepository) Delete(ctx context.Context, id string) error {
	return repository.Observe(ctx, driver, "delete", progressCollection, func(ctx context.Context) error {
		res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			r.logger.Error("Failed to delete progress", zap.String("id", id), zap.Error(err))
			return err
		}
		r.logger.Info("Progress deleted", zap.String("id", id), zap.Int64("count", res.DeletedCount))
		return nil
	})
}
