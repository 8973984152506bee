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

var projectFields = map[string]value{
	model.FieldTitle:           asString,
	model.FieldDescription:     asString,
	model.FieldStartDate:       asTime,
	model.FieldEndDate:         asOptionalTime,
	model.FieldStatus:          asString,
	model.FieldClient:          asString,
	model.FieldManager:         asString,
	model.FieldCost:            asFloat,
	model.FieldPlannedLabour:   asFloat,
	model.FieldPlannedMaterial: asRaw,
}

type ProjectRepository struct {
	coll   *mongo.Collection
	logger *zap.Logger
}

var _ repository.ProjectRepository = (*ProjectRepository)(nil)

func NewProjectRepository(db *mongo.Database, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{
		coll:   db.Collection(projectsCollection),
		logger: logger,
	}
}

func fixProject(p *model.Project) *model.Project {
	p.PlannedMaterial = normalize(p.PlannedMaterial)
	return p
}

func (r *ProjectRepository) Create(ctx context.Context, p *model.Project) error {
	p.ID = model.NewID()
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt

	err := repository.Observe(ctx, driver, "insert", projectsCollection, func(ctx context.Context) error {
		_, err := r.coll.InsertOne(ctx, p)
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
	p := &model.Project{}
	err := repository.Observe(ctx, driver, "find", projectsCollection, func(ctx context.Context) error {
		return r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(p)
	})
	if err != nil {
		return nil, translate(err, "")
	}
	return fixProject(p), nil
}

func (r *ProjectRepository) List(ctx context.Context) ([]*model.Project, error) {
	projects := make([]*model.Project, 0)
	err := repository.Observe(ctx, driver, "find", projectsCollection, func(ctx context.Context) error {
		cur, err := r.coll.Find(ctx, bson.M{}, sortByCreation)
		if err != nil {
			return err
		}
		return cur.All(ctx, &projects)
	})
	if err != nil {
		r.logger.Error("Failed to list projects", zap.Error(err))
		return nil, err
	}
	for _, p := range projects {
		fixProject(p)
	}
	return projects, nil
}

func (r *ProjectRepository) Update(ctx context.Context, id string, patch validation.Document) (*model.Project, error) {
	p := &model.Project{}
	err := repository.Observe(ctx, driver, "update", projectsCollection, func(ctx context.Context) error {
		return r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, buildUpdate(projectFields, patch, now()), returnAfter).Decode(p)
	})
	if err != nil {
		return nil, translate(err, "")
	}

	r.logger.Info("Project updated successfully", zap.String("id", id), zap.Strings("fields", patch.Keys()))
	return fixProject(p), nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	return repository.Observe(ctx, driver, "delete", projectsCollection, func(ctx context.Context) error {
		res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			r.logger.Error("Failed to delete project", zap.String("id", id), zap.Error(err))
			return err
		}
		r.logger.Info("Project deleted", zap.String("id", id), zap.Int64("count", res.DeletedCount))
		return nil
	})
}
