package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Harshul8824/BIM/internal/event"
	"github.com/Harshul8824/BIM/internal/model"
	"github.com/Harshul8824/BIM/internal/repository"
	"github.com/Harshul8824/BIM/internal/validation"
	"github.com/Harshul8824/BIM/pkg/logger"
	"github.com/Harshul8824/BIM/pkg/metrics"
)

type ProjectService struct {
	projects repository.ProjectRepository
	events   event.Publisher
	logger   *zap.Logger
	schema   *validation.Schema
}

// NewProjectService now 用于 startDate 默认值，传 nil 使用 time.Now
func NewProjectService(projects repository.ProjectRepository, events event.Publisher, logger *zap.Logger, now func() time.Time) *ProjectService {
	if events == nil {
		events = event.Nop{}
	}
	if now == nil {
		now = time.Now
	}
	return &ProjectService{
		projects: projects,
		events:   events,
		logger:   logger,
		schema:   model.ProjectSchema(now),
	}
}

func (s *ProjectService) Create(ctx context.Context, doc validation.Document) (*model.Project, error) {
	s.schema.ApplyDefaults(doc)
	if err := s.schema.Validate(doc, validation.Full); err != nil {
		return nil, err
	}

	p := model.NewProject(doc)
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, err
	}

	metrics.IncrementEntityWrite(model.EntityProject, "create")
	s.events.Publish(ctx, event.ProjectCreated, event.EntityPayload{ID: p.ID})
	logger.WithTrace(ctx, s.logger).Info("Project created",
		zap.String("id", p.ID),
		zap.String("client", p.Client),
		zap.String("manager", p.Manager),
	)
	return p, nil
}

func (s *ProjectService) Get(ctx context.Context, id string) (*model.Project, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, model.EntityProject, id)
	}
	return p, nil
}

func (s *ProjectService) List(ctx context.Context) ([]*model.Project, error) {
	return s.projects.List(ctx)
}

func (s *ProjectService) Update(ctx context.Context, id string, patch validation.Document) (*model.Project, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	if err := s.schema.Validate(patch, validation.Partial); err != nil {
		return nil, err
	}

	p, err := s.projects.Update(ctx, id, patch)
	if err != nil {
		return nil, notFound(err, model.EntityProject, id)
	}

	metrics.IncrementEntityWrite(model.EntityProject, "update")
	s.events.Publish(ctx, event.ProjectUpdated, event.EntityPayload{ID: id, Fields: patch.Keys()})
	return p, nil
}

func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, id); err != nil {
		return err
	}

	metrics.IncrementEntityWrite(model.EntityProject, "delete")
	s.events.Publish(ctx, event.ProjectDeleted, event.EntityPayload{ID: id})
	return nil
}
