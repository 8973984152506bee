package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Harshul8824/BIM/internal/apperr"
	"github.com/Harshul8824/BIM/internal/event"
	"github.com/Harshul8824/BIM/internal/model"
	"github.com/Harshul8824/BIM/internal/repository"
	"github.com/Harshul8824/BIM/internal/validation"
	"github.com/Harshul8824/BIM/pkg/logger"
	"github.com/Harshul8824/BIM/pkg/metrics"
)

type ProgressService struct {
	progress repository.ProgressRepository
	projects repository.ProjectRepository
	users    repository.UserRepository
	events   event.Publisher
	logger   *zap.Logger
}

func NewProgressService(
	progress repository.ProgressRepository,
	projects repository.ProjectRepository,
	users repository.UserRepository,
	events event.Publisher,
	logger *zap.Logger,
) *ProgressService {
	if events == nil {
		events = event.Nop{}
	}
	return &ProgressService{
		progress: progress,
		projects: projects,
		users:    users,
		events:   events,
		logger:   logger,
	}
}

func (s *ProgressService) Create(ctx context.Context, doc validation.Document) (*model.Progress, error) {
	model.ProgressSchema.ApplyDefaults(doc)
	if err := model.ProgressSchema.Validate(doc, validation.Full); err != nil {
		return nil, err
	}

	p := model.NewProgress(doc)
	if err := s.progress.Create(ctx, p); err != nil {
		return nil, err
	}

	metrics.IncrementEntityWrite(model.EntityProgress, "create")
	s.events.Publish(ctx, event.ProgressCreated, event.EntityPayload{ID: p.ID})
	logger.WithTrace(ctx, s.logger).Info("Progress created", zap.String("id", p.ID), zap.String("project", p.Project))
	return p, nil
}

// Get 返回填充了 project/client/manager 的进度
func (s *ProgressService) Get(ctx context.Context, id string) (*model.PopulatedProgress, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	p, err := s.progress.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, model.EntityProgress, id)
	}

	populated, err := newPopulator(s).populate(ctx, []*model.Progress{p})
	if err != nil {
		return nil, err
	}
	return populated[0], nil
}

func (s *ProgressService) List(ctx context.Context) ([]*model.PopulatedProgress, error) {
	entries, err := s.progress.List(ctx)
	if err != nil {
		return nil, err
	}
	return newPopulator(s).populate(ctx, entries)
}

// ListByProject 只返回属于该项目的进度
func (s *ProgressService) ListByProject(ctx context.Context, projectID string) ([]*model.PopulatedProgress, error) {
	if err := checkID(projectID); err != nil {
		return nil, err
	}
	entries, err := s.progress.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return newPopulator(s).populate(ctx, entries)
}

func (s *ProgressService) Update(ctx context.Context, id string, patch validation.Document) (*model.Progress, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	if err := model.ProgressSchema.Validate(patch, validation.Partial); err != nil {
		return nil, err
	}

	p, err := s.progress.Update(ctx, id, patch)
	if err != nil {
		return nil, notFound(err, model.EntityProgress, id)
	}

	metrics.IncrementEntityWrite(model.EntityProgress, "update")
	s.events.Publish(ctx, event.ProgressUpdated, event.EntityPayload{ID: id, Fields: patch.Keys()})
	return p, nil
}

func (s *ProgressService) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := s.progress.Delete(ctx, id); err != nil {
		return err
	}

	metrics.IncrementEntityWrite(model.EntityProgress, "delete")
	s.events.Publish(ctx, event.ProgressDeleted, event.EntityPayload{ID: id})
	return nil
}

// populator 单次调用内缓存查找结果，同一个引用只查一次
type populator struct {
	s        *ProgressService
	projects map[string]*model.Project
	users    map[string]*model.User
}

func newPopulator(s *ProgressService) *populator {
	return &populator{
		s:        s,
		projects: make(map[string]*model.Project),
		users:    make(map[string]*model.User),
	}
}

func (p *populator) populate(ctx context.Context, entries []*model.Progress) ([]*model.PopulatedProgress, error) {
	out := make([]*model.PopulatedProgress, 0, len(entries))
	for _, e := range entries {
		project, err := p.project(ctx, e.Project)
		if err != nil {
			return nil, err
		}
		client, err := p.user(ctx, e.Client)
		if err != nil {
			return nil, err
		}
		manager, err := p.user(ctx, e.Manager)
		if err != nil {
			return nil, err
		}
		out = append(out, &model.PopulatedProgress{
			Progress: *e,
			Project:  project,
			Client:   client,
			Manager:  manager,
		})
	}
	return out, nil
}

// project 引用不存在时返回 nil，不视为错误
func (p *populator) project(ctx context.Context, id string) (*model.Project, error) {
	if cached, ok := p.projects[id]; ok {
		return cached, nil
	}
	var found *model.Project
	if id != "" {
		v, err := p.s.projects.FindByID(ctx, id)
		if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		found = v
	}
	p.projects[id] = found
	return found, nil
}

func (p *populator) user(ctx context.Context, id string) (*model.User, error) {
	if cached, ok := p.users[id]; ok {
		return cached, nil
	}
	var found *model.User
	if id != "" {
		v, err := p.s.users.FindByID(ctx, id)
		if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		found = v
	}
	p.users[id] = found
	return found, nil
}
