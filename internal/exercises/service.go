package exercises

import (
	"context"

	"github.com/2beens/fittrack/internal/apperr"
	"github.com/2beens/fittrack/internal/db"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=exercises_test

type exercisesRepo interface {
	Create(ctx context.Context, q db.Querier, exercise Exercise) (*Exercise, error)
	Get(ctx context.Context, q db.Querier, id int) (*Exercise, error)
	List(ctx context.Context, q db.Querier, params ListParams) ([]Exercise, int, error)
	Update(ctx context.Context, q db.Querier, exercise *Exercise) error
	CountReferences(ctx context.Context, q db.Querier, id int) (int, error)
	Delete(ctx context.Context, q db.Querier, id int) error
}

type Service struct {
	uow   db.UnitOfWork
	repo  exercisesRepo
	cache *Cache
}

func NewService(uow db.UnitOfWork, repo exercisesRepo, cache *Cache) *Service {
	return &Service{
		uow:   uow,
		repo:  repo,
		cache: cache,
	}
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.exercises.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	var created *Exercise
	err = s.uow.Do(ctx, func(q db.Querier) error {
		var err error
		created, err = s.repo.Create(ctx, q, Exercise{
			Name:        req.Name,
			Description: req.Description,
			Category:    req.Category,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Debugf("exercise %d [%s] created", created.ID, created.Name)
	return created, nil
}

func (s *Service) Get(ctx context.Context, id int) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.exercises.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if e, ok := s.cache.Get(id); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return e, nil
	}

	generation := s.cache.Generation()
	var e *Exercise
	err = s.uow.Do(ctx, func(q db.Querier) error {
		var err error
		e, err = s.repo.Get(ctx, q, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.cache.Set(e, generation)
	return e, nil
}

func (s *Service) List(ctx context.Context, params ListParams) (_ *ListResponse, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.exercises.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var (
		list  []Exercise
		total int
	)
	err = s.uow.Do(ctx, func(q db.Querier) error {
		var err error
		list, total, err = s.repo.List(ctx, q, params)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &ListResponse{
		Exercises: list,
		Page:      pkg.NewPage(params.PageParams, total),
	}, nil
}

func (s *Service) Update(ctx context.Context, id int, req UpdateRequest) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.exercises.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	var e *Exercise
	err = s.uow.Do(ctx, func(q db.Querier) error {
		var err error
		e, err = s.repo.Get(ctx, q, id)
		if err != nil {
			return err
		}
		if !req.Apply(e) {
			return nil
		}
		return s.repo.Update(ctx, q, e)
	})
	s.cache.Invalidate(id)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Delete removes an exercise nobody references. Referenced exercises are protected,
// also against a concurrent insert (the FK violation maps to the same error).
func (s *Service) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.exercises.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = s.uow.Do(ctx, func(q db.Querier) error {
		if _, err := s.repo.Get(ctx, q, id); err != nil {
			return err
		}

		refs, err := s.repo.CountReferences(ctx, q, id)
		if err != nil {
			return err
		}
		if refs > 0 {
			return apperr.ReferentialConflict("cannot delete exercise %d as it is used in workouts", id)
		}

		return s.repo.Delete(ctx, q, id)
	})
	s.cache.Invalidate(id)
	return err
}
