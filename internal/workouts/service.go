package workouts

import (
	"context"
	"time"

	"github.com/2beens/fittrack/internal/db"
	"github.com/2beens/fittrack/internal/exercises"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=workouts_test

type workoutsRepo interface {
	Create(ctx context.Context, q db.Querier, workout Workout) (*Workout, error)
	Get(ctx context.Context, q db.Querier, userID, id int) (*Workout, error)
	ListByOwner(ctx context.Context, q db.Querier, userID int, params pkg.PageParams) ([]Workout, int, error)
	Update(ctx context.Context, q db.Querier, workout *Workout) error
	Delete(ctx context.Context, q db.Querier, userID, id int) error
	ListEntries(ctx context.Context, q db.Querier, workoutIDs []int) (map[int][]Entry, error)
	GetEntry(ctx context.Context, q db.Querier, workoutID, entryID int) (*Entry, error)
	CreateEntry(ctx context.Context, q db.Querier, entry Entry) (*Entry, error)
	UpdateEntry(ctx context.Context, q db.Querier, entry *Entry) error
	DeleteEntry(ctx context.Context, q db.Querier, workoutID, entryID int) error
}

type exerciseGetter interface {
	Get(ctx context.Context, q db.Querier, id int) (*exercises.Exercise, error)
}

// Service scopes every operation to the calling user's own workouts.
type Service struct {
	uow            db.UnitOfWork
	repo           workoutsRepo
	exercises      exerciseGetter
	metricsManager *metrics.Manager
	now            func() time.Time
}

func NewService(
	uow db.UnitOfWork,
	repo workoutsRepo,
	exercises exerciseGetter,
	metricsManager *metrics.Manager,
) *Service {
	return &Service{
		uow:            uow,
		repo:           repo,
		exercises:      exercises,
		metricsManager: metricsManager,
		now:            time.Now,
	}
}

// WithClock replaces the source of "today", used for the default workout date.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Create(ctx context.Context, userID int, req CreateRequest) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	workout, err := req.ToWorkout(userID, NewDate(s.now()))
	if err != nil {
		return nil, err
	}

	var created *Workout
	err = s.uow.Do(ctx, func(q db.Querier) error {
		var err error
		created, err = s.repo.Create(ctx, q, workout)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metricsManager.CounterWorkoutsCreated.Inc()
	log.Debugf("user %d: workout %d [%s] created", userID, created.ID, created.Name)

	return created, nil
}

// Get returns the workout expanded with its entries.
func (s *Service) Get(ctx context.Context, userID, id int) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var workout *Workout
	err = s.uow.Do(ctx, func(q db.Querier) error {
		var err error
		workout, err = s.repo.Get(ctx, q, userID, id)
		if err != nil {
			return err
		}
		entries, err := s.repo.ListEntries(ctx, q, []int{workout.ID})
		if err != nil {
			return err
		}
		workout.Expand(entries[workout.ID])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return workout, nil
}

func (s *Service) List(ctx context.Context, userID int, params pkg.PageParams, expand bool) (_ *ListResponse, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Bool("expand", expand))

	var (
		list  []Workout
		total int
	)
	err = s.uow.Do(ctx, func(q db.Querier) error {
		var err error
		list, total, err = s.repo.ListByOwner(ctx, q, userID, params)
		if err != nil || !expand || len(list) == 0 {
			return err
		}

		ids := make([]int, 0, len(list))
		for _, w := range list {
			ids = append(ids, w.ID)
		}
		entries, err := s.repo.ListEntries(ctx, q, ids)
		if err != nil {
			return err
		}
		for i := range list {
			list[i].Expand(entries[list[i].ID])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ListResponse{
		Workouts: list,
		Page:     pkg.NewPage(params, total),
	}, nil
}

// Update applies only the fields present in req.
func (s *Service) Update(ctx context.Context, userID, id int, req UpdateRequest) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var workout *Workout
	err = s.uow.Do(ctx, func(q db.Querier) error {
		var err error
		workout, err = s.repo.Get(ctx, q, userID, id)
		if err != nil {
			return err
		}
		changed, err := req.Apply(workout)
		if err != nil || !changed {
			return err
		}
		return s.repo.Update(ctx, q, workout)
	})
	if err != nil {
		return nil, err
	}
	return workout, nil
}

func (s *Service) Delete(ctx context.Context, userID, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return s.uow.Do(ctx, func(q db.Querier) error {
		return s.repo.Delete(ctx, q, userID, id)
	})
}

func (s *Service) AddEntry(ctx context.Context, userID, workoutID int, req CreateEntryRequest) (_ *Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.addentry")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var created *Entry
	err = s.uow.Do(ctx, func(q db.Querier) error {
		if _, err := s.repo.Get(ctx, q, userID, workoutID); err != nil {
			return err
		}

		entry, err := req.ToEntry(workoutID)
		if err != nil {
			return err
		}

		exercise, err := s.exercises.Get(ctx, q, entry.ExerciseID)
		if err != nil {
			return err
		}

		created, err = s.repo.CreateEntry(ctx, q, entry)
		if err != nil {
			return err
		}
		created.Exercise = exercise
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metricsManager.CounterEntriesCreated.Inc()
	return created, nil
}

func (s *Service) UpdateEntry(ctx context.Context, userID, workoutID, entryID int, req UpdateEntryRequest) (_ *Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.updateentry")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var entry *Entry
	err = s.uow.Do(ctx, func(q db.Querier) error {
		if _, err := s.repo.Get(ctx, q, userID, workoutID); err != nil {
			return err
		}

		var err error
		entry, err = s.repo.GetEntry(ctx, q, workoutID, entryID)
		if err != nil {
			return err
		}
		if !req.Apply(entry) {
			return nil
		}
		return s.repo.UpdateEntry(ctx, q, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *Service) DeleteEntry(ctx context.Context, userID, workoutID, entryID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.deleteentry")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return s.uow.Do(ctx, func(q db.Querier) error {
		if _, err := s.repo.Get(ctx, q, userID, workoutID); err != nil {
			return err
		}
		return s.repo.DeleteEntry(ctx, q, workoutID, entryID)
	})
}
