package stats

import (
	"context"
	"time"

	"github.com/2beens/fittrack/internal/db"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=stats_test

type snapshotLoader interface {
	LoadSnapshot(ctx context.Context, q db.Querier, userID int) (*Snapshot, error)
}

// Service computes the views on demand, one unit of work per call.
type Service struct {
	uow            db.UnitOfWork
	repo           snapshotLoader
	engine         *Engine
	metricsManager *metrics.Manager
	now            func() time.Time
}

func NewService(uow db.UnitOfWork, repo snapshotLoader, metricsManager *metrics.Manager) *Service {
	return &Service{
		uow:            uow,
		repo:           repo,
		engine:         NewEngine(),
		metricsManager: metricsManager,
		now:            time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) load(ctx context.Context, userID int) (*Snapshot, error) {
	var snap *Snapshot
	err := s.uow.Do(ctx, func(q db.Querier) error {
		var err error
		snap, err = s.repo.LoadSnapshot(ctx, q, userID)
		return err
	})
	return snap, err
}

func (s *Service) observe(view string, start time.Time) {
	s.metricsManager.HistogramStatsDuration.WithLabelValues(view).Observe(time.Since(start).Seconds())
}

func (s *Service) Summary(ctx context.Context, userID int) (_ *Summary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.stats.summary")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	defer s.observe("summary", time.Now())

	snap, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary := s.engine.Summary(*snap, s.now())
	return &summary, nil
}

func (s *Service) MonthlyTrend(ctx context.Context, userID int) (_ []MonthRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.stats.monthly")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	defer s.observe("monthly", time.Now())

	snap, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.engine.MonthlyTrend(*snap, s.now()), nil
}

func (s *Service) ExerciseFrequency(ctx context.Context, userID int) (_ []ExerciseCount, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.stats.exercises")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	defer s.observe("exercises", time.Now())

	snap, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.engine.ExerciseFrequency(*snap), nil
}
