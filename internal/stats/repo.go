package stats

import (
	"context"
	"fmt"

	"github.com/2beens/fittrack/internal/db"
	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
)

type Repo struct{}

func NewRepo() *Repo {
	return &Repo{}
}

// LoadSnapshot reads the user's workouts and entries. Absent durations come back as 0.
func (r *Repo) LoadSnapshot(ctx context.Context, q db.Querier, userID int) (_ *Snapshot, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.stats.loadsnapshot")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := q.Query(
		ctx,
		`SELECT id, date, COALESCE(duration, 0) FROM workout WHERE user_id = $1 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query workouts: %w", err)
	}
	workouts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (WorkoutRecord, error) {
		var w WorkoutRecord
		err := row.Scan(&w.ID, &w.Date, &w.Duration)
		return w, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan workouts: %w", err)
	}

	rows, err = q.Query(
		ctx,
		`SELECT we.workout_id, e.id, e.name, e.category
			FROM workout_exercise we
			JOIN workout w ON w.id = we.workout_id
			JOIN exercise e ON e.id = we.exercise_id
			WHERE w.user_id = $1
			ORDER BY we.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (EntryRecord, error) {
		var e EntryRecord
		err := row.Scan(&e.WorkoutID, &e.ExerciseID, &e.Name, &e.Category)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan entries: %w", err)
	}

	span.SetAttributes(attribute.Int("workouts", len(workouts)), attribute.Int("entries", len(entries)))
	return &Snapshot{
		Workouts: workouts,
		Entries:  entries,
	}, nil
}
