package workouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/fittrack/internal/apperr"
	"github.com/2beens/fittrack/internal/db"
	"github.com/2beens/fittrack/internal/exercises"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const workoutColumns = `id, user_id, name, date, duration, notes, created_at, updated_at`

type Repo struct{}

func NewRepo() *Repo {
	return &Repo{}
}

func scanWorkout(row pgx.Row) (*Workout, error) {
	var (
		w    Workout
		date time.Time
	)
	if err := row.Scan(&w.ID, &w.UserID, &w.Name, &date, &w.Duration, &w.Notes, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	w.Date = NewDate(date)
	return &w, nil
}

func (r *Repo) Create(ctx context.Context, q db.Querier, workout Workout) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", workout.UserID))

	created, err := scanWorkout(q.QueryRow(
		ctx,
		`INSERT INTO workout (user_id, name, date, duration, notes)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+workoutColumns,
		workout.UserID, workout.Name, workout.Date.Time, workout.Duration, workout.Notes,
	))
	if err != nil {
		return nil, fmt.Errorf("insert workout: %w", err)
	}

	span.SetAttributes(attribute.Int("workout.id", created.ID))
	return created, nil
}

// Get returns the workout only when userID owns it. Other users' workouts are not found.
func (r *Repo) Get(ctx context.Context, q db.Querier, userID, id int) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id), attribute.Int("user.id", userID))

	w, err := scanWorkout(q.QueryRow(
		ctx,
		`SELECT `+workoutColumns+` FROM workout WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("workout %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get workout: %w", err)
	}
	return w, nil
}

// ListByOwner returns one page of the user's workouts, most recent date first.
func (r *Repo) ListByOwner(ctx context.Context, q db.Querier, userID int, params pkg.PageParams) (_ []Workout, total int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.listbyowner")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int("user.id", userID),
		attribute.Int("page", params.Page),
		attribute.Int("per_page", params.PerPage),
	)

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("workout").Where(sq.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	if err := q.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count workouts: %w", err)
	}

	query, args, err := psql.Select(workoutColumns).
		From("workout").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("date DESC", "id DESC").
		Limit(uint64(params.PerPage)).
		Offset(uint64(params.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list workouts: %w", err)
	}
	defer rows.Close()

	workouts := []Workout{}
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("rows scan: %w", err)
		}
		workouts = append(workouts, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return workouts, total, nil
}

func (r *Repo) Update(ctx context.Context, q db.Querier, workout *Workout) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", workout.ID))

	err = q.QueryRow(
		ctx,
		`UPDATE workout SET name = $1, date = $2, duration = $3, notes = $4, updated_at = now()
			WHERE id = $5 AND user_id = $6
			RETURNING updated_at`,
		workout.Name, workout.Date.Time, workout.Duration, workout.Notes, workout.ID, workout.UserID,
	).Scan(&workout.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("workout %d not found", workout.ID)
	}
	if err != nil {
		return fmt.Errorf("update workout: %w", err)
	}
	return nil
}

// Delete removes the workout together with its entries.
func (r *Repo) Delete(ctx context.Context, q db.Querier, userID, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id), attribute.Int("user.id", userID))

	if _, err := q.Exec(
		ctx,
		`DELETE FROM workout_exercise
			WHERE workout_id IN (SELECT id FROM workout WHERE id = $1 AND user_id = $2)`,
		id, userID,
	); err != nil {
		return fmt.Errorf("delete workout entries: %w", err)
	}

	tag, err := q.Exec(ctx, `DELETE FROM workout WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("workout %d not found", id)
	}
	return nil
}

const entrySelect = `we.id, we.workout_id, we.exercise_id, we.sets, we.reps, we.weight, we.duration, we.distance,
	we.notes, we.created_at, we.updated_at,
	e.id, e.name, e.description, e.category, e.created_at, e.updated_at`

func scanEntry(row pgx.Row) (*Entry, error) {
	var (
		en Entry
		ex exercises.Exercise
	)
	if err := row.Scan(
		&en.ID, &en.WorkoutID, &en.ExerciseID, &en.Sets, &en.Reps, &en.Weight, &en.Duration, &en.Distance,
		&en.Notes, &en.CreatedAt, &en.UpdatedAt,
		&ex.ID, &ex.Name, &ex.Description, &ex.Category, &ex.CreatedAt, &ex.UpdatedAt,
	); err != nil {
		return nil, err
	}
	en.Exercise = &ex
	return &en, nil
}

// ListEntries loads the entries of the given workouts in insertion order, keyed by workout id.
func (r *Repo) ListEntries(ctx context.Context, q db.Querier, workoutIDs []int) (_ map[int][]Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.listentries")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workouts", len(workoutIDs)))

	entries := make(map[int][]Entry, len(workoutIDs))
	if len(workoutIDs) == 0 {
		return entries, nil
	}

	query, args, err := psql.Select(entrySelect).
		From("workout_exercise we").
		Join("exercise e ON e.id = we.exercise_id").
		Where(sq.Eq{"we.workout_id": workoutIDs}).
		OrderBy("we.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build entries query: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		en, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		entries[en.WorkoutID] = append(entries[en.WorkoutID], *en)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *Repo) GetEntry(ctx context.Context, q db.Querier, workoutID, entryID int) (_ *Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.getentry")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", workoutID), attribute.Int("entry.id", entryID))

	en, err := scanEntry(q.QueryRow(
		ctx,
		`SELECT `+entrySelect+`
			FROM workout_exercise we
			JOIN exercise e ON e.id = we.exercise_id
			WHERE we.id = $1 AND we.workout_id = $2`,
		entryID, workoutID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("workout exercise %d not found", entryID)
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return en, nil
}

func (r *Repo) CreateEntry(ctx context.Context, q db.Querier, entry Entry) (_ *Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.createentry")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", entry.WorkoutID), attribute.Int("exercise.id", entry.ExerciseID))

	err = q.QueryRow(
		ctx,
		`INSERT INTO workout_exercise (workout_id, exercise_id, sets, reps, weight, duration, distance, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, created_at, updated_at`,
		entry.WorkoutID, entry.ExerciseID, entry.Sets, entry.Reps, entry.Weight, entry.Duration, entry.Distance, entry.Notes,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
	if pkg.IsForeignKeyViolationError(err) {
		return nil, apperr.NotFound("exercise %d not found", entry.ExerciseID)
	}
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}

	return &entry, nil
}

func (r *Repo) UpdateEntry(ctx context.Context, q db.Querier, entry *Entry) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.updateentry")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("entry.id", entry.ID))

	err = q.QueryRow(
		ctx,
		`UPDATE workout_exercise
			SET sets = $1, reps = $2, weight = $3, duration = $4, distance = $5, notes = $6, updated_at = now()
			WHERE id = $7 AND workout_id = $8
			RETURNING updated_at`,
		entry.Sets, entry.Reps, entry.Weight, entry.Duration, entry.Distance, entry.Notes, entry.ID, entry.WorkoutID,
	).Scan(&entry.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("workout exercise %d not found", entry.ID)
	}
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	return nil
}

func (r *Repo) DeleteEntry(ctx context.Context, q db.Querier, workoutID, entryID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.deleteentry")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", workoutID), attribute.Int("entry.id", entryID))

	tag, err := q.Exec(ctx, `DELETE FROM workout_exercise WHERE id = $1 AND workout_id = $2`, entryID, workoutID)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("workout exercise %d not found", entryID)
	}
	return nil
}
