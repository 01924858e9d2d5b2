package exercises

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/fittrack/internal/apperr"
	"github.com/2beens/fittrack/internal/db"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var exerciseColumns = []string{"id", "name", "description", "category", "created_at", "updated_at"}

type Repo struct{}

func NewRepo() *Repo {
	return &Repo{}
}

func scanExercise(row pgx.Row) (*Exercise, error) {
	var e Exercise
	if err := row.Scan(&e.ID, &e.Name, &e.Description, &e.Category, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *Repo) Create(ctx context.Context, q db.Querier, exercise Exercise) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	query, args, err := psql.Insert("exercise").
		Columns("name", "description", "category").
		Values(exercise.Name, exercise.Description, exercise.Category).
		Suffix("RETURNING id, name, description, category, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}

	created, err := scanExercise(q.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("insert exercise: %w", err)
	}

	span.SetAttributes(attribute.Int("exercise.id", created.ID))
	return created, nil
}

func (r *Repo) Get(ctx context.Context, q db.Querier, id int) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	query, args, err := psql.Select(exerciseColumns...).From("exercise").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	e, err := scanExercise(q.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("exercise %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get exercise: %w", err)
	}
	return e, nil
}

func withListFilter(b sq.SelectBuilder, params ListParams) sq.SelectBuilder {
	if params.Category != "" {
		b = b.Where(sq.Eq{"category": params.Category})
	}
	return b
}

// List returns one page of the catalog ordered by name, and the total count matching the filter.
func (r *Repo) List(ctx context.Context, q db.Querier, params ListParams) (_ []Exercise, total int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("category", params.Category),
		attribute.Int("page", params.Page),
		attribute.Int("per_page", params.PerPage),
	)

	countQuery, countArgs, err := withListFilter(psql.Select("COUNT(*)").From("exercise"), params).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	if err := q.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count exercises: %w", err)
	}

	query, args, err := withListFilter(psql.Select(exerciseColumns...).From("exercise"), params).
		OrderBy("name ASC", "id ASC").
		Limit(uint64(params.PerPage)).
		Offset(uint64(params.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list exercises: %w", err)
	}
	defer rows.Close()

	exercises := []Exercise{}
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("rows scan: %w", err)
		}
		exercises = append(exercises, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return exercises, total, nil
}

func (r *Repo) Update(ctx context.Context, q db.Querier, exercise *Exercise) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", exercise.ID))

	query, args, err := psql.Update("exercise").
		Set("name", exercise.Name).
		Set("description", exercise.Description).
		Set("category", exercise.Category).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": exercise.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	err = q.QueryRow(ctx, query, args...).Scan(&exercise.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("exercise %d not found", exercise.ID)
	}
	if err != nil {
		return fmt.Errorf("update exercise: %w", err)
	}
	return nil
}

// CountReferences counts workout entries pointing at the exercise, across all users.
func (r *Repo) CountReferences(ctx context.Context, q db.Querier, id int) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.countreferences")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var count int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM workout_exercise WHERE exercise_id = $1`, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("count references: %w", err)
	}
	return count, nil
}

func (r *Repo) Delete(ctx context.Context, q db.Querier, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := q.Exec(ctx, `DELETE FROM exercise WHERE id = $1`, id)
	if pkg.IsForeignKeyViolationError(err) {
		return apperr.ReferentialConflict("cannot delete exercise %d as it is used in workouts", id)
	}
	if err != nil {
		return fmt.Errorf("delete exercise: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("exercise %d not found", id)
	}
	return nil
}
