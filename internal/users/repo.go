package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/fittrack/internal/apperr"
	"github.com/2beens/fittrack/internal/db"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
)

const userColumns = `id, username, email, password_hash, created_at, updated_at`

type Repo struct{}

func NewRepo() *Repo {
	return &Repo{}
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func mapWriteErr(err error) error {
	if pkg.IsUniqueViolationError(err) {
		switch pkg.ConstraintName(err) {
		case "app_user_username_key":
			return apperr.Conflict("username already exists")
		case "app_user_email_key":
			return apperr.Conflict("email already exists")
		}
		return apperr.Conflict("username or email already exists")
	}
	return err
}

func (r *Repo) Create(ctx context.Context, q db.Querier, user User) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	created, err := scanUser(q.QueryRow(
		ctx,
		`INSERT INTO app_user (username, email, password_hash)
			VALUES ($1, $2, $3)
			RETURNING `+userColumns,
		user.Username, user.Email, user.PasswordHash,
	))
	if err != nil {
		return nil, mapWriteErr(err)
	}

	span.SetAttributes(attribute.Int("user.id", created.ID))
	return created, nil
}

func (r *Repo) Get(ctx context.Context, q db.Querier, id int) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	u, err := scanUser(q.QueryRow(ctx, `SELECT `+userColumns+` FROM app_user WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (r *Repo) GetByUsername(ctx context.Context, q db.Querier, username string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.getbyusername")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	u, err := scanUser(q.QueryRow(ctx, `SELECT `+userColumns+` FROM app_user WHERE username = $1`, username))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user %s not found", username)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

// UsernameTaken reports whether another user (id != exceptID) already uses username.
func (r *Repo) UsernameTaken(ctx context.Context, q db.Querier, username string, exceptID int) (bool, error) {
	return r.exists(ctx, q, "username", username, exceptID)
}

// EmailTaken reports whether another user (id != exceptID) already uses email.
func (r *Repo) EmailTaken(ctx context.Context, q db.Querier, email string, exceptID int) (bool, error) {
	return r.exists(ctx, q, "email", email, exceptID)
}

func (r *Repo) exists(ctx context.Context, q db.Querier, column, value string, exceptID int) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.exists")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("column", column))

	var exists bool
	if err := q.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM app_user WHERE `+column+` = $1 AND id <> $2)`,
		value, exceptID,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("check %s: %w", column, err)
	}
	return exists, nil
}

func (r *Repo) Update(ctx context.Context, q db.Querier, user *User) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", user.ID))

	err = q.QueryRow(
		ctx,
		`UPDATE app_user SET username = $1, email = $2, password_hash = $3, updated_at = now()
			WHERE id = $4
			RETURNING updated_at`,
		user.Username, user.Email, user.PasswordHash, user.ID,
	).Scan(&user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("user %d not found", user.ID)
	}
	if err != nil {
		return mapWriteErr(err)
	}
	return nil
}
