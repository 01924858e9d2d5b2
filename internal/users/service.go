package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/fittrack/internal/apperr"
	"github.com/2beens/fittrack/internal/db"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=users_test

type usersRepo interface {
	Create(ctx context.Context, q db.Querier, user User) (*User, error)
	Get(ctx context.Context, q db.Querier, id int) (*User, error)
	GetByUsername(ctx context.Context, q db.Querier, username string) (*User, error)
	UsernameTaken(ctx context.Context, q db.Querier, username string, exceptID int) (bool, error)
	EmailTaken(ctx context.Context, q db.Querier, email string, exceptID int) (bool, error)
	Update(ctx context.Context, q db.Querier, user *User) error
}

type sessionStore interface {
	Login(ctx context.Context, userID int, createdAt time.Time) (string, error)
	Logout(ctx context.Context, token string) error
}

type Service struct {
	uow            db.UnitOfWork
	repo           usersRepo
	sessions       sessionStore
	metricsManager *metrics.Manager
	now            func() time.Time
}

func NewService(
	uow db.UnitOfWork,
	repo usersRepo,
	sessions sessionStore,
	metricsManager *metrics.Manager,
) *Service {
	return &Service{
		uow:            uow,
		repo:           repo,
		sessions:       sessions,
		metricsManager: metricsManager,
		now:            time.Now,
	}
}

// Register creates the user and opens a session for it.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (_ *User, _ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.users.register")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := req.Validate(); err != nil {
		return nil, "", err
	}

	newUser := User{
		Username: req.Username,
		Email:    req.Email,
	}
	if err := newUser.SetPassword(req.Password); err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	var created *User
	err = s.uow.Do(ctx, func(q db.Querier) error {
		if err := s.checkUnique(ctx, q, newUser.Username, newUser.Email, 0); err != nil {
			return err
		}
		var err error
		created, err = s.repo.Create(ctx, q, newUser)
		return err
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.sessions.Login(ctx, created.ID, s.now())
	if err != nil {
		return nil, "", fmt.Errorf("open session: %w", err)
	}

	s.metricsManager.CounterRegistrations.Inc()
	log.Debugf("user %d [%s] registered", created.ID, created.Username)

	return created, token, nil
}

func (s *Service) checkUnique(ctx context.Context, q db.Querier, username, email string, exceptID int) error {
	if username != "" {
		taken, err := s.repo.UsernameTaken(ctx, q, username, exceptID)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict("username already exists")
		}
	}
	if email != "" {
		taken, err := s.repo.EmailTaken(ctx, q, email, exceptID)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict("email already exists")
		}
	}
	return nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (_ *User, _ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.users.login")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
		result := "ok"
		if err != nil {
			result = "failed"
		}
		s.metricsManager.CounterLogins.WithLabelValues(result).Inc()
	}()

	if err := req.Validate(); err != nil {
		return nil, "", err
	}

	var user *User
	err = s.uow.Do(ctx, func(q db.Querier) error {
		var err error
		user, err = s.repo.GetByUsername(ctx, q, req.Username)
		return err
	})
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, "", apperr.InvalidCredentials("invalid username or password")
	}
	if err != nil {
		return nil, "", err
	}

	if !user.VerifyPassword(req.Password) {
		return nil, "", apperr.InvalidCredentials("invalid username or password")
	}

	token, err := s.sessions.Login(ctx, user.ID, s.now())
	if err != nil {
		return nil, "", fmt.Errorf("open session: %w", err)
	}

	return user, token, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Logout(ctx, token)
}

func (s *Service) Profile(ctx context.Context, userID int) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.users.profile")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var user *User
	err = s.uow.Do(ctx, func(q db.Querier) error {
		var err error
		user, err = s.repo.Get(ctx, q, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies the present fields. Changed username/email are checked for
// uniqueness in the same unit of work, right before the update.
func (s *Service) UpdateProfile(ctx context.Context, userID int, req UpdateProfileRequest) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.users.updateprofile")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	var newPasswordHash string
	if req.Password.Set {
		tmp := User{}
		if err := tmp.SetPassword(req.Password.V); err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		newPasswordHash = tmp.PasswordHash
	}

	var user *User
	err = s.uow.Do(ctx, func(q db.Querier) error {
		var err error
		user, err = s.repo.Get(ctx, q, userID)
		if err != nil {
			return err
		}

		var changedUsername, changedEmail string
		if req.Username.Set && req.Username.V != user.Username {
			changedUsername = req.Username.V
		}
		if req.Email.Set && req.Email.V != user.Email {
			changedEmail = req.Email.V
		}
		if err := s.checkUnique(ctx, q, changedUsername, changedEmail, user.ID); err != nil {
			return err
		}

		if changedUsername != "" {
			user.Username = changedUsername
		}
		if changedEmail != "" {
			user.Email = changedEmail
		}
		if newPasswordHash != "" {
			user.PasswordHash = newPasswordHash
		}

		if changedUsername == "" && changedEmail == "" && newPasswordHash == "" {
			return nil
		}
		return s.repo.Update(ctx, q, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
