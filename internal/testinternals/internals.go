package testinternals

import (
	"context"
	"time"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/db"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
)

// UnitOfWork runs fn directly with a nil querier. Repos in unit tests are mocks and never touch it.
type UnitOfWork struct {
	Calls int
	// Err, when set, is returned instead of running fn (e.g. begin tx failure).
	Err error
}

var _ db.UnitOfWork = (*UnitOfWork)(nil)

func (u *UnitOfWork) Do(_ context.Context, fn func(q db.Querier) error) error {
	u.Calls++
	if u.Err != nil {
		return u.Err
	}
	return fn(nil)
}

type Internals struct {
	UnitOfWork *UnitOfWork

	AuthService     *auth.Service
	SessionResolver *auth.SessionResolver

	// redis
	RedisClient *redis.Client
	RedisMock   redismock.ClientMock
}

func NewTestingInternals() *Internals {
	rdb, mock := redismock.NewClientMock()
	authService := auth.NewAuthService(time.Hour, rdb)
	authService.RandStringFunc = func(s int) (string, error) {
		return "test-token", nil
	}

	return &Internals{
		UnitOfWork:      &UnitOfWork{},
		AuthService:     authService,
		SessionResolver: auth.NewSessionResolver(time.Hour, rdb),
		RedisClient:     rdb,
		RedisMock:       mock,
	}
}
