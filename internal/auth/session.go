package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/2beens/fittrack/internal/apperr"

	"github.com/go-redis/redis/v8"
)

// SessionResolver maps a bearer token to the user that owns the session.
type SessionResolver struct {
	ttl         time.Duration
	redisClient *redis.Client
	now         func() time.Time
}

func NewSessionResolver(ttl time.Duration, redisClient *redis.Client) *SessionResolver {
	return &SessionResolver{
		ttl:         ttl,
		redisClient: redisClient,
		now:         time.Now,
	}
}

// Resolve returns apperr.ErrUnauthenticated for unknown, malformed or expired sessions.
func (r *SessionResolver) Resolve(ctx context.Context, token string) (int, error) {
	if token == "" {
		return 0, apperr.Unauthenticated("missing token")
	}

	fields, err := r.redisClient.HGetAll(ctx, sessionKey(token)).Result()
	if err != nil {
		return 0, fmt.Errorf("get session: %w", err)
	}
	if len(fields) == 0 {
		return 0, apperr.Unauthenticated("invalid token")
	}

	userID, err := strconv.Atoi(fields[fieldUserID])
	if err != nil || userID <= 0 {
		return 0, apperr.Unauthenticated("invalid token")
	}

	createdAtUnix, err := strconv.ParseInt(fields[fieldCreatedAt], 10, 64)
	if err != nil {
		return 0, apperr.Unauthenticated("invalid token")
	}
	if r.now().Sub(time.Unix(createdAtUnix, 0)) > r.ttl {
		return 0, apperr.Unauthenticated("session expired")
	}

	return userID, nil
}
