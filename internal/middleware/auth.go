package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/2beens/fittrack/internal/apperr"
	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

//go:generate mockgen -source=$GOFILE -destination=auth_mocks_test.go -package=middleware_test

type sessionResolver interface {
	Resolve(ctx context.Context, token string) (int, error)
}

type AuthMiddlewareHandler struct {
	resolver sessionResolver
	// keyed by "METHOD path"
	publicRoutes         map[string]bool
	publicRoutesPrefixes map[string][]string
}

func NewAuthMiddlewareHandler(resolver sessionResolver) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		resolver: resolver,
		publicRoutes: map[string]bool{
			"GET /": true,

			"POST /auth/register": true,
			"POST /auth/login":    true,

			// the exercise catalog is readable by anyone
			"GET /api/exercises": true,
		},
		publicRoutesPrefixes: map[string][]string{
			http.MethodGet: {"/api/exercises/"},
		},
	}
}

func (h *AuthMiddlewareHandler) isPublic(method, path string) bool {
	if h.publicRoutes[method+" "+path] {
		return true
	}
	for _, prefix := range h.publicRoutesPrefixes[method] {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PUT, DELETE, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if h.isPublic(r.Method, r.URL.Path) {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			token := BearerToken(r)
			if token == "" {
				log.Tracef("[missing token] [auth middleware] unauthorized => %s", r.URL.Path)
				apperr.WriteError(w, r, apperr.Unauthenticated("missing bearer token"))
				span.SetStatus(codes.Error, "missing-auth-token")
				return
			}

			userID, err := h.resolver.Resolve(ctx, token)
			if err != nil {
				if !errors.Is(err, apperr.ErrUnauthenticated) {
					log.Errorf("[failed session resolve] => %s: %s", r.URL.Path, err)
					span.RecordError(err)
				}
				apperr.WriteError(w, r, err)
				span.SetStatus(codes.Error, "not-logged")
				return
			}

			span.SetAttributes(attribute.Int("user.id", userID))
			span.SetStatus(codes.Ok, "ok")

			ctx = auth.ContextWithUserID(r.Context(), userID)
			ctx = auth.ContextWithToken(ctx, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
