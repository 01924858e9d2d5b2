package users

import (
	"net/http"

	"github.com/2beens/fittrack/internal/apperr"
	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/middleware"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/gorilla/mux"
)

type AuthResponse struct {
	Message     string `json:"message"`
	User        *User  `json:"user"`
	AccessToken string `json:"access_token,omitempty"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

// SetupRoutes registers the /auth routes. Login and register are rate limited per client IP.
func (h *Handler) SetupRoutes(
	router *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	metricsManager *metrics.Manager,
	allowedPerMin int,
) {
	authRouter := router.PathPrefix("/auth").Subrouter()

	register := middleware.RateLimit(rateLimiter, metricsManager, "register", allowedPerMin)
	login := middleware.RateLimit(rateLimiter, metricsManager, "login", allowedPerMin)

	authRouter.Handle("/register", register(http.HandlerFunc(h.HandleRegister))).Methods("POST", "OPTIONS").Name("register")
	authRouter.Handle("/login", login(http.HandlerFunc(h.HandleLogin))).Methods("POST", "OPTIONS").Name("login")
	authRouter.HandleFunc("/logout", h.HandleLogout).Methods("GET", "OPTIONS").Name("logout")
	authRouter.HandleFunc("/profile", h.HandleGetProfile).Methods("GET", "OPTIONS").Name("get-profile")
	authRouter.HandleFunc("/profile", h.HandleUpdateProfile).Methods("PUT", "OPTIONS").Name("update-profile")
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.register")
	defer span.End()

	var req RegisterRequest
	if err := pkg.DecodeJSONBody(r, &req); err != nil {
		apperr.WriteError(w, r, apperr.ValidationWrap(err, "malformed request body"))
		return
	}

	user, token, err := h.service.Register(ctx, req)
	if err != nil {
		apperr.WriteError(w, r, err)
		return
	}

	pkg.WriteJSONResponse(w, AuthResponse{
		Message:     "User registered successfully",
		User:        user,
		AccessToken: token,
	}, http.StatusCreated)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.login")
	defer span.End()

	var req LoginRequest
	if err := pkg.DecodeJSONBody(r, &req); err != nil {
		apperr.WriteError(w, r, apperr.ValidationWrap(err, "malformed request body"))
		return
	}

	user, token, err := h.service.Login(ctx, req)
	if err != nil {
		apperr.WriteError(w, r, err)
		return
	}

	pkg.WriteJSONResponse(w, AuthResponse{
		Message:     "Login successful",
		User:        user,
		AccessToken: token,
	}, http.StatusOK)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.logout")
	defer span.End()

	token := auth.TokenFromContext(ctx)
	if token == "" {
		token = middleware.BearerToken(r)
	}
	if err := h.service.Logout(ctx, token); err != nil {
		apperr.WriteError(w, r, err)
		return
	}

	pkg.WriteJSONResponse(w, map[string]string{"message": "logged out"}, http.StatusOK)
}

func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.getprofile")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		apperr.WriteError(w, r, apperr.Unauthenticated("not logged in"))
		return
	}

	user, err := h.service.Profile(ctx, userID)
	if err != nil {
		apperr.WriteError(w, r, err)
		return
	}

	pkg.WriteJSONResponse(w, user, http.StatusOK)
}

func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.updateprofile")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		apperr.WriteError(w, r, apperr.Unauthenticated("not logged in"))
		return
	}

	var req UpdateProfileRequest
	if err := pkg.DecodeJSONBody(r, &req); err != nil {
		apperr.WriteError(w, r, apperr.ValidationWrap(err, "malformed request body"))
		return
	}

	user, err := h.service.UpdateProfile(ctx, userID, req)
	if err != nil {
		apperr.WriteError(w, r, err)
		return
	}

	pkg.WriteJSONResponse(w, AuthResponse{
		Message: "Profile updated successfully",
		User:    user,
	}, http.StatusOK)
}
