package stats

import (
	"context"
	"net/http"

	"github.com/2beens/fittrack/internal/apperr"
	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/gorilla/mux"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

func (h *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/stats/summary", h.HandleSummary).Methods("GET", "OPTIONS").Name("stats-summary")
	router.HandleFunc("/stats/monthly", h.HandleMonthly).Methods("GET", "OPTIONS").Name("stats-monthly")
	router.HandleFunc("/stats/exercises", h.HandleExercises).Methods("GET", "OPTIONS").Name("stats-exercises")
}

func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "handler.stats.summary", func(ctx context.Context, userID int) (any, error) {
		return h.service.Summary(ctx, userID)
	})
}

func (h *Handler) HandleMonthly(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "handler.stats.monthly", func(ctx context.Context, userID int) (any, error) {
		return h.service.MonthlyTrend(ctx, userID)
	})
}

func (h *Handler) HandleExercises(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "handler.stats.exercises", func(ctx context.Context, userID int) (any, error) {
		return h.service.ExerciseFrequency(ctx, userID)
	})
}

func (h *Handler) serve(
	w http.ResponseWriter,
	r *http.Request,
	spanName string,
	view func(ctx context.Context, userID int) (any, error),
) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), spanName)
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		apperr.WriteError(w, r, apperr.Unauthenticated("not logged in"))
		return
	}

	resp, err := view(ctx, userID)
	if err != nil {
		apperr.WriteError(w, r, err)
		return
	}

	pkg.WriteJSONResponse(w, resp, http.StatusOK)
}
