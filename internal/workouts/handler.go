package workouts

import (
	"net/http"
	"strconv"

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
	router.HandleFunc("/api/workouts", h.HandleList).Methods("GET", "OPTIONS").Name("list-workouts")
	router.HandleFunc("/api/workouts", h.HandleCreate).Methods("POST", "OPTIONS").Name("new-workout")
	router.HandleFunc("/api/workouts/{id:[0-9]+}", h.HandleGet).Methods("GET", "OPTIONS").Name("get-workout")
	router.HandleFunc("/api/workouts/{id:[0-9]+}", h.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-workout")
	router.HandleFunc("/api/workouts/{id:[0-9]+}", h.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-workout")
	router.HandleFunc("/api/workouts/{id:[0-9]+}/exercises", h.HandleAddEntry).Methods("POST", "OPTIONS").Name("new-workout-entry")
	router.HandleFunc("/api/workouts/{id:[0-9]+}/exercises/{entryId:[0-9]+}", h.HandleUpdateEntry).Methods("PUT", "OPTIONS").Name("update-workout-entry")
	router.HandleFunc("/api/workouts/{id:[0-9]+}/exercises/{entryId:[0-9]+}", h.HandleDeleteEntry).Methods("DELETE", "OPTIONS").Name("delete-workout-entry")
}

// caller resolves the authenticated user and the workout id from the route.
func caller(w http.ResponseWriter, r *http.Request, withWorkoutID bool) (userID, workoutID int, ok bool) {
	userID, ok = auth.UserIDFromContext(r.Context())
	if !ok {
		apperr.WriteError(w, r, apperr.Unauthenticated("not logged in"))
		return 0, 0, false
	}
	if !withWorkoutID {
		return userID, 0, true
	}
	workoutID, err := pkg.PathIntParam(r, "id")
	if err != nil {
		apperr.WriteError(w, r, apperr.ValidationWrap(err, "bad workout id"))
		return 0, 0, false
	}
	return userID, workoutID, true
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list")
	defer span.End()

	userID, _, ok := caller(w, r, false)
	if !ok {
		return
	}

	query := r.URL.Query()
	expand, _ := strconv.ParseBool(query.Get("expand"))
	resp, err := h.service.List(ctx, userID, pkg.ParsePageParams(query, DefaultPerPage), expand)
	if err != nil {
		apperr.WriteError(w, r, err)
		return
	}

	pkg.WriteJSONResponse(w, resp, http.StatusOK)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.get")
	defer span.End()

	userID, workoutID, ok := caller(w, r, true)
	if !ok {
		return
	}

	workout, err := h.service.Get(ctx, userID, workoutID)
	if err != nil {
		apperr.WriteError(w, r, err)
		return
	}

	pkg.WriteJSONResponse(w, workout, http.StatusOK)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.create")
	defer span.End()

	userID, _, ok := caller(w, r, false)
	if !ok {
		return
	}

	var req CreateRequest
	if err := pkg.DecodeJSONBody(r, &req); err != nil {
		apperr.WriteError(w, r, apperr.ValidationWrap(err, "malformed request body"))
		return
	}

	workout, err := h.service.Create(ctx, userID, req)
	if err != nil {
		apperr.WriteError(w, r, err)
		return
	}

	pkg.WriteJSONResponse(w, workout, http.StatusCreated)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.update")
	defer span.End()

	userID, workoutID, ok := caller(w, r, true)
	if !ok {
		return
	}

	var req UpdateRequest
	if err := pkg.DecodeJSONBody(r, &req); err != nil {
		apperr.WriteError(w, r, apperr.ValidationWrap(err, "malformed request body"))
		return
	}

	workout, err := h.service.Update(ctx, userID, workoutID, req)
	if err != nil {
		apperr.WriteError(w, r, err)
		return
	}

	pkg.WriteJSONResponse(w, workout, http.StatusOK)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.delete")
	defer span.End()

	userID, workoutID, ok := caller(w, r, true)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, userID, workoutID); err != nil {
		apperr.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleAddEntry(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.addentry")
	defer span.End()

	userID, workoutID, ok := caller(w, r, true)
	if !ok {
		return
	}

	var req CreateEntryRequest
	if err := pkg.DecodeJSONBody(r, &req); err != nil {
		apperr.WriteError(w, r, apperr.ValidationWrap(err, "malformed request body"))
		return
	}

	entry, err := h.service.AddEntry(ctx, userID, workoutID, req)
	if err != nil {
		apperr.WriteError(w, r, err)
		return
	}

	pkg.WriteJSONResponse(w, entry, http.StatusCreated)
}

func (h *Handler) HandleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.updateentry")
	defer span.End()

	userID, workoutID, ok := caller(w, r, true)
	if !ok {
		return
	}
	entryID, err := pkg.PathIntParam(r, "entryId")
	if err != nil {
		apperr.WriteError(w, r, apperr.ValidationWrap(err, "bad entry id"))
		return
	}

	var req UpdateEntryRequest
	if err := pkg.DecodeJSONBody(r, &req); err != nil {
		apperr.WriteError(w, r, apperr.ValidationWrap(err, "malformed request body"))
		return
	}

	entry, err := h.service.UpdateEntry(ctx, userID, workoutID, entryID, req)
	if err != nil {
		apperr.WriteError(w, r, err)
		return
	}

	pkg.WriteJSONResponse(w, entry, http.StatusOK)
}

func (h *Handler) HandleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.deleteentry")
	defer span.End()

	userID, workoutID, ok := caller(w, r, true)
	if !ok {
		return
	}
	entryID, err := pkg.PathIntParam(r, "entryId")
	if err != nil {
		apperr.WriteError(w, r, apperr.ValidationWrap(err, "bad entry id"))
		return
	}

	if err := h.service.DeleteEntry(ctx, userID, workoutID, entryID); err != nil {
		apperr.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
