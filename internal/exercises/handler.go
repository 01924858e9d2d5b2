package exercises

import (
	"net/http"

	"github.com/2beens/fittrack/internal/apperr"
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

// SetupRoutes registers the catalog routes. Reads are public, see the auth middleware.
func (h *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/api/exercises", h.HandleList).Methods("GET", "OPTIONS").Name("list-exercises")
	router.HandleFunc("/api/exercises", h.HandleCreate).Methods("POST", "OPTIONS").Name("new-exercise")
	router.HandleFunc("/api/exercises/{id:[0-9]+}", h.HandleGet).Methods("GET", "OPTIONS").Name("get-exercise")
	router.HandleFunc("/api/exercises/{id:[0-9]+}", h.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-exercise")
	router.HandleFunc("/api/exercises/{id:[0-9]+}", h.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-exercise")
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.list")
	defer span.End()

	query := r.URL.Query()
	resp, err := h.service.List(ctx, ListParams{
		PageParams: pkg.ParsePageParams(query, DefaultPerPage),
		Category:   query.Get("category"),
	})
	if err != nil {
		apperr.WriteError(w, r, err)
		return
	}

	pkg.WriteJSONResponse(w, resp, http.StatusOK)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.get")
	defer span.End()

	id, err := pkg.PathIntParam(r, "id")
	if err != nil {
		apperr.WriteError(w, r, apperr.ValidationWrap(err, "bad exercise id"))
		return
	}

	e, err := h.service.Get(ctx, id)
	if err != nil {
		apperr.WriteError(w, r, err)
		return
	}

	pkg.WriteJSONResponse(w, e, http.StatusOK)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.create")
	defer span.End()

	var req CreateRequest
	if err := pkg.DecodeJSONBody(r, &req); err != nil {
		apperr.WriteError(w, r, apperr.ValidationWrap(err, "malformed request body"))
		return
	}

	e, err := h.service.Create(ctx, req)
	if err != nil {
		apperr.WriteError(w, r, err)
		return
	}

	pkg.WriteJSONResponse(w, e, http.StatusCreated)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.update")
	defer span.End()

	id, err := pkg.PathIntParam(r, "id")
	if err != nil {
		apperr.WriteError(w, r, apperr.ValidationWrap(err, "bad exercise id"))
		return
	}

	var req UpdateRequest
	if err := pkg.DecodeJSONBody(r, &req); err != nil {
		apperr.WriteError(w, r, apperr.ValidationWrap(err, "malformed request body"))
		return
	}

	e, err := h.service.Update(ctx, id, req)
	if err != nil {
		apperr.WriteError(w, r, err)
		return
	}

	pkg.WriteJSONResponse(w, e, http.StatusOK)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.delete")
	defer span.End()

	id, err := pkg.PathIntParam(r, "id")
	if err != nil {
		apperr.WriteError(w, r, apperr.ValidationWrap(err, "bad exercise id"))
		return
	}

	if err := h.service.Delete(ctx, id); err != nil {
		apperr.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
