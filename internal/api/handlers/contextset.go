package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Harshitk-cp/coref/internal/domain"
	"github.com/Harshitk-cp/coref/internal/service"
)

type ContextSetHandler struct {
	svc *service.BeliefService
}

func NewContextSetHandler(svc *service.BeliefService) *ContextSetHandler {
	return &ContextSetHandler{svc: svc}
}

type contextSetResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Entities  int         `json:"entities"`
	Spec      domain.Spec `json:"spec"`
	CreatedAt string      `json:"created_at"`
}

func contextSetView(cs *domain.ContextSet) contextSetResponse {
	return contextSetResponse{
		ID:        cs.ID.String(),
		Name:      cs.Name,
		Entities:  cs.Len(),
		Spec:      cs.Spec,
		CreatedAt: cs.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (h *ContextSetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var spec domain.Spec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cs, err := h.svc.CreateContextSet(r.Context(), spec)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSpec) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create context set")
		return
	}

	writeJSON(w, http.StatusCreated, contextSetView(cs))
}

func (h *ContextSetHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid context set id")
		return
	}

	cs, err := h.svc.GetContextSet(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrContextSetNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get context set")
		return
	}

	writeJSON(w, http.StatusOK, contextSetView(cs))
}

type listContextSetsResponse struct {
	ContextSets []domain.ContextSetSummary `json:"context_sets"`
	Count       int                        `json:"count"`
}

func (h *ContextSetHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		limit = n
	}

	summaries, err := h.svc.ListContextSets(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list context sets")
		return
	}
	if summaries == nil {
		summaries = []domain.ContextSetSummary{}
	}

	writeJSON(w, http.StatusOK, listContextSetsResponse{
		ContextSets: summaries,
		Count:       len(summaries),
	})
}

func (h *ContextSetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid context set id")
		return
	}

	if err := h.svc.DeleteContextSet(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrContextSetNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete context set")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
