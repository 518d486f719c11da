package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Harshitk-cp/coref/internal/belief"
	"github.com/Harshitk-cp/coref/internal/cell"
	"github.com/Harshitk-cp/coref/internal/service"
	"github.com/Harshitk-cp/coref/internal/store"
)

type SessionHandler struct {
	svc *service.BeliefService
}

func NewSessionHandler(svc *service.BeliefService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

type createSessionRequest struct {
	ContextSetID string `json:"context_set_id"`
}

type sessionResponse struct {
	ID           string    `json:"id"`
	ContextSetID string    `json:"context_set_id"`
	PartOfSpeech string    `json:"part_of_speech,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	LastAccess   time.Time `json:"last_access"`
}

func sessionView(sess *store.Session) sessionResponse {
	return sessionResponse{
		ID:           sess.ID.String(),
		ContextSetID: sess.ContextSetID.String(),
		PartOfSpeech: sess.State.PartOfSpeech(),
		CreatedAt:    sess.CreatedAt,
		LastAccess:   sess.LastAccess,
	}
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	contextSetID, err := uuid.Parse(req.ContextSetID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid context_set_id")
		return
	}

	sess, err := h.svc.CreateSession(r.Context(), contextSetID)
	if err != nil {
		if errors.Is(err, service.ErrContextSetNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	writeJSON(w, http.StatusCreated, sessionView(sess))
}

func (h *SessionHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	sess, err := h.svc.GetSession(id)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get session")
		return
	}

	writeJSON(w, http.StatusOK, sessionView(sess))
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	if err := h.svc.DeleteSession(id); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type mergeRequest struct {
	Path  []string `json:"path"`
	Value any      `json:"value"`
	Op    string   `json:"op,omitempty"`
}

func (h *SessionHandler) Merge(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	var req mergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.Merge(id, req.Path, req.Value, belief.MergeOp(req.Op)); err != nil {
		writeMergeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeMergeError maps lattice and service errors onto HTTP statuses. A
// contradiction is a conflict with the session's accumulated beliefs, not a
// malformed request, so it gets its own status.
func writeMergeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cell.ErrContradiction):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, cell.ErrTypeMismatch),
		errors.Is(err, service.ErrEmptyMergePath),
		errors.Is(err, service.ErrInvalidMergeOp):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, cell.ErrPathNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "merge failed")
	}
}

type setEnvRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (h *SessionHandler) SetEnv(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	var req setEnvRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}

	if err := h.svc.SetEnv(id, req.Key, req.Value); err != nil {
		writeMergeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type sizeResponse struct {
	Size int64 `json:"size"`
}

func (h *SessionHandler) Size(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	size, err := h.svc.Size(id)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to compute size")
		return
	}

	writeJSON(w, http.StatusOK, sizeResponse{Size: size})
}

type referentsResponse struct {
	Referents [][]service.EntityView `json:"referents"`
	Count     int                    `json:"count"`
}

type tuplesResponse struct {
	Tuples [][]int `json:"tuples"`
	Count  int     `json:"count"`
}

func (h *SessionHandler) Referents(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		limit = n
	}

	if r.URL.Query().Get("tuples") == "true" {
		tuples, err := h.svc.ReferentTuples(id, limit)
		if err != nil {
			writeMergeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tuplesResponse{Tuples: tuples, Count: len(tuples)})
		return
	}

	refs, err := h.svc.Referents(id, limit)
	if err != nil {
		writeMergeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, referentsResponse{Referents: refs, Count: len(refs)})
}

func (h *SessionHandler) Fork(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	sess, err := h.svc.Fork(id)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fork session")
		return
	}

	writeJSON(w, http.StatusCreated, sessionView(sess))
}
