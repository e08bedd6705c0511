package api

import (
	"encoding/json"
	"net/http"

	"pollboard/internal/domain/poll"
	"pollboard/internal/platform/apperr"
)

type pollRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// @Summary     Create a poll
// @Tags        polls
// @Security    BearerAuth
// @Accept      json
// @Param       request  body      pollRequest  true  "Question and 2-10 options"
// @Success     201      {object}  map[string]int64
// @Failure     400      {object}  map[string]string  "validation failed"
// @Failure     401      {object}  map[string]string  "unauthorized"
// @Router      /api/v1/polls [post]
func (h *Handler) handleCreatePoll(w http.ResponseWriter, r *http.Request) {
	var req pollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}

	id, err := h.pollSvc.Create(r.Context(), userIDFromCtx(r), req.Question, req.Options)
	if err != nil {
		errorResponse(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) handleUpdatePoll(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid poll id", err))
		return
	}

	var req pollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}

	if err := h.pollSvc.Update(r.Context(), id, userIDFromCtx(r), req.Question, req.Options); err != nil {
		errorResponse(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary     Delete a poll
// @Tags        polls
// @Security    BearerAuth
// @Param       id   path  int64  true  "Poll ID"
// @Success     204
// @Failure     403  {object}  map[string]string  "not the owner"
// @Router      /api/v1/polls/{id} [delete]
func (h *Handler) handleDeletePoll(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid poll id", err))
		return
	}

	if err := h.pollSvc.Delete(r.Context(), id, userIDFromCtx(r)); err != nil {
		errorResponse(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetPoll(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid poll id", err))
		return
	}

	p, opts, err := h.pollSvc.Get(r.Context(), id)
	if err != nil {
		errorResponse(w, err)
		return
	}
	if opts == nil {
		opts = []poll.Option{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"poll":    p,
		"options": opts,
	})
}

func (h *Handler) handleMyPolls(w http.ResponseWriter, r *http.Request) {
	polls, err := h.pollSvc.ListByOwner(r.Context(), userIDFromCtx(r))
	if err != nil {
		errorResponse(w, err)
		return
	}
	if polls == nil {
		polls = []poll.Poll{}
	}
	writeJSON(w, http.StatusOK, polls)
}
