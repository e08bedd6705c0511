package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"pollboard/internal/metrics"
	"pollboard/internal/platform/apperr"
	"pollboard/internal/worker"
)

const anonCookieName = "voter_token"

type voteRequest struct {
	OptionIndex *int `json:"option_index"`
}

// @Summary     Vote for an option
// @Tags        votes
// @Accept      json
// @Param       id       path      int64        true  "Poll ID"
// @Param       request  body      voteRequest  true  "Zero-based option index"
// @Success     204
// @Failure     400      {object}  map[string]string  "invalid body or option index"
// @Failure     404      {object}  map[string]string  "poll not found"
// @Failure     409      {object}  map[string]string  "already voted"
// @Router      /api/v1/polls/{id}/vote [post]
func (h *Handler) handleVote(w http.ResponseWriter, r *http.Request) {
	pollID, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid poll id", err))
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}
	if req.OptionIndex == nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "option_index is required", nil))
		return
	}

	var voterID *int64
	var anonToken *string
	if id := userIDFromCtx(r); id != 0 {
		voterID = &id
	} else {
		token := h.anonVoterToken(w, r)
		anonToken = &token
	}

	if err := h.voteSvc.Submit(r.Context(), pollID, *req.OptionIndex, voterID, anonToken); err != nil {
		errorResponse(w, err)
		return
	}

	metrics.IncVote()

	select {
	case h.voteCh <- worker.VoteEvent{PollID: pollID, OptionIndex: *req.OptionIndex}:
	default:
	}

	w.WriteHeader(http.StatusNoContent)
}

// anonVoterToken returns the client's anonymous voter token, minting a
// new one and setting the cookie when the client has none. The token only
// serves duplicate-vote detection; the vote row keeps a NULL voter id.
func (h *Handler) anonVoterToken(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	token := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     anonCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(365 * 24 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return token
}

func (h *Handler) handlePollResults(w http.ResponseWriter, r *http.Request) {
	pollID, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid poll id", err))
		return
	}

	res, total, err := h.voteSvc.Results(r.Context(), pollID)
	if err != nil {
		errorResponse(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"poll_id":     pollID,
		"total_votes": total,
		"options":     res,
	})
}
