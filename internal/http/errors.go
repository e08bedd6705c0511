package api

import (
	"database/sql"
	"errors"
	"net/http"

	"pollboard/internal/domain/poll"
	"pollboard/internal/domain/user"
	"pollboard/internal/domain/vote"
	"pollboard/internal/platform/apperr"
)

func errorResponse(w http.ResponseWriter, err error) {
	appErr := mapError(err)
	writeJSON(w, appErr.StatusCode(), map[string]string{
		"error":   appErr.Code,
		"message": appErr.Message,
	})
}

// mapError is the single table deciding status and message policy per
// error kind. Auth failures keep a generic message; poll and vote
// failures pass the domain error text through.
func mapError(err error) *apperr.AppError {
	if err == nil {
		return apperr.Internal("internal_error", "internal server error", nil)
	}

	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return apperr.NotFound("not_found", "resource not found", err)
	case errors.Is(err, user.ErrInvalidCredentials):
		return apperr.Unauthorized("invalid_credentials", user.ErrInvalidCredentials.Error(), err)
	case errors.Is(err, user.ErrEmailTaken):
		return apperr.BadRequest("email_taken", err.Error(), err)
	case errors.Is(err, user.ErrInvalidEmail):
		return apperr.BadRequest("invalid_email", err.Error(), err)
	case errors.Is(err, user.ErrWeakPassword):
		return apperr.BadRequest("weak_password", err.Error(), err)
	case errors.Is(err, poll.ErrOwnerRequired):
		return apperr.Unauthorized("auth_required", "authentication required", err)
	case errors.Is(err, poll.ErrNotOwner):
		return apperr.Forbidden("not_owner", err.Error(), err)
	case errors.Is(err, poll.ErrPollNotFound), errors.Is(err, vote.ErrPollNotFound):
		return apperr.NotFound("poll_not_found", "poll not found", err)
	case errors.Is(err, poll.ErrQuestionRequired),
		errors.Is(err, poll.ErrQuestionTooLong),
		errors.Is(err, poll.ErrTooFewOptions),
		errors.Is(err, poll.ErrTooManyOptions),
		errors.Is(err, poll.ErrOptionTooLong):
		return apperr.BadRequest("invalid_input", err.Error(), err)
	case errors.Is(err, vote.ErrOptionOutOfRange), errors.Is(err, vote.ErrNoVoterIdentifier):
		return apperr.BadRequest("invalid_input", err.Error(), err)
	case errors.Is(err, vote.ErrAlreadyVoted):
		return apperr.Conflict("already_voted", err.Error(), err)
	default:
		return apperr.Internal("internal_error", http.StatusText(http.StatusInternalServerError), err)
	}
}
