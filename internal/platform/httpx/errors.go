package httpx

import (
	"errors"
	"net/http"

	"github.com/HttpsPratik/new-life/internal/shared"
)

// RespondError maps domain errors onto the response envelope. Unknown
// errors are reported as a bare 500 so internals never leak to callers.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Fail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, shared.ErrNoAccount),
		errors.Is(err, shared.ErrValidation),
		errors.Is(err, shared.ErrDuplicate),
		errors.Is(err, shared.ErrInvalidCredentials),
		errors.Is(err, shared.ErrUnverified),
		errors.Is(err, shared.ErrInactive),
		errors.Is(err, shared.ErrInvalidToken),
		errors.Is(err, shared.ErrExpiredToken),
		errors.Is(err, shared.ErrUsedToken),
		errors.Is(err, shared.ErrIncorrectPassword):
		Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shared.ErrForbidden):
		Fail(w, http.StatusForbidden, err.Error())
	case errors.Is(err, shared.ErrUnauthorized):
		Fail(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, shared.ErrMailDispatch):
		Fail(w, http.StatusInternalServerError, err.Error())
	default:
		Fail(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}
