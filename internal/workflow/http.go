package workflow

import (
	"errors"
	"net/http"

	"github.com/amplio-agency/amplio/internal/platform/httpx"
)

// WriteProblem maps a transition error to its RFC7807 response. Denied,
// self-protection and illegal outcomes are distinct, stable kinds; store
// failures are reported generically with the detail kept to the logs.
func WriteProblem(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSelfProtection):
		httpx.Problem(w, http.StatusForbidden, "Self Protection", err.Error())
	case errors.Is(err, ErrDenied):
		httpx.Problem(w, http.StatusForbidden, "Denied", err.Error())
	case errors.Is(err, ErrIllegal):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Illegal Transition", err.Error())
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "")
	case errors.Is(err, ErrConflict):
		httpx.Problem(w, http.StatusConflict, "Conflict", "the entity changed concurrently, retry with fresh state")
	case errors.Is(err, ErrStore):
		httpx.Problem(w, http.StatusServiceUnavailable, "Store Unavailable", "")
	default:
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
