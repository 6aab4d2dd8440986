package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/coursehub/internal/catalog/domain"
	"github.com/aussiebroadwan/coursehub/pkg/slogx"
)

const (
	msgInternal  = "Something went wrong. Please try again."
	msgForbidden = "Access Denied."
	msgNotFound  = "Course not found."
)

// statusFor maps domain errors onto HTTP statuses. Anything unknown is a
// storage or programming fault.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders the generic error page for err. Internal errors are
// logged and never shown.
func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	var msg string
	switch status {
	case http.StatusForbidden:
		msg = msgForbidden
	case http.StatusNotFound:
		msg = msgNotFound
	case http.StatusInternalServerError:
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("err", err))
		msg = msgInternal
	default:
		msg = err.Error()
	}
	rt.views.Error(w, r, status, msg)
}
