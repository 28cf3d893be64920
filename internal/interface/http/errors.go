package handlers

import (
	"errors"
	"net/http"

	userapp "github.com/oksasatya/go-user-accounts/internal/application"
)

// errStatus maps a service error to the HTTP status the transport layer
// exposes. Unknown errors become an opaque 500.
func errStatus(err error) (int, string) {
	switch {
	case errors.Is(err, userapp.ErrConflict):
		return http.StatusConflict, err.Error()
	case errors.Is(err, userapp.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, userapp.ErrInvalidCredentials),
		errors.Is(err, userapp.ErrAccountInactive):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, userapp.ErrForbidden):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, userapp.ErrInvalidToken),
		errors.Is(err, userapp.ErrInvalidPassword),
		errors.Is(err, userapp.ErrBadRequest):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
