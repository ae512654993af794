package api

import (
	"errors"
	"net/http"

	"github.com/dgallion1/readcomp/internal/article"
	"github.com/dgallion1/readcomp/internal/panel"
	"github.com/dgallion1/readcomp/internal/session"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrClosed):
		return http.StatusNotFound
	case errors.Is(err, session.ErrLimit):
		return http.StatusServiceUnavailable
	case errors.Is(err, session.ErrBadEvent):
		return http.StatusBadRequest
	case errors.Is(err, article.ErrUnsupported):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, panel.ErrNoMount):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		s.log.Error("request failed", "path", r.URL.Path, "error", err)
	}
	jsonError(w, err.Error(), code)
}
