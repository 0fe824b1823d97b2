package webutil

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/coreybb/locallibrary/models"
)

// AppHandler represents a handler function that returns an error.
type AppHandler func(w http.ResponseWriter, r *http.Request) error

// MakeHandler adapts an AppHandler to http.HandlerFunc. A returned error is
// logged and rendered as a JSON error response unless the handler already
// wrote its status line.
func MakeHandler(handler AppHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		err := handler(ww, r)
		if err == nil {
			return
		}

		httpErr := ToHTTPError(err)
		logLevel := slog.LevelWarn
		if httpErr.Code >= http.StatusInternalServerError {
			logLevel = slog.LevelError
		}
		slog.Log(r.Context(), logLevel, "Request failed",
			"code", httpErr.Code,
			"msg", httpErr.Message,
			"error", err,
			"path", r.URL.Path,
			"method", r.Method,
			"request_id", middleware.GetReqID(r.Context()),
		)

		if ww.Status() != 0 {
			slog.Warn("Handler returned error after writing response header",
				"path", r.URL.Path,
				"method", r.Method,
				"error", err,
			)
			return
		}

		if httpErr.Fields != nil {
			RespondWithJSON(ww, httpErr.Code, map[string]map[string]string{"error": httpErr.Fields})
			return
		}
		RespondWithError(ww, httpErr.Code, httpErr.Message)
	}
}

// ToHTTPError maps domain and storage errors to their HTTP representation.
func ToHTTPError(err error) *HTTPError {
	var (
		httpErr  *HTTPError
		dateErr  *models.InvalidDateError
		validErr *models.ValidationError
	)

	switch {
	case errors.As(err, &httpErr):
		return httpErr
	case errors.As(err, &dateErr):
		return ErrUnprocessableEntity(map[string]string{dateErr.Field: dateErr.Reason}, err)
	case errors.As(err, &validErr):
		return ErrUnprocessableEntity(validErr.Fields, err)
	case errors.Is(err, models.ErrNotFound), errors.Is(err, sql.ErrNoRows):
		return NewHTTPErrorWrap(http.StatusNotFound, msgNotFound, err)
	case errors.Is(err, models.ErrUnauthenticated):
		return NewHTTPErrorWrap(http.StatusUnauthorized, msgUnauthorized, err)
	case errors.Is(err, models.ErrPermissionDenied):
		return NewHTTPErrorWrap(http.StatusForbidden, msgForbidden, err)
	case errors.Is(err, models.ErrInvalidTransition):
		return NewHTTPErrorWrap(http.StatusConflict, err.Error(), err)
	default:
		return ErrInternalServerWrap("unhandled error", err)
	}
}
