package webutil

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/coreybb/locallibrary/models"
)

const maxRequestBodyBytes = 1 << 20

// DecodeJSON reads a single JSON object from the request body into dst.
// Unknown fields, trailing data, and oversized bodies are rejected.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return ErrBadRequest("Request body must not be empty")
		case errors.As(err, &maxBytesErr):
			return ErrBadRequest(fmt.Sprintf("Request body must not be larger than %d bytes", maxBytesErr.Limit))
		default:
			return ErrBadRequestWrap("Invalid request body", err)
		}
	}

	if dec.More() {
		return ErrBadRequest("Request body must only contain a single JSON value")
	}
	return nil
}

// ReadPage parses ?page=N. Missing or non-numeric values select page 1.
func ReadPage(r *http.Request) models.Page {
	n, err := strconv.Atoi(r.URL.Query().Get(QueryParamPage))
	if err != nil {
		n = 1
	}
	return models.NewPage(n)
}

// ParseInt64Param reads a numeric URL parameter. A malformed value cannot
// name an existing record, so it is reported as not found.
func ParseInt64Param(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrNotFound("")
	}
	return id, nil
}

// ParseUUIDParam reads a UUID URL parameter and returns its canonical form.
func ParseUUIDParam(r *http.Request, name string) (string, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return "", ErrNotFound("")
	}
	return id.String(), nil
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get(HeaderAuthorization)
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}
