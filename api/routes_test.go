package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coreybb/locallibrary/api"
	"github.com/coreybb/locallibrary/auth"
	rh "github.com/coreybb/locallibrary/route-handlers"
)

// Gated routes must reject before reaching their handlers, so nil handler
// dependencies are never touched in these cases.
func Test_SetupRoutes_Gating(t *testing.T) {
	router := api.SetupRoutes(api.Handlers{
		Index:     &rh.IndexHandler{},
		Auth:      &rh.AuthHandler{},
		Books:     &rh.BookHandler{},
		Authors:   &rh.AuthorHandler{},
		Genres:    &rh.GenreHandler{},
		Languages: &rh.LanguageHandler{},
		Copies:    &rh.BookCopyHandler{},
	}, api.Options{
		Tokens: tokens,
		Policy: auth.NewCapabilityPolicy(),
	})
	api.MountScheduler(router, nil, "tick-secret")

	copyPath := "/api/copies/6f1c1f7e-9a4b-4c43-8b0e-3f2d1a5e7c90"
	tests := []struct {
		name     string
		method   string
		path     string
		user     bool
		wantCode int
	}{
		{"health", http.MethodGet, "/healthz", false, http.StatusOK},
		{"create book anonymously", http.MethodPost, "/api/books", false, http.StatusUnauthorized},
		{"create book as borrower", http.MethodPost, "/api/books", true, http.StatusForbidden},
		{"update author as borrower", http.MethodPut, "/api/authors/1", true, http.StatusForbidden},
		{"delete genre as borrower", http.MethodDelete, "/api/genres/1", true, http.StatusForbidden},
		{"delete language anonymously", http.MethodDelete, "/api/languages/1", false, http.StatusUnauthorized},
		{"renew as borrower", http.MethodPost, copyPath + "/renew", true, http.StatusForbidden},
		{"propose renewal anonymously", http.MethodGet, copyPath + "/renew", false, http.StatusUnauthorized},
		{"return as borrower", http.MethodPost, copyPath + "/return", true, http.StatusForbidden},
		{"delete copy as borrower", http.MethodDelete, copyPath, true, http.StatusForbidden},
		{"all loans as borrower", http.MethodGet, "/api/copies/on-loan", true, http.StatusForbidden},
		{"own loans anonymously", http.MethodGet, "/api/copies/mine", false, http.StatusUnauthorized},
		{"me anonymously", http.MethodGet, "/api/users/me", false, http.StatusUnauthorized},
		{"delete user as borrower", http.MethodDelete, "/api/users/" + reader.ID, true, http.StatusForbidden},
		{"scheduler without secret", http.MethodPost, "/scheduler/tick", false, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.user {
				req.Header.Set("Authorization", bearer(t, reader))
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
