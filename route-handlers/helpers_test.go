package routehandlers_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"

	"github.com/coreybb/locallibrary/auth"
	"github.com/coreybb/locallibrary/models"
)

var fixedNow = time.Date(2026, time.October, 15, 14, 0, 0, 0, time.UTC)

var (
	librarian = &auth.Actor{ID: "0b7e5a8e-3c4d-4f1a-9e2b-6d8c7f5a4b3c", Username: "librarian", Capabilities: []string{auth.CapMarkReturned}}
	borrower  = &auth.Actor{ID: "6f1c1f7e-9a4b-4c43-8b0e-3f2d1a5e7c90", Username: "reader"}
)

func today() models.Date {
	return models.DateOf(fixedNow)
}

// newRouter mounts routes on a chi router that authenticates every request
// as actor.
func newRouter(actor *auth.Actor, mount func(r chi.Router)) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if actor != nil {
				req = req.WithContext(auth.WithActor(req.Context(), actor))
			}
			next.ServeHTTP(w, req)
		})
	})
	mount(r)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, jsoniter.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	}
	return rec, decoded
}

type fakeCopyStore struct {
	copies map[string]models.BookCopy
}

func newFakeCopyStore(copies ...models.BookCopy) *fakeCopyStore {
	s := &fakeCopyStore{copies: make(map[string]models.BookCopy)}
	for _, c := range copies {
		s.copies[c.ID] = c
	}
	return s
}

func (s *fakeCopyStore) CreateBookCopy(_ context.Context, c *models.BookCopy) error {
	c.ID = "9d2f3c4b-5a6e-4f70-8a91-b2c3d4e5f607"
	s.copies[c.ID] = *c
	return nil
}

func (s *fakeCopyStore) GetBookCopyByID(_ context.Context, copyID string) (*models.BookCopy, error) {
	c, ok := s.copies[copyID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &c, nil
}

func (s *fakeCopyStore) DeleteBookCopy(_ context.Context, copyID string) error {
	if _, ok := s.copies[copyID]; !ok {
		return models.ErrNotFound
	}
	delete(s.copies, copyID)
	return nil
}

func (s *fakeCopyStore) GetCopiesByBookID(_ context.Context, bookID int64) ([]models.BookCopy, error) {
	var out []models.BookCopy
	for _, c := range s.copies {
		if c.BookID != nil && *c.BookID == bookID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeCopyStore) UpdateBookCopyDueBack(_ context.Context, copyID string, dueBack models.Date) error {
	c := s.copies[copyID]
	c.DueBack = &dueBack
	s.copies[copyID] = c
	return nil
}

func (s *fakeCopyStore) UpdateBookCopyLoanState(_ context.Context, c *models.BookCopy) error {
	s.copies[c.ID] = *c
	return nil
}

func (s *fakeCopyStore) ListOnLoanCopies(_ context.Context, borrowerID *string, page models.Page) ([]models.BookCopy, int, error) {
	var out []models.BookCopy
	for _, c := range s.copies {
		if c.Status != models.CopyStatusOnLoan {
			continue
		}
		if borrowerID != nil && (c.BorrowerID == nil || *c.BorrowerID != *borrowerID) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueBack.Before(*out[j].DueBack) })
	return out, len(out), nil
}

func ptr[T any](v T) *T {
	return &v
}
