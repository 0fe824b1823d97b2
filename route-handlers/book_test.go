package routehandlers_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreybb/locallibrary/models"
	rh "github.com/coreybb/locallibrary/route-handlers"
	"github.com/coreybb/locallibrary/webutil"
)

type fakeBookStore struct {
	books      map[int64]models.Book
	lastFilter models.BookFilter
	lastPage   models.Page
	nextID     int64
}

func (s *fakeBookStore) GetBooks(_ context.Context, filter models.BookFilter, page models.Page) ([]models.Book, int, error) {
	s.lastFilter, s.lastPage = filter, page
	var out []models.Book
	for _, b := range s.books {
		if filter.Title == "" || strings.Contains(strings.ToLower(b.Title), strings.ToLower(filter.Title)) {
			out = append(out, b)
		}
	}
	return out, len(out), nil
}

func (s *fakeBookStore) GetBookByID(_ context.Context, bookID int64) (*models.Book, error) {
	b, ok := s.books[bookID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &b, nil
}

func (s *fakeBookStore) CreateBook(_ context.Context, book *models.Book, authorIDs, _ []int64) error {
	for _, id := range authorIDs {
		if id != 7 {
			return models.NewValidationError("authors", "references a record that does not exist")
		}
	}
	s.nextID++
	book.ID = s.nextID
	book.Authors = []models.Author{{ID: 7, FirstName: "Ursula", LastName: "Le Guin"}}
	s.books[book.ID] = *book
	return nil
}

func (s *fakeBookStore) UpdateBook(_ context.Context, book *models.Book, _, _ []int64) error {
	if _, ok := s.books[book.ID]; !ok {
		return models.ErrNotFound
	}
	s.books[book.ID] = *book
	return nil
}

func (s *fakeBookStore) DeleteBook(_ context.Context, bookID int64) error {
	if _, ok := s.books[bookID]; !ok {
		return models.ErrNotFound
	}
	delete(s.books, bookID)
	return nil
}

func newBookFixture() *fakeBookStore {
	return &fakeBookStore{
		nextID: 10,
		books: map[int64]models.Book{
			1: {
				ID: 1, Title: "The Dispossessed", Summary: "An ambiguous utopia.", ISBN: "9780061054884",
				Authors: []models.Author{{ID: 7, FirstName: "Ursula", LastName: "Le Guin"}},
				Genres:  []models.Genre{{ID: 3, Name: "Science Fiction"}},
			},
		},
	}
}

func newBookRouter(store *fakeBookStore, copies *fakeCopyStore) http.Handler {
	h := rh.NewBookHandler(store, copies)
	return newRouter(librarian, func(r chi.Router) {
		r.Get("/books", webutil.MakeHandler(h.HandleGetBooks))
		r.Post("/books", webutil.MakeHandler(h.HandleCreateBook))
		r.Get("/books/{id}", webutil.MakeHandler(h.HandleGetBook))
		r.Put("/books/{id}", webutil.MakeHandler(h.HandleUpdateBook))
		r.Delete("/books/{id}", webutil.MakeHandler(h.HandleDeleteBook))
	})
}

func Test_HandleGetBooks_PassesFilterAndPage(t *testing.T) {
	store := newBookFixture()
	router := newBookRouter(store, newCopyFixture())

	rec, body := do(t, router, http.MethodGet, "/books?genre=Mystery&title=dispos&page=2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, models.BookFilter{Genre: "Mystery", Title: "dispos"}, store.lastFilter)
	assert.Equal(t, 2, store.lastPage.Number)
	data := body["data"].([]any)
	require.Len(t, data, 1)
	book := data[0].(map[string]any)
	assert.Equal(t, "Le Guin", book["display_author"])
	assert.Equal(t, "Science Fiction", book["display_genre"])
	assert.Equal(t, "Ursula Le Guin", book["all_authors"])
}

func Test_HandleGetBook_IncludesCopies(t *testing.T) {
	router := newBookRouter(newBookFixture(), newCopyFixture())

	rec, body := do(t, router, http.MethodGet, "/books/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "The Dispossessed", body["title"])
	assert.Len(t, body["copies"], 2)

	rec, _ = do(t, router, http.MethodGet, "/books/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, router, http.MethodGet, "/books/abc", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_HandleCreateBook(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantCode   int
		wantFields []string
	}{
		{
			name:     "valid",
			body:     `{"title":"The Lathe of Heaven","summary":"Dreams change the world.","isbn":"9781416556961","author_ids":[7]}`,
			wantCode: http.StatusCreated,
		},
		{
			name:       "missing fields",
			body:       `{"title":" ","summary":"","isbn":"123"}`,
			wantCode:   http.StatusUnprocessableEntity,
			wantFields: []string{"title", "summary", "isbn"},
		},
		{
			name:       "duplicate authors",
			body:       `{"title":"T","summary":"S","isbn":"9781416556961","author_ids":[7,7]}`,
			wantCode:   http.StatusUnprocessableEntity,
			wantFields: []string{"author_ids"},
		},
		{
			name:       "unknown author",
			body:       `{"title":"T","summary":"S","isbn":"9781416556961","author_ids":[8]}`,
			wantCode:   http.StatusUnprocessableEntity,
			wantFields: []string{"authors"},
		},
		{
			name:     "unknown field",
			body:     `{"title":"T","pages":300}`,
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newBookRouter(newBookFixture(), newCopyFixture())

			rec, body := do(t, router, http.MethodPost, "/books", tt.body)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			for _, f := range tt.wantFields {
				assert.Contains(t, body["error"], f)
			}
			if tt.wantCode == http.StatusCreated {
				assert.Equal(t, float64(11), body["id"])
				assert.Equal(t, "Le Guin", body["display_author"])
			}
		})
	}
}

func Test_HandleUpdateAndDeleteBook(t *testing.T) {
	store := newBookFixture()
	router := newBookRouter(store, newCopyFixture())

	rec, body := do(t, router, http.MethodPut, "/books/1",
		`{"title":"The Dispossessed (2nd ed.)","summary":"An ambiguous utopia.","isbn":"9780061054884"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "The Dispossessed (2nd ed.)", body["title"])

	rec, _ = do(t, router, http.MethodDelete, "/books/1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotContains(t, store.books, int64(1))

	rec, _ = do(t, router, http.MethodDelete, "/books/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
