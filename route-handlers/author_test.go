package routehandlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreybb/locallibrary/models"
	rh "github.com/coreybb/locallibrary/route-handlers"
	"github.com/coreybb/locallibrary/webutil"
)

type fakeAuthorStore struct {
	authors map[int64]models.Author
}

func (s *fakeAuthorStore) GetAuthors(_ context.Context, page models.Page) ([]models.Author, int, error) {
	out := make([]models.Author, 0, len(s.authors))
	for _, a := range s.authors {
		out = append(out, a)
	}
	return out, len(out), nil
}

func (s *fakeAuthorStore) GetAuthorByID(_ context.Context, authorID int64) (*models.Author, error) {
	a, ok := s.authors[authorID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &a, nil
}

func (s *fakeAuthorStore) CreateAuthor(_ context.Context, author *models.Author) error {
	author.ID = int64(len(s.authors) + 1)
	s.authors[author.ID] = *author
	return nil
}

func (s *fakeAuthorStore) UpdateAuthor(_ context.Context, author *models.Author) error {
	if _, ok := s.authors[author.ID]; !ok {
		return models.ErrNotFound
	}
	s.authors[author.ID] = *author
	return nil
}

func (s *fakeAuthorStore) DeleteAuthor(_ context.Context, authorID int64) error {
	if _, ok := s.authors[authorID]; !ok {
		return models.ErrNotFound
	}
	delete(s.authors, authorID)
	return nil
}

type fakeAuthorBooks struct{}

func (fakeAuthorBooks) GetBooksByAuthorID(_ context.Context, authorID int64) ([]models.Book, error) {
	if authorID != 1 {
		return []models.Book{}, nil
	}
	return []models.Book{{ID: 1, Title: "The Dispossessed"}}, nil
}

func newAuthorRouter(store *fakeAuthorStore) http.Handler {
	h := rh.NewAuthorHandler(store, fakeAuthorBooks{})
	return newRouter(librarian, func(r chi.Router) {
		r.Get("/authors", webutil.MakeHandler(h.HandleGetAuthors))
		r.Post("/authors", webutil.MakeHandler(h.HandleCreateAuthor))
		r.Get("/authors/{id}", webutil.MakeHandler(h.HandleGetAuthor))
		r.Put("/authors/{id}", webutil.MakeHandler(h.HandleUpdateAuthor))
		r.Delete("/authors/{id}", webutil.MakeHandler(h.HandleDeleteAuthor))
	})
}

func Test_AuthorHandlers(t *testing.T) {
	store := &fakeAuthorStore{authors: map[int64]models.Author{
		1: {ID: 1, FirstName: "Ursula", LastName: "Le Guin"},
	}}
	router := newAuthorRouter(store)

	rec, body := do(t, router, http.MethodGet, "/authors/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Le Guin, Ursula", body["display"])
	assert.Len(t, body["books"], 1)

	rec, body = do(t, router, http.MethodGet, "/authors", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["data"], 1)

	rec, body = do(t, router, http.MethodPost, "/authors",
		`{"first_name":"Italo","last_name":"Calvino","date_of_birth":"1923-10-15","date_of_death":"1985-09-19"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "1923-10-15", body["date_of_birth"])

	rec, body = do(t, router, http.MethodPut, "/authors/2",
		`{"first_name":"Italo","last_name":"Calvino","date_of_birth":"1985-09-19","date_of_death":"1923-10-15"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, body["error"], "date_of_death")

	rec, _ = do(t, router, http.MethodDelete, "/authors/2", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = do(t, router, http.MethodPut, "/authors/2", `{"first_name":"A","last_name":"B"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type fakeGenreStore struct {
	genres map[int64]models.Genre
}

func (s *fakeGenreStore) GetGenres(context.Context) ([]models.Genre, error) {
	out := make([]models.Genre, 0, len(s.genres))
	for _, g := range s.genres {
		out = append(out, g)
	}
	return out, nil
}

func (s *fakeGenreStore) CreateGenre(_ context.Context, genre *models.Genre) error {
	genre.ID = int64(len(s.genres) + 1)
	s.genres[genre.ID] = *genre
	return nil
}

func (s *fakeGenreStore) DeleteGenre(_ context.Context, genreID int64) error {
	if _, ok := s.genres[genreID]; !ok {
		return models.ErrNotFound
	}
	delete(s.genres, genreID)
	return nil
}

func Test_GenreHandlers(t *testing.T) {
	store := &fakeGenreStore{genres: map[int64]models.Genre{}}
	h := rh.NewGenreHandler(store)
	router := newRouter(librarian, func(r chi.Router) {
		r.Get("/genres", webutil.MakeHandler(h.HandleGetGenres))
		r.Post("/genres", webutil.MakeHandler(h.HandleCreateGenre))
		r.Delete("/genres/{id}", webutil.MakeHandler(h.HandleDeleteGenre))
	})

	rec, body := do(t, router, http.MethodPost, "/genres", `{"name":"  Mystery "}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Mystery", body["name"])

	rec, body = do(t, router, http.MethodPost, "/genres", `{"name":""}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, body["error"], "name")

	rec, _ = do(t, router, http.MethodDelete, "/genres/1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, store.genres)

	rec, _ = do(t, router, http.MethodDelete, "/genres/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
