package routehandlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/coreybb/locallibrary/models"
	"github.com/coreybb/locallibrary/webutil"
)

// CatalogCounter reports the record counts shown on the home page.
type CatalogCounter interface {
	CountBooks(ctx context.Context) (int, error)
	CountBooksByGenreName(ctx context.Context, name string) (int, error)
	CountBookCopies(ctx context.Context) (int, error)
	CountBookCopiesByStatus(ctx context.Context, status models.CopyStatus) (int, error)
	CountAuthors(ctx context.Context) (int, error)
	CountGenres(ctx context.Context) (int, error)
}

type VisitRecorder interface {
	RecordVisit(ctx context.Context, key string) (int, error)
}

type IndexHandler struct {
	Counts     CatalogCounter
	Sessions   VisitRecorder
	HomeGenres []string
}

func NewIndexHandler(counts CatalogCounter, sessions VisitRecorder, homeGenres []string) *IndexHandler {
	return &IndexHandler{Counts: counts, Sessions: sessions, HomeGenres: homeGenres}
}

type indexResponse struct {
	NumBooks              int            `json:"num_books"`
	NumInstances          int            `json:"num_instances"`
	NumInstancesAvailable int            `json:"num_instances_available"`
	NumAuthors            int            `json:"num_authors"`
	NumGenres             int            `json:"num_genres"`
	GenreBookCounts       map[string]int `json:"genre_book_counts"`
	NumVisits             int            `json:"num_visits"`
}

// HandleIndex reports catalog counts and how many times this visitor has
// been here before.
func (h *IndexHandler) HandleIndex(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	resp := indexResponse{GenreBookCounts: make(map[string]int, len(h.HomeGenres))}

	var err error
	if resp.NumBooks, err = h.Counts.CountBooks(ctx); err != nil {
		return fmt.Errorf("failed to count books: %w", err)
	}
	if resp.NumInstances, err = h.Counts.CountBookCopies(ctx); err != nil {
		return fmt.Errorf("failed to count copies: %w", err)
	}
	if resp.NumInstancesAvailable, err = h.Counts.CountBookCopiesByStatus(ctx, models.CopyStatusAvailable); err != nil {
		return fmt.Errorf("failed to count available copies: %w", err)
	}
	if resp.NumAuthors, err = h.Counts.CountAuthors(ctx); err != nil {
		return fmt.Errorf("failed to count authors: %w", err)
	}
	if resp.NumGenres, err = h.Counts.CountGenres(ctx); err != nil {
		return fmt.Errorf("failed to count genres: %w", err)
	}
	for _, genre := range h.HomeGenres {
		n, err := h.Counts.CountBooksByGenreName(ctx, genre)
		if err != nil {
			return fmt.Errorf("failed to count books in genre %q: %w", genre, err)
		}
		resp.GenreBookCounts[genre] = n
	}

	key := sessionKey(w, r)
	if resp.NumVisits, err = h.Sessions.RecordVisit(ctx, key); err != nil {
		return fmt.Errorf("failed to record visit: %w", err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, resp)
	return nil
}

// sessionKey returns the visitor's session key, issuing a new cookie when
// the request has none or a malformed one.
func sessionKey(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(webutil.SessionCookieName); err == nil {
		if id, err := uuid.Parse(cookie.Value); err == nil {
			return id.String()
		}
	}

	key := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     webutil.SessionCookieName,
		Value:    key,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return key
}
