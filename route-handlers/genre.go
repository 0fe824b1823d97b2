package routehandlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/coreybb/locallibrary/models"
	"github.com/coreybb/locallibrary/validator"
	"github.com/coreybb/locallibrary/webutil"
)

type GenreStore interface {
	GetGenres(ctx context.Context) ([]models.Genre, error)
	CreateGenre(ctx context.Context, genre *models.Genre) error
	DeleteGenre(ctx context.Context, genreID int64) error
}

type GenreHandler struct {
	Repo GenreStore
}

func NewGenreHandler(repo GenreStore) *GenreHandler {
	return &GenreHandler{Repo: repo}
}

func (h *GenreHandler) HandleGetGenres(w http.ResponseWriter, r *http.Request) error {
	genres, err := h.Repo.GetGenres(r.Context())
	if err != nil {
		return fmt.Errorf("failed to retrieve genres: %w", err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, genres)
	return nil
}

func (h *GenreHandler) HandleCreateGenre(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := webutil.DecodeJSON(w, r, &req); err != nil {
		return err
	}

	genre := models.Genre{Name: strings.TrimSpace(req.Name)}
	if err := validateName(genre.Name); err != nil {
		return err
	}

	if err := h.Repo.CreateGenre(r.Context(), &genre); err != nil {
		return fmt.Errorf("failed to create genre %q: %w", genre.Name, err)
	}
	webutil.RespondWithJSON(w, http.StatusCreated, genre)
	return nil
}

func (h *GenreHandler) HandleDeleteGenre(w http.ResponseWriter, r *http.Request) error {
	genreID, err := webutil.ParseInt64Param(r, paramID)
	if err != nil {
		return err
	}
	if err := h.Repo.DeleteGenre(r.Context(), genreID); err != nil {
		return fmt.Errorf("failed to delete genre %d: %w", genreID, err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// validateName checks the name field shared by genres and languages.
func validateName(name string) error {
	v := validator.New()
	v.Check(validator.NotBlank(name), "name", "must be provided")
	v.Check(validator.MaxChars(name, maxNameChars), "name", fmt.Sprintf("must not be more than %d characters", maxNameChars))
	return v.Err()
}
