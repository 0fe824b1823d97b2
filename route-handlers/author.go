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

type AuthorStore interface {
	GetAuthors(ctx context.Context, page models.Page) ([]models.Author, int, error)
	GetAuthorByID(ctx context.Context, authorID int64) (*models.Author, error)
	CreateAuthor(ctx context.Context, author *models.Author) error
	UpdateAuthor(ctx context.Context, author *models.Author) error
	DeleteAuthor(ctx context.Context, authorID int64) error
}

// AuthorBookLister lists the books linked to an author.
type AuthorBookLister interface {
	GetBooksByAuthorID(ctx context.Context, authorID int64) ([]models.Book, error)
}

type AuthorHandler struct {
	Repo  AuthorStore
	Books AuthorBookLister
}

func NewAuthorHandler(repo AuthorStore, books AuthorBookLister) *AuthorHandler {
	return &AuthorHandler{Repo: repo, Books: books}
}

type authorRequest struct {
	FirstName   string       `json:"first_name"`
	LastName    string       `json:"last_name"`
	DateOfBirth *models.Date `json:"date_of_birth"`
	DateOfDeath *models.Date `json:"date_of_death"`
}

func (req authorRequest) toModel() (models.Author, error) {
	author := models.Author{
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		DateOfBirth: req.DateOfBirth,
		DateOfDeath: req.DateOfDeath,
	}

	v := validator.New()
	for field, value := range map[string]string{"first_name": author.FirstName, "last_name": author.LastName} {
		v.Check(validator.NotBlank(value), field, "must be provided")
		v.Check(validator.MaxChars(value, maxPersonNameChars), field, fmt.Sprintf("must not be more than %d characters", maxPersonNameChars))
	}
	if author.DateOfBirth != nil && author.DateOfDeath != nil {
		v.Check(!author.DateOfDeath.Before(*author.DateOfBirth), "date_of_death", "must not be before date_of_birth")
	}
	return author, v.Err()
}

type authorResponse struct {
	models.Author
	Display string `json:"display"`
}

type authorDetailResponse struct {
	authorResponse
	Books []bookResponse `json:"books"`
}

func newAuthorResponse(a models.Author) authorResponse {
	return authorResponse{Author: a, Display: a.String()}
}

func (h *AuthorHandler) HandleGetAuthors(w http.ResponseWriter, r *http.Request) error {
	page := webutil.ReadPage(r)
	authors, total, err := h.Repo.GetAuthors(r.Context(), page)
	if err != nil {
		return fmt.Errorf("failed to retrieve authors: %w", err)
	}

	out := make([]authorResponse, 0, len(authors))
	for _, a := range authors {
		out = append(out, newAuthorResponse(a))
	}
	webutil.RespondWithList(w, out, models.CalculateMetadata(total, page))
	return nil
}

// HandleGetAuthor returns the author with the books they wrote.
func (h *AuthorHandler) HandleGetAuthor(w http.ResponseWriter, r *http.Request) error {
	authorID, err := webutil.ParseInt64Param(r, paramID)
	if err != nil {
		return err
	}

	author, err := h.Repo.GetAuthorByID(r.Context(), authorID)
	if err != nil {
		return fmt.Errorf("failed to retrieve author %d: %w", authorID, err)
	}
	books, err := h.Books.GetBooksByAuthorID(r.Context(), authorID)
	if err != nil {
		return fmt.Errorf("failed to retrieve books of author %d: %w", authorID, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, authorDetailResponse{
		authorResponse: newAuthorResponse(*author),
		Books:          newBookResponses(books),
	})
	return nil
}

func (h *AuthorHandler) HandleCreateAuthor(w http.ResponseWriter, r *http.Request) error {
	var req authorRequest
	if err := webutil.DecodeJSON(w, r, &req); err != nil {
		return err
	}
	author, err := req.toModel()
	if err != nil {
		return err
	}

	if err := h.Repo.CreateAuthor(r.Context(), &author); err != nil {
		return fmt.Errorf("failed to create author: %w", err)
	}
	webutil.RespondWithJSON(w, http.StatusCreated, newAuthorResponse(author))
	return nil
}

func (h *AuthorHandler) HandleUpdateAuthor(w http.ResponseWriter, r *http.Request) error {
	authorID, err := webutil.ParseInt64Param(r, paramID)
	if err != nil {
		return err
	}

	var req authorRequest
	if err := webutil.DecodeJSON(w, r, &req); err != nil {
		return err
	}
	author, err := req.toModel()
	if err != nil {
		return err
	}
	author.ID = authorID

	if err := h.Repo.UpdateAuthor(r.Context(), &author); err != nil {
		return fmt.Errorf("failed to update author %d: %w", authorID, err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, newAuthorResponse(author))
	return nil
}

func (h *AuthorHandler) HandleDeleteAuthor(w http.ResponseWriter, r *http.Request) error {
	authorID, err := webutil.ParseInt64Param(r, paramID)
	if err != nil {
		return err
	}
	if err := h.Repo.DeleteAuthor(r.Context(), authorID); err != nil {
		return fmt.Errorf("failed to delete author %d: %w", authorID, err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
