package routehandlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/coreybb/locallibrary/models"
	"github.com/coreybb/locallibrary/webutil"
)

type LanguageStore interface {
	GetLanguages(ctx context.Context) ([]models.Language, error)
	CreateLanguage(ctx context.Context, language *models.Language) error
	DeleteLanguage(ctx context.Context, languageID int64) error
}

type LanguageHandler struct {
	Repo LanguageStore
}

func NewLanguageHandler(repo LanguageStore) *LanguageHandler {
	return &LanguageHandler{Repo: repo}
}

func (h *LanguageHandler) HandleGetLanguages(w http.ResponseWriter, r *http.Request) error {
	languages, err := h.Repo.GetLanguages(r.Context())
	if err != nil {
		return fmt.Errorf("failed to retrieve languages: %w", err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, languages)
	return nil
}

func (h *LanguageHandler) HandleCreateLanguage(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := webutil.DecodeJSON(w, r, &req); err != nil {
		return err
	}

	language := models.Language{Name: strings.TrimSpace(req.Name)}
	if err := validateName(language.Name); err != nil {
		return err
	}

	if err := h.Repo.CreateLanguage(r.Context(), &language); err != nil {
		return fmt.Errorf("failed to create language %q: %w", language.Name, err)
	}
	webutil.RespondWithJSON(w, http.StatusCreated, language)
	return nil
}

// HandleDeleteLanguage removes the language. Books written in it keep
// existing without a language.
func (h *LanguageHandler) HandleDeleteLanguage(w http.ResponseWriter, r *http.Request) error {
	languageID, err := webutil.ParseInt64Param(r, paramID)
	if err != nil {
		return err
	}
	if err := h.Repo.DeleteLanguage(r.Context(), languageID); err != nil {
		return fmt.Errorf("failed to delete language %d: %w", languageID, err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
