package datastore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/coreybb/locallibrary/models"
)

type LanguageRepository struct {
	db *sqlx.DB
}

func NewLanguageRepository(db *sqlx.DB) *LanguageRepository {
	return &LanguageRepository{db: db}
}

func (r *LanguageRepository) GetLanguages(ctx context.Context) ([]models.Language, error) {
	languages := []models.Language{}
	if err := r.db.SelectContext(ctx, &languages, `SELECT id, name FROM languages ORDER BY name, id`); err != nil {
		return nil, fmt.Errorf("failed to query languages: %w", err)
	}
	return languages, nil
}

func (r *LanguageRepository) GetLanguageByID(ctx context.Context, languageID int64) (*models.Language, error) {
	var language models.Language
	err := r.db.GetContext(ctx, &language, `SELECT id, name FROM languages WHERE id = $1`, languageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get language %d: %w", languageID, translateError(err))
	}
	return &language, nil
}

func (r *LanguageRepository) CreateLanguage(ctx context.Context, language *models.Language) error {
	query := `INSERT INTO languages (name) VALUES ($1) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, language.Name).Scan(&language.ID); err != nil {
		return fmt.Errorf("failed to insert language: %w", translateError(err))
	}
	return nil
}

// DeleteLanguage removes the language and clears it from every book written in it.
func (r *LanguageRepository) DeleteLanguage(ctx context.Context, languageID int64) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE books SET language_id = NULL WHERE language_id = $1`, languageID); err != nil {
			return fmt.Errorf("failed to clear language %d from books: %w", languageID, err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM languages WHERE id = $1`, languageID)
		if err != nil {
			return fmt.Errorf("failed to delete language %d: %w", languageID, err)
		}
		return expectAffected(result, fmt.Sprintf("language %d", languageID))
	})
}
