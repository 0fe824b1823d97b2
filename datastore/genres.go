package datastore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/coreybb/locallibrary/models"
)

type GenreRepository struct {
	db *sqlx.DB
}

func NewGenreRepository(db *sqlx.DB) *GenreRepository {
	return &GenreRepository{db: db}
}

// GetGenres returns every genre ordered alphabetically.
func (r *GenreRepository) GetGenres(ctx context.Context) ([]models.Genre, error) {
	genres := []models.Genre{}
	if err := r.db.SelectContext(ctx, &genres, `SELECT id, name FROM genres ORDER BY name, id`); err != nil {
		return nil, fmt.Errorf("failed to query genres: %w", err)
	}
	return genres, nil
}

func (r *GenreRepository) CreateGenre(ctx context.Context, genre *models.Genre) error {
	query := `INSERT INTO genres (name) VALUES ($1) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, genre.Name).Scan(&genre.ID); err != nil {
		return fmt.Errorf("failed to insert genre: %w", translateError(err))
	}
	return nil
}

// DeleteGenre removes the genre and its book links. Books survive.
func (r *GenreRepository) DeleteGenre(ctx context.Context, genreID int64) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM book_genres WHERE genre_id = $1`, genreID); err != nil {
			return fmt.Errorf("failed to unlink genre %d from books: %w", genreID, err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM genres WHERE id = $1`, genreID)
		if err != nil {
			return fmt.Errorf("failed to delete genre %d: %w", genreID, err)
		}
		return expectAffected(result, fmt.Sprintf("genre %d", genreID))
	})
}

func (r *GenreRepository) CountGenres(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM genres`)
}
