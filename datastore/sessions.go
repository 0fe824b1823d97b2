package datastore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type SessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// RecordVisit counts a visit for the session key, creating the session on
// first use. It returns the number of visits before this one.
func (r *SessionRepository) RecordVisit(ctx context.Context, key string) (int, error) {
	query := `
		INSERT INTO sessions (key, num_visits)
		VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE
		SET num_visits = sessions.num_visits + 1,
		    updated_at = NOW()
		RETURNING num_visits - 1
	`
	var previous int
	if err := r.db.QueryRowxContext(ctx, query, key).Scan(&previous); err != nil {
		return 0, fmt.Errorf("failed to record visit for session %s: %w", key, err)
	}
	return previous, nil
}
