package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// LikeRepository reads the events a user has liked.
type LikeRepository struct {
	db *sqlx.DB
}

// NewLikeRepository constructs a like repository.
func NewLikeRepository(db *sqlx.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

// LikedEventIDs lists the ids liked by userID, most recent first.
func (r *LikeRepository) LikedEventIDs(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	const query = `SELECT event_id FROM event_likes WHERE user_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("list liked events for %s: %w", userID, err)
	}
	return ids, nil
}
