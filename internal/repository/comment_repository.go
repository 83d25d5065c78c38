package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workdesk/internal/domain"
)

// CommentRepository encapsulates item comment persistence. Comments are
// append-only; there is no update or delete.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.ItemComment) error
	ListByItem(ctx context.Context, itemID string) ([]domain.ItemComment, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository instantiates the repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.ItemComment) error {
	const query = `
        INSERT INTO item_comments (item_id, user_id, body)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		comment.ItemID,
		comment.UserID,
		comment.Body,
	).Scan(&comment.ID, &comment.CreatedAt)
}

func (r *commentRepository) ListByItem(ctx context.Context, itemID string) ([]domain.ItemComment, error) {
	const query = `
        SELECT id, item_id, user_id, body, created_at
        FROM item_comments WHERE item_id=$1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ItemComment
	for rows.Next() {
		var comment domain.ItemComment
		if err := rows.Scan(
			&comment.ID,
			&comment.ItemID,
			&comment.UserID,
			&comment.Body,
			&comment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}
