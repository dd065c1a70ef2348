package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hvac-service-desk/internal/domain"
)

// CommentRepository stores the append-only comment log. Comments are never
// mutated or deleted after creation.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByRequest(ctx context.Context, requestID int64) ([]domain.Comment, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository builds the repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO request_comments (request_id, user_id, body, parts_ordered, parts_description)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		comment.RequestID,
		comment.UserID,
		comment.Body,
		comment.PartsOrdered,
		comment.PartsDescription,
	).Scan(&comment.ID, &comment.CreatedAt)
}

func (r *commentRepository) ListByRequest(ctx context.Context, requestID int64) ([]domain.Comment, error) {
	const query = `
        SELECT rc.id, rc.request_id, rc.user_id, rc.body, rc.parts_ordered,
               rc.parts_description, rc.created_at,
               u.full_name, u.username
        FROM request_comments rc
        JOIN users u ON u.id = rc.user_id
        WHERE rc.request_id=$1
        ORDER BY rc.created_at DESC`

	rows, err := r.pool.Query(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Comment
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.RequestID,
			&comment.UserID,
			&comment.Body,
			&comment.PartsOrdered,
			&comment.PartsDescription,
			&comment.CreatedAt,
			&comment.AuthorName,
			&comment.AuthorUsername,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}
