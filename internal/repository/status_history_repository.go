package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hvac-service-desk/internal/domain"
)

// StatusHistoryRepository reads the audit trail. Entries are written by the
// request repository inside the same transaction as the status change, so
// this repository exposes no write path.
type StatusHistoryRepository interface {
	ListByRequest(ctx context.Context, requestID int64) ([]domain.StatusHistoryEntry, error)
}

type statusHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewStatusHistoryRepository builds the repository.
func NewStatusHistoryRepository(pool *pgxpool.Pool) StatusHistoryRepository {
	return &statusHistoryRepository{pool: pool}
}

func (r *statusHistoryRepository) ListByRequest(ctx context.Context, requestID int64) ([]domain.StatusHistoryEntry, error) {
	const query = `
        SELECT sh.id, sh.request_id, sh.old_status, sh.new_status, sh.changed_by, sh.changed_at,
               u.full_name
        FROM status_history sh
        LEFT JOIN users u ON u.id = sh.changed_by
        WHERE sh.request_id=$1
        ORDER BY sh.changed_at DESC`

	rows, err := r.pool.Query(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StatusHistoryEntry
	for rows.Next() {
		var entry domain.StatusHistoryEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.RequestID,
			&entry.OldStatus,
			&entry.NewStatus,
			&entry.ChangedBy,
			&entry.ChangedAt,
			&entry.ChangedByName,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
