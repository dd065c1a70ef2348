package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hvac-service-desk/internal/domain"
)

// HelpRequestRepository stores technician escalations.
type HelpRequestRepository interface {
	Create(ctx context.Context, help *domain.HelpRequest) error
	GetByID(ctx context.Context, id int64) (*domain.HelpRequest, error)
	ListOpen(ctx context.Context) ([]domain.OpenHelpRequest, error)
	Resolve(ctx context.Context, id, resolvedBy int64, note string, resolvedAt time.Time) error
}

type helpRequestRepository struct {
	pool *pgxpool.Pool
}

// NewHelpRequestRepository builds the repository.
func NewHelpRequestRepository(pool *pgxpool.Pool) HelpRequestRepository {
	return &helpRequestRepository{pool: pool}
}

func (r *helpRequestRepository) Create(ctx context.Context, help *domain.HelpRequest) error {
	const query = `
        INSERT INTO help_requests (request_id, requested_by, message, status)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		help.RequestID,
		help.RequestedBy,
		help.Message,
		help.Status,
	).Scan(&help.ID, &help.CreatedAt)
}

func (r *helpRequestRepository) GetByID(ctx context.Context, id int64) (*domain.HelpRequest, error) {
	const query = `
        SELECT id, request_id, requested_by, message, status, created_at,
               resolved_by, resolved_at, resolution_note
        FROM help_requests WHERE id=$1`

	var help domain.HelpRequest
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&help.ID,
		&help.RequestID,
		&help.RequestedBy,
		&help.Message,
		&help.Status,
		&help.CreatedAt,
		&help.ResolvedBy,
		&help.ResolvedAt,
		&help.ResolutionNote,
	); err != nil {
		return nil, err
	}
	return &help, nil
}

func (r *helpRequestRepository) ListOpen(ctx context.Context) ([]domain.OpenHelpRequest, error) {
	const query = `
        SELECT
            hr.id, hr.request_id, hr.message, hr.created_at,
            r.request_number, r.status, r.deadline, r.deadline_extended_to,
            r.assigned_to, u1.full_name,
            r.assist_to, u2.full_name,
            hr.requested_by, u3.full_name
        FROM help_requests hr
        JOIN requests r ON r.id = hr.request_id
        LEFT JOIN users u1 ON u1.id = r.assigned_to
        LEFT JOIN users u2 ON u2.id = r.assist_to
        JOIN users u3 ON u3.id = hr.requested_by
        WHERE hr.status='open'
        ORDER BY hr.created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.OpenHelpRequest
	for rows.Next() {
		var entry domain.OpenHelpRequest
		if err := rows.Scan(
			&entry.HelpID,
			&entry.RequestID,
			&entry.Message,
			&entry.CreatedAt,
			&entry.RequestNumber,
			&entry.RequestStatus,
			&entry.Deadline,
			&entry.ExtendedDeadline,
			&entry.AssignedTo,
			&entry.AssignedName,
			&entry.AssistantID,
			&entry.AssistantName,
			&entry.RequestedBy,
			&entry.RequestedByName,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *helpRequestRepository) Resolve(ctx context.Context, id, resolvedBy int64, note string, resolvedAt time.Time) error {
	// The status guard makes a double resolve a no-op at the store level;
	// the service reports it as an invalid state.
	const query = `
        UPDATE help_requests
        SET status='resolved', resolved_by=$1, resolved_at=$2, resolution_note=$3
        WHERE id=$4 AND status='open'`

	cmd, err := r.pool.Exec(ctx, query, resolvedBy, resolvedAt, note, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
