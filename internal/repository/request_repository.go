package repository

import (
	"context"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hvac-service-desk/internal/domain"
)

// RequestFilter captures list parameters. Filters are independently
// optional and conjunctive.
type RequestFilter struct {
	Status     *domain.RequestStatus
	AssignedTo *int64
	Search     *string
	DateFrom   *time.Time
	DateTo     *time.Time
}

// RequestUpdate is the whitelist of editable request fields. Status,
// history and the extension group are deliberately unrepresentable here.
type RequestUpdate struct {
	EquipmentType      *string
	DeviceModel        *string
	FaultType          *string
	ProblemDescription *string
	CustomerName       *string
	CustomerPhone      *string
	EstimatedCost      *float64
	ActualCost         *float64
	Deadline           *time.Time
}

// RequestRepository encapsulates request persistence. Create and SetStatus
// group their writes with the matching status-history append in a single
// transaction: the audit log must never diverge from the request row.
type RequestRepository interface {
	Create(ctx context.Context, request *domain.Request) error
	CountByNumberPrefix(ctx context.Context, prefix string) (int, error)
	GetByID(ctx context.Context, id int64) (*domain.Request, error)
	List(ctx context.Context, filter RequestFilter) ([]domain.Request, error)
	UpdateFields(ctx context.Context, id int64, update RequestUpdate) error
	SetStatus(ctx context.Context, id int64, newStatus domain.RequestStatus, completedAt *time.Time, changedBy *int64) error
	Assign(ctx context.Context, id, technicianID int64) error
	SetAssistant(ctx context.Context, id, technicianID int64) error
	ExtendDeadline(ctx context.Context, id int64, newDeadline time.Time, reason, approval string, approvedAt time.Time, extendedBy int64) error
}

type requestRepository struct {
	pool *pgxpool.Pool
}

// NewRequestRepository instantiates the repository.
func NewRequestRepository(pool *pgxpool.Pool) RequestRepository {
	return &requestRepository{pool: pool}
}

const requestJoinedColumns = `
        r.id, r.request_number, r.created_at,
        r.equipment_type, r.device_model, r.fault_type, r.problem_description,
        r.customer_name, r.customer_phone,
        r.status, r.assigned_to, r.assist_to,
        r.estimated_cost, r.actual_cost,
        r.deadline, r.deadline_extended_to, r.extension_reason,
        r.client_approval, r.client_approval_at, r.extended_by,
        r.completed_at,
        u1.full_name AS assigned_name,
        u2.full_name AS assist_name,
        u3.full_name AS extended_by_name`

func (r *requestRepository) Create(ctx context.Context, request *domain.Request) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insertRequest = `
        INSERT INTO requests (
            request_number, equipment_type, device_model, fault_type,
            problem_description, customer_name, customer_phone,
            status, estimated_cost, deadline
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at`

	if err := tx.QueryRow(ctx, insertRequest,
		request.Number,
		request.EquipmentType,
		request.DeviceModel,
		request.FaultType,
		request.ProblemDescription,
		request.CustomerName,
		request.CustomerPhone,
		request.Status,
		request.EstimatedCost,
		request.Deadline,
	).Scan(&request.ID, &request.CreatedAt); err != nil {
		return err
	}

	const insertHistory = `
        INSERT INTO status_history (request_id, old_status, new_status, changed_by)
        VALUES ($1, NULL, $2, NULL)`
	if _, err := tx.Exec(ctx, insertHistory, request.ID, request.Status); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *requestRepository) CountByNumberPrefix(ctx context.Context, prefix string) (int, error) {
	const query = `SELECT COUNT(*) FROM requests WHERE request_number LIKE $1`
	var count int
	if err := r.pool.QueryRow(ctx, query, prefix+"%").Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *requestRepository) GetByID(ctx context.Context, id int64) (*domain.Request, error) {
	query := `SELECT` + requestJoinedColumns + `
        FROM requests r
        LEFT JOIN users u1 ON u1.id = r.assigned_to
        LEFT JOIN users u2 ON u2.id = r.assist_to
        LEFT JOIN users u3 ON u3.id = r.extended_by
        WHERE r.id=$1`

	row := r.pool.QueryRow(ctx, query, id)
	return scanRequest(row)
}

func (r *requestRepository) List(ctx context.Context, filter RequestFilter) ([]domain.Request, error) {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select(requestJoinedColumns).
		From("requests r").
		LeftJoin("users u1 ON u1.id = r.assigned_to").
		LeftJoin("users u2 ON u2.id = r.assist_to").
		LeftJoin("users u3 ON u3.id = r.extended_by").
		OrderBy("r.created_at DESC")

	if filter.Status != nil {
		builder = builder.Where(sq.Eq{"r.status": *filter.Status})
	}
	if filter.AssignedTo != nil {
		builder = builder.Where(sq.Eq{"r.assigned_to": *filter.AssignedTo})
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		pattern := "%" + strings.TrimSpace(*filter.Search) + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"r.request_number": pattern},
			sq.ILike{"r.customer_name": pattern},
			sq.ILike{"r.customer_phone": pattern},
		})
	}
	if filter.DateFrom != nil {
		builder = builder.Where("r.created_at::date >= ?", filter.DateFrom.Format("2006-01-02"))
	}
	if filter.DateTo != nil {
		builder = builder.Where("r.created_at::date <= ?", filter.DateTo.Format("2006-01-02"))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Request
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *request)
	}
	return result, rows.Err()
}

func (r *requestRepository) UpdateFields(ctx context.Context, id int64, update RequestUpdate) error {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).Update("requests")

	changed := false
	set := func(column string, value any) {
		builder = builder.Set(column, value)
		changed = true
	}

	if update.EquipmentType != nil {
		set("equipment_type", *update.EquipmentType)
	}
	if update.DeviceModel != nil {
		set("device_model", *update.DeviceModel)
	}
	if update.FaultType != nil {
		set("fault_type", *update.FaultType)
	}
	if update.ProblemDescription != nil {
		set("problem_description", *update.ProblemDescription)
	}
	if update.CustomerName != nil {
		set("customer_name", *update.CustomerName)
	}
	if update.CustomerPhone != nil {
		set("customer_phone", *update.CustomerPhone)
	}
	if update.EstimatedCost != nil {
		set("estimated_cost", *update.EstimatedCost)
	}
	if update.ActualCost != nil {
		set("actual_cost", *update.ActualCost)
	}
	if update.Deadline != nil {
		set("deadline", *update.Deadline)
	}
	if !changed {
		return nil
	}

	query, args, err := builder.Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}

	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *requestRepository) SetStatus(ctx context.Context, id int64, newStatus domain.RequestStatus, completedAt *time.Time, changedBy *int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var oldStatus domain.RequestStatus
	if err := tx.QueryRow(ctx, `SELECT status FROM requests WHERE id=$1 FOR UPDATE`, id).Scan(&oldStatus); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `UPDATE requests SET status=$1, completed_at=$2 WHERE id=$3`,
		newStatus, completedAt, id); err != nil {
		return err
	}

	const insertHistory = `
        INSERT INTO status_history (request_id, old_status, new_status, changed_by)
        VALUES ($1, $2, $3, $4)`
	if _, err := tx.Exec(ctx, insertHistory, id, oldStatus, newStatus, changedBy); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *requestRepository) Assign(ctx context.Context, id, technicianID int64) error {
	return r.setAssignee(ctx, "assigned_to", id, technicianID)
}

func (r *requestRepository) SetAssistant(ctx context.Context, id, technicianID int64) error {
	return r.setAssignee(ctx, "assist_to", id, technicianID)
}

func (r *requestRepository) setAssignee(ctx context.Context, column string, id, technicianID int64) error {
	query, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Update("requests").
		Set(column, technicianID).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *requestRepository) ExtendDeadline(ctx context.Context, id int64, newDeadline time.Time, reason, approval string, approvedAt time.Time, extendedBy int64) error {
	// All five extension fields move together; partial extension state is
	// forbidden by the data model.
	const query = `
        UPDATE requests
        SET deadline_extended_to=$1,
            extension_reason=$2,
            client_approval=$3,
            client_approval_at=$4,
            extended_by=$5
        WHERE id=$6`

	cmd, err := r.pool.Exec(ctx, query, newDeadline, reason, approval, approvedAt, extendedBy, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanRequest(row pgx.Row) (*domain.Request, error) {
	var request domain.Request
	if err := row.Scan(
		&request.ID,
		&request.Number,
		&request.CreatedAt,
		&request.EquipmentType,
		&request.DeviceModel,
		&request.FaultType,
		&request.ProblemDescription,
		&request.CustomerName,
		&request.CustomerPhone,
		&request.Status,
		&request.AssignedTo,
		&request.AssistantID,
		&request.EstimatedCost,
		&request.ActualCost,
		&request.Deadline,
		&request.ExtendedDeadline,
		&request.ExtensionReason,
		&request.ClientApproval,
		&request.ClientApprovalAt,
		&request.ExtendedBy,
		&request.CompletedAt,
		&request.AssignedName,
		&request.AssistantName,
		&request.ExtendedByName,
	); err != nil {
		return nil, err
	}
	return &request, nil
}
