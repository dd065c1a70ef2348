package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hvac-service-desk/internal/domain"
)

// StatsRepository runs the period aggregation queries behind the reporting
// pages.
type StatsRepository interface {
	Aggregate(ctx context.Context, from, to time.Time) (*domain.Statistics, error)
}

type statsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository builds the repository.
func NewStatsRepository(pool *pgxpool.Pool) StatsRepository {
	return &statsRepository{pool: pool}
}

func (r *statsRepository) Aggregate(ctx context.Context, from, to time.Time) (*domain.Statistics, error) {
	stats := &domain.Statistics{}

	const countsQuery = `
        SELECT
            COUNT(*),
            COUNT(*) FILTER (WHERE status = 'completed'),
            COUNT(*) FILTER (WHERE status = 'open'),
            COUNT(*) FILTER (WHERE status = 'in_repair'),
            COALESCE(AVG(EXTRACT(EPOCH FROM (completed_at - created_at)) / 86400.0)
                FILTER (WHERE status = 'completed' AND completed_at IS NOT NULL), 0)
        FROM requests
        WHERE created_at BETWEEN $1 AND $2`

	if err := r.pool.QueryRow(ctx, countsQuery, from, to).Scan(
		&stats.TotalRequests,
		&stats.CompletedRequests,
		&stats.OpenRequests,
		&stats.InRepairRequests,
		&stats.AvgCompletionDays,
	); err != nil {
		return nil, err
	}
	if stats.TotalRequests > 0 {
		stats.CompletionRate = float64(stats.CompletedRequests) / float64(stats.TotalRequests) * 100
	}

	equipment, err := r.categoryCounts(ctx, `
        SELECT COALESCE(NULLIF(TRIM(equipment_type), ''), 'Unspecified'), COUNT(*)
        FROM requests
        WHERE created_at BETWEEN $1 AND $2
        GROUP BY 1
        ORDER BY 2 DESC`, from, to)
	if err != nil {
		return nil, err
	}
	stats.EquipmentStats = equipment

	faults, err := r.categoryCounts(ctx, `
        SELECT COALESCE(NULLIF(TRIM(fault_type), ''), 'Unspecified'), COUNT(*)
        FROM requests
        WHERE created_at BETWEEN $1 AND $2
        GROUP BY 1
        ORDER BY 2 DESC`, from, to)
	if err != nil {
		return nil, err
	}
	stats.FaultStats = faults

	const technicianQuery = `
        SELECT
            u.full_name,
            COUNT(r.id),
            COALESCE(AVG(EXTRACT(EPOCH FROM (r.completed_at - r.created_at)) / 86400.0), 0)
        FROM requests r
        JOIN users u ON u.id = r.assigned_to
        WHERE r.status = 'completed'
          AND r.completed_at IS NOT NULL
          AND r.created_at BETWEEN $1 AND $2
        GROUP BY r.assigned_to, u.full_name
        ORDER BY 2 DESC`

	rows, err := r.pool.Query(ctx, technicianQuery, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ts domain.TechnicianStats
		if err := rows.Scan(&ts.FullName, &ts.CompletedCount, &ts.AvgDays); err != nil {
			return nil, err
		}
		stats.TechnicianStats = append(stats.TechnicianStats, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *statsRepository) categoryCounts(ctx context.Context, query string, from, to time.Time) ([]domain.CategoryCount, error) {
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CategoryCount
	for rows.Next() {
		var cc domain.CategoryCount
		if err := rows.Scan(&cc.Name, &cc.Count); err != nil {
			return nil, err
		}
		result = append(result, cc)
	}
	return result, rows.Err()
}
