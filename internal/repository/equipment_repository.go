package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hvac-service-desk/internal/domain"
)

// EquipmentTypeRepository reads the static reference data seeded by the
// migrations.
type EquipmentTypeRepository interface {
	List(ctx context.Context) ([]domain.EquipmentType, error)
}

type equipmentTypeRepository struct {
	pool *pgxpool.Pool
}

// NewEquipmentTypeRepository builds the repository.
func NewEquipmentTypeRepository(pool *pgxpool.Pool) EquipmentTypeRepository {
	return &equipmentTypeRepository{pool: pool}
}

func (r *equipmentTypeRepository) List(ctx context.Context) ([]domain.EquipmentType, error) {
	const query = `SELECT id, name, description FROM equipment_types ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.EquipmentType
	for rows.Next() {
		var et domain.EquipmentType
		if err := rows.Scan(&et.ID, &et.Name, &et.Description); err != nil {
			return nil, err
		}
		result = append(result, et)
	}
	return result, rows.Err()
}
