package domain

// EquipmentType is static reference data seeded at startup and read-only
// from the workflow's perspective.
type EquipmentType struct {
	ID          int64
	Name        string
	Description string
}
