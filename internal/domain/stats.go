package domain

// CategoryCount is one slice of a breakdown (per equipment type or per
// fault type).
type CategoryCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// TechnicianStats summarizes one technician's completed work in a period.
type TechnicianStats struct {
	FullName       string  `json:"full_name"`
	CompletedCount int64   `json:"completed_count"`
	AvgDays        float64 `json:"avg_days"`
}

// Statistics is the period-scoped aggregate view consumed by the reporting
// pages. Derived, never persisted.
type Statistics struct {
	PeriodDays        int               `json:"period_days"`
	TotalRequests     int64             `json:"total_requests"`
	CompletedRequests int64             `json:"completed_requests"`
	OpenRequests      int64             `json:"open_requests"`
	InRepairRequests  int64             `json:"in_repair_requests"`
	CompletionRate    float64           `json:"completion_rate"`
	AvgCompletionDays float64           `json:"avg_completion_days"`
	EquipmentStats    []CategoryCount   `json:"equipment_stats"`
	FaultStats        []CategoryCount   `json:"fault_stats"`
	TechnicianStats   []TechnicianStats `json:"technician_stats"`
}
