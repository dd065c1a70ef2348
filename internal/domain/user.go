package domain

import "time"

// Role enumerates staff roles in the service center.
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleTechnician     Role = "technician"
	RoleQualityManager Role = "quality_manager"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTechnician, RoleQualityManager:
		return true
	}
	return false
}

// User is a staff account. Roles are fixed once the account is issued.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	FullName     string
	Role         Role
	Phone        string
	Email        string
	Active       bool
	CreatedAt    time.Time
}

// Actor identifies the caller of a core operation. Core services enforce
// role and ownership checks against it rather than trusting the HTTP layer.
type Actor struct {
	ID   int64
	Role Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanManageQuality reports whether the actor may act on the escalation
// surface (resolve help requests, reassign, extend deadlines).
func (a Actor) CanManageQuality() bool {
	return a.Role == RoleAdmin || a.Role == RoleQualityManager
}
