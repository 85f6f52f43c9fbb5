package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is the access tier a session operates under.
type Role string

const (
	RoleManager  Role = "manager"
	RoleUser     Role = "user"
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
	RoleSupplier Role = "supplier"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleManager, RoleUser, RoleAdmin, RoleCustomer, RoleSupplier:
		return true
	}
	return false
}

// User stores system accounts with role-based access.
// New registrations start with Active=false and must be approved by a
// manager or admin before they can log in. Bootstrap manager/admin
// accounts are seeded active (see cmd/seeduser).
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Role         Role      `gorm:"type:varchar(20);not null"`
	// ManagerID links a registered user to the manager who approves them;
	// nil for managers/admins themselves.
	ManagerID *uuid.UUID `gorm:"type:uuid;index"`
	Active    bool       `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
