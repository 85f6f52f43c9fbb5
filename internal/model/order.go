package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the order state machine: pending → approved | rejected.
// Approved and rejected are terminal; no transition ever leaves them.
type OrderStatus string

const (
	OrderPending  OrderStatus = "pending"
	OrderApproved OrderStatus = "approved"
	OrderRejected OrderStatus = "rejected"
)

// Order is a purchase request awaiting a manager decision. Total is zero
// until approval: the sale total is recomputed from the product's price at
// approval time, not placement time, so price changes between the two
// moments are reflected in the sale.
type Order struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	SupplierID uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity   int             `gorm:"not null"` // > 0
	Status     OrderStatus     `gorm:"type:varchar(20);not null;default:'pending';index"`
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	User     *User     `gorm:"foreignKey:UserID"`
	Product  *Product  `gorm:"foreignKey:ProductID"`
	Supplier *Supplier `gorm:"foreignKey:SupplierID"`
}
