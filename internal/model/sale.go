package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is an immutable revenue record. It is materialized inside the order
// approval transaction, or created directly when a user records a walk-in
// sale (in which case OrderID and SupplierID are nil).
type Sale struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity   int             `gorm:"not null"`
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	UserID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	SupplierID *uuid.UUID      `gorm:"type:uuid"`
	OrderID    *uuid.UUID      `gorm:"type:uuid;uniqueIndex"` // at most one sale per order
	SoldAt     time.Time       `gorm:"not null;index"`

	Product  *Product  `gorm:"foreignKey:ProductID"`
	Supplier *Supplier `gorm:"foreignKey:SupplierID"`
}
