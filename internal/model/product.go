package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a single inventory line. Stock is only ever mutated through
// guarded conditional updates so it can never go negative (see
// repository.ProductRepository.DecrementStockTx).
type Product struct {
	ID    uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name  string          `gorm:"index;not null"`
	Price decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock int             `gorm:"not null;default:0"`
	// MinStock is the per-product restock alert level; the global
	// low-stock report uses a configurable threshold instead.
	MinStock int `gorm:"not null;default:5"`
	// OwnerID is the user who added the product; nil for global catalog
	// entries created by seeding.
	OwnerID   *uuid.UUID `gorm:"type:uuid;index"`
	Active    bool       `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
