package repository

import (
	"context"
	"time"

	"stockroom/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SaleRepository defines the data access contract for sales.
// Sales are append-only: there is no update or delete.
type SaleRepository interface {
	// CreateTx inserts the sale inside a running transaction — callers must
	// pass the tx instance so the insert commits or rolls back together
	// with the stock decrement.
	CreateTx(tx *gorm.DB, s *model.Sale) error
	// ListBetween returns sales in [from, to); nil bounds are open.
	ListBetween(ctx context.Context, from, to *time.Time) ([]model.Sale, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) CreateTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Create(s).Error
}

func (r *saleRepo) ListBetween(ctx context.Context, from, to *time.Time) ([]model.Sale, error) {
	var sales []model.Sale
	q := r.db.WithContext(ctx).Model(&model.Sale{})
	if from != nil {
		q = q.Where("sold_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("sold_at < ?", *to)
	}
	err := q.Order("sold_at ASC").Find(&sales).Error
	return sales, err
}

func (r *saleRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Sale{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}
