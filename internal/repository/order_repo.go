package repository

import (
	"context"

	"stockroom/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderRepository defines the data access contract for orders.
type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error)
	ListByUserAndStatus(ctx context.Context, userID uuid.UUID, status model.OrderStatus) ([]model.Order, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// ClaimApproveTx transitions the order pending → approved and stamps the
	// recomputed total, inside tx. The WHERE status='pending' guard makes
	// the claim exclusive: the second of two concurrent approvers matches no
	// row and gets false.
	ClaimApproveTx(tx *gorm.DB, id uuid.UUID, total decimal.Decimal) (bool, error)
	// ClaimRejectTx transitions pending → rejected under the same guard.
	ClaimRejectTx(tx *gorm.DB, id uuid.UUID) (bool, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) Create(ctx context.Context, o *model.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error
	return &o, err
}

func (r *orderRepo) ListByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Preload("Product").Preload("Supplier").
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepo) ListByUserAndStatus(ctx context.Context, userID uuid.UUID, status model.OrderStatus) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Preload("Product").Preload("Supplier").
		Where("user_id = ? AND status = ?", userID, status).
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *orderRepo) ClaimApproveTx(tx *gorm.DB, id uuid.UUID, total decimal.Decimal) (bool, error) {
	res := tx.Model(&model.Order{}).
		Where("id = ? AND status = ?", id, model.OrderPending).
		Updates(map[string]interface{}{
			"status": model.OrderApproved,
			"total":  total,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *orderRepo) ClaimRejectTx(tx *gorm.DB, id uuid.UUID) (bool, error) {
	res := tx.Model(&model.Order{}).
		Where("id = ? AND status = ?", id, model.OrderPending).
		Update("status", model.OrderRejected)
	return res.RowsAffected > 0, res.Error
}

func (r *orderRepo) DB() *gorm.DB { return r.db }
