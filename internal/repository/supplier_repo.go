package repository

import (
	"context"
	"errors"

	"stockroom/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SupplierRepository defines the data access contract for suppliers.
type SupplierRepository interface {
	Create(ctx context.Context, s *model.Supplier) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error)
	List(ctx context.Context) ([]model.Supplier, error)
	// BestForProduct returns the active supplier offering productID with the
	// lowest delivery time. Ties break by creation time, so the earliest
	// registered supplier wins and the result is stable across calls.
	// Returns (nil, nil) when no supplier offers it.
	BestForProduct(ctx context.Context, productID uuid.UUID) (*model.Supplier, error)
	// DeliveryDays maps supplier ids to their delivery time, used by the
	// reporting aggregation.
	DeliveryDays(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error)
}

type supplierRepo struct{ db *gorm.DB }

func NewSupplierRepository(db *gorm.DB) SupplierRepository { return &supplierRepo{db: db} }

func (r *supplierRepo) Create(ctx context.Context, s *model.Supplier) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *supplierRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	var s model.Supplier
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	return &s, err
}

func (r *supplierRepo) List(ctx context.Context) ([]model.Supplier, error) {
	var suppliers []model.Supplier
	err := r.db.WithContext(ctx).Where("active = true").Order("name ASC").Find(&suppliers).Error
	return suppliers, err
}

func (r *supplierRepo) BestForProduct(ctx context.Context, productID uuid.UUID) (*model.Supplier, error) {
	var s model.Supplier
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND active = true", productID).
		Order("delivery_days ASC, created_at ASC, id ASC").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *supplierRepo) DeliveryDays(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]int{}, nil
	}
	var suppliers []model.Supplier
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&suppliers).Error; err != nil {
		return nil, err
	}
	days := make(map[uuid.UUID]int, len(suppliers))
	for _, s := range suppliers {
		days[s.ID] = s.DeliveryDays
	}
	return days, nil
}
