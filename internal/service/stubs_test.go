package service_test

import (
	"context"
	"errors"
	"time"

	"stockroom/internal/model"
	"stockroom/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory repository stubs. Transactions degrade to direct calls in unit
// tests: the services pass a nil *gorm.DB through runTx, and the stubs apply
// the same conditional-update semantics the SQL guards enforce.

// ── users ─────────────────────────────────────────────────────────────────────

type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubUserRepo) FindByEmailAndRole(_ context.Context, email string, role model.Role) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email && u.Role == role {
			return u, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubUserRepo) List(_ context.Context, managerID *uuid.UUID) ([]model.User, error) {
	var users []model.User
	for _, u := range r.users {
		if managerID == nil || (u.ManagerID != nil && *u.ManagerID == *managerID) {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (r *stubUserRepo) Activate(_ context.Context, id uuid.UUID) error {
	u, ok := r.users[id]
	if !ok {
		return errors.New("not found")
	}
	u.Active = true
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.users[id]; !ok {
		return errors.New("not found")
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) CountByManager(_ context.Context, managerID uuid.UUID) (int64, error) {
	var n int64
	for _, u := range r.users {
		if u.ManagerID != nil && *u.ManagerID == managerID {
			n++
		}
	}
	return n, nil
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

// ── products ──────────────────────────────────────────────────────────────────

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func (r *stubProductRepo) List(_ context.Context, ownerID *uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	for _, p := range r.products {
		if !p.Active {
			continue
		}
		if ownerID != nil && (p.OwnerID == nil || *p.OwnerID != *ownerID) {
			continue
		}
		products = append(products, *p)
	}
	return products, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	p, ok := r.products[id]
	if !ok {
		return errors.New("not found")
	}
	p.Active = false
	return nil
}

func (r *stubProductRepo) LowStock(_ context.Context, threshold int) ([]model.Product, error) {
	var products []model.Product
	for _, p := range r.products {
		if p.Active && p.Stock < threshold {
			products = append(products, *p)
		}
	}
	return products, nil
}

func (r *stubProductRepo) DecrementStockTx(_ *gorm.DB, id uuid.UUID, qty int) (bool, error) {
	p, ok := r.products[id]
	if !ok {
		return false, nil
	}
	// Same guard the SQL applies: never let stock go negative.
	if p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	return true, nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// ── suppliers ─────────────────────────────────────────────────────────────────

type stubSupplierRepo struct {
	suppliers []*model.Supplier // insertion order preserved
}

func (r *stubSupplierRepo) Create(_ context.Context, s *model.Supplier) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.suppliers = append(r.suppliers, s)
	return nil
}

func (r *stubSupplierRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Supplier, error) {
	for _, s := range r.suppliers {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubSupplierRepo) List(_ context.Context) ([]model.Supplier, error) {
	out := make([]model.Supplier, 0, len(r.suppliers))
	for _, s := range r.suppliers {
		if s.Active {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubSupplierRepo) BestForProduct(_ context.Context, productID uuid.UUID) (*model.Supplier, error) {
	var best *model.Supplier
	for _, s := range r.suppliers {
		if !s.Active || s.ProductID != productID {
			continue
		}
		// Strict less-than keeps the first-seen supplier on ties.
		if best == nil || s.DeliveryDays < best.DeliveryDays {
			best = s
		}
	}
	return best, nil
}

func (r *stubSupplierRepo) DeliveryDays(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	days := make(map[uuid.UUID]int)
	for _, s := range r.suppliers {
		for _, id := range ids {
			if s.ID == id {
				days[id] = s.DeliveryDays
			}
		}
	}
	return days, nil
}

var _ repository.SupplierRepository = (*stubSupplierRepo)(nil)

// ── orders ────────────────────────────────────────────────────────────────────

type stubOrderRepo struct {
	orders map[uuid.UUID]*model.Order
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[uuid.UUID]*model.Order)}
}

func (r *stubOrderRepo) Create(_ context.Context, o *model.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	r.orders[o.ID] = o
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return o, nil
}

func (r *stubOrderRepo) ListByStatus(_ context.Context, status model.OrderStatus) ([]model.Order, error) {
	var orders []model.Order
	for _, o := range r.orders {
		if o.Status == status {
			orders = append(orders, *o)
		}
	}
	return orders, nil
}

func (r *stubOrderRepo) ListByUserAndStatus(_ context.Context, userID uuid.UUID, status model.OrderStatus) ([]model.Order, error) {
	var orders []model.Order
	for _, o := range r.orders {
		if o.UserID == userID && o.Status == status {
			orders = append(orders, *o)
		}
	}
	return orders, nil
}

func (r *stubOrderRepo) CountByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	for _, o := range r.orders {
		if o.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *stubOrderRepo) ClaimApproveTx(_ *gorm.DB, id uuid.UUID, total decimal.Decimal) (bool, error) {
	o, ok := r.orders[id]
	if !ok || o.Status != model.OrderPending {
		return false, nil
	}
	o.Status = model.OrderApproved
	o.Total = total
	return true, nil
}

func (r *stubOrderRepo) ClaimRejectTx(_ *gorm.DB, id uuid.UUID) (bool, error) {
	o, ok := r.orders[id]
	if !ok || o.Status != model.OrderPending {
		return false, nil
	}
	o.Status = model.OrderRejected
	return true, nil
}

func (r *stubOrderRepo) DB() *gorm.DB { return nil }

var _ repository.OrderRepository = (*stubOrderRepo)(nil)

// ── sales ─────────────────────────────────────────────────────────────────────

type stubSaleRepo struct {
	sales []*model.Sale
}

func (r *stubSaleRepo) CreateTx(_ *gorm.DB, s *model.Sale) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sales = append(r.sales, s)
	return nil
}

func (r *stubSaleRepo) ListBetween(_ context.Context, from, to *time.Time) ([]model.Sale, error) {
	var sales []model.Sale
	for _, s := range r.sales {
		if from != nil && s.SoldAt.Before(*from) {
			continue
		}
		if to != nil && !s.SoldAt.Before(*to) {
			continue
		}
		sales = append(sales, *s)
	}
	return sales, nil
}

func (r *stubSaleRepo) CountByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	for _, s := range r.sales {
		if s.UserID == userID {
			n++
		}
	}
	return n, nil
}

var _ repository.SaleRepository = (*stubSaleRepo)(nil)
