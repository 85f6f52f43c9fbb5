package service

import (
	"context"
	"fmt"
	"time"

	"stockroom/internal/apierror"
	"stockroom/internal/dto"
	"stockroom/internal/model"
	"stockroom/internal/repository"
	"stockroom/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DecideAction selects the manager's decision on a pending order.
type DecideAction string

const (
	ActionApprove DecideAction = "approve"
	ActionReject  DecideAction = "reject"
)

// OrderService drives the order state machine:
//
//	pending → approved  (stock decremented, sale materialized, total recomputed)
//	pending → rejected  (no side effects)
//
// Both transitions are terminal and exclusive: concurrent decisions on the
// same order are arbitrated by a conditional status update inside a single
// transaction, so exactly one caller wins.
type OrderService interface {
	Place(ctx context.Context, userID uuid.UUID, req dto.PlaceOrderRequest) (*dto.OrderResponse, error)
	Decide(ctx context.Context, orderID uuid.UUID, action DecideAction) error
	ListPending(ctx context.Context) ([]dto.OrderResponse, error)
	// ListConfirmed returns all approved orders for managers/admins and only
	// the caller's own approved orders otherwise.
	ListConfirmed(ctx context.Context, callerID uuid.UUID, role model.Role) ([]dto.OrderResponse, error)
	// RecordSale registers a walk-in sale: stock decremented and a Sale
	// created at the product's current price, with no order involved.
	RecordSale(ctx context.Context, userID uuid.UUID, req dto.RecordSaleRequest) (*dto.SaleResponse, error)
}

type orderService struct {
	orders     repository.OrderRepository
	products   repository.ProductRepository
	suppliers  repository.SupplierRepository
	sales      repository.SaleRepository
	users      repository.UserRepository
	dispatcher *worker.Dispatcher
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	suppliers repository.SupplierRepository,
	sales repository.SaleRepository,
	users repository.UserRepository,
	dispatcher *worker.Dispatcher,
) OrderService {
	return &orderService{
		orders:     orders,
		products:   products,
		suppliers:  suppliers,
		sales:      sales,
		users:      users,
		dispatcher: dispatcher,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

func (s *orderService) Place(ctx context.Context, userID uuid.UUID, req dto.PlaceOrderRequest) (*dto.OrderResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, apierror.ErrNotFound
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil || !product.Active {
		return nil, apierror.ErrNotFound
	}

	var supplier *model.Supplier
	if req.SupplierID != nil {
		sid, err := uuid.Parse(*req.SupplierID)
		if err != nil {
			return nil, apierror.ErrNotFound
		}
		supplier, err = s.suppliers.FindByID(ctx, sid)
		if err != nil {
			return nil, apierror.ErrNotFound
		}
	} else {
		// No supplier given: route to the best one for the product.
		supplier, err = s.suppliers.BestForProduct(ctx, productID)
		if err != nil {
			return nil, err
		}
		if supplier == nil {
			return nil, apierror.ErrNoSupplierAvailable
		}
	}

	order := &model.Order{
		UserID:     userID,
		ProductID:  productID,
		SupplierID: supplier.ID,
		Quantity:   req.Quantity,
		Status:     model.OrderPending,
		Total:      decimal.Zero,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	resp := orderToResponse(order)
	resp.Product = product.Name
	resp.Supplier = supplier.Name
	return resp, nil
}

// Decide applies the manager's decision. On approve the three mutations —
// status transition, stock decrement, sale insertion — are one atomic unit:
// any failure rolls all of them back. An approval that fails on stock leaves
// the order pending so the manager can retry later or reject explicitly.
func (s *orderService) Decide(ctx context.Context, orderID uuid.UUID, action DecideAction) error {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return apierror.ErrOrderNotFound
	}
	if order.Status != model.OrderPending {
		return apierror.ErrAlreadyDecided
	}

	if action == ActionReject {
		return runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
			claimed, err := s.orders.ClaimRejectTx(tx, orderID)
			if err != nil {
				return err
			}
			if !claimed {
				return apierror.ErrAlreadyDecided
			}
			return nil
		})
	}

	product, err := s.products.FindByID(ctx, order.ProductID)
	if err != nil {
		return apierror.ErrNotFound
	}
	// Pre-flight stock check, outside the transaction: the common failure
	// is rejected before any mutation. The conditional decrement below
	// re-checks under the transaction, so a concurrent sale between the two
	// reads still cannot drive stock negative.
	if product.Stock < order.Quantity {
		return apierror.ErrInsufficientStock
	}
	// Price is read at approval time, not placement time: price drift
	// between the two moments flows into the sale total.
	total := product.Price.Mul(decimal.NewFromInt(int64(order.Quantity)))

	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		claimed, err := s.orders.ClaimApproveTx(tx, orderID, total)
		if err != nil {
			return err
		}
		if !claimed {
			return apierror.ErrAlreadyDecided
		}

		ok, err := s.products.DecrementStockTx(tx, order.ProductID, order.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			// Rolls back the claim: the order stays pending and the
			// manager must retry or reject explicitly.
			return apierror.ErrInsufficientStock
		}

		supplierID := order.SupplierID
		oid := order.ID
		return s.sales.CreateTx(tx, &model.Sale{
			ProductID:  order.ProductID,
			Quantity:   order.Quantity,
			Total:      total,
			UserID:     order.UserID,
			SupplierID: &supplierID,
			OrderID:    &oid,
			SoldAt:     time.Now().UTC(),
		})
	})
	if txErr != nil {
		return txErr
	}

	s.notifyApproval(ctx, order, product.Name, total)
	return nil
}

// notifyApproval enqueues a best-effort email to the order's owner. It runs
// after commit and never affects the outcome of the approval.
func (s *orderService) notifyApproval(ctx context.Context, order *model.Order, productName string, total decimal.Decimal) {
	if s.dispatcher == nil {
		return
	}
	user, err := s.users.FindByID(ctx, order.UserID)
	if err != nil || user.Email == "" {
		return
	}
	_ = s.dispatcher.EnqueueEmail(ctx, worker.EmailJobPayload{
		ToEmail: user.Email,
		Subject: "Your order has been approved",
		Body: fmt.Sprintf("Order %s for %d x %s was approved. Total: %s.",
			order.ID, order.Quantity, productName, total.StringFixed(2)),
	})
}

func (s *orderService) ListPending(ctx context.Context) ([]dto.OrderResponse, error) {
	orders, err := s.orders.ListByStatus(ctx, model.OrderPending)
	if err != nil {
		return nil, err
	}
	return ordersToResponse(orders), nil
}

func (s *orderService) ListConfirmed(ctx context.Context, callerID uuid.UUID, role model.Role) ([]dto.OrderResponse, error) {
	var orders []model.Order
	var err error
	switch role {
	case model.RoleManager, model.RoleAdmin:
		orders, err = s.orders.ListByStatus(ctx, model.OrderApproved)
	default:
		orders, err = s.orders.ListByUserAndStatus(ctx, callerID, model.OrderApproved)
	}
	if err != nil {
		return nil, err
	}
	return ordersToResponse(orders), nil
}

func (s *orderService) RecordSale(ctx context.Context, userID uuid.UUID, req dto.RecordSaleRequest) (*dto.SaleResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, apierror.ErrNotFound
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil || !product.Active {
		return nil, apierror.ErrNotFound
	}
	total := product.Price.Mul(decimal.NewFromInt(int64(req.Quantity)))

	sale := &model.Sale{
		ProductID: productID,
		Quantity:  req.Quantity,
		Total:     total,
		UserID:    userID,
		SoldAt:    time.Now().UTC(),
	}
	txErr := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		ok, err := s.products.DecrementStockTx(tx, productID, req.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			return apierror.ErrInsufficientStock
		}
		return s.sales.CreateTx(tx, sale)
	})
	if txErr != nil {
		return nil, txErr
	}
	return &dto.SaleResponse{
		ID:        sale.ID.String(),
		ProductID: productID.String(),
		Quantity:  sale.Quantity,
		Total:     sale.Total,
		SoldAt:    sale.SoldAt.Format(time.RFC3339),
	}, nil
}

func orderToResponse(o *model.Order) *dto.OrderResponse {
	resp := &dto.OrderResponse{
		ID:         o.ID.String(),
		UserID:     o.UserID.String(),
		ProductID:  o.ProductID.String(),
		SupplierID: o.SupplierID.String(),
		Quantity:   o.Quantity,
		Status:     string(o.Status),
		Total:      o.Total,
		CreatedAt:  o.CreatedAt.Format(time.RFC3339),
	}
	if o.Product != nil {
		resp.Product = o.Product.Name
	}
	if o.Supplier != nil {
		resp.Supplier = o.Supplier.Name
	}
	return resp
}

func ordersToResponse(orders []model.Order) []dto.OrderResponse {
	resp := make([]dto.OrderResponse, len(orders))
	for i := range orders {
		resp[i] = *orderToResponse(&orders[i])
	}
	return resp
}
