package service_test

import (
	"context"
	"testing"

	"stockroom/internal/apierror"
	"stockroom/internal/dto"
	"stockroom/internal/model"
	"stockroom/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	users     *stubUserRepo
	products  *stubProductRepo
	suppliers *stubSupplierRepo
	orders    *stubOrderRepo
	sales     *stubSaleRepo
	svc       service.OrderService
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		users:     newStubUserRepo(),
		products:  newStubProductRepo(),
		suppliers: &stubSupplierRepo{},
		orders:    newStubOrderRepo(),
		sales:     &stubSaleRepo{},
	}
	f.svc = service.NewOrderService(f.orders, f.products, f.suppliers, f.sales, f.users, nil)
	return f
}

func (f *orderFixture) addProduct(t *testing.T, price string, stock int) *model.Product {
	t.Helper()
	p := &model.Product{
		Name:   "Widget",
		Price:  decimal.RequireFromString(price),
		Stock:  stock,
		Active: true,
	}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func (f *orderFixture) addSupplier(t *testing.T, productID uuid.UUID, days int) *model.Supplier {
	t.Helper()
	s := &model.Supplier{
		Name:         "Acme",
		ProductID:    productID,
		Quantity:     100,
		Price:        decimal.RequireFromString("8"),
		DeliveryDays: days,
		Active:       true,
	}
	require.NoError(t, f.suppliers.Create(context.Background(), s))
	return s
}

func TestPlaceOrderPicksBestSupplier(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	p := f.addProduct(t, "10", 5)
	f.addSupplier(t, p.ID, 7)
	fast := f.addSupplier(t, p.ID, 2)

	resp, err := f.svc.Place(ctx, uuid.New(), dto.PlaceOrderRequest{
		ProductID: p.ID.String(),
		Quantity:  3,
	})
	require.NoError(t, err)

	assert.Equal(t, string(model.OrderPending), resp.Status)
	assert.Equal(t, fast.ID.String(), resp.SupplierID)
	assert.True(t, resp.Total.IsZero(), "total is not computed until approval")
}

func TestPlaceOrderNoSupplierAvailable(t *testing.T) {
	f := newOrderFixture()
	p := f.addProduct(t, "10", 5)

	_, err := f.svc.Place(context.Background(), uuid.New(), dto.PlaceOrderRequest{
		ProductID: p.ID.String(),
		Quantity:  1,
	})
	assert.ErrorIs(t, err, apierror.ErrNoSupplierAvailable)
}

func TestPlaceOrderInactiveProduct(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	p := f.addProduct(t, "10", 5)
	f.addSupplier(t, p.ID, 2)
	require.NoError(t, f.products.Deactivate(ctx, p.ID))

	_, err := f.svc.Place(ctx, uuid.New(), dto.PlaceOrderRequest{
		ProductID: p.ID.String(),
		Quantity:  1,
	})
	assert.ErrorIs(t, err, apierror.ErrNotFound)
}

func TestApproveOrderMaterializesSale(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	p := f.addProduct(t, "10", 5)
	f.addSupplier(t, p.ID, 2)

	userID := uuid.New()
	placed, err := f.svc.Place(ctx, userID, dto.PlaceOrderRequest{
		ProductID: p.ID.String(),
		Quantity:  3,
	})
	require.NoError(t, err)
	orderID := uuid.MustParse(placed.ID)

	require.NoError(t, f.svc.Decide(ctx, orderID, service.ActionApprove))

	order, err := f.orders.FindByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderApproved, order.Status)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("30")))

	assert.Equal(t, 2, p.Stock)

	require.Len(t, f.sales.sales, 1)
	sale := f.sales.sales[0]
	assert.Equal(t, 3, sale.Quantity)
	assert.True(t, sale.Total.Equal(decimal.RequireFromString("30")))
	assert.Equal(t, userID, sale.UserID)
	require.NotNil(t, sale.OrderID)
	assert.Equal(t, orderID, *sale.OrderID)
	require.NotNil(t, sale.SupplierID)
	assert.Equal(t, order.SupplierID, *sale.SupplierID)
}

func TestApproveOrderTwice(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	p := f.addProduct(t, "10", 5)
	f.addSupplier(t, p.ID, 2)

	placed, err := f.svc.Place(ctx, uuid.New(), dto.PlaceOrderRequest{
		ProductID: p.ID.String(),
		Quantity:  3,
	})
	require.NoError(t, err)
	orderID := uuid.MustParse(placed.ID)

	require.NoError(t, f.svc.Decide(ctx, orderID, service.ActionApprove))
	err = f.svc.Decide(ctx, orderID, service.ActionApprove)
	assert.ErrorIs(t, err, apierror.ErrAlreadyDecided)

	// The second attempt must not touch stock or create another sale.
	assert.Equal(t, 2, p.Stock)
	assert.Len(t, f.sales.sales, 1)
}

func TestApproveOrderInsufficientStock(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	p := f.addProduct(t, "10", 2)
	f.addSupplier(t, p.ID, 2)

	placed, err := f.svc.Place(ctx, uuid.New(), dto.PlaceOrderRequest{
		ProductID: p.ID.String(),
		Quantity:  3,
	})
	require.NoError(t, err)
	orderID := uuid.MustParse(placed.ID)

	err = f.svc.Decide(ctx, orderID, service.ActionApprove)
	assert.ErrorIs(t, err, apierror.ErrInsufficientStock)

	// The order stays pending so the manager can restock and retry.
	order, err := f.orders.FindByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderPending, order.Status)
	assert.Equal(t, 2, p.Stock)
	assert.Empty(t, f.sales.sales)
}

func TestApprovePriceDriftUsesCurrentPrice(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	p := f.addProduct(t, "10", 5)
	f.addSupplier(t, p.ID, 2)

	placed, err := f.svc.Place(ctx, uuid.New(), dto.PlaceOrderRequest{
		ProductID: p.ID.String(),
		Quantity:  2,
	})
	require.NoError(t, err)
	orderID := uuid.MustParse(placed.ID)

	// Price changes between placement and approval.
	p.Price = decimal.RequireFromString("12.50")

	require.NoError(t, f.svc.Decide(ctx, orderID, service.ActionApprove))

	order, err := f.orders.FindByID(ctx, orderID)
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("25")))
}

func TestRejectOrder(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	p := f.addProduct(t, "10", 5)
	f.addSupplier(t, p.ID, 2)

	placed, err := f.svc.Place(ctx, uuid.New(), dto.PlaceOrderRequest{
		ProductID: p.ID.String(),
		Quantity:  3,
	})
	require.NoError(t, err)
	orderID := uuid.MustParse(placed.ID)

	require.NoError(t, f.svc.Decide(ctx, orderID, service.ActionReject))

	order, err := f.orders.FindByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderRejected, order.Status)
	assert.Equal(t, 5, p.Stock)
	assert.Empty(t, f.sales.sales)

	// A rejected order cannot be approved afterwards.
	err = f.svc.Decide(ctx, orderID, service.ActionApprove)
	assert.ErrorIs(t, err, apierror.ErrAlreadyDecided)
}

func TestDecideUnknownOrder(t *testing.T) {
	f := newOrderFixture()
	err := f.svc.Decide(context.Background(), uuid.New(), service.ActionApprove)
	assert.ErrorIs(t, err, apierror.ErrOrderNotFound)
}

func TestListConfirmedScopedByRole(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	p := f.addProduct(t, "10", 100)
	f.addSupplier(t, p.ID, 2)

	alice := uuid.New()
	bob := uuid.New()
	for _, userID := range []uuid.UUID{alice, bob} {
		placed, err := f.svc.Place(ctx, userID, dto.PlaceOrderRequest{
			ProductID: p.ID.String(),
			Quantity:  1,
		})
		require.NoError(t, err)
		require.NoError(t, f.svc.Decide(ctx, uuid.MustParse(placed.ID), service.ActionApprove))
	}

	all, err := f.svc.ListConfirmed(ctx, uuid.New(), model.RoleManager)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := f.svc.ListConfirmed(ctx, alice, model.RoleCustomer)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, alice.String(), mine[0].UserID)
}

func TestRecordWalkInSale(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	p := f.addProduct(t, "4.50", 10)

	resp, err := f.svc.RecordSale(ctx, uuid.New(), dto.RecordSaleRequest{
		ProductID: p.ID.String(),
		Quantity:  4,
	})
	require.NoError(t, err)

	assert.True(t, resp.Total.Equal(decimal.RequireFromString("18")))
	assert.Equal(t, 6, p.Stock)
	require.Len(t, f.sales.sales, 1)
	assert.Nil(t, f.sales.sales[0].SupplierID)
	assert.Nil(t, f.sales.sales[0].OrderID)
}

func TestRecordWalkInSaleInsufficientStock(t *testing.T) {
	f := newOrderFixture()
	p := f.addProduct(t, "4.50", 3)

	_, err := f.svc.RecordSale(context.Background(), uuid.New(), dto.RecordSaleRequest{
		ProductID: p.ID.String(),
		Quantity:  4,
	})
	assert.ErrorIs(t, err, apierror.ErrInsufficientStock)
	assert.Equal(t, 3, p.Stock)
	assert.Empty(t, f.sales.sales)
}
