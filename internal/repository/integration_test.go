//go:build integration

package repository_test

// Integration tests against a real Postgres started via testcontainers.
// They cover the guarantees the unit stubs cannot: the conditional-UPDATE
// claims in ClaimApproveTx / DecrementStockTx arbitrating concurrent
// decisions at the SQL level.
//
// Run with: go test -tags integration ./internal/repository/... -v

import (
	"context"
	"sync"
	"testing"

	"stockroom/internal/apierror"
	"stockroom/internal/infra"
	"stockroom/internal/model"
	"stockroom/internal/repository"
	"stockroom/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("stockroom_test"),
		tcPostgres.WithUsername("stockroom"),
		tcPostgres.WithPassword("stockroom"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := infra.NewDatabase(dsn)
	require.NoError(t, err)
	return db
}

type repoSet struct {
	users     repository.UserRepository
	products  repository.ProductRepository
	suppliers repository.SupplierRepository
	orders    repository.OrderRepository
	sales     repository.SaleRepository
	orderSvc  service.OrderService
}

func newRepoSet(db *gorm.DB) *repoSet {
	s := &repoSet{
		users:     repository.NewUserRepository(db),
		products:  repository.NewProductRepository(db),
		suppliers: repository.NewSupplierRepository(db),
		orders:    repository.NewOrderRepository(db),
		sales:     repository.NewSaleRepository(db),
	}
	s.orderSvc = service.NewOrderService(s.orders, s.products, s.suppliers, s.sales, s.users, nil)
	return s
}

func (s *repoSet) seed(t *testing.T, ctx context.Context, stock int) (*model.User, *model.Product, *model.Supplier) {
	t.Helper()
	user := &model.User{
		Username:     "buyer",
		Email:        "buyer@example.com",
		PasswordHash: "x",
		Role:         model.RoleUser,
		Active:       true,
	}
	require.NoError(t, s.users.Create(ctx, user))

	product := &model.Product{
		Name:   "Widget",
		Price:  decimal.RequireFromString("10"),
		Stock:  stock,
		Active: true,
	}
	require.NoError(t, s.products.Create(ctx, product))

	supplier := &model.Supplier{
		Name:         "Acme",
		ProductID:    product.ID,
		Quantity:     100,
		Price:        decimal.RequireFromString("8"),
		DeliveryDays: 2,
		Active:       true,
	}
	require.NoError(t, s.suppliers.Create(ctx, supplier))
	return user, product, supplier
}

func (s *repoSet) placeOrder(t *testing.T, ctx context.Context, user *model.User, product *model.Product, supplier *model.Supplier, qty int) *model.Order {
	t.Helper()
	order := &model.Order{
		UserID:     user.ID,
		ProductID:  product.ID,
		SupplierID: supplier.ID,
		Quantity:   qty,
		Status:     model.OrderPending,
		Total:      decimal.Zero,
	}
	require.NoError(t, s.orders.Create(ctx, order))
	return order
}

func TestApproveRaceSingleWinner(t *testing.T) {
	db := setupDB(t)
	repos := newRepoSet(db)
	ctx := context.Background()

	user, product, supplier := repos.seed(t, ctx, 5)
	order := repos.placeOrder(t, ctx, user, product, supplier, 3)

	// All goroutines race to approve the same order; the WHERE
	// status='pending' claim lets exactly one commit.
	const racers = 8
	errs := make([]error, racers)
	var wg sync.WaitGroup
	wg.Add(racers)
	for i := 0; i < racers; i++ {
		go func(i int) {
			defer wg.Done()
			errs[i] = repos.orderSvc.Decide(ctx, order.ID, service.ActionApprove)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, apierror.ErrAlreadyDecided)
		}
	}
	assert.Equal(t, 1, wins, "exactly one approver may win")

	got, err := repos.orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderApproved, got.Status)
	assert.True(t, got.Total.Equal(decimal.RequireFromString("30")))

	p, err := repos.products.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Stock, "stock decremented exactly once")

	sales, err := repos.sales.ListBetween(ctx, nil, nil)
	require.NoError(t, err)
	assert.Len(t, sales, 1, "exactly one sale materialized")
}

func TestConcurrentApprovalsStockGuard(t *testing.T) {
	db := setupDB(t)
	repos := newRepoSet(db)
	ctx := context.Background()

	// Stock covers only one of the two orders.
	user, product, supplier := repos.seed(t, ctx, 5)
	first := repos.placeOrder(t, ctx, user, product, supplier, 3)
	second := repos.placeOrder(t, ctx, user, product, supplier, 3)

	var wg sync.WaitGroup
	wg.Add(2)
	var errFirst, errSecond error
	go func() { defer wg.Done(); errFirst = repos.orderSvc.Decide(ctx, first.ID, service.ActionApprove) }()
	go func() { defer wg.Done(); errSecond = repos.orderSvc.Decide(ctx, second.ID, service.ActionApprove) }()
	wg.Wait()

	// One approval commits; the loser's claim rolls back and its order
	// stays pending. The WHERE stock >= qty guard makes negative stock
	// impossible no matter the interleaving.
	approved, pending := 0, 0
	for _, err := range []error{errFirst, errSecond} {
		switch {
		case err == nil:
			approved++
		default:
			assert.ErrorIs(t, err, apierror.ErrInsufficientStock)
			pending++
		}
	}
	assert.Equal(t, 1, approved)
	assert.Equal(t, 1, pending)

	p, err := repos.products.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Stock)

	statuses := map[model.OrderStatus]int{}
	for _, o := range []*model.Order{first, second} {
		got, err := repos.orders.FindByID(ctx, o.ID)
		require.NoError(t, err)
		statuses[got.Status]++
	}
	assert.Equal(t, 1, statuses[model.OrderApproved])
	assert.Equal(t, 1, statuses[model.OrderPending])

	sales, err := repos.sales.ListBetween(ctx, nil, nil)
	require.NoError(t, err)
	assert.Len(t, sales, 1)
}

func TestDecrementStockTxGuard(t *testing.T) {
	db := setupDB(t)
	repos := newRepoSet(db)
	ctx := context.Background()

	_, product, _ := repos.seed(t, ctx, 2)

	ok, err := repos.products.DecrementStockTx(db, product.ID, 3)
	require.NoError(t, err)
	assert.False(t, ok, "the conditional UPDATE must not match when stock < qty")

	p, err := repos.products.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Stock)

	ok, err = repos.products.DecrementStockTx(db, product.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	p, err = repos.products.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)
}

func TestBestForProductEarliestWinsTies(t *testing.T) {
	db := setupDB(t)
	repos := newRepoSet(db)
	ctx := context.Background()

	_, product, first := repos.seed(t, ctx, 5)

	// Same delivery time as the seeded supplier, registered later.
	later := &model.Supplier{
		Name:         "Globex",
		ProductID:    product.ID,
		Quantity:     100,
		Price:        decimal.RequireFromString("7"),
		DeliveryDays: first.DeliveryDays,
		Active:       true,
	}
	require.NoError(t, repos.suppliers.Create(ctx, later))

	for i := 0; i < 3; i++ {
		best, err := repos.suppliers.BestForProduct(ctx, product.ID)
		require.NoError(t, err)
		require.NotNil(t, best)
		assert.Equal(t, first.ID, best.ID, "earliest registered supplier wins the tie")
	}
}
