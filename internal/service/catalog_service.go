package service

import (
	"context"

	"stockroom/internal/apierror"
	"stockroom/internal/dto"
	"stockroom/internal/model"
	"stockroom/internal/repository"

	"github.com/google/uuid"
)

// CatalogService manages products and the supplier reference data used to
// route orders.
type CatalogService interface {
	CreateProduct(ctx context.Context, ownerID uuid.UUID, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	DeactivateProduct(ctx context.Context, id uuid.UUID) error
	// ListInventory scopes the listing to the caller's own products for the
	// user role; managers and admins see the whole catalog.
	ListInventory(ctx context.Context, callerID uuid.UUID, role model.Role) ([]dto.ProductResponse, error)
	LowStock(ctx context.Context, threshold int) ([]dto.ProductResponse, error)

	CreateSupplier(ctx context.Context, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error)
	ListSuppliers(ctx context.Context) ([]dto.SupplierResponse, error)
	// RecommendSupplier picks the supplier offering the product with the
	// lowest delivery time; deterministic for a given supplier set.
	RecommendSupplier(ctx context.Context, productID uuid.UUID) (*dto.SupplierResponse, error)
}

type catalogService struct {
	products  repository.ProductRepository
	suppliers repository.SupplierRepository
}

func NewCatalogService(products repository.ProductRepository, suppliers repository.SupplierRepository) CatalogService {
	return &catalogService{products: products, suppliers: suppliers}
}

func (s *catalogService) CreateProduct(ctx context.Context, ownerID uuid.UUID, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	minStock := req.MinStock
	if minStock == 0 {
		minStock = 5
	}
	p := &model.Product{
		Name:     req.Name,
		Price:    req.Price,
		Stock:    req.Stock,
		MinStock: minStock,
		OwnerID:  &ownerID,
		Active:   true,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.ErrNotFound
	}
	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.MinStock != nil {
		p.MinStock = *req.MinStock
	}
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *catalogService) DeactivateProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.products.FindByID(ctx, id); err != nil {
		return apierror.ErrNotFound
	}
	// Soft delete: historical sales and orders keep a valid reference.
	return s.products.Deactivate(ctx, id)
}

func (s *catalogService) ListInventory(ctx context.Context, callerID uuid.UUID, role model.Role) ([]dto.ProductResponse, error) {
	var owner *uuid.UUID
	switch role {
	case model.RoleManager, model.RoleAdmin:
		owner = nil // unscoped
	default:
		owner = &callerID
	}
	products, err := s.products.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	return productsToResponse(products), nil
}

func (s *catalogService) LowStock(ctx context.Context, threshold int) ([]dto.ProductResponse, error) {
	products, err := s.products.LowStock(ctx, threshold)
	if err != nil {
		return nil, err
	}
	return productsToResponse(products), nil
}

func (s *catalogService) CreateSupplier(ctx context.Context, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, apierror.ErrNotFound
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, apierror.ErrNotFound
	}
	sup := &model.Supplier{
		Name:         req.Name,
		ProductID:    productID,
		Quantity:     req.Quantity,
		Price:        req.Price,
		DeliveryDays: req.DeliveryDays,
		Active:       true,
	}
	if err := s.suppliers.Create(ctx, sup); err != nil {
		return nil, err
	}
	return supplierToResponse(sup), nil
}

func (s *catalogService) ListSuppliers(ctx context.Context) ([]dto.SupplierResponse, error) {
	suppliers, err := s.suppliers.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.SupplierResponse, len(suppliers))
	for i := range suppliers {
		resp[i] = *supplierToResponse(&suppliers[i])
	}
	return resp, nil
}

func (s *catalogService) RecommendSupplier(ctx context.Context, productID uuid.UUID) (*dto.SupplierResponse, error) {
	sup, err := s.suppliers.BestForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if sup == nil {
		return nil, apierror.ErrNoSupplierAvailable
	}
	return supplierToResponse(sup), nil
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	var owner *string
	if p.OwnerID != nil {
		o := p.OwnerID.String()
		owner = &o
	}
	return &dto.ProductResponse{
		ID:       p.ID.String(),
		Name:     p.Name,
		Price:    p.Price,
		Stock:    p.Stock,
		MinStock: p.MinStock,
		OwnerID:  owner,
	}
}

func productsToResponse(products []model.Product) []dto.ProductResponse {
	resp := make([]dto.ProductResponse, len(products))
	for i := range products {
		resp[i] = *productToResponse(&products[i])
	}
	return resp
}

func supplierToResponse(s *model.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		ID:           s.ID.String(),
		Name:         s.Name,
		ProductID:    s.ProductID.String(),
		Quantity:     s.Quantity,
		Price:        s.Price,
		DeliveryDays: s.DeliveryDays,
	}
}
