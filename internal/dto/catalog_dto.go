package dto

import "github.com/shopspring/decimal"

// ─── Products ────────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Name     string          `json:"name"      validate:"required,min=1,max=100"`
	Price    decimal.Decimal `json:"price"     validate:"required,gt=0"`
	Stock    int             `json:"stock"     validate:"min=0"`
	MinStock int             `json:"min_stock" validate:"omitempty,min=0"`
}

type UpdateProductRequest struct {
	Name     string           `json:"name"      validate:"omitempty,min=1,max=100"`
	Price    *decimal.Decimal `json:"price"     validate:"omitempty"`
	Stock    *int             `json:"stock"     validate:"omitempty,min=0"`
	MinStock *int             `json:"min_stock" validate:"omitempty,min=0"`
}

type ProductResponse struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	MinStock int             `json:"min_stock"`
	OwnerID  *string         `json:"owner_id,omitempty"`
}

// ─── Suppliers ───────────────────────────────────────────────────────────────

type CreateSupplierRequest struct {
	Name         string          `json:"name"          validate:"required,min=1,max=100"`
	ProductID    string          `json:"product_id"    validate:"required,uuid"`
	Quantity     int             `json:"quantity"      validate:"required,min=1"`
	Price        decimal.Decimal `json:"price"         validate:"required,gt=0"`
	DeliveryDays int             `json:"delivery_days" validate:"required,min=1"`
}

type SupplierResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	ProductID    string          `json:"product_id"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	DeliveryDays int             `json:"delivery_days"`
}
