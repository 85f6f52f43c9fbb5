package dto

import "github.com/shopspring/decimal"

// ─── Requests ────────────────────────────────────────────────────────────────

type PlaceOrderRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
	// SupplierID is optional: when omitted the best supplier for the
	// product (lowest delivery time) is picked automatically.
	SupplierID *string `json:"supplier_id" validate:"omitempty,uuid"`
}

type RecordSaleRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
}

// ─── Responses ───────────────────────────────────────────────────────────────

type OrderResponse struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	ProductID  string          `json:"product_id"`
	Product    string          `json:"product,omitempty"`
	SupplierID string          `json:"supplier_id"`
	Supplier   string          `json:"supplier,omitempty"`
	Quantity   int             `json:"quantity"`
	Status     string          `json:"status"`
	Total      decimal.Decimal `json:"total"`
	CreatedAt  string          `json:"created_at"`
}

type SaleResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
	SoldAt    string          `json:"sold_at"`
}
