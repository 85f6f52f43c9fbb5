package dto

import "github.com/shopspring/decimal"

// SummaryFilter is bound from query string of GET /v1/analytics/summary.
// Dates are inclusive-from, exclusive-to, format YYYY-MM-DD; empty = all time.
type SummaryFilter struct {
	From string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `form:"to"   validate:"omitempty,datetime=2006-01-02"`
}

// SummaryResponse aggregates sales in the selected period. Averages are 0
// when the period has no sales (never a division by zero).
type SummaryResponse struct {
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	TotalUnitsSold  int             `json:"total_units_sold"`
	AvgOrderValue   decimal.Decimal `json:"avg_order_value"`
	AvgDeliveryDays float64         `json:"avg_delivery_days"`
}
