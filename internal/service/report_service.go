package service

import (
	"context"
	"time"

	"stockroom/internal/dto"
	"stockroom/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReportService aggregates sales into revenue metrics.
type ReportService interface {
	// Summary aggregates sales in the optional [from, to) window. With no
	// sales in the window every metric is zero — averages never divide by
	// zero.
	Summary(ctx context.Context, filter dto.SummaryFilter) (*dto.SummaryResponse, error)
}

type reportService struct {
	sales     repository.SaleRepository
	suppliers repository.SupplierRepository
}

func NewReportService(sales repository.SaleRepository, suppliers repository.SupplierRepository) ReportService {
	return &reportService{sales: sales, suppliers: suppliers}
}

func (s *reportService) Summary(ctx context.Context, filter dto.SummaryFilter) (*dto.SummaryResponse, error) {
	from, to, err := parsePeriod(filter)
	if err != nil {
		return nil, err
	}
	sales, err := s.sales.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	revenue := decimal.Zero
	units := 0
	supplierIDs := make([]uuid.UUID, 0, len(sales))
	seen := make(map[uuid.UUID]bool)
	for _, sale := range sales {
		revenue = revenue.Add(sale.Total)
		units += sale.Quantity
		if sale.SupplierID != nil && !seen[*sale.SupplierID] {
			seen[*sale.SupplierID] = true
			supplierIDs = append(supplierIDs, *sale.SupplierID)
		}
	}

	avgOrder := decimal.Zero
	if units > 0 {
		avgOrder = revenue.Div(decimal.NewFromInt(int64(units))).Round(2)
	}

	// Average delivery time over the suppliers referenced by the included
	// sales; walk-in sales carry no supplier and are excluded here.
	avgDelivery := 0.0
	if len(supplierIDs) > 0 {
		days, err := s.suppliers.DeliveryDays(ctx, supplierIDs)
		if err != nil {
			return nil, err
		}
		if len(days) > 0 {
			sum := 0
			for _, d := range days {
				sum += d
			}
			avgDelivery = float64(sum) / float64(len(days))
		}
	}

	return &dto.SummaryResponse{
		TotalRevenue:    revenue,
		TotalUnitsSold:  units,
		AvgOrderValue:   avgOrder,
		AvgDeliveryDays: avgDelivery,
	}, nil
}

func parsePeriod(filter dto.SummaryFilter) (from, to *time.Time, err error) {
	if filter.From != "" {
		t, err := time.Parse("2006-01-02", filter.From)
		if err != nil {
			return nil, nil, err
		}
		from = &t
	}
	if filter.To != "" {
		t, err := time.Parse("2006-01-02", filter.To)
		if err != nil {
			return nil, nil, err
		}
		// Exclusive upper bound: include the whole "to" day.
		t = t.AddDate(0, 0, 1)
		to = &t
	}
	return from, to, nil
}
