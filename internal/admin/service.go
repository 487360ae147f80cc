package admin

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	pkgerrors "github.com/boutique2v/commerce-backend/pkg/errors"
	"github.com/boutique2v/commerce-backend/pkg/logger"
)

// UserCounter reports account totals.
type UserCounter interface {
	Count(ctx context.Context) (int64, error)
}

// ProductCounter reports catalog totals.
type ProductCounter interface {
	Count(ctx context.Context) (int64, error)
	CountLowStock(ctx context.Context) (int64, error)
}

// OrderAggregator reports order totals.
type OrderAggregator interface {
	CountByStatus(ctx context.Context) (map[string]int64, error)
	RevenueTotal(ctx context.Context) (float64, error)
}

// DashboardStats is the admin landing page summary.
type DashboardStats struct {
	TotalUsers     int64            `json:"total_users"`
	TotalProducts  int64            `json:"total_products"`
	LowStockItems  int64            `json:"low_stock_items"`
	OrdersByStatus map[string]int64 `json:"orders_by_status"`
	TotalOrders    int64            `json:"total_orders"`
	Revenue        float64          `json:"revenue"`
}

// Service exposes the admin dashboard aggregates.
type Service interface {
	Dashboard(ctx context.Context) (*DashboardStats, error)
}

// ServiceParams wires the admin service dependencies.
type ServiceParams struct {
	Users    UserCounter
	Products ProductCounter
	Orders   OrderAggregator
	Logger   *logger.Logger
}

type service struct {
	users    UserCounter
	products ProductCounter
	orders   OrderAggregator
	logg     *logger.Logger
}

// NewService constructs the admin service.
func NewService(params ServiceParams) (Service, error) {
	if params.Users == nil {
		return nil, fmt.Errorf("user counter required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product counter required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order aggregator required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		users:    params.Users,
		products: params.Products,
		orders:   params.Orders,
		logg:     params.Logger,
	}, nil
}

// Dashboard gathers the independent aggregates in parallel.
func (s *service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		total, err := s.users.Count(groupCtx)
		stats.TotalUsers = total
		return err
	})
	group.Go(func() error {
		total, err := s.products.Count(groupCtx)
		stats.TotalProducts = total
		return err
	})
	group.Go(func() error {
		total, err := s.products.CountLowStock(groupCtx)
		stats.LowStockItems = total
		return err
	})
	group.Go(func() error {
		byStatus, err := s.orders.CountByStatus(groupCtx)
		stats.OrdersByStatus = byStatus
		return err
	})
	group.Go(func() error {
		revenue, err := s.orders.RevenueTotal(groupCtx)
		stats.Revenue = revenue
		return err
	})

	if err := group.Wait(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "gathering dashboard stats")
	}

	if stats.OrdersByStatus == nil {
		stats.OrdersByStatus = map[string]int64{}
	}
	for _, count := range stats.OrdersByStatus {
		stats.TotalOrders += count
	}
	return &stats, nil
}
