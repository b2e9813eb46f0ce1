package order

import "context"

// Stats aggregates the audit table for the admin dashboard.
type Stats struct {
	TotalOrders  int64
	TotalRevenue int64 // source-currency sum over placed and approved records
}

// Repository is the append-only audit store for orders.
type Repository interface {
	Append(ctx context.Context, o *Order) error
	Stats(ctx context.Context) (*Stats, error)
}
