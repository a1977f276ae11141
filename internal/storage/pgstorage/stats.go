package pgstorage

import (
	"context"
	"fmt"

	"github.com/DoomsdayProd/ccshop-panel/internal/domain/entries"
	"github.com/DoomsdayProd/ccshop-panel/internal/domain/orders"
	"github.com/DoomsdayProd/ccshop-panel/internal/storage"
	"github.com/lib/pq"
)

func (s *Storage) GetSalesStats(ctx context.Context) (*storage.SalesStats, error) {
	stats := new(storage.SalesStats)

	err := WithRetry(func() error {
		query := `SELECT COUNT(*), COALESCE(SUM(total_amount), 0) FROM orders WHERE payment_status = $1`

		if err := s.db.QueryRowContext(ctx, query, orders.PaymentStatusCompleted.String()).
			Scan(&stats.TotalOrders, &stats.TotalSales); err != nil {
			return fmt.Errorf("db.QueryRowContext: %w", err)
		}

		todayQuery := `SELECT COUNT(*), COALESCE(SUM(total_amount), 0) FROM orders
			WHERE payment_status = $1 AND created_at >= date_trunc('day', now())`

		if err := s.db.QueryRowContext(ctx, todayQuery, orders.PaymentStatusCompleted.String()).
			Scan(&stats.OrdersToday, &stats.SalesToday); err != nil {
			return fmt.Errorf("db.QueryRowContext: %w", err)
		}

		pendingQuery := `SELECT COUNT(*) FROM orders WHERE payment_status = ANY($1)`

		pendingStatuses := []string{
			orders.PaymentStatusPending.String(),
			orders.PaymentStatusProcessing.String(),
		}

		if err := s.db.QueryRowContext(ctx, pendingQuery, pq.Array(pendingStatuses)).
			Scan(&stats.PendingOrders); err != nil {
			return fmt.Errorf("db.QueryRowContext: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *Storage) GetStockStats(ctx context.Context) (*storage.StockStats, error) {
	stats := new(storage.StockStats)

	err := WithRetry(func() error {
		query := `SELECT
			COUNT(*) FILTER (WHERE status = $1),
			COUNT(*) FILTER (WHERE status = $2),
			COUNT(*) FILTER (WHERE status = $3)
		FROM data_entries`

		if err := s.db.QueryRowContext(ctx, query,
			entries.StatusAvailable.String(),
			entries.StatusReserved.String(),
			entries.StatusSold.String(),
		).Scan(&stats.Available, &stats.Reserved, &stats.Sold); err != nil {
			return fmt.Errorf("db.QueryRowContext: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *Storage) GetUserStats(ctx context.Context) (*storage.UserStats, error) {
	stats := new(storage.UserStats)

	err := WithRetry(func() error {
		query := `SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'active'),
			COUNT(*) FILTER (WHERE status = 'banned'),
			COUNT(*) FILTER (WHERE created_at >= date_trunc('day', now()))
		FROM users`

		if err := s.db.QueryRowContext(ctx, query).
			Scan(&stats.TotalUsers, &stats.ActiveUsers, &stats.BannedUsers, &stats.NewToday); err != nil {
			return fmt.Errorf("db.QueryRowContext: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return stats, nil
}
