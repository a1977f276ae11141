package pgstorage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/DoomsdayProd/ccshop-panel/internal/domain/entries"
	"github.com/DoomsdayProd/ccshop-panel/internal/domain/orders"
	"github.com/DoomsdayProd/ccshop-panel/internal/storage"
	"github.com/DoomsdayProd/ccshop-panel/internal/storage/dbmodels"
)

const orderColumns = `id, user_id, telegram_user_id, data_entry_id, payment_method,
	payment_status, total_amount, crypto_address, invoice_id, created_at, updated_at`

func scanOrder(row rowScanner) (*dbmodels.Order, error) {
	dbOrder := new(dbmodels.Order)

	err := row.Scan(
		&dbOrder.ID, &dbOrder.UserID, &dbOrder.TelegramUserID, &dbOrder.DataEntryID,
		&dbOrder.PaymentMethod, &dbOrder.PaymentStatus, &dbOrder.TotalAmount,
		&dbOrder.CryptoAddress, &dbOrder.InvoiceID, &dbOrder.CreatedAt, &dbOrder.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return dbOrder, nil
}

func toOrder(dbOrder *dbmodels.Order) (*orders.Order, error) {
	ord, err := orders.RestoreOrder(
		dbOrder.ID, dbOrder.UserID.Int64, dbOrder.TelegramUserID.Int64, dbOrder.DataEntryID,
		orders.PaymentMethod(dbOrder.PaymentMethod), orders.PaymentStatus(dbOrder.PaymentStatus),
		dbOrder.TotalAmount, dbOrder.CryptoAddress.String, dbOrder.InvoiceID.String,
		dbOrder.CreatedAt, dbOrder.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("orders.RestoreOrder: %w", err)
	}

	return ord, nil
}

func nullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}

// CreateOrder reserves the entry and records the order in one transaction.
// The reservation is a conditional update: only a row that is still
// available flips to reserved, so two concurrent orders for the same entry
// cannot both succeed.
func (s *Storage) CreateOrder(ctx context.Context, ord *orders.Order) (*orders.Order, *entries.Entry, error) {
	var created *orders.Order

	var reserved *entries.Entry

	err := WithRetry(func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("db.BeginTx: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck

		reserveQuery := `UPDATE data_entries SET status = $1, updated_at = now()
			WHERE id = $2 AND status = $3
			RETURNING ` + entryColumns

		dbEntry, err := scanEntry(tx.QueryRowContext(ctx, reserveQuery,
			entries.StatusReserved.String(), ord.DataEntryID(), entries.StatusAvailable.String()))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return storage.ErrEntryUnavailable
			}

			return fmt.Errorf("tx.QueryRowContext: %w", err)
		}

		entry, err := toEntry(dbEntry)
		if err != nil {
			return err
		}

		insertQuery := `INSERT INTO orders (
				user_id, telegram_user_id, data_entry_id, payment_method,
				payment_status, total_amount, crypto_address, invoice_id
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING ` + orderColumns

		// total_amount snapshots the price of the row just reserved.
		dbOrder, err := scanOrder(tx.QueryRowContext(ctx, insertQuery,
			nullInt64(ord.UserID()), nullInt64(ord.TelegramUserID()), ord.DataEntryID(),
			ord.PaymentMethod().String(), ord.PaymentStatus().String(), entry.Price(),
			nullString(ord.CryptoAddress()), nullString(ord.InvoiceID()),
		))
		if err != nil {
			return fmt.Errorf("tx.QueryRowContext: %w", err)
		}

		if ord.UserID() != 0 {
			if _, err := tx.ExecContext(ctx,
				`UPDATE users SET total_orders = total_orders + 1, updated_at = now() WHERE id = $1`,
				ord.UserID(),
			); err != nil {
				return fmt.Errorf("tx.ExecContext: %w", err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("tx.Commit: %w", err)
		}

		created, err = toOrder(dbOrder)
		if err != nil {
			return err
		}

		reserved = entry

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return created, reserved, nil
}

func (s *Storage) GetOrder(ctx context.Context, id int64) (*orders.Order, error) {
	var ord *orders.Order

	err := WithRetry(func() error {
		query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

		dbOrder, err := scanOrder(s.db.QueryRowContext(ctx, query, id))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return storage.ErrOrderNotFound
			}

			return fmt.Errorf("db.QueryRowContext: %w", err)
		}

		ord, err = toOrder(dbOrder)

		return err
	})
	if err != nil {
		return nil, err
	}

	return ord, nil
}

func (s *Storage) GetOrders(ctx context.Context, filter storage.OrderFilter) ([]*orders.Order, int, error) {
	conds := []string{"1=1"}
	args := []any{}

	if filter.UserID != 0 {
		args = append(args, filter.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}

	if filter.TelegramUserID != 0 {
		args = append(args, filter.TelegramUserID)
		conds = append(conds, fmt.Sprintf("telegram_user_id = $%d", len(args)))
	}

	if filter.Status != "" {
		args = append(args, filter.Status.String())
		conds = append(conds, fmt.Sprintf("payment_status = $%d", len(args)))
	}

	where := strings.Join(conds, " AND ")

	var total int

	var found []*orders.Order

	err := WithRetry(func() error {
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE `+where, args...).Scan(&total); err != nil {
			return fmt.Errorf("db.QueryRowContext: %w", err)
		}

		query := fmt.Sprintf(`SELECT %s FROM orders WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
			orderColumns, where, len(args)+1, len(args)+2)

		rows, err := s.db.QueryContext(ctx, query, append(args, normalizeLimit(filter.Limit), filter.Offset)...)
		if err != nil {
			return fmt.Errorf("db.QueryContext: %w", err)
		}
		defer rows.Close()

		found = found[:0]

		for rows.Next() {
			dbOrder, err := scanOrder(rows)
			if err != nil {
				return fmt.Errorf("rows.Scan: %w", err)
			}

			ord, err := toOrder(dbOrder)
			if err != nil {
				return err
			}

			found = append(found, ord)
		}

		return rows.Err()
	})
	if err != nil {
		return nil, 0, err
	}

	return found, total, nil
}

// ApplyOrderTransition performs the order update, the derived entry status
// change and the total_spent delta in one transaction. The order row is
// guarded by the status the caller observed; a concurrent transition makes
// the guard miss and the whole unit rolls back with ErrOrderConflict.
func (s *Storage) ApplyOrderTransition(ctx context.Context, tr storage.OrderTransition) (*orders.Order, error) {
	sets := []string{"updated_at = now()"}
	args := []any{}

	if tr.Update.PaymentStatus != nil {
		args = append(args, tr.Update.PaymentStatus.String())
		sets = append(sets, fmt.Sprintf("payment_status = $%d", len(args)))
	}

	if tr.Update.PaymentMethod != nil {
		args = append(args, tr.Update.PaymentMethod.String())
		sets = append(sets, fmt.Sprintf("payment_method = $%d", len(args)))
	}

	if tr.Update.CryptoAddress != nil {
		args = append(args, nullString(*tr.Update.CryptoAddress))
		sets = append(sets, fmt.Sprintf("crypto_address = $%d", len(args)))
	}

	if tr.Update.InvoiceID != nil {
		args = append(args, nullString(*tr.Update.InvoiceID))
		sets = append(sets, fmt.Sprintf("invoice_id = $%d", len(args)))
	}

	if len(args) == 0 {
		return nil, storage.ErrNoFieldsToUpdate
	}

	args = append(args, tr.OrderID, tr.ExpectedStatus.String())

	var updated *orders.Order

	err := WithRetry(func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("db.BeginTx: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck

		query := fmt.Sprintf(`UPDATE orders SET %s WHERE id = $%d AND payment_status = $%d RETURNING %s`,
			strings.Join(sets, ", "), len(args)-1, len(args), orderColumns)

		dbOrder, err := scanOrder(tx.QueryRowContext(ctx, query, args...))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return s.classifyTransitionMiss(ctx, tr.OrderID)
			}

			return fmt.Errorf("tx.QueryRowContext: %w", err)
		}

		if tr.EntryID != 0 {
			if _, err := tx.ExecContext(ctx,
				`UPDATE data_entries SET status = $1, updated_at = now() WHERE id = $2`,
				tr.EntryStatus.String(), tr.EntryID,
			); err != nil {
				return fmt.Errorf("tx.ExecContext: %w", err)
			}
		}

		if tr.SpentUserID != 0 {
			if _, err := tx.ExecContext(ctx,
				`UPDATE users SET total_spent = total_spent + $1, updated_at = now() WHERE id = $2`,
				tr.SpentDelta, tr.SpentUserID,
			); err != nil {
				return fmt.Errorf("tx.ExecContext: %w", err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("tx.Commit: %w", err)
		}

		updated, err = toOrder(dbOrder)

		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// classifyTransitionMiss distinguishes "order gone" from "order changed
// underneath us" after the guarded update matched no row.
func (s *Storage) classifyTransitionMiss(ctx context.Context, orderID int64) error {
	var exists bool

	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, orderID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("db.QueryRowContext: %w", err)
	}

	if !exists {
		return storage.ErrOrderNotFound
	}

	return storage.ErrOrderConflict
}
