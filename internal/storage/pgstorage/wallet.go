package pgstorage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/DoomsdayProd/ccshop-panel/internal/domain/users"
	"github.com/DoomsdayProd/ccshop-panel/internal/domain/wallet"
	"github.com/DoomsdayProd/ccshop-panel/internal/storage"
	"github.com/DoomsdayProd/ccshop-panel/internal/storage/dbmodels"
)

const walletColumns = `id, user_id, order_id, transaction_type, amount, description, status, created_at`

func scanWalletTx(row rowScanner) (*dbmodels.WalletTransaction, error) {
	dbTx := new(dbmodels.WalletTransaction)

	err := row.Scan(
		&dbTx.ID, &dbTx.UserID, &dbTx.OrderID, &dbTx.Type,
		&dbTx.Amount, &dbTx.Description, &dbTx.Status, &dbTx.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return dbTx, nil
}

func toWalletTx(dbTx *dbmodels.WalletTransaction) *wallet.Transaction {
	return wallet.RestoreTransaction(
		dbTx.ID, dbTx.UserID, dbTx.OrderID.Int64,
		wallet.TransactionType(dbTx.Type), dbTx.Amount,
		dbTx.Description.String, dbTx.Status, dbTx.CreatedAt,
	)
}

// CreateWalletTransaction records the transaction and adjusts the wallet
// balance in one transaction.
func (s *Storage) CreateWalletTransaction(ctx context.Context, walletTx *wallet.Transaction) (*wallet.Transaction, *users.User, error) {
	var created *wallet.Transaction

	var updatedUser *users.User

	err := WithRetry(func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("db.BeginTx: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck

		insertQuery := `INSERT INTO wallet_transactions (user_id, order_id, transaction_type, amount, description, status)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING ` + walletColumns

		dbTx, err := scanWalletTx(tx.QueryRowContext(ctx, insertQuery,
			walletTx.UserID(), nullInt64(walletTx.OrderID()), walletTx.Type().String(),
			walletTx.Amount(), nullString(walletTx.Description()), walletTx.Status(),
		))
		if err != nil {
			return fmt.Errorf("tx.QueryRowContext: %w", err)
		}

		updateQuery := `UPDATE users SET wallet_balance = wallet_balance + $1, updated_at = now()
			WHERE id = $2 RETURNING ` + userColumns

		dbUser, err := scanUser(tx.QueryRowContext(ctx, updateQuery,
			walletTx.Type().BalanceDelta(walletTx.Amount()), walletTx.UserID(),
		))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return storage.ErrUserNotFound
			}

			return fmt.Errorf("tx.QueryRowContext: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("tx.Commit: %w", err)
		}

		created = toWalletTx(dbTx)

		updatedUser, err = toUser(dbUser)

		return err
	})
	if err != nil {
		return nil, nil, err
	}

	return created, updatedUser, nil
}

func (s *Storage) GetWalletTransactions(ctx context.Context, filter storage.WalletFilter) ([]*wallet.Transaction, int, error) {
	conds := []string{"1=1"}
	args := []any{}

	if filter.UserID != 0 {
		args = append(args, filter.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}

	if filter.Type != "" {
		args = append(args, filter.Type.String())
		conds = append(conds, fmt.Sprintf("transaction_type = $%d", len(args)))
	}

	where := strings.Join(conds, " AND ")

	var total int

	var found []*wallet.Transaction

	err := WithRetry(func() error {
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM wallet_transactions WHERE `+where, args...).Scan(&total); err != nil {
			return fmt.Errorf("db.QueryRowContext: %w", err)
		}

		query := fmt.Sprintf(`SELECT %s FROM wallet_transactions WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
			walletColumns, where, len(args)+1, len(args)+2)

		rows, err := s.db.QueryContext(ctx, query, append(args, normalizeLimit(filter.Limit), filter.Offset)...)
		if err != nil {
			return fmt.Errorf("db.QueryContext: %w", err)
		}
		defer rows.Close()

		found = found[:0]

		for rows.Next() {
			dbTx, err := scanWalletTx(rows)
			if err != nil {
				return fmt.Errorf("rows.Scan: %w", err)
			}

			found = append(found, toWalletTx(dbTx))
		}

		return rows.Err()
	})
	if err != nil {
		return nil, 0, err
	}

	return found, total, nil
}
