package pgstorage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/DoomsdayProd/ccshop-panel/internal/domain/entries"
	"github.com/DoomsdayProd/ccshop-panel/internal/storage"
	"github.com/DoomsdayProd/ccshop-panel/internal/storage/dbmodels"
	"github.com/lib/pq"
)

const entryColumns = `id, card_number, expiry_month, expiry_year, cvv, cardholder_name,
	bank_name, card_brand, card_type, card_level, address_line1, address_line2,
	city, state, zip_code, country, phone, email, additional_info,
	data_format, price, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*dbmodels.DataEntry, error) {
	dbEntry := new(dbmodels.DataEntry)

	err := row.Scan(
		&dbEntry.ID, &dbEntry.CardNumber, &dbEntry.ExpiryMonth, &dbEntry.ExpiryYear,
		&dbEntry.CVV, &dbEntry.CardholderName, &dbEntry.BankName, &dbEntry.CardBrand,
		&dbEntry.CardType, &dbEntry.CardLevel, &dbEntry.AddressLine1, &dbEntry.AddressLine2,
		&dbEntry.City, &dbEntry.State, &dbEntry.ZipCode, &dbEntry.Country,
		&dbEntry.Phone, &dbEntry.Email, &dbEntry.AdditionalInfo,
		&dbEntry.DataFormat, &dbEntry.Price, &dbEntry.Status,
		&dbEntry.CreatedAt, &dbEntry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return dbEntry, nil
}

func toEntry(dbEntry *dbmodels.DataEntry) (*entries.Entry, error) {
	card := entries.Card{
		Number:         dbEntry.CardNumber,
		ExpiryMonth:    dbEntry.ExpiryMonth.String,
		ExpiryYear:     dbEntry.ExpiryYear.String,
		CVV:            dbEntry.CVV.String,
		CardholderName: dbEntry.CardholderName.String,
		BankName:       dbEntry.BankName.String,
		Brand:          dbEntry.CardBrand.String,
		Type:           dbEntry.CardType.String,
		Level:          dbEntry.CardLevel.String,
		AddressLine1:   dbEntry.AddressLine1.String,
		AddressLine2:   dbEntry.AddressLine2.String,
		City:           dbEntry.City.String,
		State:          dbEntry.State.String,
		ZipCode:        dbEntry.ZipCode.String,
		Country:        dbEntry.Country.String,
		Phone:          dbEntry.Phone.String,
		Email:          dbEntry.Email.String,
		AdditionalInfo: dbEntry.AdditionalInfo.String,
	}

	entry, err := entries.RestoreEntry(
		dbEntry.ID, card, entries.DataFormat(dbEntry.DataFormat),
		dbEntry.Price, entries.Status(dbEntry.Status),
		dbEntry.CreatedAt, dbEntry.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("entries.RestoreEntry: %w", err)
	}

	return entry, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func entryInsertArgs(entry *entries.Entry) []any {
	card := entry.Card()

	return []any{
		card.Number, nullString(card.ExpiryMonth), nullString(card.ExpiryYear),
		nullString(card.CVV), nullString(card.CardholderName), nullString(card.BankName),
		nullString(card.Brand), nullString(card.Type), nullString(card.Level),
		nullString(card.AddressLine1), nullString(card.AddressLine2), nullString(card.City),
		nullString(card.State), nullString(card.ZipCode), nullString(card.Country),
		nullString(card.Phone), nullString(card.Email), nullString(card.AdditionalInfo),
		entry.DataFormat(), entry.Price(), entry.Status().String(),
	}
}

const entryInsertQuery = `INSERT INTO data_entries (
		card_number, expiry_month, expiry_year, cvv, cardholder_name,
		bank_name, card_brand, card_type, card_level, address_line1, address_line2,
		city, state, zip_code, country, phone, email, additional_info,
		data_format, price, status
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	RETURNING ` + entryColumns

func (s *Storage) CreateEntry(ctx context.Context, entry *entries.Entry) (*entries.Entry, error) {
	var created *entries.Entry

	err := WithRetry(func() error {
		row := s.db.QueryRowContext(ctx, entryInsertQuery, entryInsertArgs(entry)...)

		dbEntry, err := scanEntry(row)
		if err != nil {
			return fmt.Errorf("row.Scan: %w", err)
		}

		created, err = toEntry(dbEntry)

		return err
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (s *Storage) CreateEntries(ctx context.Context, batch []*entries.Entry) ([]*entries.Entry, error) {
	created := make([]*entries.Entry, 0, len(batch))

	err := WithRetry(func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("db.BeginTx: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck

		created = created[:0]

		for _, entry := range batch {
			row := tx.QueryRowContext(ctx, entryInsertQuery, entryInsertArgs(entry)...)

			dbEntry, err := scanEntry(row)
			if err != nil {
				return fmt.Errorf("row.Scan: %w", err)
			}

			newEntry, err := toEntry(dbEntry)
			if err != nil {
				return err
			}

			created = append(created, newEntry)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("tx.Commit: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (s *Storage) GetEntry(ctx context.Context, id int64) (*entries.Entry, error) {
	var entry *entries.Entry

	err := WithRetry(func() error {
		query := `SELECT ` + entryColumns + ` FROM data_entries WHERE id = $1`

		dbEntry, err := scanEntry(s.db.QueryRowContext(ctx, query, id))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return storage.ErrEntryNotFound
			}

			return fmt.Errorf("db.QueryRowContext: %w", err)
		}

		entry, err = toEntry(dbEntry)

		return err
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

func (s *Storage) GetEntries(ctx context.Context, filter storage.EntryFilter) ([]*entries.Entry, int, error) {
	conds := []string{"1=1"}
	args := []any{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(`(cardholder_name ILIKE $%d OR bank_name ILIKE $%d
			OR card_brand ILIKE $%d OR country ILIKE $%d)`, n, n, n, n))
	}

	if filter.Status != "" {
		args = append(args, filter.Status.String())
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	if filter.Format != "" {
		args = append(args, string(filter.Format))
		conds = append(conds, fmt.Sprintf("data_format = $%d", len(args)))
	}

	where := strings.Join(conds, " AND ")

	var total int

	var found []*entries.Entry

	err := WithRetry(func() error {
		countQuery := `SELECT COUNT(*) FROM data_entries WHERE ` + where

		if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
			return fmt.Errorf("db.QueryRowContext: %w", err)
		}

		query := fmt.Sprintf(`SELECT %s FROM data_entries WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
			entryColumns, where, len(args)+1, len(args)+2)

		rows, err := s.db.QueryContext(ctx, query, append(args, normalizeLimit(filter.Limit), filter.Offset)...)
		if err != nil {
			return fmt.Errorf("db.QueryContext: %w", err)
		}
		defer rows.Close()

		found = found[:0]

		for rows.Next() {
			dbEntry, err := scanEntry(rows)
			if err != nil {
				return fmt.Errorf("rows.Scan: %w", err)
			}

			entry, err := toEntry(dbEntry)
			if err != nil {
				return err
			}

			found = append(found, entry)
		}

		return rows.Err()
	})
	if err != nil {
		return nil, 0, err
	}

	return found, total, nil
}

func (s *Storage) GetEntriesByStatus(ctx context.Context, statuses ...entries.Status) ([]*entries.Entry, error) {
	var found []*entries.Entry

	err := WithRetry(func() error {
		query := `SELECT ` + entryColumns + ` FROM data_entries`

		args := []any{}

		if len(statuses) > 0 {
			strs := make([]string, len(statuses))
			for i, status := range statuses {
				strs[i] = status.String()
			}

			query += ` WHERE status = ANY($1)`
			args = append(args, pq.Array(strs))
		}

		query += ` ORDER BY id`

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("db.QueryContext: %w", err)
		}
		defer rows.Close()

		found = found[:0]

		for rows.Next() {
			dbEntry, err := scanEntry(rows)
			if err != nil {
				return fmt.Errorf("rows.Scan: %w", err)
			}

			entry, err := toEntry(dbEntry)
			if err != nil {
				return err
			}

			found = append(found, entry)
		}

		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return found, nil
}

func (s *Storage) UpdateEntry(ctx context.Context, id int64, update storage.EntryUpdate) (*entries.Entry, error) {
	sets := []string{"updated_at = now()"}
	args := []any{}

	if update.Price != nil {
		args = append(args, *update.Price)
		sets = append(sets, fmt.Sprintf("price = $%d", len(args)))
	}

	if update.Status != nil {
		args = append(args, update.Status.String())
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}

	if len(args) == 0 {
		return nil, storage.ErrNoFieldsToUpdate
	}

	args = append(args, id)

	var entry *entries.Entry

	err := WithRetry(func() error {
		query := fmt.Sprintf(`UPDATE data_entries SET %s WHERE id = $%d RETURNING %s`,
			strings.Join(sets, ", "), len(args), entryColumns)

		dbEntry, err := scanEntry(s.db.QueryRowContext(ctx, query, args...))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return storage.ErrEntryNotFound
			}

			return fmt.Errorf("db.QueryRowContext: %w", err)
		}

		entry, err = toEntry(dbEntry)

		return err
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

func (s *Storage) DeleteEntry(ctx context.Context, id int64) error {
	return WithRetry(func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM data_entries WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("db.ExecContext: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("res.RowsAffected: %w", err)
		}

		if affected == 0 {
			return storage.ErrEntryNotFound
		}

		return nil
	})
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 50
	}

	return limit
}
