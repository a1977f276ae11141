package pgstorage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DoomsdayProd/ccshop-panel/internal/domain/users"
	"github.com/DoomsdayProd/ccshop-panel/internal/storage"
	"github.com/DoomsdayProd/ccshop-panel/internal/storage/dbmodels"
)

const userColumns = `id, telegram_id, username, first_name, last_name,
	wallet_balance, total_spent, total_orders, status,
	agreed_to_terms, agreed_at, created_at, updated_at`

func scanUser(row rowScanner) (*dbmodels.User, error) {
	dbUser := new(dbmodels.User)

	err := row.Scan(
		&dbUser.ID, &dbUser.TelegramID, &dbUser.Username, &dbUser.FirstName,
		&dbUser.LastName, &dbUser.WalletBalance, &dbUser.TotalSpent,
		&dbUser.TotalOrders, &dbUser.Status, &dbUser.AgreedToTerms,
		&dbUser.AgreedAt, &dbUser.CreatedAt, &dbUser.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return dbUser, nil
}

func toUser(dbUser *dbmodels.User) (*users.User, error) {
	profile := users.Profile{
		Username:  dbUser.Username.String,
		FirstName: dbUser.FirstName.String,
		LastName:  dbUser.LastName.String,
	}

	usr, err := users.RestoreUser(
		dbUser.ID, dbUser.TelegramID, profile,
		dbUser.WalletBalance, dbUser.TotalSpent, dbUser.TotalOrders,
		users.Status(dbUser.Status), dbUser.AgreedToTerms, dbUser.AgreedAt.Time,
		dbUser.CreatedAt, dbUser.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("users.RestoreUser: %w", err)
	}

	return usr, nil
}

const userInsertQuery = `INSERT INTO users (telegram_id, username, first_name, last_name, status)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING ` + userColumns

func (s *Storage) CreateUser(ctx context.Context, usr *users.User) (*users.User, error) {
	var created *users.User

	err := WithRetry(func() error {
		profile := usr.Profile()

		row := s.db.QueryRowContext(ctx, userInsertQuery,
			usr.TelegramID(), nullString(profile.Username),
			nullString(profile.FirstName), nullString(profile.LastName),
			usr.Status().String(),
		)

		dbUser, err := scanUser(row)
		if err != nil {
			if isUniqueViolation(err) {
				return storage.ErrUserAlreadyExists
			}

			return fmt.Errorf("row.Scan: %w", err)
		}

		created, err = toUser(dbUser)

		return err
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (s *Storage) GetUser(ctx context.Context, id int64) (*users.User, error) {
	return s.getUserBy(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *Storage) GetUserByTelegramID(ctx context.Context, telegramID int64) (*users.User, error) {
	return s.getUserBy(ctx, `SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, telegramID)
}

func (s *Storage) getUserBy(ctx context.Context, query string, arg any) (*users.User, error) {
	var usr *users.User

	err := WithRetry(func() error {
		dbUser, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return storage.ErrUserNotFound
			}

			return fmt.Errorf("db.QueryRowContext: %w", err)
		}

		usr, err = toUser(dbUser)

		return err
	})
	if err != nil {
		return nil, err
	}

	return usr, nil
}

// FindOrCreateUserByTelegramID races on the telegram_id unique constraint:
// when two first orders arrive at once, one insert wins and the other
// re-reads the winner's row.
func (s *Storage) FindOrCreateUserByTelegramID(ctx context.Context, telegramID int64, profile users.Profile) (*users.User, error) {
	usr, err := s.GetUserByTelegramID(ctx, telegramID)
	if err == nil {
		return usr, nil
	}

	if !errors.Is(err, storage.ErrUserNotFound) {
		return nil, err
	}

	newUsr, err := users.NewUser(telegramID, profile)
	if err != nil {
		return nil, fmt.Errorf("users.NewUser: %w", err)
	}

	created, err := s.CreateUser(ctx, newUsr)
	if err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			return s.GetUserByTelegramID(ctx, telegramID)
		}

		return nil, err
	}

	return created, nil
}

func (s *Storage) GetUsers(ctx context.Context, filter storage.UserFilter) ([]*users.User, int, error) {
	conds := []string{"1=1"}
	args := []any{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(`(username ILIKE $%d OR first_name ILIKE $%d
			OR last_name ILIKE $%d OR telegram_id::text LIKE $%d)`, n, n, n, n))
	}

	if filter.Status != "" {
		args = append(args, filter.Status.String())
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	where := strings.Join(conds, " AND ")

	var total int

	var found []*users.User

	err := WithRetry(func() error {
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE `+where, args...).Scan(&total); err != nil {
			return fmt.Errorf("db.QueryRowContext: %w", err)
		}

		query := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
			userColumns, where, len(args)+1, len(args)+2)

		rows, err := s.db.QueryContext(ctx, query, append(args, normalizeLimit(filter.Limit), filter.Offset)...)
		if err != nil {
			return fmt.Errorf("db.QueryContext: %w", err)
		}
		defer rows.Close()

		found = found[:0]

		for rows.Next() {
			dbUser, err := scanUser(rows)
			if err != nil {
				return fmt.Errorf("rows.Scan: %w", err)
			}

			usr, err := toUser(dbUser)
			if err != nil {
				return err
			}

			found = append(found, usr)
		}

		return rows.Err()
	})
	if err != nil {
		return nil, 0, err
	}

	return found, total, nil
}

func (s *Storage) UpdateUser(ctx context.Context, id int64, update storage.UserUpdate) (*users.User, error) {
	sets := []string{"updated_at = now()"}
	args := []any{}

	if update.Status != nil {
		args = append(args, update.Status.String())
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}

	if update.WalletBalance != nil {
		args = append(args, *update.WalletBalance)
		sets = append(sets, fmt.Sprintf("wallet_balance = $%d", len(args)))
	}

	if len(args) == 0 {
		return nil, storage.ErrNoFieldsToUpdate
	}

	args = append(args, id)

	var usr *users.User

	err := WithRetry(func() error {
		query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING %s`,
			strings.Join(sets, ", "), len(args), userColumns)

		dbUser, err := scanUser(s.db.QueryRowContext(ctx, query, args...))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return storage.ErrUserNotFound
			}

			return fmt.Errorf("db.QueryRowContext: %w", err)
		}

		usr, err = toUser(dbUser)

		return err
	})
	if err != nil {
		return nil, err
	}

	return usr, nil
}

func (s *Storage) AcceptUserAgreement(ctx context.Context, telegramID int64, profile users.Profile, at time.Time) (*users.User, error) {
	usr, err := s.FindOrCreateUserByTelegramID(ctx, telegramID, profile)
	if err != nil {
		return nil, err
	}

	var accepted *users.User

	err = WithRetry(func() error {
		query := `UPDATE users SET agreed_to_terms = TRUE, agreed_at = $1, updated_at = now()
			WHERE id = $2 RETURNING ` + userColumns

		dbUser, err := scanUser(s.db.QueryRowContext(ctx, query, at, usr.ID()))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return storage.ErrUserNotFound
			}

			return fmt.Errorf("db.QueryRowContext: %w", err)
		}

		accepted, err = toUser(dbUser)

		return err
	})
	if err != nil {
		return nil, err
	}

	return accepted, nil
}
