package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dvloznov/finance-journal/internal/domain"
	"github.com/dvloznov/finance-journal/internal/storage"
)

// CreateUser inserts a new user and returns its ID.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *domain.User) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO "user" (username, first_name, last_name, image, hashed_password)
			VALUES (?, ?, ?, ?, ?)
		`,
			user.Username,
			user.FirstName,
			user.LastName,
			user.Image,
			user.HashedPassword,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("username %q: %w", user.Username, storage.ErrDuplicate)
			}
			return fmt.Errorf("insert user: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("read user id: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("CreateUser: %w", err)
	}

	user.ID = id
	return id, nil
}

const selectUser = `
	SELECT id, username, first_name, last_name, image, hashed_password
	FROM "user"
`

// GetUserByUsername retrieves a user by exact username.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, selectUser+" WHERE username = ?", username))
	if err != nil {
		return nil, fmt.Errorf("GetUserByUsername: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, selectUser+" WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("GetUserByID: %w", err)
	}
	return user, nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.Image,
		&user.HashedPassword,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return user, nil
}
