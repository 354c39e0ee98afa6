package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/census/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// UserChanges holds the optional profile fields of an update. Nil fields are
// left untouched.
type UserChanges struct {
	Email *string
	Name  *string
	Image *string
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := scanner.Scan(&u.ID, &u.Email, &u.Name, &u.Image, &u.PasswordHash, &u.Role, &u.HouseholdID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

const userCols = `id, email, name, image, password_hash, role, household_id, created_at, updated_at`

func (s *UserStore) Create(ctx context.Context, email, name, image, passwordHash string, role model.Role) (*model.User, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO users (email, name, image, password_hash, role) VALUES (?, ?, ?, ?, ?)`,
		email, name, image, passwordHash, role,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (s *UserStore) List(ctx context.Context) ([]model.User, error) {
	return s.list(ctx, `SELECT `+userCols+` FROM users ORDER BY id ASC`)
}

// ListByHousehold returns the users assigned to a household.
func (s *UserStore) ListByHousehold(ctx context.Context, householdID int64) ([]model.User, error) {
	return s.list(ctx, `SELECT `+userCols+` FROM users WHERE household_id = ? ORDER BY id ASC`, householdID)
}

// ListByRecord returns the users assigned to the household the record
// belongs to.
func (s *UserStore) ListByRecord(ctx context.Context, recordID int64) ([]model.User, error) {
	return s.list(ctx,
		`SELECT u.id, u.email, u.name, u.image, u.password_hash, u.role, u.household_id, u.created_at, u.updated_at
		 FROM users u
		 JOIN records r ON r.household_id = u.household_id
		 WHERE r.id = ?
		 ORDER BY u.id ASC`,
		recordID,
	)
}

func (s *UserStore) list(ctx context.Context, query string, args ...any) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *UserStore) Update(ctx context.Context, id int64, c UserChanges) (*model.User, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET email = COALESCE(?, email), name = COALESCE(?, name), image = COALESCE(?, image) WHERE id = ?`,
		c.Email, c.Name, c.Image, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *UserStore) SetHousehold(ctx context.Context, id, householdID int64) (*model.User, error) {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET household_id = ? WHERE id = ?`, householdID, id)
	if err != nil {
		return nil, fmt.Errorf("set user household: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *UserStore) SetPassword(ctx context.Context, id int64, passwordHash string) (*model.User, error) {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
	if err != nil {
		return nil, fmt.Errorf("set password: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *UserStore) SetRole(ctx context.Context, id int64, role model.Role) (*model.User, error) {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET role = ? WHERE id = ?`, role, id)
	if err != nil {
		return nil, fmt.Errorf("set role: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *UserStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
