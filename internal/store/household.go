package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/census/internal/model"
)

type HouseholdStore struct {
	db *sql.DB
}

func NewHouseholdStore(db *sql.DB) *HouseholdStore {
	return &HouseholdStore{db: db}
}

// HouseholdFields are the writable columns of a household.
type HouseholdFields struct {
	HomeType     model.HomeType
	Ownership    model.Ownership
	LienholderID *int64
	Address1     string
	Address2     string
	City         string
	State        string
	Zip          string
}

func scanHousehold(scanner interface{ Scan(...any) error }) (*model.Household, error) {
	var h model.Household
	err := scanner.Scan(&h.ID, &h.HomeType, &h.Ownership, &h.LienholderID, &h.Address1, &h.Address2,
		&h.City, &h.State, &h.Zip, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

const householdCols = `id, home_type, ownership, lienholder_id, address1, address2, city, state, zip, created_at, updated_at`

func (s *HouseholdStore) Create(ctx context.Context, f HouseholdFields) (*model.Household, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO households (home_type, ownership, lienholder_id, address1, address2, city, state, zip)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.HomeType, f.Ownership, f.LienholderID, f.Address1, f.Address2, f.City, f.State, f.Zip,
	)
	if err != nil {
		return nil, fmt.Errorf("insert household: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *HouseholdStore) GetByID(ctx context.Context, id int64) (*model.Household, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+householdCols+` FROM households WHERE id = ?`, id)
	h, err := scanHousehold(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get household: %w", err)
	}
	return h, nil
}

func (s *HouseholdStore) Update(ctx context.Context, id int64, f HouseholdFields) (*model.Household, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE households SET home_type = ?, ownership = ?, lienholder_id = ?, address1 = ?, address2 = ?,
		 city = ?, state = ?, zip = ? WHERE id = ?`,
		f.HomeType, f.Ownership, f.LienholderID, f.Address1, f.Address2, f.City, f.State, f.Zip, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update household: %w", err)
	}
	return s.GetByID(ctx, id)
}
