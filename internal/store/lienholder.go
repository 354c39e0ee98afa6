package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/census/internal/model"
)

type LienholderStore struct {
	db *sql.DB
}

func NewLienholderStore(db *sql.DB) *LienholderStore {
	return &LienholderStore{db: db}
}

func scanLienholder(scanner interface{ Scan(...any) error }) (*model.Lienholder, error) {
	var l model.Lienholder
	if err := scanner.Scan(&l.ID, &l.Name, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

const lienholderCols = `id, name, created_at, updated_at`

func (s *LienholderStore) Create(ctx context.Context, name string) (*model.Lienholder, error) {
	result, err := s.db.ExecContext(ctx, `INSERT INTO lienholders (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("insert lienholder: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *LienholderStore) List(ctx context.Context) ([]model.Lienholder, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+lienholderCols+` FROM lienholders ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list lienholders: %w", err)
	}
	defer rows.Close()

	var lienholders []model.Lienholder
	for rows.Next() {
		l, err := scanLienholder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lienholder: %w", err)
		}
		lienholders = append(lienholders, *l)
	}
	return lienholders, rows.Err()
}

func (s *LienholderStore) GetByID(ctx context.Context, id int64) (*model.Lienholder, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+lienholderCols+` FROM lienholders WHERE id = ?`, id)
	l, err := scanLienholder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get lienholder: %w", err)
	}
	return l, nil
}

func (s *LienholderStore) GetByName(ctx context.Context, name string) (*model.Lienholder, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+lienholderCols+` FROM lienholders WHERE name = ?`, name)
	l, err := scanLienholder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get lienholder by name: %w", err)
	}
	return l, nil
}

func (s *LienholderStore) Update(ctx context.Context, id int64, name string) (*model.Lienholder, error) {
	_, err := s.db.ExecContext(ctx, `UPDATE lienholders SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return nil, fmt.Errorf("update lienholder: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *LienholderStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM lienholders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete lienholder: %w", err)
	}
	return nil
}
