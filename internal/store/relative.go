package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/census/internal/model"
)

type RelativeStore struct {
	db *sql.DB
}

func NewRelativeStore(db *sql.DB) *RelativeStore {
	return &RelativeStore{db: db}
}

func scanRelative(scanner interface{ Scan(...any) error }) (*model.Relative, error) {
	var r model.Relative
	if err := scanner.Scan(&r.ID, &r.UserID, &r.RecordID, &r.Relationship, &r.CreatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

const relativeCols = `id, user_id, record_id, relationship, created_at`

func (s *RelativeStore) Create(ctx context.Context, userID, recordID int64, rel model.Relationship) (*model.Relative, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO relatives (user_id, record_id, relationship) VALUES (?, ?, ?)`,
		userID, recordID, rel,
	)
	if err != nil {
		return nil, fmt.Errorf("insert relative: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *RelativeStore) GetByID(ctx context.Context, id int64) (*model.Relative, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+relativeCols+` FROM relatives WHERE id = ?`, id)
	r, err := scanRelative(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get relative: %w", err)
	}
	return r, nil
}

// GetByUserAndRecord returns the user's relative row for a record, if any.
func (s *RelativeStore) GetByUserAndRecord(ctx context.Context, userID, recordID int64) (*model.Relative, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+relativeCols+` FROM relatives WHERE user_id = ? AND record_id = ? ORDER BY id ASC LIMIT 1`,
		userID, recordID,
	)
	r, err := scanRelative(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get relative by record: %w", err)
	}
	return r, nil
}

// GetSelf returns the user's SELF relative, if one exists.
func (s *RelativeStore) GetSelf(ctx context.Context, userID int64) (*model.Relative, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+relativeCols+` FROM relatives WHERE user_id = ? AND relationship = ? ORDER BY id ASC LIMIT 1`,
		userID, model.RelationshipSelf,
	)
	r, err := scanRelative(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get self relative: %w", err)
	}
	return r, nil
}

func (s *RelativeStore) ListByUser(ctx context.Context, userID int64) ([]model.Relative, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+relativeCols+` FROM relatives WHERE user_id = ? ORDER BY id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list relatives: %w", err)
	}
	defer rows.Close()

	var relatives []model.Relative
	for rows.Next() {
		r, err := scanRelative(rows)
		if err != nil {
			return nil, fmt.Errorf("scan relative: %w", err)
		}
		relatives = append(relatives, *r)
	}
	return relatives, rows.Err()
}

func (s *RelativeStore) Update(ctx context.Context, id, recordID int64, rel model.Relationship) (*model.Relative, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE relatives SET record_id = ?, relationship = ? WHERE id = ?`, recordID, rel, id)
	if err != nil {
		return nil, fmt.Errorf("update relative: %w", err)
	}
	return s.GetByID(ctx, id)
}
