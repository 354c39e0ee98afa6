package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/census/internal/model"
)

type RecordStore struct {
	db *sql.DB
}

func NewRecordStore(db *sql.DB) *RecordStore {
	return &RecordStore{db: db}
}

// RecordFields are the writable columns of a record.
type RecordFields struct {
	HouseholdID   int64
	FirstName     string
	LastName      string
	DOB           time.Time
	Gender        model.Gender
	Telephone     *string
	Hispanic      model.Hispanic
	HispanicOther *string
	Race          model.Race
	RaceOther     *string
	OtherStay     model.OtherStay
}

const dateLayout = "2006-01-02"

func scanRecord(scanner interface{ Scan(...any) error }) (*model.Record, error) {
	var r model.Record
	err := scanner.Scan(&r.ID, &r.HouseholdID, &r.FirstName, &r.LastName, &r.DOB, &r.Gender, &r.Telephone,
		&r.Hispanic, &r.HispanicOther, &r.Race, &r.RaceOther, &r.OtherStay, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

const recordCols = `id, household_id, first_name, last_name, dob, gender, telephone, hispanic, hispanic_other, race, race_other, other_stay, created_at, updated_at`

func (s *RecordStore) Create(ctx context.Context, f RecordFields) (*model.Record, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO records (household_id, first_name, last_name, dob, gender, telephone, hispanic, hispanic_other, race, race_other, other_stay)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.HouseholdID, f.FirstName, f.LastName, f.DOB.Format(dateLayout), f.Gender, f.Telephone,
		f.Hispanic, f.HispanicOther, f.Race, f.RaceOther, f.OtherStay,
	)
	if err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *RecordStore) GetByID(ctx context.Context, id int64) (*model.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordCols+` FROM records WHERE id = ?`, id)
	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return r, nil
}

func (s *RecordStore) ListByHousehold(ctx context.Context, householdID int64) ([]model.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordCols+` FROM records WHERE household_id = ? ORDER BY id ASC`, householdID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

func (s *RecordStore) Update(ctx context.Context, id int64, f RecordFields) (*model.Record, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE records SET household_id = ?, first_name = ?, last_name = ?, dob = ?, gender = ?, telephone = ?,
		 hispanic = ?, hispanic_other = ?, race = ?, race_other = ?, other_stay = ? WHERE id = ?`,
		f.HouseholdID, f.FirstName, f.LastName, f.DOB.Format(dateLayout), f.Gender, f.Telephone,
		f.Hispanic, f.HispanicOther, f.Race, f.RaceOther, f.OtherStay, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update record: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *RecordStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// DeleteByHousehold removes every record of a household and reports how many
// rows went away.
func (s *RecordStore) DeleteByHousehold(ctx context.Context, householdID int64) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE household_id = ?`, householdID)
	if err != nil {
		return 0, fmt.Errorf("delete household records: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
