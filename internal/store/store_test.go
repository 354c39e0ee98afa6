package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dukerupert/census/internal/database"
	"github.com/dukerupert/census/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestHousehold(t *testing.T, hs *HouseholdStore) *model.Household {
	t.Helper()
	h, err := hs.Create(context.Background(), HouseholdFields{
		HomeType:  model.HomeTypeHouse,
		Ownership: model.OwnershipOwn,
		Address1:  "1 Main St",
		City:      "Springfield",
		State:     "IL",
		Zip:       "62701",
	})
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	return h
}

func testRecordFields(householdID int64, first string) RecordFields {
	return RecordFields{
		HouseholdID: householdID,
		FirstName:   first,
		LastName:    "Smith",
		DOB:         time.Date(1990, time.March, 14, 0, 0, 0, 0, time.UTC),
		Gender:      model.GenderFemale,
		Hispanic:    model.HispanicNo,
		Race:        model.RaceWhite,
		OtherStay:   model.OtherStayNo,
	}
}
