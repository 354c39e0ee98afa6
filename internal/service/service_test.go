package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dukerupert/census/internal/auth"
	"github.com/dukerupert/census/internal/database"
	"github.com/dukerupert/census/internal/model"
	"github.com/dukerupert/census/internal/store"
	"github.com/dukerupert/census/internal/validate"
)

const testPassword = "secret1"

// harness seeds two households: 42 with user 5 (alice), 99 with user 6
// (bob). User 1 is an admin without a household.
type harness struct {
	svc    *Service
	spy    *spy
	db     *sql.DB
	tokens *auth.Tokens

	admin *auth.Principal
	alice *auth.Principal
	bob   *auth.Principal

	aliceRecord *model.Record
	bobRecord   *model.Record
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)
	for _, q := range []string{
		`INSERT INTO households (id, home_type, ownership, address1, city, state, zip) VALUES (42, 'HOUSE', 'OWN', '1 Main St', 'Springfield', 'IL', '62701')`,
		`INSERT INTO households (id, home_type, ownership, address1, city, state, zip) VALUES (99, 'APARTMENT', 'RENT', '9 Elm St', 'Shelbyville', 'IL', '62565')`,
	} {
		_, err := db.Exec(q)
		require.NoError(t, err)
	}
	for _, u := range []struct {
		id    int64
		email string
		role  model.Role
		hh    any
	}{
		{1, "admin@example.com", model.RoleAdmin, nil},
		{5, "alice@example.com", model.RoleUser, 42},
		{6, "bob@example.com", model.RoleUser, 99},
	} {
		_, err := db.Exec(`INSERT INTO users (id, email, name, password_hash, role, household_id) VALUES (?, ?, ?, ?, ?, ?)`,
			u.id, u.email, u.email, hash, u.role, u.hh)
		require.NoError(t, err)
	}

	sp := &spy{
		users:       store.NewUserStore(db),
		households:  store.NewHouseholdStore(db),
		lienholders: store.NewLienholderStore(db),
		records:     store.NewRecordStore(db),
		relatives:   store.NewRelativeStore(db),
	}
	ctx := context.Background()
	aliceRecord, err := sp.records.Create(ctx, testRecordFields(42, "Alice"))
	require.NoError(t, err)
	bobRecord, err := sp.records.Create(ctx, testRecordFields(99, "Bob"))
	require.NoError(t, err)

	principal := func(id int64) *auth.Principal {
		u, err := sp.users.GetByID(ctx, id)
		require.NoError(t, err)
		return auth.PrincipalFromUser(u)
	}

	tokens := auth.NewTokens("test-secret", 2*time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &harness{
		svc:         New(sp.stores(), tokens, logger),
		spy:         sp,
		db:          db,
		tokens:      tokens,
		admin:       principal(1),
		alice:       principal(5),
		bob:         principal(6),
		aliceRecord: aliceRecord,
		bobRecord:   bobRecord,
	}
}

func testRecordFields(householdID int64, first string) store.RecordFields {
	return store.RecordFields{
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

func recordAttrs(first string) validate.RecordAttrs {
	return validate.RecordAttrs{
		FirstName: first,
		LastName:  "Smith",
		DOB:       "03/14/1990",
		Gender:    model.GenderFemale,
		Hispanic:  model.HispanicNo,
		Race:      model.RaceWhite,
		OtherStay: model.OtherStayNo,
	}
}

func householdAttrs() validate.HouseholdAttrs {
	return validate.HouseholdAttrs{
		HomeType:  model.HomeTypeHouse,
		Ownership: model.OwnershipOwn,
		Address1:  "5 Pine St",
		City:      "Capital City",
		State:     "IL",
		Zip:       "62702",
	}
}

func countRows(t *testing.T, db *sql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(query, args...).Scan(&n))
	return n
}
