package store

import (
	"context"
	"testing"

	"github.com/dukerupert/census/internal/model"
)

func TestHouseholdCreate(t *testing.T) {
	hs := NewHouseholdStore(setupTestDB(t))

	h := createTestHousehold(t, hs)
	if h.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if h.HomeType != model.HomeTypeHouse {
		t.Errorf("home_type = %q, want %q", h.HomeType, model.HomeTypeHouse)
	}
	if h.LienholderID != nil {
		t.Errorf("lienholder_id = %d, want nil", *h.LienholderID)
	}
}

func TestHouseholdGetByIDNotFound(t *testing.T) {
	hs := NewHouseholdStore(setupTestDB(t))

	h, err := hs.GetByID(context.Background(), 999)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if h != nil {
		t.Error("expected nil for nonexistent household")
	}
}

func TestHouseholdUpdateWithLienholder(t *testing.T) {
	db := setupTestDB(t)
	hs := NewHouseholdStore(db)
	ls := NewLienholderStore(db)
	ctx := context.Background()

	h := createTestHousehold(t, hs)
	l, err := ls.Create(ctx, "First Bank")
	if err != nil {
		t.Fatalf("create lienholder: %v", err)
	}

	updated, err := hs.Update(ctx, h.ID, HouseholdFields{
		HomeType:     model.HomeTypeApartment,
		Ownership:    model.OwnershipMortgage,
		LienholderID: &l.ID,
		Address1:     "2 Oak Ave",
		Address2:     "Apt 4",
		City:         "Springfield",
		State:        "IL",
		Zip:          "62704",
	})
	if err != nil {
		t.Fatalf("update household: %v", err)
	}
	if updated.Ownership != model.OwnershipMortgage {
		t.Errorf("ownership = %q, want %q", updated.Ownership, model.OwnershipMortgage)
	}
	if updated.LienholderID == nil || *updated.LienholderID != l.ID {
		t.Errorf("lienholder_id = %v, want %d", updated.LienholderID, l.ID)
	}
	if updated.Address2 != "Apt 4" {
		t.Errorf("address2 = %q, want %q", updated.Address2, "Apt 4")
	}
}

func TestHouseholdInvalidEnumRejected(t *testing.T) {
	hs := NewHouseholdStore(setupTestDB(t))

	_, err := hs.Create(context.Background(), HouseholdFields{
		HomeType:  model.HomeType("CASTLE"),
		Ownership: model.OwnershipOwn,
		Address1:  "1 Main St",
		City:      "Springfield",
		State:     "IL",
		Zip:       "62701",
	})
	if err == nil {
		t.Fatal("expected error for invalid home type, got nil")
	}
}

func TestHouseholdLienholderDeleteSetsNull(t *testing.T) {
	db := setupTestDB(t)
	hs := NewHouseholdStore(db)
	ls := NewLienholderStore(db)
	ctx := context.Background()

	l, _ := ls.Create(ctx, "First Bank")
	f := HouseholdFields{
		HomeType:     model.HomeTypeHouse,
		Ownership:    model.OwnershipMortgage,
		LienholderID: &l.ID,
		Address1:     "1 Main St",
		City:         "Springfield",
		State:        "IL",
		Zip:          "62701",
	}
	h, err := hs.Create(ctx, f)
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	if err := ls.Delete(ctx, l.ID); err != nil {
		t.Fatalf("delete lienholder: %v", err)
	}

	got, err := hs.GetByID(ctx, h.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got.LienholderID != nil {
		t.Errorf("lienholder_id = %d, want nil", *got.LienholderID)
	}
}
