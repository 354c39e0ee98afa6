package auth

import (
	"context"
	"testing"

	"github.com/dukerupert/census/internal/model"
)

func TestWithPrincipalAndFromContext(t *testing.T) {
	hh := int64(2)
	p := &Principal{ID: 1, Email: "a@example.com", Role: model.RoleAdmin, HouseholdID: &hh}

	ctx := WithPrincipal(context.Background(), p)
	got := FromContext(ctx)
	if got == nil {
		t.Fatal("expected principal in context")
	}
	if got.ID != 1 {
		t.Errorf("ID = %d, want 1", got.ID)
	}
	if got.Email != "a@example.com" {
		t.Errorf("Email = %q, want %q", got.Email, "a@example.com")
	}
	if got.HouseholdID == nil || *got.HouseholdID != 2 {
		t.Errorf("HouseholdID = %v, want 2", got.HouseholdID)
	}
}

func TestFromContextMissing(t *testing.T) {
	if FromContext(context.Background()) != nil {
		t.Error("expected nil principal for empty context")
	}
}

func TestPrincipalIsAdmin(t *testing.T) {
	if !(&Principal{Role: model.RoleAdmin}).IsAdmin() {
		t.Error("expected IsAdmin = true for admin role")
	}
	if (&Principal{Role: model.RoleUser}).IsAdmin() {
		t.Error("expected IsAdmin = false for user role")
	}
	var anon *Principal
	if anon.IsAdmin() {
		t.Error("expected IsAdmin = false for anonymous caller")
	}
}

func TestPrincipalFromUser(t *testing.T) {
	if PrincipalFromUser(nil) != nil {
		t.Error("expected nil principal for nil user")
	}
	p := PrincipalFromUser(&model.User{ID: 3, Email: "c@example.com", Role: model.RoleUser})
	if p.ID != 3 || p.Role != model.RoleUser {
		t.Errorf("principal = %+v", p)
	}
}
