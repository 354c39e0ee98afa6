package main

import (
	"context"
	"testing"

	"github.com/dukerupert/census/internal/auth"
	"github.com/dukerupert/census/internal/database"
	"github.com/dukerupert/census/internal/model"
	"github.com/dukerupert/census/internal/store"
)

func TestCreateAdmin(t *testing.T) {
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	users := store.NewUserStore(db)
	ctx := context.Background()

	u, promoted, err := createAdmin(ctx, users, "root@example.com", "Root", "secret1")
	if err != nil {
		t.Fatalf("createAdmin: %v", err)
	}
	if promoted || u.Role != model.RoleAdmin {
		t.Errorf("got promoted=%v role=%s, want new ADMIN", promoted, u.Role)
	}
	if !auth.CheckPassword(u.PasswordHash, "secret1") {
		t.Error("password was not hashed with the given value")
	}

	plain, err := users.Create(ctx, "user@example.com", "User", "", "hash", model.RoleUser)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	u, promoted, err = createAdmin(ctx, users, plain.Email, "", "")
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if !promoted || u.Role != model.RoleAdmin {
		t.Errorf("got promoted=%v role=%s, want promoted ADMIN", promoted, u.Role)
	}

	if _, _, err := createAdmin(ctx, users, "new@example.com", "New", "abc"); err == nil {
		t.Error("expected error for short password")
	}
}
