package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dukerupert/census/internal/auth"
	"github.com/dukerupert/census/internal/database"
	"github.com/dukerupert/census/internal/model"
	"github.com/dukerupert/census/internal/store"
	"github.com/dukerupert/census/internal/validate"
)

func newAdminCmd(load loader) *cobra.Command {
	admin := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrators",
	}

	var email, name, password string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an ADMIN user, or promote an existing user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			if fields := validate.Email("email", email); fields != nil {
				return errors.New("--email must be a valid email")
			}

			db, err := database.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			u, promoted, err := createAdmin(cmd.Context(), store.NewUserStore(db), email, name, password)
			if err != nil {
				return err
			}
			verb := "created"
			if promoted {
				verb = "promoted"
			}
			fmt.Fprintf(os.Stdout, "%s admin %s (id %d)\n", verb, u.Email, u.ID)
			return nil
		},
	}
	create.Flags().StringVar(&email, "email", "", "admin email (required)")
	create.Flags().StringVar(&name, "name", "", "display name for a new user")
	create.Flags().StringVar(&password, "password", "", "password for a new user, 6 to 20 characters")
	create.MarkFlagRequired("email")

	admin.AddCommand(create)
	return admin
}

// createAdmin promotes the user with email, or creates one with the ADMIN
// role when none exists.
func createAdmin(ctx context.Context, users *store.UserStore, email, name, password string) (*model.User, bool, error) {
	existing, err := users.GetByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		u, err := users.SetRole(ctx, existing.ID, model.RoleAdmin)
		return u, true, err
	}

	if fields := validate.Struct(validate.RegisterInput{Email: email, Password: password, Name: name}); fields != nil {
		return nil, false, fmt.Errorf("new admin: %s %s", fields[0].Field, fields[0].Reason)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, false, err
	}
	u, err := users.Create(ctx, email, name, "", hash, model.RoleAdmin)
	return u, false, err
}
