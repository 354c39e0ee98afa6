package auth

import (
	"context"

	"github.com/dukerupert/census/internal/model"
)

type contextKey struct{}

// Principal is the authenticated caller of a request. A nil *Principal is
// the anonymous caller.
type Principal struct {
	ID          int64
	Email       string
	Role        model.Role
	HouseholdID *int64
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == model.RoleAdmin
}

// PrincipalFromUser builds the principal for a stored user.
func PrincipalFromUser(u *model.User) *Principal {
	if u == nil {
		return nil
	}
	return &Principal{ID: u.ID, Email: u.Email, Role: u.Role, HouseholdID: u.HouseholdID}
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the request principal, or nil for anonymous callers.
func FromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(contextKey{}).(*Principal)
	return p
}
