package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dukerupert/census/internal/model"
)

// UserLookup is the storage the resolver re-reads users from.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// Resolver turns a session token into the request principal.
type Resolver struct {
	tokens *Tokens
	users  UserLookup
}

func NewResolver(tokens *Tokens, users UserLookup) *Resolver {
	return &Resolver{tokens: tokens, users: users}
}

// Resolve returns the principal for raw. An empty token, an expired or
// forged token and a token for a deleted user all resolve to nil. Token
// failures are reported as ErrInvalidToken alongside the nil principal;
// storage failures are returned as-is.
func (r *Resolver) Resolve(ctx context.Context, raw string) (*Principal, error) {
	if raw == "" {
		return nil, nil
	}
	id, _, err := r.tokens.Parse(raw)
	if err != nil {
		return nil, err
	}
	u, err := r.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolve principal: %w", err)
	}
	if u == nil {
		return nil, nil
	}
	return PrincipalFromUser(u), nil
}

// IsTokenError reports whether err came from token verification rather than
// storage.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}
