// Package access decides whether a principal may act on an entity, given
// the entity's owners and a per-operation policy.
package access

import (
	"log/slog"

	"github.com/samber/lo"

	"github.com/dukerupert/census/internal/auth"
)

// Decision is the outcome of a gate check.
type Decision int

const (
	Allow Decision = iota
	AuthenticationRequired
	Denied
	NotFound
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case AuthenticationRequired:
		return "authentication required"
	case Denied:
		return "denied"
	case NotFound:
		return "not found"
	default:
		return "unknown"
	}
}

// Policy selects the rule set an operation is checked under.
type Policy struct {
	// SelfService lets an owner act on their own entity.
	SelfService bool
	// AdminOverride lets an admin act regardless of ownership.
	AdminOverride bool
	// HideExistence reports a missing entity as Denied to non-admins.
	HideExistence bool
}

var (
	OwnerOrAdmin = Policy{SelfService: true, AdminOverride: true, HideExistence: true}
	AdminOnly    = Policy{AdminOverride: true}
	// OwnerOnly applies the owner check to admins too.
	OwnerOnly = Policy{SelfService: true, HideExistence: true}
)

type Gate struct {
	logger *slog.Logger
}

func NewGate(logger *slog.Logger) *Gate {
	return &Gate{logger: logger.With("component", "gate")}
}

// Authenticated is the first rule of every check. It needs no owners, so
// callers run it before any ownership lookup.
func (g *Gate) Authenticated(p *auth.Principal) Decision {
	if p == nil {
		return AuthenticationRequired
	}
	return Allow
}

// Authorize applies the rules in order: anonymous callers need to
// authenticate, admins pass when the policy allows an override, owners pass
// when the policy allows self service, everyone else is denied.
func (g *Gate) Authorize(op string, p *auth.Principal, owners []int64, policy Policy) Decision {
	if p == nil {
		return AuthenticationRequired
	}
	isOwner := lo.Contains(owners, p.ID)
	if p.IsAdmin() && policy.AdminOverride {
		if !isOwner {
			g.logger.Debug("admin override", "principal_id", p.ID, "op", op)
		}
		return Allow
	}
	if policy.SelfService && isOwner {
		return Allow
	}
	return Denied
}

// Missing is the decision for a target that does not exist.
func (g *Gate) Missing(p *auth.Principal, policy Policy) Decision {
	if p == nil {
		return AuthenticationRequired
	}
	if policy.HideExistence && !p.IsAdmin() {
		return Denied
	}
	return NotFound
}
