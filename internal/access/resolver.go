package access

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/dukerupert/census/internal/model"
)

type UserReader interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	ListByHousehold(ctx context.Context, householdID int64) ([]model.User, error)
	ListByRecord(ctx context.Context, recordID int64) ([]model.User, error)
}

type HouseholdReader interface {
	GetByID(ctx context.Context, id int64) (*model.Household, error)
}

type RecordReader interface {
	GetByID(ctx context.Context, id int64) (*model.Record, error)
}

type RelativeReader interface {
	GetByID(ctx context.Context, id int64) (*model.Relative, error)
}

// Resolver walks ownership chains: a household is owned by the users
// assigned to it, a record by the users of its household and a relative by
// its user. A nil entity in a result means the target does not exist.
type Resolver struct {
	users      UserReader
	households HouseholdReader
	records    RecordReader
	relatives  RelativeReader
}

func NewResolver(users UserReader, households HouseholdReader, records RecordReader, relatives RelativeReader) *Resolver {
	return &Resolver{users: users, households: households, records: records, relatives: relatives}
}

func userIDs(users []model.User) []int64 {
	return lo.Map(users, func(u model.User, _ int) int64 { return u.ID })
}

// HouseholdOwners returns the household and the ids of its users.
func (r *Resolver) HouseholdOwners(ctx context.Context, householdID int64) (*model.Household, []int64, error) {
	h, err := r.households.GetByID(ctx, householdID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve household owners: %w", err)
	}
	if h == nil {
		return nil, nil, nil
	}
	users, err := r.users.ListByHousehold(ctx, householdID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve household owners: %w", err)
	}
	return h, userIDs(users), nil
}

// UserHousehold returns the user and, when assigned, their household. The
// owner of that household for the by-user lookup is the user alone.
func (r *Resolver) UserHousehold(ctx context.Context, userID int64) (*model.User, *model.Household, error) {
	u, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve user household: %w", err)
	}
	if u == nil || u.HouseholdID == nil {
		return u, nil, nil
	}
	h, err := r.households.GetByID(ctx, *u.HouseholdID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve user household: %w", err)
	}
	return u, h, nil
}

// RecordOwners returns the record and the ids of the users of its household.
func (r *Resolver) RecordOwners(ctx context.Context, recordID int64) (*model.Record, []int64, error) {
	rec, err := r.records.GetByID(ctx, recordID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve record owners: %w", err)
	}
	if rec == nil {
		return nil, nil, nil
	}
	users, err := r.users.ListByRecord(ctx, recordID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve record owners: %w", err)
	}
	return rec, userIDs(users), nil
}

// RelativeOwner returns the relative and its single owner.
func (r *Resolver) RelativeOwner(ctx context.Context, relativeID int64) (*model.Relative, []int64, error) {
	rel, err := r.relatives.GetByID(ctx, relativeID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve relative owner: %w", err)
	}
	if rel == nil {
		return nil, nil, nil
	}
	return rel, []int64{rel.UserID}, nil
}
