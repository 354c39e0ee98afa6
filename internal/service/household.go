package service

import (
	"context"
	"fmt"

	"github.com/dukerupert/census/internal/access"
	"github.com/dukerupert/census/internal/auth"
	"github.com/dukerupert/census/internal/model"
	"github.com/dukerupert/census/internal/store"
	"github.com/dukerupert/census/internal/validate"
)

func householdFields(a validate.HouseholdAttrs) store.HouseholdFields {
	return store.HouseholdFields{
		HomeType:     a.HomeType,
		Ownership:    a.Ownership,
		LienholderID: a.LienholderID,
		Address1:     a.Address1,
		Address2:     a.Address2,
		City:         a.City,
		State:        a.State,
		Zip:          a.Zip,
	}
}

func (s *Service) GetHouseholdByUserID(ctx context.Context, p *auth.Principal, userID int64) Result[*model.Household] {
	if fields := validate.ID("userId", userID); fields != nil {
		return Invalid[*model.Household](fields)
	}
	_, h, f := s.userHousehold(ctx, "get-household-by-user", p, userID, "you don't have permission to get someone's household")
	if f != nil {
		return failed[*model.Household](f)
	}
	return ok(h, fmt.Sprintf("household found for user by id '%d'", userID))
}

func (s *Service) GetHouseholdByUserEmail(ctx context.Context, p *auth.Principal, email string) Result[*model.Household] {
	if fields := validate.Email("email", email); fields != nil {
		return Invalid[*model.Household](fields)
	}
	_, h, f := s.userHouseholdByEmail(ctx, "get-household-by-email", p, email, "you don't have permission to get someone's household")
	if f != nil {
		return failed[*model.Household](f)
	}
	return ok(h, fmt.Sprintf("household found for user with email '%s'", email))
}

func (s *Service) GetHouseholdByID(ctx context.Context, p *auth.Principal, id int64) Result[*model.Household] {
	if fields := validate.ID("id", id); fields != nil {
		return Invalid[*model.Household](fields)
	}
	h, f := s.ownedHousehold(ctx, "get-household", p, id, "you don't have permission to get someone's household")
	if f != nil {
		return failed[*model.Household](f)
	}
	return ok(h, fmt.Sprintf("household found by id '%d'", id))
}

// SaveHousehold creates a household on behalf of in.UserID and assigns the
// user to it.
func (s *Service) SaveHousehold(ctx context.Context, p *auth.Principal, in validate.HouseholdInput) Result[*model.Household] {
	const op = "save-household"
	if fields := validate.Struct(in); fields != nil {
		return Invalid[*model.Household](fields)
	}
	if f := s.authorize(op, p, selfOwners(p, p != nil && p.ID == in.UserID), access.OwnerOrAdmin, "you have no permission to save someone's household"); f != nil {
		return failed[*model.Household](f)
	}

	u, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return failed[*model.Household](s.storageFailure(op, "failed to save household", err))
	}
	if u == nil {
		return failed[*model.Household](notFound(fmt.Sprintf("couldn't find user by id '%d'", in.UserID)))
	}
	if f := s.checkLienholder(ctx, op, in.LienholderID); f != nil {
		return failed[*model.Household](f)
	}

	h, err := s.households.Create(ctx, householdFields(in.HouseholdAttrs))
	if err != nil {
		return failed[*model.Household](s.storageFailure(op, "failed to save household", err))
	}
	if _, err := s.users.SetHousehold(ctx, in.UserID, h.ID); err != nil {
		s.logger.Error("storage failure", "op", op, "error", err)
		return partial(h, fmt.Sprintf("household was saved, but user by id '%d' couldn't be assigned to household by id '%d'", in.UserID, h.ID), err.Error())
	}
	return created(h, "household saved successfully")
}

func (s *Service) UpdateHousehold(ctx context.Context, p *auth.Principal, in validate.UpdateHouseholdInput) Result[*model.Household] {
	const op = "update-household"
	if fields := validate.Struct(in); fields != nil {
		return Invalid[*model.Household](fields)
	}
	if _, f := s.ownedHousehold(ctx, op, p, in.ID, "you don't have permission to update someone's household"); f != nil {
		return failed[*model.Household](f)
	}
	if f := s.checkLienholder(ctx, op, in.LienholderID); f != nil {
		return failed[*model.Household](f)
	}

	h, err := s.households.Update(ctx, in.ID, householdFields(in.HouseholdAttrs))
	if err != nil {
		return failed[*model.Household](s.storageFailure(op, "failed to update household", err))
	}
	return created(h, "household saved successfully")
}
