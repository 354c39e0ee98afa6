package service

import (
	"context"
	"fmt"

	"github.com/dukerupert/census/internal/access"
	"github.com/dukerupert/census/internal/auth"
	"github.com/dukerupert/census/internal/model"
	"github.com/dukerupert/census/internal/validate"
)

// Lienholders are shared reference data: anyone may read them, only admins
// may change them.

func (s *Service) ListLienholders(ctx context.Context, p *auth.Principal) Result[[]model.Lienholder] {
	all, err := s.lienholders.List(ctx)
	if err != nil {
		return failed[[]model.Lienholder](s.storageFailure("list-lienholders", "failed to get lienholders", err))
	}
	if len(all) == 0 {
		return failed[[]model.Lienholder](notFound("no lienholders found"))
	}
	return ok(all, "lienholders found")
}

func (s *Service) GetLienholderByID(ctx context.Context, p *auth.Principal, id int64) Result[*model.Lienholder] {
	if fields := validate.ID("id", id); fields != nil {
		return Invalid[*model.Lienholder](fields)
	}
	l, err := s.lienholders.GetByID(ctx, id)
	if err != nil {
		return failed[*model.Lienholder](s.storageFailure("get-lienholder", fmt.Sprintf("failed to find lienholder by id '%d'", id), err))
	}
	if l == nil {
		return failed[*model.Lienholder](notFound(fmt.Sprintf("no lienholder found by id '%d'", id)))
	}
	return ok(l, "successfully found lienholder")
}

func (s *Service) GetLienholderByName(ctx context.Context, p *auth.Principal, name string) Result[*model.Lienholder] {
	if fields := validate.Name("name", name); fields != nil {
		return Invalid[*model.Lienholder](fields)
	}
	l, err := s.lienholders.GetByName(ctx, name)
	if err != nil {
		return failed[*model.Lienholder](s.storageFailure("get-lienholder", fmt.Sprintf("failed to find lienholder by name '%s'", name), err))
	}
	if l == nil {
		return failed[*model.Lienholder](notFound(fmt.Sprintf("no lienholder found by name '%s'", name)))
	}
	return ok(l, "successfully found lienholder")
}

func (s *Service) SaveLienholder(ctx context.Context, p *auth.Principal, in validate.LienholderInput) Result[*model.Lienholder] {
	const op = "save-lienholder"
	if fields := validate.Struct(in); fields != nil {
		return Invalid[*model.Lienholder](fields)
	}
	if f := s.authorize(op, p, nil, access.AdminOnly, "you don't have permission to save lienholder"); f != nil {
		return failed[*model.Lienholder](f)
	}

	existing, err := s.lienholders.GetByName(ctx, in.Name)
	if err != nil {
		return failed[*model.Lienholder](s.storageFailure(op, "failed to save lienholder", err))
	}
	if existing != nil {
		return failed[*model.Lienholder](conflict(fmt.Sprintf("lienholder by name '%s' already exists", in.Name)))
	}

	l, err := s.lienholders.Create(ctx, in.Name)
	if isUniqueViolation(err) {
		return failed[*model.Lienholder](conflict(fmt.Sprintf("lienholder by name '%s' already exists", in.Name)))
	}
	if err != nil {
		return failed[*model.Lienholder](s.storageFailure(op, "failed to save lienholder", err))
	}
	return created(l, "successfully saved lienholder")
}

func (s *Service) UpdateLienholder(ctx context.Context, p *auth.Principal, in validate.UpdateLienholderInput) Result[*model.Lienholder] {
	const op = "update-lienholder"
	if fields := validate.Struct(in); fields != nil {
		return Invalid[*model.Lienholder](fields)
	}
	if f := s.authorize(op, p, nil, access.AdminOnly, "you don't have permission to update lienholder"); f != nil {
		return failed[*model.Lienholder](f)
	}

	current, err := s.lienholders.GetByID(ctx, in.ID)
	if err != nil {
		return failed[*model.Lienholder](s.storageFailure(op, "failed to update lienholder", err))
	}
	if current == nil {
		return failed[*model.Lienholder](s.missing(p, access.AdminOnly, fmt.Sprintf("no lienholder found by id '%d'", in.ID), ""))
	}
	taken, err := s.lienholders.GetByName(ctx, in.Name)
	if err != nil {
		return failed[*model.Lienholder](s.storageFailure(op, "failed to update lienholder", err))
	}
	if taken != nil && taken.ID != in.ID {
		return failed[*model.Lienholder](conflict(fmt.Sprintf("lienholder by name '%s' already exists", in.Name)))
	}

	l, err := s.lienholders.Update(ctx, in.ID, in.Name)
	if isUniqueViolation(err) {
		return failed[*model.Lienholder](conflict(fmt.Sprintf("lienholder by name '%s' already exists", in.Name)))
	}
	if err != nil {
		return failed[*model.Lienholder](s.storageFailure(op, "failed to update lienholder", err))
	}
	return created(l, "successfully updated lienholder")
}

func (s *Service) DeleteLienholderByID(ctx context.Context, p *auth.Principal, id int64) Result[Empty] {
	const op = "delete-lienholder"
	if fields := validate.ID("id", id); fields != nil {
		return Invalid[Empty](fields)
	}
	if f := s.authorize(op, p, nil, access.AdminOnly, "you don't have permission to delete lienholder, please contact an admin"); f != nil {
		return failed[Empty](f)
	}

	l, err := s.lienholders.GetByID(ctx, id)
	if err != nil {
		return failed[Empty](s.storageFailure(op, "failed to delete lienholder", err))
	}
	if l == nil {
		return failed[Empty](s.missing(p, access.AdminOnly, fmt.Sprintf("no lienholder found by id '%d'", id), ""))
	}
	return s.deleteLienholder(ctx, op, l)
}

func (s *Service) DeleteLienholderByName(ctx context.Context, p *auth.Principal, name string) Result[Empty] {
	const op = "delete-lienholder"
	if fields := validate.Name("name", name); fields != nil {
		return Invalid[Empty](fields)
	}
	if f := s.authorize(op, p, nil, access.AdminOnly, "you don't have permission to delete lienholder, please contact an admin"); f != nil {
		return failed[Empty](f)
	}

	l, err := s.lienholders.GetByName(ctx, name)
	if err != nil {
		return failed[Empty](s.storageFailure(op, "failed to delete lienholder", err))
	}
	if l == nil {
		return failed[Empty](s.missing(p, access.AdminOnly, fmt.Sprintf("no lienholder found by name '%s'", name), ""))
	}
	return s.deleteLienholder(ctx, op, l)
}

func (s *Service) deleteLienholder(ctx context.Context, op string, l *model.Lienholder) Result[Empty] {
	if err := s.lienholders.Delete(ctx, l.ID); err != nil {
		return failed[Empty](s.storageFailure(op, "failed to delete lienholder", err))
	}
	return ok(Empty{}, "lienholder deleted successfully")
}
