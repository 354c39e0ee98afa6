package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dukerupert/census/internal/access"
	"github.com/dukerupert/census/internal/auth"
	"github.com/dukerupert/census/internal/model"
	"github.com/dukerupert/census/internal/store"
	"github.com/dukerupert/census/internal/validate"
)

// Session is the outcome of a successful login.
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      *model.User `json:"user"`
}

func (s *Service) Register(ctx context.Context, p *auth.Principal, in validate.RegisterInput) Result[*model.User] {
	const op = "register"
	if fields := validate.Struct(in); fields != nil {
		return Invalid[*model.User](fields)
	}

	existing, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return failed[*model.User](s.storageFailure(op, "failed to save new user", err))
	}
	if existing != nil {
		return failed[*model.User](conflict("email already in use"))
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return failed[*model.User](s.storageFailure(op, "failed to save new user", err))
	}
	u, err := s.users.Create(ctx, in.Email, in.Name, in.Image, hash, model.RoleUser)
	if isUniqueViolation(err) {
		return failed[*model.User](conflict("email already in use"))
	}
	if err != nil {
		return failed[*model.User](s.storageFailure(op, "failed to save new user", err))
	}
	return created(u, "successfully registered new user")
}

func (s *Service) Login(ctx context.Context, p *auth.Principal, in validate.LoginInput) Result[*Session] {
	const op = "login"
	if fields := validate.Struct(in); fields != nil {
		return Invalid[*Session](fields)
	}

	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return failed[*Session](s.storageFailure(op, "something went wrong", err))
	}
	if u == nil {
		return failed[*Session](notFound("email does not exist"))
	}
	if !auth.CheckPassword(u.PasswordHash, in.Password) {
		return failed[*Session](&failure{kind: AuthenticationRequired, message: auth.ErrInvalidCredentials.Error()})
	}

	token, expires, err := s.tokens.Issue(u)
	if err != nil {
		return failed[*Session](s.storageFailure(op, "something went wrong", err))
	}
	return ok(&Session{Token: token, ExpiresAt: expires, User: u}, "successful login")
}

func (s *Service) GetUserByID(ctx context.Context, p *auth.Principal, id int64) Result[*model.User] {
	const op = "get-user-by-id"
	if fields := validate.ID("id", id); fields != nil {
		return Invalid[*model.User](fields)
	}
	if f := s.authorize(op, p, selfOwners(p, p != nil && p.ID == id), access.OwnerOrAdmin, "you don't have permission to get someone's user"); f != nil {
		return failed[*model.User](f)
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return failed[*model.User](s.storageFailure(op, fmt.Sprintf("failed to get user by id '%d'", id), err))
	}
	if u == nil {
		return failed[*model.User](notFound(fmt.Sprintf("no user by id '%d' found", id)))
	}
	return ok(u, "user found")
}

func (s *Service) GetUserByEmail(ctx context.Context, p *auth.Principal, email string) Result[*model.User] {
	const op = "get-user-by-email"
	if fields := validate.Email("email", email); fields != nil {
		return Invalid[*model.User](fields)
	}
	if f := s.authorize(op, p, selfOwners(p, p != nil && p.Email == email), access.OwnerOrAdmin, "you don't have permission to get someone's user"); f != nil {
		return failed[*model.User](f)
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return failed[*model.User](s.storageFailure(op, fmt.Sprintf("failed to get user with email '%s'", email), err))
	}
	if u == nil {
		return failed[*model.User](notFound(fmt.Sprintf("no user with email '%s' found", email)))
	}
	return ok(u, "user found")
}

func (s *Service) ListUsers(ctx context.Context, p *auth.Principal) Result[[]model.User] {
	const op = "list-users"
	if f := s.authorize(op, p, nil, access.AdminOnly, "only admins can list users"); f != nil {
		return failed[[]model.User](f)
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return failed[[]model.User](s.storageFailure(op, "failed to list users", err))
	}
	if users == nil {
		users = []model.User{}
	}
	return ok(users, "users found")
}

func (s *Service) UpdateUser(ctx context.Context, p *auth.Principal, in validate.UpdateUserInput) Result[*model.User] {
	const op = "update-user"
	if fields := validate.Struct(in); fields != nil {
		return Invalid[*model.User](fields)
	}
	if f := s.authorize(op, p, selfOwners(p, p != nil && p.ID == in.ID), access.OwnerOrAdmin, "you have no permission to update someone's user info"); f != nil {
		return failed[*model.User](f)
	}

	target, err := s.users.GetByID(ctx, in.ID)
	if err != nil {
		return failed[*model.User](s.storageFailure(op, "failed to update user", err))
	}
	if target == nil {
		return failed[*model.User](notFound(fmt.Sprintf("no user by id '%d' found", in.ID)))
	}
	if in.Email != nil && *in.Email != target.Email {
		taken, err := s.users.GetByEmail(ctx, *in.Email)
		if err != nil {
			return failed[*model.User](s.storageFailure(op, "failed to update user", err))
		}
		if taken != nil {
			return failed[*model.User](conflict("email already in use"))
		}
	}

	u, err := s.users.Update(ctx, in.ID, store.UserChanges{Email: in.Email, Name: in.Name, Image: in.Image})
	if isUniqueViolation(err) {
		return failed[*model.User](conflict("email already in use"))
	}
	if err != nil {
		return failed[*model.User](s.storageFailure(op, "failed to update user", err))
	}
	return created(u, "successfully updated user")
}

func (s *Service) DeleteUserByID(ctx context.Context, p *auth.Principal, id int64) Result[Empty] {
	const op = "delete-user"
	if fields := validate.ID("id", id); fields != nil {
		return Invalid[Empty](fields)
	}
	if f := s.authorize(op, p, selfOwners(p, p != nil && p.ID == id), access.OwnerOrAdmin, "you don't have permission to delete somebody's user"); f != nil {
		return failed[Empty](f)
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return failed[Empty](s.storageFailure(op, fmt.Sprintf("failed to delete user by id '%d'", id), err))
	}
	if u == nil {
		return failed[Empty](notFound(fmt.Sprintf("no user found by id '%d'", id)))
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return failed[Empty](s.storageFailure(op, fmt.Sprintf("failed to delete user by id '%d'", id), err))
	}
	return ok(Empty{}, fmt.Sprintf("successfully deleted user by id '%d'", id))
}

// UpdatePassword changes a password. Users changing their own password,
// admins included, must present the old one; an admin resetting someone
// else's password does not.
func (s *Service) UpdatePassword(ctx context.Context, p *auth.Principal, in validate.UpdatePasswordInput) Result[*model.User] {
	const op = "update-password"
	if fields := validate.Struct(in); fields != nil {
		return Invalid[*model.User](fields)
	}
	self := p != nil && p.ID == in.ID
	if self && in.OldPassword == "" {
		return failed[*model.User](invalidField("oldPassword", "is required"))
	}

	policy := access.AdminOnly
	if self {
		policy = access.OwnerOnly
	}
	if f := s.authorize(op, p, selfOwners(p, self), policy, "you have no permission to update someone's password"); f != nil {
		return failed[*model.User](f)
	}

	u, err := s.users.GetByID(ctx, in.ID)
	if err != nil {
		return failed[*model.User](s.storageFailure(op, "failed to update password", err))
	}
	if u == nil {
		return failed[*model.User](notFound(fmt.Sprintf("no user found by id '%d'", in.ID)))
	}
	if self && !auth.CheckPassword(u.PasswordHash, in.OldPassword) {
		return failed[*model.User](denied("old password doesn't match"))
	}

	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return failed[*model.User](s.storageFailure(op, "failed to update password", err))
	}
	u, err = s.users.SetPassword(ctx, in.ID, hash)
	if err != nil {
		return failed[*model.User](s.storageFailure(op, "failed to update password", err))
	}
	return created(u, "successfully updated password")
}
