// Package service runs every entity operation through the same pipeline:
// validate the input, require a principal, resolve ownership, consult the
// gate and only then touch storage.
package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"github.com/dukerupert/census/internal/access"
	"github.com/dukerupert/census/internal/auth"
	"github.com/dukerupert/census/internal/model"
	"github.com/dukerupert/census/internal/store"
)

type UserStorage interface {
	Create(ctx context.Context, email, name, image, passwordHash string, role model.Role) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	ListByHousehold(ctx context.Context, householdID int64) ([]model.User, error)
	ListByRecord(ctx context.Context, recordID int64) ([]model.User, error)
	Update(ctx context.Context, id int64, c store.UserChanges) (*model.User, error)
	SetHousehold(ctx context.Context, id, householdID int64) (*model.User, error)
	SetPassword(ctx context.Context, id int64, passwordHash string) (*model.User, error)
	Delete(ctx context.Context, id int64) error
}

type HouseholdStorage interface {
	Create(ctx context.Context, f store.HouseholdFields) (*model.Household, error)
	GetByID(ctx context.Context, id int64) (*model.Household, error)
	Update(ctx context.Context, id int64, f store.HouseholdFields) (*model.Household, error)
}

type LienholderStorage interface {
	Create(ctx context.Context, name string) (*model.Lienholder, error)
	List(ctx context.Context) ([]model.Lienholder, error)
	GetByID(ctx context.Context, id int64) (*model.Lienholder, error)
	GetByName(ctx context.Context, name string) (*model.Lienholder, error)
	Update(ctx context.Context, id int64, name string) (*model.Lienholder, error)
	Delete(ctx context.Context, id int64) error
}

type RecordStorage interface {
	Create(ctx context.Context, f store.RecordFields) (*model.Record, error)
	GetByID(ctx context.Context, id int64) (*model.Record, error)
	ListByHousehold(ctx context.Context, householdID int64) ([]model.Record, error)
	Update(ctx context.Context, id int64, f store.RecordFields) (*model.Record, error)
	Delete(ctx context.Context, id int64) error
	DeleteByHousehold(ctx context.Context, householdID int64) (int64, error)
}

type RelativeStorage interface {
	Create(ctx context.Context, userID, recordID int64, rel model.Relationship) (*model.Relative, error)
	GetByID(ctx context.Context, id int64) (*model.Relative, error)
	GetByUserAndRecord(ctx context.Context, userID, recordID int64) (*model.Relative, error)
	GetSelf(ctx context.Context, userID int64) (*model.Relative, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Relative, error)
	Update(ctx context.Context, id, recordID int64, rel model.Relationship) (*model.Relative, error)
}

// Stores groups the storage the service runs against.
type Stores struct {
	Users       UserStorage
	Households  HouseholdStorage
	Lienholders LienholderStorage
	Records     RecordStorage
	Relatives   RelativeStorage
}

type Service struct {
	users       UserStorage
	households  HouseholdStorage
	lienholders LienholderStorage
	records     RecordStorage
	relatives   RelativeStorage
	owners      *access.Resolver
	gate        *access.Gate
	tokens      *auth.Tokens
	logger      *slog.Logger
}

func New(st Stores, tokens *auth.Tokens, logger *slog.Logger) *Service {
	return &Service{
		users:       st.Users,
		households:  st.Households,
		lienholders: st.Lienholders,
		records:     st.Records,
		relatives:   st.Relatives,
		owners:      access.NewResolver(st.Users, st.Households, st.Records, st.Relatives),
		gate:        access.NewGate(logger),
		tokens:      tokens,
		logger:      logger.With("component", "service"),
	}
}

// NewFromDB wires the service to the sqlite stores.
func NewFromDB(db *sql.DB, tokens *auth.Tokens, logger *slog.Logger) *Service {
	return New(Stores{
		Users:       store.NewUserStore(db),
		Households:  store.NewHouseholdStore(db),
		Lienholders: store.NewLienholderStore(db),
		Records:     store.NewRecordStore(db),
		Relatives:   store.NewRelativeStore(db),
	}, tokens, logger)
}

func (s *Service) storageFailure(op, msg string, err error) *failure {
	s.logger.Error("storage failure", "op", op, "error", err)
	return &failure{kind: StorageFailed, message: msg, detail: err.Error()}
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// authorize turns a gate decision about an existing target into a failure,
// or nil when the caller may proceed.
func (s *Service) authorize(op string, p *auth.Principal, owners []int64, policy access.Policy, deniedMsg string) *failure {
	switch s.gate.Authorize(op, p, owners, policy) {
	case access.Allow:
		return nil
	case access.AuthenticationRequired:
		return errLoginRequired
	default:
		return denied(deniedMsg)
	}
}

// missing is the failure for a target that could not be found.
func (s *Service) missing(p *auth.Principal, policy access.Policy, notFoundMsg, deniedMsg string) *failure {
	switch s.gate.Missing(p, policy) {
	case access.AuthenticationRequired:
		return errLoginRequired
	case access.Denied:
		return denied(deniedMsg)
	default:
		return notFound(notFoundMsg)
	}
}

func (s *Service) authenticated(p *auth.Principal) *failure {
	if s.gate.Authenticated(p) != access.Allow {
		return errLoginRequired
	}
	return nil
}

// selfOwners is the owner set of a target that belongs to the principal
// only when match holds.
func selfOwners(p *auth.Principal, match bool) []int64 {
	if p == nil || !match {
		return nil
	}
	return []int64{p.ID}
}

// ownedHousehold loads a household the caller must own.
func (s *Service) ownedHousehold(ctx context.Context, op string, p *auth.Principal, id int64, deniedMsg string) (*model.Household, *failure) {
	if f := s.authenticated(p); f != nil {
		return nil, f
	}
	h, owners, err := s.owners.HouseholdOwners(ctx, id)
	if err != nil {
		return nil, s.storageFailure(op, fmt.Sprintf("failed to get household by id '%d'", id), err)
	}
	if h == nil {
		return nil, s.missing(p, access.OwnerOrAdmin, fmt.Sprintf("no household found by id '%d'", id), deniedMsg)
	}
	if f := s.authorize(op, p, owners, access.OwnerOrAdmin, deniedMsg); f != nil {
		return nil, f
	}
	return h, nil
}

// ownedRecord loads a record the caller must own through its household.
func (s *Service) ownedRecord(ctx context.Context, op string, p *auth.Principal, id int64, deniedMsg string) (*model.Record, *failure) {
	if f := s.authenticated(p); f != nil {
		return nil, f
	}
	rec, owners, err := s.owners.RecordOwners(ctx, id)
	if err != nil {
		return nil, s.storageFailure(op, fmt.Sprintf("failed to get record by id '%d'", id), err)
	}
	if rec == nil {
		return nil, s.missing(p, access.OwnerOrAdmin, fmt.Sprintf("no record found by id '%d'", id), deniedMsg)
	}
	if f := s.authorize(op, p, owners, access.OwnerOrAdmin, deniedMsg); f != nil {
		return nil, f
	}
	return rec, nil
}

// userHousehold loads a user the caller must be (or administer) together
// with the user's household, which must exist.
func (s *Service) userHousehold(ctx context.Context, op string, p *auth.Principal, userID int64, deniedMsg string) (*model.User, *model.Household, *failure) {
	if f := s.authorize(op, p, selfOwners(p, p != nil && p.ID == userID), access.OwnerOrAdmin, deniedMsg); f != nil {
		return nil, nil, f
	}
	u, h, err := s.owners.UserHousehold(ctx, userID)
	if err != nil {
		return nil, nil, s.storageFailure(op, fmt.Sprintf("failed to get household for user by id '%d'", userID), err)
	}
	if u == nil {
		return nil, nil, notFound(fmt.Sprintf("user by id '%d' doesn't exist", userID))
	}
	if h == nil {
		return nil, nil, notFound(fmt.Sprintf("user by id '%d' doesn't have any household saved", userID))
	}
	return u, h, nil
}

// userHouseholdByEmail is userHousehold keyed by email.
func (s *Service) userHouseholdByEmail(ctx context.Context, op string, p *auth.Principal, email, deniedMsg string) (*model.User, *model.Household, *failure) {
	if f := s.authorize(op, p, selfOwners(p, p != nil && p.Email == email), access.OwnerOrAdmin, deniedMsg); f != nil {
		return nil, nil, f
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, s.storageFailure(op, fmt.Sprintf("failed to get user with email '%s'", email), err)
	}
	if u == nil {
		return nil, nil, notFound(fmt.Sprintf("user with email '%s' doesn't exist", email))
	}
	if u.HouseholdID == nil {
		return nil, nil, notFound(fmt.Sprintf("user with email '%s' doesn't have any household saved", email))
	}
	h, err := s.households.GetByID(ctx, *u.HouseholdID)
	if err != nil {
		return nil, nil, s.storageFailure(op, fmt.Sprintf("failed to get household for user with email '%s'", email), err)
	}
	if h == nil {
		return nil, nil, notFound(fmt.Sprintf("no household found for user with email '%s'", email))
	}
	return u, h, nil
}

// checkLienholder verifies a referenced lienholder exists.
func (s *Service) checkLienholder(ctx context.Context, op string, id *int64) *failure {
	if id == nil {
		return nil
	}
	l, err := s.lienholders.GetByID(ctx, *id)
	if err != nil {
		return s.storageFailure(op, "failed to check lienholder", err)
	}
	if l == nil {
		return invalidField("lienholderId", fmt.Sprintf("no lienholder found by id '%d'", *id))
	}
	return nil
}

func blankToNil(s *string) *string {
	return lo.EmptyableToPtr(lo.FromPtr(s))
}
