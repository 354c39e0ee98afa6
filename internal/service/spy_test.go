package service

import (
	"context"
	"errors"

	"github.com/dukerupert/census/internal/model"
	"github.com/dukerupert/census/internal/store"
)

// spy wraps the sqlite stores and records every storage call made through
// the service.
type spy struct {
	calls              []string
	failRelativeWrites bool

	users       *store.UserStore
	households  *store.HouseholdStore
	lienholders *store.LienholderStore
	records     *store.RecordStore
	relatives   *store.RelativeStore
}

var errInjected = errors.New("injected failure")

func (s *spy) record(name string) { s.calls = append(s.calls, name) }

func (s *spy) reset() { s.calls = nil }

func (s *spy) stores() Stores {
	return Stores{
		Users:       spyUsers{s},
		Households:  spyHouseholds{s},
		Lienholders: spyLienholders{s},
		Records:     spyRecords{s},
		Relatives:   spyRelatives{s},
	}
}

type spyUsers struct{ *spy }

func (u spyUsers) Create(ctx context.Context, email, name, image, passwordHash string, role model.Role) (*model.User, error) {
	u.record("users.Create")
	return u.users.Create(ctx, email, name, image, passwordHash, role)
}

func (u spyUsers) GetByID(ctx context.Context, id int64) (*model.User, error) {
	u.record("users.GetByID")
	return u.users.GetByID(ctx, id)
}

func (u spyUsers) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u.record("users.GetByEmail")
	return u.users.GetByEmail(ctx, email)
}

func (u spyUsers) List(ctx context.Context) ([]model.User, error) {
	u.record("users.List")
	return u.users.List(ctx)
}

func (u spyUsers) ListByHousehold(ctx context.Context, householdID int64) ([]model.User, error) {
	u.record("users.ListByHousehold")
	return u.users.ListByHousehold(ctx, householdID)
}

func (u spyUsers) ListByRecord(ctx context.Context, recordID int64) ([]model.User, error) {
	u.record("users.ListByRecord")
	return u.users.ListByRecord(ctx, recordID)
}

func (u spyUsers) Update(ctx context.Context, id int64, c store.UserChanges) (*model.User, error) {
	u.record("users.Update")
	return u.users.Update(ctx, id, c)
}

func (u spyUsers) SetHousehold(ctx context.Context, id, householdID int64) (*model.User, error) {
	u.record("users.SetHousehold")
	return u.users.SetHousehold(ctx, id, householdID)
}

func (u spyUsers) SetPassword(ctx context.Context, id int64, passwordHash string) (*model.User, error) {
	u.record("users.SetPassword")
	return u.users.SetPassword(ctx, id, passwordHash)
}

func (u spyUsers) Delete(ctx context.Context, id int64) error {
	u.record("users.Delete")
	return u.users.Delete(ctx, id)
}

type spyHouseholds struct{ *spy }

func (h spyHouseholds) Create(ctx context.Context, f store.HouseholdFields) (*model.Household, error) {
	h.record("households.Create")
	return h.households.Create(ctx, f)
}

func (h spyHouseholds) GetByID(ctx context.Context, id int64) (*model.Household, error) {
	h.record("households.GetByID")
	return h.households.GetByID(ctx, id)
}

func (h spyHouseholds) Update(ctx context.Context, id int64, f store.HouseholdFields) (*model.Household, error) {
	h.record("households.Update")
	return h.households.Update(ctx, id, f)
}

type spyLienholders struct{ *spy }

func (l spyLienholders) Create(ctx context.Context, name string) (*model.Lienholder, error) {
	l.record("lienholders.Create")
	return l.lienholders.Create(ctx, name)
}

func (l spyLienholders) List(ctx context.Context) ([]model.Lienholder, error) {
	l.record("lienholders.List")
	return l.lienholders.List(ctx)
}

func (l spyLienholders) GetByID(ctx context.Context, id int64) (*model.Lienholder, error) {
	l.record("lienholders.GetByID")
	return l.lienholders.GetByID(ctx, id)
}

func (l spyLienholders) GetByName(ctx context.Context, name string) (*model.Lienholder, error) {
	l.record("lienholders.GetByName")
	return l.lienholders.GetByName(ctx, name)
}

func (l spyLienholders) Update(ctx context.Context, id int64, name string) (*model.Lienholder, error) {
	l.record("lienholders.Update")
	return l.lienholders.Update(ctx, id, name)
}

func (l spyLienholders) Delete(ctx context.Context, id int64) error {
	l.record("lienholders.Delete")
	return l.lienholders.Delete(ctx, id)
}

type spyRecords struct{ *spy }

func (r spyRecords) Create(ctx context.Context, f store.RecordFields) (*model.Record, error) {
	r.record("records.Create")
	return r.records.Create(ctx, f)
}

func (r spyRecords) GetByID(ctx context.Context, id int64) (*model.Record, error) {
	r.record("records.GetByID")
	return r.records.GetByID(ctx, id)
}

func (r spyRecords) ListByHousehold(ctx context.Context, householdID int64) ([]model.Record, error) {
	r.record("records.ListByHousehold")
	return r.records.ListByHousehold(ctx, householdID)
}

func (r spyRecords) Update(ctx context.Context, id int64, f store.RecordFields) (*model.Record, error) {
	r.record("records.Update")
	return r.records.Update(ctx, id, f)
}

func (r spyRecords) Delete(ctx context.Context, id int64) error {
	r.record("records.Delete")
	return r.records.Delete(ctx, id)
}

func (r spyRecords) DeleteByHousehold(ctx context.Context, householdID int64) (int64, error) {
	r.record("records.DeleteByHousehold")
	return r.records.DeleteByHousehold(ctx, householdID)
}

type spyRelatives struct{ *spy }

func (r spyRelatives) Create(ctx context.Context, userID, recordID int64, rel model.Relationship) (*model.Relative, error) {
	r.record("relatives.Create")
	if r.failRelativeWrites {
		return nil, errInjected
	}
	return r.relatives.Create(ctx, userID, recordID, rel)
}

func (r spyRelatives) GetByID(ctx context.Context, id int64) (*model.Relative, error) {
	r.record("relatives.GetByID")
	return r.relatives.GetByID(ctx, id)
}

func (r spyRelatives) GetByUserAndRecord(ctx context.Context, userID, recordID int64) (*model.Relative, error) {
	r.record("relatives.GetByUserAndRecord")
	return r.relatives.GetByUserAndRecord(ctx, userID, recordID)
}

func (r spyRelatives) GetSelf(ctx context.Context, userID int64) (*model.Relative, error) {
	r.record("relatives.GetSelf")
	return r.relatives.GetSelf(ctx, userID)
}

func (r spyRelatives) ListByUser(ctx context.Context, userID int64) ([]model.Relative, error) {
	r.record("relatives.ListByUser")
	return r.relatives.ListByUser(ctx, userID)
}

func (r spyRelatives) Update(ctx context.Context, id, recordID int64, rel model.Relationship) (*model.Relative, error) {
	r.record("relatives.Update")
	if r.failRelativeWrites {
		return nil, errInjected
	}
	return r.relatives.Update(ctx, id, recordID, rel)
}
