package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/census/internal/model"
	"github.com/dukerupert/census/internal/validate"
)

func TestLogin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res := h.svc.Login(ctx, nil, validate.LoginInput{Email: "alice@example.com", Password: testPassword})
	require.Equal(t, OK, res.Kind, res.Message)
	require.NotNil(t, res.Value)
	assert.Equal(t, int64(5), res.Value.User.ID)
	id, claims, err := h.tokens.Parse(res.Value.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)
	assert.Equal(t, "alice@example.com", claims.Email)

	res = h.svc.Login(ctx, nil, validate.LoginInput{Email: "alice@example.com", Password: "wrong!"})
	assert.Equal(t, AuthenticationRequired, res.Kind)
	assert.Equal(t, "invalid credentials", res.Message)

	res = h.svc.Login(ctx, nil, validate.LoginInput{Email: "nobody@example.com", Password: testPassword})
	assert.Equal(t, NotFound, res.Kind)
	assert.Equal(t, "email does not exist", res.Message)
}

func TestRegister(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res := h.svc.Register(ctx, nil, validate.RegisterInput{Email: "carol@example.com", Password: "secret1", Name: "Carol"})
	require.Equal(t, Created, res.Kind, res.Message)
	assert.Equal(t, model.RoleUser, res.Value.Role)
	assert.Nil(t, res.Value.HouseholdID)

	login := h.svc.Login(ctx, nil, validate.LoginInput{Email: "carol@example.com", Password: "secret1"})
	assert.Equal(t, OK, login.Kind)

	short := h.svc.Register(ctx, nil, validate.RegisterInput{Email: "dave@example.com", Password: "abc", Name: "Dave"})
	require.Equal(t, ValidationFailed, short.Kind)
	assert.Equal(t, "password", short.Fields[0].Field)
}

func TestUpdatePassword(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res := h.svc.UpdatePassword(ctx, h.alice, validate.UpdatePasswordInput{ID: 5, OldPassword: "wrong!", NewPassword: "newpass1"})
	assert.Equal(t, Denied, res.Kind)
	assert.Equal(t, "old password doesn't match", res.Message)

	res = h.svc.UpdatePassword(ctx, h.alice, validate.UpdatePasswordInput{ID: 5, OldPassword: testPassword, NewPassword: "newpass1"})
	require.Equal(t, Created, res.Kind, res.Message)
	assert.Equal(t, OK, h.svc.Login(ctx, nil, validate.LoginInput{Email: "alice@example.com", Password: "newpass1"}).Kind)

	// Users cannot reset other users' passwords.
	res = h.svc.UpdatePassword(ctx, h.alice, validate.UpdatePasswordInput{ID: 6, OldPassword: testPassword, NewPassword: "newpass2"})
	assert.Equal(t, Denied, res.Kind)

	// Admins can, without the old password.
	res = h.svc.UpdatePassword(ctx, h.admin, validate.UpdatePasswordInput{ID: 6, NewPassword: "newpass3"})
	require.Equal(t, Created, res.Kind, res.Message)
	assert.Equal(t, OK, h.svc.Login(ctx, nil, validate.LoginInput{Email: "bob@example.com", Password: "newpass3"}).Kind)

	// An admin changing their own password still needs the old one.
	res = h.svc.UpdatePassword(ctx, h.admin, validate.UpdatePasswordInput{ID: 1, OldPassword: "wrong!", NewPassword: "newpass4"})
	assert.Equal(t, Denied, res.Kind)

	res = h.svc.UpdatePassword(ctx, h.admin, validate.UpdatePasswordInput{ID: 404, NewPassword: "newpass4"})
	assert.Equal(t, NotFound, res.Kind)
}

func TestUsers(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	assert.Equal(t, OK, h.svc.GetUserByID(ctx, h.alice, 5).Kind)
	assert.Equal(t, Denied, h.svc.GetUserByID(ctx, h.alice, 6).Kind)
	assert.Equal(t, AuthenticationRequired, h.svc.GetUserByID(ctx, nil, 5).Kind)
	assert.Equal(t, OK, h.svc.GetUserByEmail(ctx, h.alice, "alice@example.com").Kind)
	assert.Equal(t, Denied, h.svc.GetUserByEmail(ctx, h.alice, "bob@example.com").Kind)
	assert.Equal(t, NotFound, h.svc.GetUserByID(ctx, h.admin, 404).Kind)

	list := h.svc.ListUsers(ctx, h.admin)
	require.Equal(t, OK, list.Kind)
	assert.Len(t, list.Value, 3)
	assert.Equal(t, Denied, h.svc.ListUsers(ctx, h.alice).Kind)

	taken := "bob@example.com"
	res := h.svc.UpdateUser(ctx, h.alice, validate.UpdateUserInput{ID: 5, Email: &taken})
	assert.Equal(t, Conflict, res.Kind)

	name := "Alice Liddell"
	res = h.svc.UpdateUser(ctx, h.alice, validate.UpdateUserInput{ID: 5, Name: &name})
	require.Equal(t, Created, res.Kind, res.Message)
	assert.Equal(t, name, res.Value.Name)
	assert.Equal(t, "alice@example.com", res.Value.Email)

	assert.Equal(t, Denied, h.svc.DeleteUserByID(ctx, h.alice, 6).Kind)
	assert.Equal(t, OK, h.svc.DeleteUserByID(ctx, h.bob, 6).Kind)
	assert.Equal(t, NotFound, h.svc.DeleteUserByID(ctx, h.admin, 6).Kind)
}

func TestLienholders(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	assert.Equal(t, NotFound, h.svc.ListLienholders(ctx, nil).Kind)
	assert.Equal(t, Denied, h.svc.SaveLienholder(ctx, h.alice, validate.LienholderInput{Name: "Acme"}).Kind)

	acme := h.svc.SaveLienholder(ctx, h.admin, validate.LienholderInput{Name: "Acme"})
	require.Equal(t, Created, acme.Kind)
	other := h.svc.SaveLienholder(ctx, h.admin, validate.LienholderInput{Name: "Other"})
	require.Equal(t, Created, other.Kind)

	list := h.svc.ListLienholders(ctx, nil)
	require.Equal(t, OK, list.Kind)
	assert.Len(t, list.Value, 2)
	assert.Equal(t, OK, h.svc.GetLienholderByName(ctx, nil, "Acme").Kind)
	assert.Equal(t, NotFound, h.svc.GetLienholderByID(ctx, nil, 404).Kind)

	// Keeping the same name is not a conflict; taking another's is.
	same := h.svc.UpdateLienholder(ctx, h.admin, validate.UpdateLienholderInput{ID: acme.Value.ID, Name: "Acme"})
	assert.Equal(t, Created, same.Kind)
	clash := h.svc.UpdateLienholder(ctx, h.admin, validate.UpdateLienholderInput{ID: acme.Value.ID, Name: "Other"})
	assert.Equal(t, Conflict, clash.Kind)
	missing := h.svc.UpdateLienholder(ctx, h.admin, validate.UpdateLienholderInput{ID: 404, Name: "Nope"})
	assert.Equal(t, NotFound, missing.Kind)

	assert.Equal(t, OK, h.svc.DeleteLienholderByName(ctx, h.admin, "Other").Kind)
	assert.Equal(t, NotFound, h.svc.DeleteLienholderByName(ctx, h.admin, "Other").Kind)
	assert.Equal(t, OK, h.svc.DeleteLienholderByID(ctx, h.admin, acme.Value.ID).Kind)
}

func TestHouseholds(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res := h.svc.GetHouseholdByUserID(ctx, h.alice, 5)
	require.Equal(t, OK, res.Kind)
	assert.Equal(t, int64(42), res.Value.ID)
	assert.Equal(t, Denied, h.svc.GetHouseholdByUserID(ctx, h.alice, 6).Kind)
	assert.Equal(t, NotFound, h.svc.GetHouseholdByUserID(ctx, h.admin, 1).Kind)
	assert.Equal(t, OK, h.svc.GetHouseholdByUserEmail(ctx, h.bob, "bob@example.com").Kind)
	assert.Equal(t, NotFound, h.svc.GetHouseholdByID(ctx, h.admin, 404).Kind)
	assert.Equal(t, Denied, h.svc.GetHouseholdByID(ctx, h.alice, 404).Kind)

	attrs := householdAttrs()
	bogus := int64(404)
	attrs.LienholderID = &bogus
	bad := h.svc.UpdateHousehold(ctx, h.alice, validate.UpdateHouseholdInput{ID: 42, HouseholdAttrs: attrs})
	require.Equal(t, ValidationFailed, bad.Kind)
	assert.Equal(t, "lienholderId", bad.Fields[0].Field)

	upd := h.svc.UpdateHousehold(ctx, h.alice, validate.UpdateHouseholdInput{ID: 42, HouseholdAttrs: householdAttrs()})
	require.Equal(t, Created, upd.Kind)
	assert.Equal(t, "5 Pine St", upd.Value.Address1)

	saved := h.svc.SaveHousehold(ctx, h.alice, validate.HouseholdInput{UserID: 5, HouseholdAttrs: householdAttrs()})
	require.Equal(t, Created, saved.Kind, saved.Message)
	moved := h.svc.GetHouseholdByUserID(ctx, h.alice, 5)
	require.Equal(t, OK, moved.Kind)
	assert.Equal(t, saved.Value.ID, moved.Value.ID)
}

func TestRecords(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	phone := "5551234"
	blank := ""
	attrs := recordAttrs("Carl")
	attrs.Telephone = &phone
	attrs.RaceOther = &blank
	res := h.svc.SaveRecord(ctx, h.alice, validate.RecordInput{HouseholdID: 42, RecordAttrs: attrs})
	require.Equal(t, Created, res.Kind, res.Message)
	require.NotNil(t, res.Value.Telephone)
	assert.Equal(t, phone, *res.Value.Telephone)
	assert.Nil(t, res.Value.RaceOther)

	assert.Equal(t, Denied, h.svc.SaveRecord(ctx, h.alice, validate.RecordInput{HouseholdID: 99, RecordAttrs: attrs}).Kind)

	list := h.svc.GetRecordsUnderUserID(ctx, h.alice, 5)
	require.Equal(t, OK, list.Kind)
	assert.Len(t, list.Value, 2)
	byEmail := h.svc.GetRecordsUnderUserEmail(ctx, h.alice, "alice@example.com")
	require.Equal(t, OK, byEmail.Kind)
	assert.Len(t, byEmail.Value, 2)

	// Moving a record into a household the caller does not own is denied.
	move := h.svc.UpdateRecord(ctx, h.alice, validate.UpdateRecordInput{ID: res.Value.ID, HouseholdID: 99, RecordAttrs: attrs})
	assert.Equal(t, Denied, move.Kind)

	n := h.svc.DeleteRecordsUnderHouseholdID(ctx, h.alice, 42)
	require.Equal(t, OK, n.Kind)
	assert.Equal(t, int64(2), n.Value)
	assert.Equal(t, NotFound, h.svc.GetRecordsUnderHouseholdID(ctx, h.alice, 42).Kind)
	assert.Equal(t, Denied, h.svc.DeleteRecordsUnderHouseholdID(ctx, h.alice, 99).Kind)
}

func TestRelatives(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	assert.Equal(t, NotFound, h.svc.GetRelativesUnderUserID(ctx, h.alice, 5).Kind)

	// A record from another household cannot be related, even by an admin.
	cross := h.svc.SaveRelative(ctx, h.admin, validate.RelativeInput{UserID: 5, RecordID: h.bobRecord.ID, Relationship: model.RelationshipSpouse})
	assert.Equal(t, Denied, cross.Kind)

	rel := h.svc.SaveRelative(ctx, h.alice, validate.RelativeInput{UserID: 5, RecordID: h.aliceRecord.ID, Relationship: model.RelationshipSelf})
	require.Equal(t, Created, rel.Kind, rel.Message)

	// Rewriting the existing SELF relative as SELF is not a second SELF.
	upd := h.svc.UpdateRelative(ctx, h.alice, validate.UpdateRelativeInput{
		ID:            rel.Value.ID,
		RelativeInput: validate.RelativeInput{UserID: 5, RecordID: h.aliceRecord.ID, Relationship: model.RelationshipSelf},
	})
	require.Equal(t, Created, upd.Kind, upd.Message)

	moveUser := h.svc.UpdateRelative(ctx, h.admin, validate.UpdateRelativeInput{
		ID:            rel.Value.ID,
		RelativeInput: validate.RelativeInput{UserID: 6, RecordID: h.bobRecord.ID, Relationship: model.RelationshipSelf},
	})
	require.Equal(t, ValidationFailed, moveUser.Kind)
	assert.Equal(t, "userId", moveUser.Fields[0].Field)

	missing := h.svc.UpdateRelative(ctx, h.admin, validate.UpdateRelativeInput{
		ID:            404,
		RelativeInput: validate.RelativeInput{UserID: 5, RecordID: h.aliceRecord.ID, Relationship: model.RelationshipSelf},
	})
	assert.Equal(t, NotFound, missing.Kind)

	list := h.svc.GetRelativesUnderUserID(ctx, h.alice, 5)
	require.Equal(t, OK, list.Kind)
	assert.Len(t, list.Value, 1)
}

func TestRecordsWithRelatives(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	saved := h.svc.SaveRecordWithRelationship(ctx, h.alice, validate.RecordWithRelationshipInput{
		UserID: 5, Relationship: model.RelationshipSpouse, RecordAttrs: recordAttrs("Sam"),
	})
	require.Equal(t, Created, saved.Kind, saved.Message)
	require.NotNil(t, saved.Value.Relative)
	assert.Equal(t, int64(42), saved.Value.Record.HouseholdID)

	pairs := h.svc.GetRecordsWithRelativesUnderUserID(ctx, h.alice, 5)
	require.Equal(t, OK, pairs.Kind)
	require.Len(t, pairs.Value, 2)
	related := 0
	for _, pair := range pairs.Value {
		if pair.Relative != nil {
			related++
			assert.Equal(t, saved.Value.Record.ID, pair.Record.ID)
		}
	}
	assert.Equal(t, 1, related)

	byEmail := h.svc.GetRecordsWithRelativesUnderUserEmail(ctx, h.alice, "alice@example.com")
	require.Equal(t, OK, byEmail.Kind)
	assert.Len(t, byEmail.Value, 2)

	// Labelling the unrelated record creates its relative.
	upd := h.svc.UpdateRecordWithRelationship(ctx, h.alice, validate.UpdateRecordWithRelationshipInput{
		ID: h.aliceRecord.ID,
		RecordWithRelationshipInput: validate.RecordWithRelationshipInput{
			UserID: 5, Relationship: model.RelationshipSelf, RecordAttrs: recordAttrs("Alicia"),
		},
	})
	require.Equal(t, Created, upd.Kind, upd.Message)
	assert.Equal(t, "Alicia", upd.Value.Record.FirstName)
	require.NotNil(t, upd.Value.Relative)
	assert.Equal(t, model.RelationshipSelf, upd.Value.Relative.Relationship)

	// Relabelling it again updates that relative instead of adding one.
	again := h.svc.UpdateRecordWithRelationship(ctx, h.alice, validate.UpdateRecordWithRelationshipInput{
		ID: h.aliceRecord.ID,
		RecordWithRelationshipInput: validate.RecordWithRelationshipInput{
			UserID: 5, Relationship: model.RelationshipSelf, RecordAttrs: recordAttrs("Alicia"),
		},
	})
	require.Equal(t, Created, again.Kind, again.Message)
	assert.Equal(t, upd.Value.Relative.ID, again.Value.Relative.ID)
	assert.Equal(t, 2, countRows(t, h.db, `SELECT COUNT(*) FROM relatives WHERE user_id = 5`))

	// Another user's record cannot be pulled into alice's household.
	steal := h.svc.UpdateRecordWithRelationship(ctx, h.alice, validate.UpdateRecordWithRelationshipInput{
		ID: h.bobRecord.ID,
		RecordWithRelationshipInput: validate.RecordWithRelationshipInput{
			UserID: 5, Relationship: model.RelationshipSpouse, RecordAttrs: recordAttrs("Bob"),
		},
	})
	assert.Equal(t, Denied, steal.Kind)
}

func TestPartiallyApplied(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.spy.failRelativeWrites = true

	res := h.svc.SaveRecordWithRelationship(ctx, h.alice, validate.RecordWithRelationshipInput{
		UserID: 5, Relationship: model.RelationshipSpouse, RecordAttrs: recordAttrs("Pat"),
	})
	require.Equal(t, PartiallyApplied, res.Kind)
	assert.Equal(t, msgPartialWrite, res.Message)
	assert.Equal(t, errInjected.Error(), res.Detail)
	require.NotNil(t, res.Value)
	assert.Nil(t, res.Value.Relative)
	assert.Equal(t, 1, countRows(t, h.db, `SELECT COUNT(*) FROM records WHERE id = ?`, res.Value.Record.ID))

	upd := h.svc.UpdateRecordWithRelationship(ctx, h.alice, validate.UpdateRecordWithRelationshipInput{
		ID: h.aliceRecord.ID,
		RecordWithRelationshipInput: validate.RecordWithRelationshipInput{
			UserID: 5, Relationship: model.RelationshipSelf, RecordAttrs: recordAttrs("Alicia"),
		},
	})
	require.Equal(t, PartiallyApplied, upd.Kind)
	assert.Equal(t, "Alicia", upd.Value.Record.FirstName)
}

func TestStorageFailure(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.db.Close())

	for name, res := range map[string]Result[*model.Household]{
		"owned":   h.svc.GetHouseholdByID(ctx, h.alice, 42),
		"byEmail": h.svc.GetHouseholdByUserEmail(ctx, h.alice, "alice@example.com"),
	} {
		assert.Equal(t, StorageFailed, res.Kind, name)
		assert.NotEmpty(t, res.Detail, name)
		assert.NotEmpty(t, res.Message, name)
	}

	login := h.svc.Login(ctx, nil, validate.LoginInput{Email: "alice@example.com", Password: testPassword})
	assert.Equal(t, StorageFailed, login.Kind)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "partially applied", PartiallyApplied.String())
	assert.True(t, Created.Success())
	assert.False(t, PartiallyApplied.Success())
}
