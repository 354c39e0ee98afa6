package service

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/dukerupert/census/internal/access"
	"github.com/dukerupert/census/internal/auth"
	"github.com/dukerupert/census/internal/model"
	"github.com/dukerupert/census/internal/validate"
)

const (
	msgSelfTaken    = "user already has a SELF record"
	msgPartialWrite = "relationship was not saved, but the record exists; please edit it"
)

// selfTaken reports whether assigning rel for userID would create a second
// SELF relative. keepID is the relative being rewritten, if any.
func (s *Service) selfTaken(ctx context.Context, op string, userID int64, rel model.Relationship, keepID int64) (bool, *failure) {
	if rel != model.RelationshipSelf {
		return false, nil
	}
	self, err := s.relatives.GetSelf(ctx, userID)
	if err != nil {
		return false, s.storageFailure(op, "failed to check relationships", err)
	}
	return self != nil && self.ID != keepID, nil
}

// recordInUserHousehold loads the record and the user and checks the record
// sits in the user's household.
func (s *Service) recordInUserHousehold(ctx context.Context, op string, p *auth.Principal, userID, recordID int64) *failure {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return s.storageFailure(op, "failed to save relative info", err)
	}
	if u == nil {
		return notFound(fmt.Sprintf("user by id '%d' doesn't exist", userID))
	}
	rec, f := s.ownedRecord(ctx, op, p, recordID, "you don't have permission to relate someone's record")
	if f != nil {
		return f
	}
	if !u.InHousehold(rec.HouseholdID) {
		return denied(fmt.Sprintf("record by id '%d' is not in the household of user by id '%d'", recordID, userID))
	}
	return nil
}

func (s *Service) GetRelativesUnderUserID(ctx context.Context, p *auth.Principal, userID int64) Result[[]model.Relative] {
	const op = "get-relatives"
	if fields := validate.ID("userId", userID); fields != nil {
		return Invalid[[]model.Relative](fields)
	}
	if f := s.authorize(op, p, selfOwners(p, p != nil && p.ID == userID), access.OwnerOrAdmin, "you don't have permission to get someone's relatives"); f != nil {
		return failed[[]model.Relative](f)
	}

	relatives, err := s.relatives.ListByUser(ctx, userID)
	if err != nil {
		return failed[[]model.Relative](s.storageFailure(op, fmt.Sprintf("failed to get relative information under user id '%d'", userID), err))
	}
	if len(relatives) == 0 {
		return failed[[]model.Relative](notFound(fmt.Sprintf("no relative data found under user by id '%d'", userID)))
	}
	return ok(relatives, "relatives information found")
}

func (s *Service) SaveRelative(ctx context.Context, p *auth.Principal, in validate.RelativeInput) Result[*model.Relative] {
	const op = "save-relative"
	if fields := validate.Struct(in); fields != nil {
		return Invalid[*model.Relative](fields)
	}
	if f := s.authorize(op, p, selfOwners(p, p != nil && p.ID == in.UserID), access.OwnerOrAdmin, "you don't have permission to save to someone's relatives"); f != nil {
		return failed[*model.Relative](f)
	}
	if f := s.recordInUserHousehold(ctx, op, p, in.UserID, in.RecordID); f != nil {
		return failed[*model.Relative](f)
	}
	taken, f := s.selfTaken(ctx, op, in.UserID, in.Relationship, 0)
	if f != nil {
		return failed[*model.Relative](f)
	}
	if taken {
		return failed[*model.Relative](conflict(msgSelfTaken))
	}

	rel, err := s.relatives.Create(ctx, in.UserID, in.RecordID, in.Relationship)
	if err != nil {
		return failed[*model.Relative](s.storageFailure(op, "failed to save new relative info", err))
	}
	return created(rel, "saved new relative info")
}

func (s *Service) UpdateRelative(ctx context.Context, p *auth.Principal, in validate.UpdateRelativeInput) Result[*model.Relative] {
	const op = "update-relative"
	if fields := validate.Struct(in); fields != nil {
		return Invalid[*model.Relative](fields)
	}
	const deniedMsg = "you don't have permission to update to someone's relatives"
	if f := s.authenticated(p); f != nil {
		return failed[*model.Relative](f)
	}
	current, owners, err := s.owners.RelativeOwner(ctx, in.ID)
	if err != nil {
		return failed[*model.Relative](s.storageFailure(op, "failed to update relative info", err))
	}
	if current == nil {
		return failed[*model.Relative](s.missing(p, access.OwnerOrAdmin, fmt.Sprintf("no relative found by id '%d'", in.ID), deniedMsg))
	}
	if f := s.authorize(op, p, owners, access.OwnerOrAdmin, deniedMsg); f != nil {
		return failed[*model.Relative](f)
	}
	if current.UserID != in.UserID {
		return failed[*model.Relative](invalidField("userId", "cannot move a relative to another user"))
	}
	if f := s.recordInUserHousehold(ctx, op, p, in.UserID, in.RecordID); f != nil {
		return failed[*model.Relative](f)
	}
	taken, f := s.selfTaken(ctx, op, in.UserID, in.Relationship, in.ID)
	if f != nil {
		return failed[*model.Relative](f)
	}
	if taken {
		return failed[*model.Relative](conflict(msgSelfTaken))
	}

	rel, err := s.relatives.Update(ctx, in.ID, in.RecordID, in.Relationship)
	if err != nil {
		return failed[*model.Relative](s.storageFailure(op, "failed to update relative info", err))
	}
	return created(rel, "updated relative info")
}

func (s *Service) pairRecords(ctx context.Context, op string, userID int64, records []model.Record) Result[[]model.RecordWithRelationship] {
	relatives, err := s.relatives.ListByUser(ctx, userID)
	if err != nil {
		return failed[[]model.RecordWithRelationship](s.storageFailure(op, fmt.Sprintf("failed to get relatives for user by id '%d'", userID), err))
	}
	byRecord := lo.KeyBy(relatives, func(r model.Relative) int64 { return r.RecordID })
	pairs := lo.Map(records, func(rec model.Record, _ int) model.RecordWithRelationship {
		pair := model.RecordWithRelationship{Record: rec}
		if rel, found := byRecord[rec.ID]; found {
			pair.Relative = &rel
		}
		return pair
	})
	return ok(pairs, fmt.Sprintf("records with relationship found for user by id '%d'", userID))
}

func (s *Service) GetRecordsWithRelativesUnderUserID(ctx context.Context, p *auth.Principal, userID int64) Result[[]model.RecordWithRelationship] {
	const op = "get-records-with-relatives"
	if fields := validate.ID("userId", userID); fields != nil {
		return Invalid[[]model.RecordWithRelationship](fields)
	}
	_, h, f := s.userHousehold(ctx, op, p, userID, "you don't have permission to get someone's records")
	if f != nil {
		return failed[[]model.RecordWithRelationship](f)
	}
	records := s.listRecords(ctx, op, h.ID, fmt.Sprintf("user by id '%d'", userID))
	if !records.Kind.Success() {
		return Result[[]model.RecordWithRelationship]{Kind: records.Kind, Message: records.Message, Detail: records.Detail}
	}
	return s.pairRecords(ctx, op, userID, records.Value)
}

func (s *Service) GetRecordsWithRelativesUnderUserEmail(ctx context.Context, p *auth.Principal, email string) Result[[]model.RecordWithRelationship] {
	const op = "get-records-with-relatives"
	if fields := validate.Email("email", email); fields != nil {
		return Invalid[[]model.RecordWithRelationship](fields)
	}
	u, h, f := s.userHouseholdByEmail(ctx, op, p, email, "you don't have permission to get someone's records")
	if f != nil {
		return failed[[]model.RecordWithRelationship](f)
	}
	records := s.listRecords(ctx, op, h.ID, fmt.Sprintf("user with email '%s'", email))
	if !records.Kind.Success() {
		return Result[[]model.RecordWithRelationship]{Kind: records.Kind, Message: records.Message, Detail: records.Detail}
	}
	return s.pairRecords(ctx, op, u.ID, records.Value)
}

// SaveRecordWithRelationship creates a record in the user's household and
// links it to the user. The SELF check runs before any write; if the link
// fails after the record is written the result is PartiallyApplied and
// carries the record.
func (s *Service) SaveRecordWithRelationship(ctx context.Context, p *auth.Principal, in validate.RecordWithRelationshipInput) Result[*model.RecordWithRelationship] {
	const op = "save-record-with-relationship"
	if fields := validate.Struct(in); fields != nil {
		return Invalid[*model.RecordWithRelationship](fields)
	}
	_, h, f := s.userHousehold(ctx, op, p, in.UserID, "you don't have permission to save record under someone's household")
	if f != nil {
		return failed[*model.RecordWithRelationship](f)
	}
	rf, f := recordFields(h.ID, in.RecordAttrs)
	if f != nil {
		return failed[*model.RecordWithRelationship](f)
	}
	taken, f := s.selfTaken(ctx, op, in.UserID, in.Relationship, 0)
	if f != nil {
		return failed[*model.RecordWithRelationship](f)
	}
	if taken {
		return failed[*model.RecordWithRelationship](conflict(msgSelfTaken))
	}

	rec, err := s.records.Create(ctx, rf)
	if err != nil {
		return failed[*model.RecordWithRelationship](s.storageFailure(op, "failed to save new record", err))
	}
	rel, err := s.relatives.Create(ctx, in.UserID, rec.ID, in.Relationship)
	if err != nil {
		s.logger.Error("storage failure", "op", op, "record_id", rec.ID, "error", err)
		return partial(&model.RecordWithRelationship{Record: *rec}, msgPartialWrite, err.Error())
	}
	return created(&model.RecordWithRelationship{Record: *rec, Relative: rel},
		fmt.Sprintf("successfully saved new record for '%s'", in.Relationship))
}

// UpdateRecordWithRelationship rewrites a record, moves it into the user's
// household and sets the user's relationship to it.
func (s *Service) UpdateRecordWithRelationship(ctx context.Context, p *auth.Principal, in validate.UpdateRecordWithRelationshipInput) Result[*model.RecordWithRelationship] {
	const op = "update-record-with-relationship"
	if fields := validate.Struct(in); fields != nil {
		return Invalid[*model.RecordWithRelationship](fields)
	}
	const deniedMsg = "you don't have permission to update record under someone's household"
	_, h, f := s.userHousehold(ctx, op, p, in.UserID, deniedMsg)
	if f != nil {
		return failed[*model.RecordWithRelationship](f)
	}
	if _, f := s.ownedRecord(ctx, op, p, in.ID, deniedMsg); f != nil {
		return failed[*model.RecordWithRelationship](f)
	}
	rf, f := recordFields(h.ID, in.RecordAttrs)
	if f != nil {
		return failed[*model.RecordWithRelationship](f)
	}

	existing, err := s.relatives.GetByUserAndRecord(ctx, in.UserID, in.ID)
	if err != nil {
		return failed[*model.RecordWithRelationship](s.storageFailure(op, "failed to check relationships", err))
	}
	keepID := int64(0)
	if existing != nil {
		keepID = existing.ID
	}
	taken, f := s.selfTaken(ctx, op, in.UserID, in.Relationship, keepID)
	if f != nil {
		return failed[*model.RecordWithRelationship](f)
	}
	if taken {
		return failed[*model.RecordWithRelationship](conflict(msgSelfTaken))
	}

	rec, err := s.records.Update(ctx, in.ID, rf)
	if err != nil {
		return failed[*model.RecordWithRelationship](s.storageFailure(op, "failed to update record", err))
	}
	var rel *model.Relative
	if existing != nil {
		rel, err = s.relatives.Update(ctx, existing.ID, rec.ID, in.Relationship)
	} else {
		rel, err = s.relatives.Create(ctx, in.UserID, rec.ID, in.Relationship)
	}
	if err != nil {
		s.logger.Error("storage failure", "op", op, "record_id", rec.ID, "error", err)
		return partial(&model.RecordWithRelationship{Record: *rec, Relative: existing}, msgPartialWrite, err.Error())
	}
	return created(&model.RecordWithRelationship{Record: *rec, Relative: rel},
		fmt.Sprintf("successfully updated record for '%s'", in.Relationship))
}
