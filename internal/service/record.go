package service

import (
	"context"
	"fmt"

	"github.com/dukerupert/census/internal/auth"
	"github.com/dukerupert/census/internal/model"
	"github.com/dukerupert/census/internal/store"
	"github.com/dukerupert/census/internal/validate"
)

// recordFields converts validated attributes into storage fields. Blank
// optional text is stored as NULL.
func recordFields(householdID int64, a validate.RecordAttrs) (store.RecordFields, *failure) {
	dob, err := validate.ParseDate(a.DOB)
	if err != nil {
		return store.RecordFields{}, invalidField("dob", "must be a date in MM/DD/YYYY format")
	}
	return store.RecordFields{
		HouseholdID:   householdID,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		DOB:           dob,
		Gender:        a.Gender,
		Telephone:     blankToNil(a.Telephone),
		Hispanic:      a.Hispanic,
		HispanicOther: blankToNil(a.HispanicOther),
		Race:          a.Race,
		RaceOther:     blankToNil(a.RaceOther),
		OtherStay:     a.OtherStay,
	}, nil
}

func (s *Service) listRecords(ctx context.Context, op string, householdID int64, subject string) Result[[]model.Record] {
	records, err := s.records.ListByHousehold(ctx, householdID)
	if err != nil {
		return failed[[]model.Record](s.storageFailure(op, fmt.Sprintf("failed to get records for %s", subject), err))
	}
	if len(records) == 0 {
		return failed[[]model.Record](notFound(fmt.Sprintf("no records found for %s", subject)))
	}
	return ok(records, fmt.Sprintf("records found for %s", subject))
}

func (s *Service) GetRecordsUnderHouseholdID(ctx context.Context, p *auth.Principal, householdID int64) Result[[]model.Record] {
	const op = "get-household-records"
	if fields := validate.ID("householdId", householdID); fields != nil {
		return Invalid[[]model.Record](fields)
	}
	h, f := s.ownedHousehold(ctx, op, p, householdID, "you don't have permission to get someone's records")
	if f != nil {
		return failed[[]model.Record](f)
	}
	return s.listRecords(ctx, op, h.ID, fmt.Sprintf("household id '%d'", householdID))
}

func (s *Service) GetRecordsUnderUserID(ctx context.Context, p *auth.Principal, userID int64) Result[[]model.Record] {
	const op = "get-user-records"
	if fields := validate.ID("userId", userID); fields != nil {
		return Invalid[[]model.Record](fields)
	}
	_, h, f := s.userHousehold(ctx, op, p, userID, "you don't have permission to get someone's records")
	if f != nil {
		return failed[[]model.Record](f)
	}
	return s.listRecords(ctx, op, h.ID, fmt.Sprintf("user by id '%d'", userID))
}

func (s *Service) GetRecordsUnderUserEmail(ctx context.Context, p *auth.Principal, email string) Result[[]model.Record] {
	const op = "get-user-records"
	if fields := validate.Email("email", email); fields != nil {
		return Invalid[[]model.Record](fields)
	}
	_, h, f := s.userHouseholdByEmail(ctx, op, p, email, "you don't have permission to get someone's records")
	if f != nil {
		return failed[[]model.Record](f)
	}
	return s.listRecords(ctx, op, h.ID, fmt.Sprintf("user with email '%s'", email))
}

func (s *Service) GetRecordByID(ctx context.Context, p *auth.Principal, id int64) Result[*model.Record] {
	if fields := validate.ID("id", id); fields != nil {
		return Invalid[*model.Record](fields)
	}
	rec, f := s.ownedRecord(ctx, "get-record", p, id, "you have no permission to get someone's records")
	if f != nil {
		return failed[*model.Record](f)
	}
	return ok(rec, "record found")
}

func (s *Service) SaveRecord(ctx context.Context, p *auth.Principal, in validate.RecordInput) Result[*model.Record] {
	const op = "save-record"
	if fields := validate.Struct(in); fields != nil {
		return Invalid[*model.Record](fields)
	}
	rf, f := recordFields(in.HouseholdID, in.RecordAttrs)
	if f != nil {
		return failed[*model.Record](f)
	}
	if _, f := s.ownedHousehold(ctx, op, p, in.HouseholdID, "you don't have permission to save record under someone's household"); f != nil {
		return failed[*model.Record](f)
	}

	rec, err := s.records.Create(ctx, rf)
	if err != nil {
		return failed[*model.Record](s.storageFailure(op, "failed to save new record", err))
	}
	return created(rec, "successfully saved new record")
}

// UpdateRecord needs ownership of the record's current household and of the
// household it is moved to.
func (s *Service) UpdateRecord(ctx context.Context, p *auth.Principal, in validate.UpdateRecordInput) Result[*model.Record] {
	const op = "update-record"
	if fields := validate.Struct(in); fields != nil {
		return Invalid[*model.Record](fields)
	}
	rf, f := recordFields(in.HouseholdID, in.RecordAttrs)
	if f != nil {
		return failed[*model.Record](f)
	}
	const deniedMsg = "you have no permission to update record under someone's household"
	current, f := s.ownedRecord(ctx, op, p, in.ID, deniedMsg)
	if f != nil {
		return failed[*model.Record](f)
	}
	if current.HouseholdID != in.HouseholdID {
		if _, f := s.ownedHousehold(ctx, op, p, in.HouseholdID, deniedMsg); f != nil {
			return failed[*model.Record](f)
		}
	}

	rec, err := s.records.Update(ctx, in.ID, rf)
	if err != nil {
		return failed[*model.Record](s.storageFailure(op, "failed to update record", err))
	}
	return created(rec, "successfully updated record")
}

func (s *Service) DeleteRecordByID(ctx context.Context, p *auth.Principal, id int64) Result[Empty] {
	const op = "delete-record"
	if fields := validate.ID("id", id); fields != nil {
		return Invalid[Empty](fields)
	}
	if _, f := s.ownedRecord(ctx, op, p, id, "you have no permission to delete record under someone's household"); f != nil {
		return failed[Empty](f)
	}
	if err := s.records.Delete(ctx, id); err != nil {
		return failed[Empty](s.storageFailure(op, "failed to delete record", err))
	}
	return ok(Empty{}, "successfully deleted record")
}

// DeleteRecordsUnderHouseholdID removes every record of a household and
// returns how many were removed.
func (s *Service) DeleteRecordsUnderHouseholdID(ctx context.Context, p *auth.Principal, householdID int64) Result[int64] {
	const op = "delete-household-records"
	if fields := validate.ID("householdId", householdID); fields != nil {
		return Invalid[int64](fields)
	}
	if _, f := s.ownedHousehold(ctx, op, p, householdID, "you have no permission to delete records under someone's household"); f != nil {
		return failed[int64](f)
	}
	n, err := s.records.DeleteByHousehold(ctx, householdID)
	if err != nil {
		return failed[int64](s.storageFailure(op, "failed to delete records", err))
	}
	return ok(n, "successfully deleted records")
}
