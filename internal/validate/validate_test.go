package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldNames(errs []FieldError) []string {
	names := make([]string, len(errs))
	for i, e := range errs {
		names[i] = e.Field
	}
	return names
}

func validRecordAttrs() RecordAttrs {
	return RecordAttrs{
		FirstName: "Jane",
		LastName:  "Smith",
		DOB:       "03/14/1990",
		Gender:    "FEMALE",
		Hispanic:  "NO",
		Race:      "WHITE",
		OtherStay: "NO",
	}
}

func TestRegisterInputValid(t *testing.T) {
	errs := Struct(RegisterInput{Email: "a@example.com", Password: "secret1", Name: "Alice"})
	assert.Nil(t, errs)
}

func TestRegisterInputReportsEveryField(t *testing.T) {
	errs := Struct(RegisterInput{Email: "not-an-email", Password: "123", Image: "nope"})
	require.Len(t, errs, 4)
	assert.ElementsMatch(t, []string{"email", "password", "name", "image"}, fieldNames(errs))
}

func TestPasswordLength(t *testing.T) {
	long := strings.Repeat("x", 21)
	errs := Struct(RegisterInput{Email: "a@example.com", Password: long, Name: "Alice"})
	require.Len(t, errs, 1)
	assert.Equal(t, "password", errs[0].Field)
	assert.Equal(t, "must be at most 20 characters", errs[0].Reason)
}

func TestHouseholdInputRules(t *testing.T) {
	in := HouseholdInput{
		UserID: 1,
		HouseholdAttrs: HouseholdAttrs{
			HomeType:  "CASTLE",
			Ownership: "OWN",
			Address1:  "1 Main St",
			City:      "Springfield",
			State:     "ZZ",
			Zip:       "1234",
		},
	}
	errs := Struct(in)
	assert.ElementsMatch(t, []string{"homeType", "state", "zip"}, fieldNames(errs))

	in.HomeType = "HOUSE"
	in.State = "IL"
	in.Zip = "62701"
	assert.Nil(t, Struct(in))
}

func TestHouseholdInputMissingUser(t *testing.T) {
	errs := Struct(HouseholdInput{HouseholdAttrs: HouseholdAttrs{
		HomeType: "HOUSE", Ownership: "RENT", Address1: "x", City: "y", State: "PR", Zip: "00901",
	}})
	require.Len(t, errs, 1)
	assert.Equal(t, "userId", errs[0].Field)
}

func TestRecordDateRule(t *testing.T) {
	cases := []struct {
		dob   string
		valid bool
	}{
		{"03/14/1990", true},
		{"02/29/2024", true},
		{"02/30/2024", false},
		{"13/01/2000", false},
		{"1990-03-14", false},
		{"3/14/1990", false},
	}
	for _, tc := range cases {
		attrs := validRecordAttrs()
		attrs.DOB = tc.dob
		errs := Struct(RecordInput{HouseholdID: 1, RecordAttrs: attrs})
		if tc.valid {
			assert.Nil(t, errs, tc.dob)
		} else {
			require.Len(t, errs, 1, tc.dob)
			assert.Equal(t, "dob", errs[0].Field)
		}
	}
}

func TestRecordPhoneRule(t *testing.T) {
	for phone, valid := range map[string]bool{
		"12345":       true,
		"5551234567":  true,
		"1234":        false,
		"55512345678": false,
		"555-1234":    false,
	} {
		attrs := validRecordAttrs()
		attrs.Telephone = &phone
		errs := Struct(RecordInput{HouseholdID: 1, RecordAttrs: attrs})
		assert.Equal(t, valid, errs == nil, phone)
	}
}

func TestRecordOtherTextNotRequired(t *testing.T) {
	attrs := validRecordAttrs()
	attrs.Hispanic = "OTHER"
	attrs.Race = "OTHER"
	assert.Nil(t, Struct(RecordInput{HouseholdID: 1, RecordAttrs: attrs}))
}

func TestRelationshipEnum(t *testing.T) {
	in := RecordWithRelationshipInput{UserID: 1, Relationship: "COUSIN", RecordAttrs: validRecordAttrs()}
	errs := Struct(in)
	require.Len(t, errs, 1)
	assert.Equal(t, "relationship", errs[0].Field)

	in.Relationship = "COSINE"
	assert.Nil(t, Struct(in))
}

func TestUpdateUserOptionalFields(t *testing.T) {
	assert.Nil(t, Struct(UpdateUserInput{ID: 3}))

	bad := "nope"
	errs := Struct(UpdateUserInput{ID: 3, Email: &bad})
	require.Len(t, errs, 1)
	assert.Equal(t, "email", errs[0].Field)
}

func TestIDAndEmail(t *testing.T) {
	assert.Nil(t, ID("id", 1))
	assert.Len(t, ID("id", 0), 1)
	assert.Nil(t, Email("email", "a@example.com"))
	assert.Len(t, Email("email", "a@"), 1)
	assert.Len(t, Name("name", "  "), 1)
}

func TestDecodeNeverPanics(t *testing.T) {
	var in RecordInput
	errs := Decode(strings.NewReader(`{"householdId": "seven"}`), &in)
	require.Len(t, errs, 1)
	assert.Equal(t, "householdId", errs[0].Field)
	assert.Equal(t, "must be a number", errs[0].Reason)

	errs = Decode(strings.NewReader(`{"householdId": `), &in)
	require.Len(t, errs, 1)
	assert.Equal(t, "body", errs[0].Field)

	errs = Decode(strings.NewReader(``), &in)
	require.Len(t, errs, 1)
	assert.Equal(t, "is required", errs[0].Reason)
}

func TestDecodeFlattensEmbeddedFields(t *testing.T) {
	var in UpdateRecordWithRelationshipInput
	body := `{"id":4,"userId":2,"relationship":"SELF","firstName":"Jane","lastName":"Smith",
		"dob":"03/14/1990","gender":"FEMALE","hispanic":"NO","race":"WHITE","otherStay":"NO"}`
	require.Nil(t, Decode(strings.NewReader(body), &in))
	assert.Equal(t, int64(4), in.ID)
	assert.Equal(t, int64(2), in.UserID)
	assert.Equal(t, "Jane", in.FirstName)
	assert.Nil(t, Struct(in))
}
