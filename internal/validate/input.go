package validate

import "github.com/dukerupert/census/internal/model"

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=20"`
	Name     string `json:"name" validate:"required"`
	Image    string `json:"image" validate:"omitempty,url"`
}

// UpdateUserInput changes profile fields; nil fields are kept.
type UpdateUserInput struct {
	ID    int64   `json:"id" validate:"required,gt=0"`
	Email *string `json:"email" validate:"omitempty,email"`
	Name  *string `json:"name" validate:"omitempty,min=1"`
	Image *string `json:"image" validate:"omitempty,url"`
}

type UpdatePasswordInput struct {
	ID          int64  `json:"id" validate:"required,gt=0"`
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=20"`
}

// HouseholdAttrs are the address and tenure fields shared by household
// inputs.
type HouseholdAttrs struct {
	HomeType     model.HomeType  `json:"homeType" validate:"required,oneof=HOUSE APARTMENT MOBILE_HOME SHELTER"`
	Ownership    model.Ownership `json:"ownership" validate:"required,oneof=MORTGAGE OWN RENT FREE_LIVING"`
	LienholderID *int64          `json:"lienholderId" validate:"omitempty,gt=0"`
	Address1     string          `json:"address1" validate:"required"`
	Address2     string          `json:"address2"`
	City         string          `json:"city" validate:"required"`
	State        string          `json:"state" validate:"required,usstate"`
	Zip          string          `json:"zip" validate:"required,zip5"`
}

// HouseholdInput creates a household on behalf of UserID.
type HouseholdInput struct {
	UserID int64 `json:"userId" validate:"required,gt=0"`
	HouseholdAttrs
}

type UpdateHouseholdInput struct {
	ID int64 `json:"id" validate:"required,gt=0"`
	HouseholdAttrs
}

type LienholderInput struct {
	Name string `json:"name" validate:"required"`
}

type UpdateLienholderInput struct {
	ID   int64  `json:"id" validate:"required,gt=0"`
	Name string `json:"name" validate:"required"`
}

// RecordAttrs are the demographic fields shared by record inputs. The
// "other" free text fields are optional regardless of the paired code.
type RecordAttrs struct {
	FirstName     string          `json:"firstName" validate:"required"`
	LastName      string          `json:"lastName" validate:"required"`
	DOB           string          `json:"dob" validate:"required,mmddyyyy"`
	Gender        model.Gender    `json:"gender" validate:"required,oneof=MALE FEMALE"`
	Telephone     *string         `json:"telephone" validate:"omitempty,phone"`
	Hispanic      model.Hispanic  `json:"hispanic" validate:"required,oneof=NO MEXICAN PUERTO_RICAN CUBAN OTHER NO_ANSWER"`
	HispanicOther *string         `json:"hispanicOther"`
	Race          model.Race      `json:"race" validate:"required,oneof=WHITE BLACK CHINESE FILIPINO ASIAN_INDIAN VIETNAMESE KOREAN JAPANESE OTHER_ASIAN NATIVE_HAWAIIAN SAMOAN CHAMORRO OTHER_PACIFIC OTHER NO_ANSWER"`
	RaceOther     *string         `json:"raceOther"`
	OtherStay     model.OtherStay `json:"otherStay" validate:"required,oneof=NO COLLEGE MILITARY_ASSIGNMENT JOB_OR_BUSINESS NURSING_HOME WITH_PARENT_OR_OTHER_RELATIVE SEASONAL_OR_SECOND_RESIDENT JAIL_OR_PRISON OTHER"`
}

type RecordInput struct {
	HouseholdID int64 `json:"householdId" validate:"required,gt=0"`
	RecordAttrs
}

type UpdateRecordInput struct {
	ID          int64 `json:"id" validate:"required,gt=0"`
	HouseholdID int64 `json:"householdId" validate:"required,gt=0"`
	RecordAttrs
}

type RelativeInput struct {
	UserID       int64              `json:"userId" validate:"required,gt=0"`
	RecordID     int64              `json:"recordId" validate:"required,gt=0"`
	Relationship model.Relationship `json:"relationship" validate:"required,oneof=SELF SPOUSE PARTNER BIOLOGICAL_CHILD ADOPTED_CHILD STEP_CHILD COSINE PARENT GRANDCHILD GRANDPARENT OTHER_RELATIVE OTHER_NON_RELATIVE ROOMMATE_HOUSEMATE"`
}

type UpdateRelativeInput struct {
	ID int64 `json:"id" validate:"required,gt=0"`
	RelativeInput
}

// RecordWithRelationshipInput creates a record in the household of UserID
// and links it to that user.
type RecordWithRelationshipInput struct {
	UserID       int64              `json:"userId" validate:"required,gt=0"`
	Relationship model.Relationship `json:"relationship" validate:"required,oneof=SELF SPOUSE PARTNER BIOLOGICAL_CHILD ADOPTED_CHILD STEP_CHILD COSINE PARENT GRANDCHILD GRANDPARENT OTHER_RELATIVE OTHER_NON_RELATIVE ROOMMATE_HOUSEMATE"`
	RecordAttrs
}

type UpdateRecordWithRelationshipInput struct {
	ID int64 `json:"id" validate:"required,gt=0"`
	RecordWithRelationshipInput
}
