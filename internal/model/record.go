package model

import "time"

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

type Hispanic string

const (
	HispanicNo          Hispanic = "NO"
	HispanicMexican     Hispanic = "MEXICAN"
	HispanicPuertoRican Hispanic = "PUERTO_RICAN"
	HispanicCuban       Hispanic = "CUBAN"
	HispanicOther       Hispanic = "OTHER"
	HispanicNoAnswer    Hispanic = "NO_ANSWER"
)

type Race string

const (
	RaceWhite          Race = "WHITE"
	RaceBlack          Race = "BLACK"
	RaceChinese        Race = "CHINESE"
	RaceFilipino       Race = "FILIPINO"
	RaceAsianIndian    Race = "ASIAN_INDIAN"
	RaceVietnamese     Race = "VIETNAMESE"
	RaceKorean         Race = "KOREAN"
	RaceJapanese       Race = "JAPANESE"
	RaceOtherAsian     Race = "OTHER_ASIAN"
	RaceNativeHawaiian Race = "NATIVE_HAWAIIAN"
	RaceSamoan         Race = "SAMOAN"
	RaceChamorro       Race = "CHAMORRO"
	RaceOtherPacific   Race = "OTHER_PACIFIC"
	RaceOther          Race = "OTHER"
	RaceNoAnswer       Race = "NO_ANSWER"
)

// OtherStay records whether a person sometimes lives somewhere else.
type OtherStay string

const (
	OtherStayNo           OtherStay = "NO"
	OtherStayCollege      OtherStay = "COLLEGE"
	OtherStayMilitary     OtherStay = "MILITARY_ASSIGNMENT"
	OtherStayJob          OtherStay = "JOB_OR_BUSINESS"
	OtherStayNursingHome  OtherStay = "NURSING_HOME"
	OtherStayWithRelative OtherStay = "WITH_PARENT_OR_OTHER_RELATIVE"
	OtherStaySeasonal     OtherStay = "SEASONAL_OR_SECOND_RESIDENT"
	OtherStayJailOrPrison OtherStay = "JAIL_OR_PRISON"
	OtherStayOther        OtherStay = "OTHER"
)

// Record is one person counted under a household.
type Record struct {
	ID            int64     `json:"id"`
	HouseholdID   int64     `json:"householdId"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	DOB           time.Time `json:"dob"`
	Gender        Gender    `json:"gender"`
	Telephone     *string   `json:"telephone"`
	Hispanic      Hispanic  `json:"hispanic"`
	HispanicOther *string   `json:"hispanicOther"`
	Race          Race      `json:"race"`
	RaceOther     *string   `json:"raceOther"`
	OtherStay     OtherStay `json:"otherStay"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Relationship string

const (
	RelationshipSelf             Relationship = "SELF"
	RelationshipSpouse           Relationship = "SPOUSE"
	RelationshipPartner          Relationship = "PARTNER"
	RelationshipBiologicalChild  Relationship = "BIOLOGICAL_CHILD"
	RelationshipAdoptedChild     Relationship = "ADOPTED_CHILD"
	RelationshipStepChild        Relationship = "STEP_CHILD"
	RelationshipCousin           Relationship = "COSINE"
	RelationshipParent           Relationship = "PARENT"
	RelationshipGrandchild       Relationship = "GRANDCHILD"
	RelationshipGrandparent      Relationship = "GRANDPARENT"
	RelationshipOtherRelative    Relationship = "OTHER_RELATIVE"
	RelationshipOtherNonRelative Relationship = "OTHER_NON_RELATIVE"
	RelationshipRoommate         Relationship = "ROOMMATE_HOUSEMATE"
)

// Relative links a record to the user who registered it.
type Relative struct {
	ID           int64        `json:"id"`
	UserID       int64        `json:"userId"`
	RecordID     int64        `json:"recordId"`
	Relationship Relationship `json:"relationship"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// RecordWithRelationship pairs a record with the caller's relative row for
// it, if any.
type RecordWithRelationship struct {
	Record   Record    `json:"record"`
	Relative *Relative `json:"relative"`
}
