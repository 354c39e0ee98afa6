package model

import "time"

type HomeType string

const (
	HomeTypeHouse      HomeType = "HOUSE"
	HomeTypeApartment  HomeType = "APARTMENT"
	HomeTypeMobileHome HomeType = "MOBILE_HOME"
	HomeTypeShelter    HomeType = "SHELTER"
)

type Ownership string

const (
	OwnershipMortgage   Ownership = "MORTGAGE"
	OwnershipOwn        Ownership = "OWN"
	OwnershipRent       Ownership = "RENT"
	OwnershipFreeLiving Ownership = "FREE_LIVING"
)

type Household struct {
	ID           int64     `json:"id"`
	HomeType     HomeType  `json:"homeType"`
	Ownership    Ownership `json:"ownership"`
	LienholderID *int64    `json:"lienholderId"`
	Address1     string    `json:"address1"`
	Address2     string    `json:"address2"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	Zip          string    `json:"zip"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Lienholder is shared reference data; it has no owner.
type Lienholder struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
