package model

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Image        string    `json:"image"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	HouseholdID  *int64    `json:"householdId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// InHousehold reports whether the user is assigned to the given household.
func (u *User) InHousehold(householdID int64) bool {
	return u != nil && u.HouseholdID != nil && *u.HouseholdID == householdID
}
