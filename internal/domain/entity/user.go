package entity

import "time"

const (
	RoleAdmin      = "admin"
	RoleInstructor = "instructor"
	RoleStudent    = "student"
)

type User struct {
	ID        string    `json:"_id,omitempty"`
	Name      string    `json:"name" validate:"required,min=2"`
	Email     string    `json:"email" validate:"required,email"`
	Phone     string    `json:"phone,omitempty" validate:"omitempty,phone"`
	Password  string    `json:"password,omitempty" validate:"omitempty,pwd"`
	Role      string    `json:"role" validate:"required,oneof=admin instructor student"`
	IsBlocked bool      `json:"isBlocked"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

func (u User) RecordID() string { return u.ID }

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
