package models

import "time"

// User represents a registered account. PasswordHash is a bcrypt hash
// and must never appear in logs or API responses.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    *string    `json:"firstName"`
	LastName     *string    `json:"lastName"`
	DOB          *time.Time `json:"dob,omitempty"`
	Address      *string    `json:"address,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
