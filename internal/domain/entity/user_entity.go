package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// Password holds a bcrypt hash and is never serialized outward;
// the same goes for the verification and reset tokens.
type User struct {
	ID                int64     `json:"id"`
	Email             string    `json:"email"`
	Password          string    `json:"-"`
	FullName          string    `json:"full_name"`
	Role              Role      `json:"role"`
	IsActive          bool      `json:"is_active"`
	IsVerified        bool      `json:"is_verified"`
	VerificationToken string    `json:"-"`
	ResetToken        string    `json:"-"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// IsSelf reports whether the given id refers to this user.
func (u *User) IsSelf(id int64) bool {
	return u != nil && u.ID == id
}
