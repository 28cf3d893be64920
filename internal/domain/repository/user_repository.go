package repository

import (
	"context"
	"errors"
	"time"

	"github.com/oksasatya/go-user-accounts/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when an insert or update would leave
	// two live users with the same email.
	ErrDuplicateEmail = errors.New("email already taken")
)

// BulkAction is a lifecycle transition applied uniformly to a set of users.
type BulkAction string

const (
	BulkActivate   BulkAction = "activate"
	BulkDeactivate BulkAction = "deactivate"
	BulkVerify     BulkAction = "verify"
	BulkDelete     BulkAction = "delete"
)

// IsValid reports whether a is a known bulk action.
func (a BulkAction) IsValid() bool {
	switch a {
	case BulkActivate, BulkDeactivate, BulkVerify, BulkDelete:
		return true
	default:
		return false
	}
}

// SearchFilter narrows a directory query. Zero values mean "no filter";
// pointer fields distinguish unset from false.
type SearchFilter struct {
	Text       string
	Role       *entity.Role
	IsActive   *bool
	IsVerified *bool
	Page       int
	PerPage    int
}

// Stats holds aggregate counts over live users.
type Stats struct {
	Total    int64                 `json:"total_users"`
	Active   int64                 `json:"active_users"`
	Verified int64                 `json:"verified_users"`
	ByRole   map[entity.Role]int64 `json:"users_by_role"`
}

// MonthlyCount is one calendar-month bucket of user signups.
type MonthlyCount struct {
	Month time.Time `json:"month"`
	Count int64     `json:"count"`
}

// UserRepository defines the storage operations the account services need.
// Implementations must make the conditional operations atomic with respect
// to concurrent writers: Create must be insert-if-absent-by-email, the
// token consumers must clear the token in the same statement that matches
// it, and BulkApply must be all-or-nothing inside one transaction.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, id int64) error

	// ConsumeVerificationToken activates and verifies the holder of token
	// and clears it, failing with ErrNotFound when no live user holds it.
	ConsumeVerificationToken(ctx context.Context, token string) (*entity.User, error)
	SetResetToken(ctx context.Context, id int64, token string) error
	// ConsumeResetToken swaps the password hash of the holder of token and
	// clears it, failing with ErrNotFound when no live user holds it.
	ConsumeResetToken(ctx context.Context, token, passwordHash string) (*entity.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error

	SetActive(ctx context.Context, id int64, active bool) (*entity.User, error)
	MarkVerified(ctx context.Context, id int64) (*entity.User, error)

	Search(ctx context.Context, f SearchFilter) ([]entity.User, int64, error)
	Stats(ctx context.Context) (*Stats, error)
	Growth(ctx context.Context, months int) ([]MonthlyCount, error)

	// BulkApply runs action over every id in one transaction. If any id
	// does not resolve to a live user the whole batch is rejected with
	// ErrNotFound and nothing is applied.
	BulkApply(ctx context.Context, ids []int64, action BulkAction) (int64, error)
}
