// AngelaMos | 2026
// entity.go

package account

import (
	"time"
)

type Account struct {
	ID                  string    `db:"id"`
	Email               string    `db:"email"`
	Name                string    `db:"name"`
	PasswordHash        string    `db:"password_hash"`
	Status              string    `db:"status"`
	Role                string    `db:"role"`
	DeviceID            *string   `db:"device_id"`
	LoggedIn            bool      `db:"logged_in"`
	CredentialSingleUse bool      `db:"credential_single_use"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
}

func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a *Account) IsApproved() bool {
	return a.Status == StatusApproved
}

func (a *Account) IsBound() bool {
	return a.DeviceID != nil && *a.DeviceID != ""
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Approval lifecycle. PENDING moves to APPROVED or REJECTED exactly once;
// both are terminal.
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}
