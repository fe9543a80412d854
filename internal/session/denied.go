// AngelaMos | 2026
// denied.go

package session

import (
	"errors"
	"fmt"
)

type DeniedReason string

const (
	DeniedNotFound        DeniedReason = "NOT_FOUND"
	DeniedBadCredential   DeniedReason = "BAD_CREDENTIAL"
	DeniedNotApproved     DeniedReason = "NOT_APPROVED"
	DeniedDeviceMismatch  DeniedReason = "DEVICE_MISMATCH"
	DeniedAlreadyLoggedIn DeniedReason = "ALREADY_LOGGED_IN"
)

// DeniedError is the typed refusal returned by the gate. AccountStatus is
// populated for NOT_APPROVED so callers can tell a pending registration
// from a rejected one.
type DeniedError struct {
	Reason        DeniedReason
	AccountStatus string
}

func (e *DeniedError) Error() string {
	if e.AccountStatus != "" {
		return fmt.Sprintf(
			"login denied: %s (%s)", e.Reason, e.AccountStatus)
	}
	return fmt.Sprintf("login denied: %s", e.Reason)
}

func Denied(reason DeniedReason) *DeniedError {
	return &DeniedError{Reason: reason}
}

func AsDenied(err error) (*DeniedError, bool) {
	var denied *DeniedError
	if errors.As(err, &denied) {
		return denied, true
	}
	return nil, false
}
