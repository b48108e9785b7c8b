package utils

import (
	"errors"
	"fmt"
)

var ErrorRecordNotFound = errors.New("record not found")

// AccessDeniedError is returned when a non-admin looks up a dossier owned by
// another platform. It names the owning platform so the operator can
// self-correct instead of chasing a phantom not-found.
type AccessDeniedError struct {
	FileNumber     string
	OwningPlatform string
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("dossier %s belongs to platform %s", e.FileNumber, e.OwningPlatform)
}

// LedgerUpdateError signals that the remaining-count decrement could not be
// applied (e.g. dossier missing). The triggering log insert is never rolled
// back on this error; callers log it as a warning.
type LedgerUpdateError struct {
	FileNumber string
	Reason     string
}

func (e *LedgerUpdateError) Error() string {
	return fmt.Sprintf("ledger update failed for dossier %s: %s", e.FileNumber, e.Reason)
}
