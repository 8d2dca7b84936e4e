package models

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for the core operations. Callers classify failures
// with errors.Is and surface the wrapped message to the user.
var (
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("already exists")
	ErrNotFound          = errors.New("not found")
	ErrAuth              = errors.New("not authorized")
	ErrInsufficientFunds = errors.New("not enough coins")
)

// LockedError reports an open attempt before the gift's unlock date.
// It carries the date so the presentation layer can display it.
type LockedError struct {
	OpenDate time.Time
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("gift locked until %s", e.OpenDate.Format("2006-01-02 15:04:05"))
}
