package tasks

import (
	"errors"
	"fmt"

	"github.com/pkruglov/shopfloor-bot/internal/storage/sqlite"
)

// ErrNotFound is returned for an unknown task, user, equipment or
// product id. It aliases the storage sentinel so callers can match
// either.
var ErrNotFound = sqlite.ErrNotFound

// ErrInvalidTransition rejects an operation on a task whose current
// status does not admit it, including a second receive attempt.
var ErrInvalidTransition = errors.New("invalid status transition")

// ValidationError marks caller input that failed a precondition. The
// reason is safe to show to the user.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

func validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
