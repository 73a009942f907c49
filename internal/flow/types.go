package flow

import "errors"

// Choice is one option offered to the actor at a selection step.
type Choice struct {
	ID    int64
	Label string
}

// Input is one unit of actor input applied to a flow step: a button
// selection, free text, a confirmation or a cancel. Exactly one kind
// is set.
type Input struct {
	Select    int64
	HasSelect bool
	Text      string
	HasText   bool
	Confirm   bool
	Cancel    bool
}

func SelectInput(id int64) Input { return Input{Select: id, HasSelect: true} }
func TextInput(s string) Input   { return Input{Text: s, HasText: true} }
func ConfirmInput() Input        { return Input{Confirm: true} }
func CancelInput() Input         { return Input{Cancel: true} }

// ErrCancelled ends a flow on the actor's cancel action. The caller
// discards the session; no partial task exists to roll back.
var ErrCancelled = errors.New("flow cancelled")

// EmptyError aborts a flow because there is nothing to offer at the
// current step. It is a normal user-facing outcome, not a fault.
type EmptyError struct {
	Message string
}

func (e *EmptyError) Error() string { return e.Message }

// RetryError rejects one input and re-prompts the same step without
// losing already-collected fields.
type RetryError struct {
	Hint string
}

func (e *RetryError) Error() string { return e.Hint }

func retry(hint string) error  { return &RetryError{Hint: hint} }
func empty(msg string) error   { return &EmptyError{Message: msg} }
func IsEmpty(err error) bool   { var e *EmptyError; return errors.As(err, &e) }
func IsRetry(err error) (string, bool) {
	var e *RetryError
	if errors.As(err, &e) {
		return e.Hint, true
	}
	return "", false
}
