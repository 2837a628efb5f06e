// Package errs holds the error taxonomy shared by the store, session and view layers.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested record does not exist or is not visible to the caller.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates rejected credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAlreadyExists indicates a unique constraint violation.
	ErrAlreadyExists = errors.New("already exists")

	// ErrNoSession indicates the operation needs a signed-in user.
	ErrNoSession = errors.New("no active session")

	// ErrConfirmRequired indicates a destructive request without explicit confirmation.
	ErrConfirmRequired = errors.New("confirmation required")
)

// ValidationError is a local input rejection. No remote call is made when it is returned.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string { return e.Msg }

// RemoteError wraps a failure of the Data Store or the Session Provider.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *RemoteError) Unwrap() error { return e.Err }

// Remote wraps err as a RemoteError for op. A nil err stays nil.
func Remote(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RemoteError{Op: op, Err: err}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
