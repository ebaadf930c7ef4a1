package battle

import (
	"github.com/pkg/errors"
)

var (
	ErrWalletInvalid       = errors.New("invalid wallet")
	ErrStakeInvalid        = errors.New("invalid stake")
	ErrNetwork             = errors.New("network error")
	ErrSigningRejected     = errors.New("signing rejected")
	ErrSubmission          = errors.New("transaction submission failed")
	ErrConfirmationTimeout = errors.New("transaction confirmation timed out")
	ErrConfirmationFailed  = errors.New("transaction failed")
)

// failure attaches one of the package errors to its underlying cause, so
// that callers can match either with errors.Is and errors.As.
type failure struct {
	kind  error
	cause error
}

func newFailure(kind, cause error) error {
	return &failure{kind: kind, cause: cause}
}

func (f *failure) Error() string {
	return f.kind.Error() + ": " + f.cause.Error()
}

func (f *failure) Is(target error) bool {
	return target == f.kind
}

func (f *failure) Unwrap() error {
	return f.cause
}

// Cause implements the github.com/pkg/errors causer interface.
func (f *failure) Cause() error {
	return f.cause
}
