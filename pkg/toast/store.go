package toast

import (
	"context"

	"github.com/pkg/errors"
)

var (
	ErrToastNotFound = errors.New("toast not found")
)

type Store interface {
	// Add adds a toast, assigning its Id and CreatedAt. A zero Duration is
	// replaced with DefaultDuration.
	Add(ctx context.Context, toast *Toast) (string, error)

	// Remove removes a toast before it expires. ErrToastNotFound is returned
	// if the toast doesn't exist or has already expired.
	Remove(ctx context.Context, id string) error

	// List returns the unexpired toasts, oldest first.
	List(ctx context.Context) ([]*Toast, error)
}
