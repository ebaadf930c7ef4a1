package history

import (
	"context"

	"github.com/pkg/errors"
)

var (
	ErrRecordNotFound = errors.New("battle history record not found")
)

type Store interface {
	// Save saves an attempt. Saving a record for a battle account that
	// already exists updates it in place.
	Save(ctx context.Context, record *Record) error

	// GetAll gets all attempts made by a player, oldest first.
	// ErrRecordNotFound is returned if the player has none.
	GetAll(ctx context.Context, player string) ([]*Record, error)

	// GetByBattleAccount gets the attempt that generated a battle account.
	// ErrRecordNotFound is returned if no record exists.
	GetByBattleAccount(ctx context.Context, battleAccount string) (*Record, error)
}
