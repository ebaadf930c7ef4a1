// Package toast provides short-lived user notifications.
package toast

import (
	"time"

	"github.com/pkg/errors"
)

// DefaultDuration is how long a toast is shown when no duration is given.
const DefaultDuration = 5 * time.Second

type Type uint8

const (
	TypeUnknown Type = iota
	TypeSuccess
	TypeError
	TypeInfo
	TypeWarning
)

func (t Type) String() string {
	switch t {
	case TypeSuccess:
		return "success"
	case TypeError:
		return "error"
	case TypeInfo:
		return "info"
	case TypeWarning:
		return "warning"
	default:
		return "unknown"
	}
}

type Toast struct {
	Id       string
	Type     Type
	Message  string
	Duration time.Duration

	CreatedAt time.Time
}

func (t *Toast) Validate() error {
	if t.Type == TypeUnknown {
		return errors.New("toast type is required")
	}
	if len(t.Message) == 0 {
		return errors.New("toast message is required")
	}
	if t.Duration < 0 {
		return errors.New("toast duration cannot be negative")
	}
	return nil
}

// ExpiresAt returns the time after which the toast is no longer shown.
func (t *Toast) ExpiresAt() time.Time {
	return t.CreatedAt.Add(t.Duration)
}

func (t *Toast) Clone() Toast {
	return Toast{
		Id:        t.Id,
		Type:      t.Type,
		Message:   t.Message,
		Duration:  t.Duration,
		CreatedAt: t.CreatedAt,
	}
}
