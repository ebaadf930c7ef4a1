package toast

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Notifier adds typed toasts to a Store. Failures are logged, never returned,
// so that notifications cannot break the flow that raised them.
type Notifier struct {
	log   *logrus.Entry
	store Store
}

func NewNotifier(store Store) *Notifier {
	return &Notifier{
		log:   logrus.StandardLogger().WithField("type", "toast/notifier"),
		store: store,
	}
}

func (n *Notifier) Success(ctx context.Context, message string) string {
	return n.notify(ctx, TypeSuccess, message, 0)
}

func (n *Notifier) Error(ctx context.Context, message string) string {
	return n.notify(ctx, TypeError, message, 0)
}

func (n *Notifier) Info(ctx context.Context, message string) string {
	return n.notify(ctx, TypeInfo, message, 0)
}

func (n *Notifier) Warning(ctx context.Context, message string) string {
	return n.notify(ctx, TypeWarning, message, 0)
}

// Notify adds a toast shown for duration, or DefaultDuration if zero. It
// returns the toast id, or an empty string if the toast could not be added.
func (n *Notifier) Notify(ctx context.Context, t Type, message string, duration time.Duration) string {
	return n.notify(ctx, t, message, duration)
}

func (n *Notifier) notify(ctx context.Context, t Type, message string, duration time.Duration) string {
	id, err := n.store.Add(ctx, &Toast{
		Type:     t,
		Message:  message,
		Duration: duration,
	})
	if err != nil {
		n.log.WithError(err).WithFields(logrus.Fields{
			"method":     "notify",
			"toast_type": t.String(),
		}).Warn("failure adding toast")
		return ""
	}
	return id
}

// Dismiss removes a toast early. Unknown or expired toasts are ignored.
func (n *Notifier) Dismiss(ctx context.Context, id string) {
	err := n.store.Remove(ctx, id)
	if err != nil && err != ErrToastNotFound {
		n.log.WithError(err).WithField("method", "Dismiss").Warn("failure removing toast")
	}
}
