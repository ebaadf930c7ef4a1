package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/daughters-of-aether/arena-client/pkg/toast"
)

type store struct {
	mu     sync.Mutex
	now    func() time.Time
	toasts []*toast.Toast
}

// New returns a new in memory toast.Store. Expired toasts are dropped lazily
// whenever the store is accessed.
func New() toast.Store {
	return NewWithClock(time.Now)
}

// NewWithClock returns a new in memory toast.Store that reads the current
// time from now.
func NewWithClock(now func() time.Time) toast.Store {
	return &store{now: now}
}

func (s *store) Add(_ context.Context, t *toast.Toast) (string, error) {
	if t.Duration == 0 {
		t.Duration = toast.DefaultDuration
	}
	if err := t.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.expire()

	t.Id = uuid.New().String()
	t.CreatedAt = s.now()

	cloned := t.Clone()
	s.toasts = append(s.toasts, &cloned)

	return t.Id, nil
}

func (s *store) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expire()

	for i, item := range s.toasts {
		if item.Id == id {
			s.toasts = append(s.toasts[:i], s.toasts[i+1:]...)
			return nil
		}
	}
	return toast.ErrToastNotFound
}

func (s *store) List(_ context.Context) ([]*toast.Toast, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expire()

	res := make([]*toast.Toast, 0, len(s.toasts))
	for _, item := range s.toasts {
		cloned := item.Clone()
		res = append(res, &cloned)
	}
	return res, nil
}

// expire must be called with mu held.
func (s *store) expire() {
	now := s.now()

	live := s.toasts[:0]
	for _, item := range s.toasts {
		if now.Before(item.ExpiresAt()) {
			live = append(live, item)
		}
	}
	for i := len(live); i < len(s.toasts); i++ {
		s.toasts[i] = nil
	}
	s.toasts = live
}

func (s *store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.toasts = nil
}
