package memory

import (
	"context"
	"sync"
	"time"

	"github.com/daughters-of-aether/arena-client/pkg/battle/history"
)

type store struct {
	mu      sync.Mutex
	records []*history.Record
	last    uint64
}

// New returns a new in memory history.Store
func New() history.Store {
	return &store{}
}

// Save implements history.Store.Save
func (s *store) Save(_ context.Context, record *history.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if item := s.findByBattleAccount(record.BattleAccount); item != nil {
		record.Id = item.Id
		record.CreatedAt = item.CreatedAt
		record.CopyTo(item)
		return nil
	}

	s.last++
	record.Id = s.last
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	cloned := record.Clone()
	s.records = append(s.records, &cloned)

	return nil
}

// GetAll implements history.Store.GetAll
func (s *store) GetAll(_ context.Context, player string) ([]*history.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res []*history.Record
	for _, item := range s.records {
		if item.Player == player {
			cloned := item.Clone()
			res = append(res, &cloned)
		}
	}

	if len(res) == 0 {
		return nil, history.ErrRecordNotFound
	}
	return res, nil
}

// GetByBattleAccount implements history.Store.GetByBattleAccount
func (s *store) GetByBattleAccount(_ context.Context, battleAccount string) (*history.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.findByBattleAccount(battleAccount)
	if item == nil {
		return nil, history.ErrRecordNotFound
	}

	cloned := item.Clone()
	return &cloned, nil
}

func (s *store) findByBattleAccount(battleAccount string) *history.Record {
	for _, item := range s.records {
		if item.BattleAccount == battleAccount {
			return item
		}
	}
	return nil
}

func (s *store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last = 0
	s.records = nil
}
