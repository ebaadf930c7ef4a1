package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/daughters-of-aether/arena-client/pkg/battle/history"
)

const fileMode = 0600

type store struct {
	mu   sync.Mutex
	path string
}

// New returns a history.Store persisted as a JSON document at path. The
// file is created on the first Save.
func New(path string) history.Store {
	return &store{path: path}
}

// Save implements history.Store.Save
func (s *store) Save(_ context.Context, record *history.Record) error {
	m, err := toModel(record)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	models, err := s.load()
	if err != nil {
		return err
	}

	var existing *model
	var last uint64
	for _, item := range models {
		if item.BattleAccount == m.BattleAccount {
			existing = item
		}
		if item.Id > last {
			last = item.Id
		}
	}

	if existing != nil {
		m.Id = existing.Id
		m.CreatedAt = existing.CreatedAt
		*existing = *m
	} else {
		m.Id = last + 1
		if m.CreatedAt.IsZero() {
			m.CreatedAt = time.Now().UTC()
		}
		models = append(models, m)
	}

	if err := s.write(models); err != nil {
		return err
	}

	record.Id = m.Id
	record.CreatedAt = m.CreatedAt
	return nil
}

// GetAll implements history.Store.GetAll
func (s *store) GetAll(_ context.Context, player string) ([]*history.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	models, err := s.load()
	if err != nil {
		return nil, err
	}

	var res []*history.Record
	for _, item := range models {
		if item.Player != player {
			continue
		}

		record, err := fromModel(item)
		if err != nil {
			return nil, err
		}
		res = append(res, record)
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

	models, err := s.load()
	if err != nil {
		return nil, err
	}

	for _, item := range models {
		if item.BattleAccount == battleAccount {
			return fromModel(item)
		}
	}
	return nil, history.ErrRecordNotFound
}

func (s *store) load() ([]*model, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to read history file")
	}

	var models []*model
	if err := json.Unmarshal(data, &models); err != nil {
		return nil, errors.Wrap(err, "failed to parse history file")
	}
	return models, nil
}

// write replaces the history file atomically.
func (s *store) write(models []*model) error {
	data, err := json.MarshalIndent(models, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode history")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return errors.Wrap(err, "failed to create history directory")
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*")
	if err != nil {
		return errors.Wrap(err, "failed to create temporary history file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to write history")
	}
	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to set history file mode")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to write history")
	}

	return errors.Wrap(os.Rename(tmp.Name(), s.path), "failed to replace history file")
}

func (s *store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	os.Remove(s.path)
}
