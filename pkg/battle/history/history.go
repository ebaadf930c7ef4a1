// Package history records battle creation attempts.
package history

import (
	"time"

	"github.com/pkg/errors"
)

type State uint8

const (
	StateUnknown State = iota
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Record is a single battle creation attempt. Failed attempts keep the
// battle account they generated, which is never reused.
type Record struct {
	Id uint64

	BattleAccount string
	Player        string
	Signature     string

	StakeLamports   uint64
	DurationSeconds int64
	Network         string

	State State
	Error string

	CreatedAt time.Time
}

func (r *Record) Validate() error {
	if len(r.BattleAccount) == 0 {
		return errors.New("battle account is required")
	}
	if len(r.Player) == 0 {
		return errors.New("player is required")
	}
	if r.State == StateUnknown {
		return errors.New("state is required")
	}
	if r.State == StateSucceeded && len(r.Signature) == 0 {
		return errors.New("signature is required for a succeeded attempt")
	}
	if r.State == StateFailed && len(r.Error) == 0 {
		return errors.New("error is required for a failed attempt")
	}
	return nil
}

func (r *Record) Clone() Record {
	return Record{
		Id:              r.Id,
		BattleAccount:   r.BattleAccount,
		Player:          r.Player,
		Signature:       r.Signature,
		StakeLamports:   r.StakeLamports,
		DurationSeconds: r.DurationSeconds,
		Network:         r.Network,
		State:           r.State,
		Error:           r.Error,
		CreatedAt:       r.CreatedAt,
	}
}

func (r *Record) CopyTo(dst *Record) {
	dst.Id = r.Id
	dst.BattleAccount = r.BattleAccount
	dst.Player = r.Player
	dst.Signature = r.Signature
	dst.StakeLamports = r.StakeLamports
	dst.DurationSeconds = r.DurationSeconds
	dst.Network = r.Network
	dst.State = r.State
	dst.Error = r.Error
	dst.CreatedAt = r.CreatedAt
}
