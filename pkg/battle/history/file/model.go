package file

import (
	"time"

	"github.com/pkg/errors"

	"github.com/daughters-of-aether/arena-client/pkg/battle/history"
)

type model struct {
	Id              uint64    `json:"id"`
	BattleAccount   string    `json:"battle_account"`
	Player          string    `json:"player"`
	Signature       string    `json:"signature,omitempty"`
	StakeLamports   uint64    `json:"stake_lamports"`
	DurationSeconds int64     `json:"duration_seconds"`
	Network         string    `json:"network,omitempty"`
	State           string    `json:"state"`
	Error           string    `json:"error,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func toModel(obj *history.Record) (*model, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}

	return &model{
		Id:              obj.Id,
		BattleAccount:   obj.BattleAccount,
		Player:          obj.Player,
		Signature:       obj.Signature,
		StakeLamports:   obj.StakeLamports,
		DurationSeconds: obj.DurationSeconds,
		Network:         obj.Network,
		State:           obj.State.String(),
		Error:           obj.Error,
		CreatedAt:       obj.CreatedAt.UTC(),
	}, nil
}

func fromModel(obj *model) (*history.Record, error) {
	var state history.State
	switch obj.State {
	case history.StateSucceeded.String():
		state = history.StateSucceeded
	case history.StateFailed.String():
		state = history.StateFailed
	default:
		return nil, errors.Errorf("unknown state %q", obj.State)
	}

	return &history.Record{
		Id:              obj.Id,
		BattleAccount:   obj.BattleAccount,
		Player:          obj.Player,
		Signature:       obj.Signature,
		StakeLamports:   obj.StakeLamports,
		DurationSeconds: obj.DurationSeconds,
		Network:         obj.Network,
		State:           state,
		Error:           obj.Error,
		CreatedAt:       obj.CreatedAt,
	}, nil
}
