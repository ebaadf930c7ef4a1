package battle

type Status uint8

const (
	StatusIdle Status = iota
	StatusPending
	StatusSuccess
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is a snapshot of a Creator's observable fields.
type State struct {
	Status Status

	// IsCreatingBattle is set while an attempt is in flight. Callers should
	// not start another attempt while it is set.
	IsCreatingBattle bool

	// Signature is set once an attempt is confirmed.
	Signature string

	// Error is the reason the last attempt failed.
	Error string

	// BattleAccount is set as soon as an attempt generates its battle
	// account, and is kept if the attempt later fails.
	BattleAccount string
}

// StatusListener observes every state transition.
type StatusListener func(State)
