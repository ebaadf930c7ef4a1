package solana

import "github.com/pkg/errors"

// Commitment is the level of cluster agreement a request is evaluated at.
type Commitment struct {
	Commitment string `json:"commitment"`
}

const (
	confirmationStatusProcessed = "processed"
	confirmationStatusConfirmed = "confirmed"
	confirmationStatusFinalized = "finalized"
)

var (
	CommitmentProcessed = Commitment{Commitment: confirmationStatusProcessed}
	CommitmentConfirmed = Commitment{Commitment: confirmationStatusConfirmed}
	CommitmentFinalized = Commitment{Commitment: confirmationStatusFinalized}
)

// ParseCommitment maps a level name such as "confirmed" to its Commitment.
func ParseCommitment(level string) (Commitment, error) {
	for _, c := range []Commitment{CommitmentProcessed, CommitmentConfirmed, CommitmentFinalized} {
		if c.Commitment == level {
			return c, nil
		}
	}
	return Commitment{}, errors.Errorf("unknown commitment level %q", level)
}

func (c Commitment) String() string {
	return c.Commitment
}

// SignatureStatus is the cluster's view of a submitted transaction.
type SignatureStatus struct {
	Slot        uint64
	ErrorResult *TransactionError

	// Nil once the transaction is rooted.
	Confirmations      *int
	ConfirmationStatus string
}

// Finalized reports whether the transaction is rooted.
func (s SignatureStatus) Finalized() bool {
	return s.Confirmations == nil || s.ConfirmationStatus == confirmationStatusFinalized
}

// Confirmed reports whether a supermajority has voted on the transaction.
func (s SignatureStatus) Confirmed() bool {
	switch {
	case s.Finalized(), s.ConfirmationStatus == confirmationStatusConfirmed:
		return true
	default:
		return *s.Confirmations > 0
	}
}

// Reached reports whether the status satisfies commitment.
func (s SignatureStatus) Reached(commitment Commitment) bool {
	switch commitment {
	case CommitmentProcessed:
		return true
	case CommitmentConfirmed:
		return s.Confirmed()
	case CommitmentFinalized:
		return s.Finalized()
	}
	return false
}
