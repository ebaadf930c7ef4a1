// Package stake implements the battle stake policy.
package stake

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	lamportsPerSol = 1_000_000_000

	// Stakes above this share of the wallet balance leave too little for
	// transaction fees.
	highStakeBalanceRatio = 0.8
)

// ErrInvalid matches every error returned by Validation.Err.
var ErrInvalid = errors.New("invalid stake amount")

// ValidationError reports the errors of a rejected stake. Its message is the
// first error, which is what players are shown.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return ErrInvalid.Error()
	}
	return e.Errors[0]
}

// Is lets errors.Is match a ValidationError against ErrInvalid.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

// Limits are the stake thresholds, in lamports.
type Limits struct {
	MinLamports         uint64
	MaxLamports         uint64
	RecommendedLamports uint64
}

// DefaultLimits are used when no overrides are configured.
var DefaultLimits = Limits{
	MinLamports:         defaultMinLamports,
	MaxLamports:         defaultMaxLamports,
	RecommendedLamports: defaultRecommendedLamports,
}

// Validation is the outcome of validating a stake. Errors block the stake,
// warnings are advisory.
type Validation struct {
	Errors   []string
	Warnings []string
}

// IsValid reports whether the stake may be placed.
func (v *Validation) IsValid() bool {
	return len(v.Errors) == 0
}

// Err returns the first validation error, or nil if the stake is valid.
func (v *Validation) Err() error {
	if v.IsValid() {
		return nil
	}
	return &ValidationError{Errors: v.Errors}
}

// Suggestion is a preset stake offered to a player.
type Suggestion struct {
	Label         string
	ValueLamports uint64
	Description   string
}

// Validator checks stakes against the configured limits.
type Validator struct {
	log  *logrus.Entry
	conf *conf
}

// NewValidator returns a Validator using the provided configuration.
func NewValidator(configProvider ConfigProvider) *Validator {
	return &Validator{
		log:  logrus.StandardLogger().WithField("type", "stake/validator"),
		conf: configProvider(),
	}
}

// Limits returns the currently configured limits.
func (v *Validator) Limits(ctx context.Context) Limits {
	return Limits{
		MinLamports:         v.conf.minLamports.Get(ctx),
		MaxLamports:         v.conf.maxLamports.Get(ctx),
		RecommendedLamports: v.conf.recommendedLamports.Get(ctx),
	}
}

// Validate checks stakeLamports against the limits and, when known, the
// wallet balance. A nil balance skips the balance dependent checks.
func (v *Validator) Validate(ctx context.Context, stakeLamports int64, balanceLamports *uint64) *Validation {
	log := v.log.WithFields(logrus.Fields{
		"method": "Validate",
		"stake":  stakeLamports,
	})

	limits := v.Limits(ctx)
	result := &Validation{}

	if stakeLamports < 0 || uint64(stakeLamports) < limits.MinLamports {
		result.Errors = append(result.Errors, fmt.Sprintf("Minimum stake is %s SOL", formatSol(limits.MinLamports)))
	}
	if stakeLamports > 0 && uint64(stakeLamports) > limits.MaxLamports {
		result.Errors = append(result.Errors, fmt.Sprintf("Maximum stake is %s SOL", formatSol(limits.MaxLamports)))
	}
	if balanceLamports != nil && stakeLamports > 0 && uint64(stakeLamports) > *balanceLamports {
		result.Errors = append(result.Errors, "Insufficient balance for this stake amount")
	}

	if stakeLamports < 0 || uint64(stakeLamports) < limits.RecommendedLamports {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Consider staking at least %s SOL for better rewards", formatSol(limits.RecommendedLamports)))
	}
	if balanceLamports != nil && float64(stakeLamports) > float64(*balanceLamports)*highStakeBalanceRatio {
		result.Warnings = append(result.Warnings, "High stake amount - consider keeping some SOL for transaction fees")
	}

	if balanceLamports != nil {
		log = log.WithField("balance", *balanceLamports)
	}
	log.WithFields(logrus.Fields{
		"errors":   len(result.Errors),
		"warnings": len(result.Warnings),
	}).Trace("validated stake")

	return result
}

// Suggestions returns the preset stakes the balance can cover.
func (v *Validator) Suggestions(ctx context.Context, balanceLamports uint64) []Suggestion {
	limits := v.Limits(ctx)

	var suggestions []Suggestion
	if balanceLamports >= limits.RecommendedLamports {
		suggestions = append(suggestions, Suggestion{
			Label:         "Recommended",
			ValueLamports: limits.RecommendedLamports,
			Description:   "Good balance of risk and reward",
		})
	}
	if balanceLamports >= limits.MinLamports {
		suggestions = append(suggestions, Suggestion{
			Label:         "Minimum",
			ValueLamports: limits.MinLamports,
			Description:   "Lowest possible stake",
		})
	}
	if balanceLamports >= lamportsPerSol {
		suggestions = append(suggestions, Suggestion{
			Label:         "High Stakes",
			ValueLamports: lamportsPerSol,
			Description:   "1 SOL stake for serious players",
		})
	}
	return suggestions
}

// FormatLamports renders lamports as SOL with four decimal places.
func FormatLamports(lamports uint64) string {
	return strconv.FormatFloat(float64(lamports)/lamportsPerSol, 'f', 4, 64)
}

// ToLamports converts a SOL amount to lamports, rounding to the nearest
// lamport.
func ToLamports(sol float64) (uint64, error) {
	if math.IsNaN(sol) || math.IsInf(sol, 0) || sol < 0 {
		return 0, errors.Errorf("invalid SOL amount: %v", sol)
	}

	lamports := math.Round(sol * lamportsPerSol)
	if lamports >= math.MaxInt64 {
		return 0, errors.Errorf("SOL amount too large: %v", sol)
	}
	return uint64(lamports), nil
}

// ParseSol parses a decimal SOL amount, such as "0.01", into lamports.
func ParseSol(s string) (uint64, error) {
	sol, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid SOL amount %q", s)
	}
	return ToLamports(sol)
}

// formatSol renders lamports as SOL without trailing zeros, e.g. "0.001".
func formatSol(lamports uint64) string {
	return strconv.FormatFloat(float64(lamports)/lamportsPerSol, 'f', -1, 64)
}
