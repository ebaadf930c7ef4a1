package battle

import (
	"time"

	"github.com/daughters-of-aether/arena-client/pkg/config"
	"github.com/daughters-of-aether/arena-client/pkg/config/env"
	"github.com/daughters-of-aether/arena-client/pkg/config/memory"
	"github.com/daughters-of-aether/arena-client/pkg/config/wrapper"
	"github.com/daughters-of-aether/arena-client/pkg/solana"
)

const (
	envConfigPrefix = "ARENA_"

	ConfirmationTimeoutConfigEnvName = envConfigPrefix + "CONFIRMATION_TIMEOUT"
	defaultConfirmationTimeout       = 60 * time.Second

	CommitmentConfigEnvName = envConfigPrefix + "COMMITMENT"
)

var defaultCommitment = solana.CommitmentConfirmed

type conf struct {
	confirmationTimeout config.Duration
	commitment          config.Typed[solana.Commitment]
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			confirmationTimeout: env.NewDurationConfig(ConfirmationTimeoutConfigEnvName, defaultConfirmationTimeout),
			commitment:          wrapper.New(env.NewConfig(CommitmentConfigEnvName), defaultCommitment, commitmentValue),
		}
	}
}

type testOverrides struct {
	confirmationTimeout time.Duration
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			confirmationTimeout: wrapper.NewDurationConfig(memory.NewConfig(overrides.confirmationTimeout), defaultConfirmationTimeout),
			commitment:          wrapper.New(memory.NewConfig(defaultCommitment), defaultCommitment, commitmentValue),
		}
	}
}

func commitmentValue(raw interface{}) (solana.Commitment, error) {
	if commitment, ok := raw.(solana.Commitment); ok {
		return commitment, nil
	}

	level, err := wrapper.StringValue(raw)
	if err != nil {
		return solana.Commitment{}, err
	}
	return solana.ParseCommitment(level)
}
