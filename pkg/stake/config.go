package stake

import (
	"github.com/daughters-of-aether/arena-client/pkg/config"
	"github.com/daughters-of-aether/arena-client/pkg/config/env"
	"github.com/daughters-of-aether/arena-client/pkg/config/memory"
	"github.com/daughters-of-aether/arena-client/pkg/config/wrapper"
)

const (
	envConfigPrefix = "STAKE_"

	MinLamportsConfigEnvName = envConfigPrefix + "MIN_LAMPORTS"
	defaultMinLamports       = 1_000_000 // 0.001 SOL

	MaxLamportsConfigEnvName = envConfigPrefix + "MAX_LAMPORTS"
	defaultMaxLamports       = 10_000_000_000 // 10 SOL

	RecommendedLamportsConfigEnvName = envConfigPrefix + "RECOMMENDED_LAMPORTS"
	defaultRecommendedLamports       = 10_000_000 // 0.01 SOL
)

type conf struct {
	minLamports         config.Uint64
	maxLamports         config.Uint64
	recommendedLamports config.Uint64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			minLamports:         env.NewUint64Config(MinLamportsConfigEnvName, defaultMinLamports),
			maxLamports:         env.NewUint64Config(MaxLamportsConfigEnvName, defaultMaxLamports),
			recommendedLamports: env.NewUint64Config(RecommendedLamportsConfigEnvName, defaultRecommendedLamports),
		}
	}
}

// WithLimits returns a fixed configuration, for use in tests and tools.
func WithLimits(limits Limits) ConfigProvider {
	return func() *conf {
		return &conf{
			minLamports:         wrapper.NewUint64Config(memory.NewConfig(limits.MinLamports), defaultMinLamports),
			maxLamports:         wrapper.NewUint64Config(memory.NewConfig(limits.MaxLamports), defaultMaxLamports),
			recommendedLamports: wrapper.NewUint64Config(memory.NewConfig(limits.RecommendedLamports), defaultRecommendedLamports),
		}
	}
}
