package environment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daughters-of-aether/arena-client/pkg/testutil"
)

var envKeys = []string{
	"NODE_ENV",
	"SOLANA_DEVNET_RPC_URL",
	"GORBAGANA_RPC_URL",
	"GORBAGANA_WS_RPC_URL",
	"DEVELOPMENT_PROGRAM_ID",
	"PRODUCTION_PROGRAM_ID",
	"ARENA_RPC_RATE_LIMIT",
	"LOG_LEVEL",
	"NEW_RELIC_LICENSE_KEY",
}

func clearEnv(t *testing.T) {
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestResolve_Defaults(t *testing.T) {
	clearEnv(t)

	config, err := ReadConfig()
	require.NoError(t, err)

	env := Resolve(config)
	assert.True(t, env.IsDevelopment())
	assert.Equal(t, "https://api.devnet.solana.com", env.RPCURL)
	assert.Equal(t, "wss://api.devnet.solana.com", env.WSURL)
	assert.Equal(t, "5RV8MAYjHoSb16VkqjqN5KGX139MULDR6GHuYhxettKT", env.ProgramID)
	assert.Equal(t, DevnetNetworkLabel, env.NetworkLabel)
	assert.Equal(t, "info", env.LogLevel)
	assert.NoError(t, env.Validate())
}

func TestResolve_Production(t *testing.T) {
	clearEnv(t)
	t.Setenv("NODE_ENV", "production")

	config, err := ReadConfig()
	require.NoError(t, err)

	env := Resolve(config)
	assert.True(t, env.IsProduction())
	assert.Equal(t, "https://rpc.gorbagana.wtf", env.RPCURL)
	assert.Equal(t, "wss://rpc.gorbagana.wtf", env.WSURL)
	assert.Equal(t, "GAB3CVmCbarpepefKNFEGEUGw6RzcMx9LSGER2Hg3FU2", env.ProgramID)
	assert.Equal(t, GorbaganaNetworkLabel, env.NetworkLabel)

	program, err := env.Program()
	require.NoError(t, err)
	assert.Len(t, program, 32)
}

func TestResolve_UnknownNodeEnvIsProduction(t *testing.T) {
	env := Resolve(&Config{NodeEnv: "staging", GorbaganaRPCURL: "https://example.com"})
	assert.True(t, env.IsProduction())
	assert.Equal(t, "https://example.com", env.RPCURL)
}

func TestResolve_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SOLANA_DEVNET_RPC_URL", "http://localhost:8899")
	t.Setenv("DEVELOPMENT_PROGRAM_ID", "11111111111111111111111111111111")
	t.Setenv("ARENA_RPC_RATE_LIMIT", "2.5")
	t.Setenv("LOG_LEVEL", "debug")

	config, err := ReadConfig()
	require.NoError(t, err)

	env := Resolve(config)
	assert.Equal(t, "http://localhost:8899", env.RPCURL)
	assert.Equal(t, "ws://localhost:8899", env.WSURL)
	assert.Equal(t, "11111111111111111111111111111111", env.ProgramID)
	assert.Equal(t, 2.5, env.RPCRateLimit)
	assert.Equal(t, "debug", env.LogLevel)
}

func TestValidate(t *testing.T) {
	valid := func() *Environment {
		return Resolve(&defaultConfig)
	}

	for _, tc := range []struct {
		name   string
		mutate func(e *Environment)
	}{
		{"empty rpc url", func(e *Environment) { e.RPCURL = "" }},
		{"non http rpc url", func(e *Environment) { e.RPCURL = "wss://rpc.gorbagana.wtf" }},
		{"rpc url without host", func(e *Environment) { e.RPCURL = "https://" }},
		{"negative rate limit", func(e *Environment) { e.RPCRateLimit = -1 }},
		{"empty program id", func(e *Environment) { e.ProgramID = "" }},
		{"non base58 program id", func(e *Environment) { e.ProgramID = "0OIl" }},
		{"short program id", func(e *Environment) { e.ProgramID = "1111" }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			env := valid()
			require.NoError(t, env.Validate())

			tc.mutate(env)
			assert.ErrorIs(t, env.Validate(), ErrInvalidEnvironment)
		})
	}
}

func TestExplorerLinks(t *testing.T) {
	devnet := Resolve(&Config{NodeEnv: Development})
	assert.Equal(t, "https://explorer.solana.com/tx/sig?cluster=devnet", devnet.TransactionURL("sig"))
	assert.Equal(t, "https://explorer.solana.com/address/addr?cluster=devnet", devnet.AccountURL("addr"))

	gorbagana := Resolve(&Config{NodeEnv: Production})
	assert.Equal(t, "https://explorer.gorbagana.wtf/tx/sig", gorbagana.TransactionURL("sig"))
	assert.Equal(t, "https://explorer.gorbagana.wtf/address/addr", gorbagana.AccountURL("addr"))
}

func TestLoad_DotEnv(t *testing.T) {
	// godotenv never overrides variables that are already present.
	for _, key := range envKeys {
		if value, ok := os.LookupEnv(key); ok {
			require.NoError(t, os.Unsetenv(key))
			t.Cleanup(func() { os.Setenv(key, value) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
	}

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("NODE_ENV=production\nGORBAGANA_RPC_URL=https://rpc.example.com\n"), 0600))

	env, err := Load(path)
	require.NoError(t, err)
	assert.True(t, env.IsProduction())
	assert.Equal(t, "https://rpc.example.com", env.RPCURL)
}

func TestLoad_MissingDotEnv(t *testing.T) {
	clearEnv(t)
	defer testutil.DisableLogging()()

	env, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.True(t, env.IsDevelopment())
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEVELOPMENT_PROGRAM_ID", "not-a-key")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorIs(t, err, ErrInvalidEnvironment)
}
