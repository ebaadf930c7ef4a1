// Package environment resolves the network the client talks to. The
// development and production variants are picked once, at startup.
package environment

import (
	"crypto/ed25519"
	"fmt"
	"net/url"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/daughters-of-aether/arena-client/pkg/solana"
)

const (
	Development = "development"
	Production  = "production"
)

const (
	DevnetNetworkLabel    = "Solana Devnet"
	GorbaganaNetworkLabel = "Gorbagana"

	devnetExplorerURL    = "https://explorer.solana.com"
	gorbaganaExplorerURL = "https://explorer.gorbagana.wtf"
)

var ErrInvalidEnvironment = errors.New("invalid environment")

// Config is the raw set of values read from the process environment (and
// an optional .env file).
type Config struct {
	NodeEnv string `mapstructure:"node_env"`

	SolanaDevnetRPCURL string `mapstructure:"solana_devnet_rpc_url"`
	GorbaganaRPCURL    string `mapstructure:"gorbagana_rpc_url"`
	GorbaganaWSRPCURL  string `mapstructure:"gorbagana_ws_rpc_url"`

	DevelopmentProgramID string `mapstructure:"development_program_id"`
	ProductionProgramID  string `mapstructure:"production_program_id"`

	// RPCRateLimit is the maximum number of RPC requests per second. Zero
	// disables client side limiting.
	RPCRateLimit float64 `mapstructure:"rpc_rate_limit"`

	LogLevel           string `mapstructure:"log_level"`
	NewRelicLicenseKey string `mapstructure:"new_relic_license_key"`
}

var defaultConfig = Config{
	NodeEnv: Development,

	SolanaDevnetRPCURL: solana.DevnetRPCURL,
	GorbaganaRPCURL:    solana.GorbaganaRPCURL,
	GorbaganaWSRPCURL:  solana.GorbaganaWebsocket,

	DevelopmentProgramID: "5RV8MAYjHoSb16VkqjqN5KGX139MULDR6GHuYhxettKT",
	ProductionProgramID:  "GAB3CVmCbarpepefKNFEGEUGw6RzcMx9LSGER2Hg3FU2",

	LogLevel: "info",
}

func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("node_env", "NODE_ENV")

	_ = v.BindEnv("solana_devnet_rpc_url", "SOLANA_DEVNET_RPC_URL")
	_ = v.BindEnv("gorbagana_rpc_url", "GORBAGANA_RPC_URL")
	_ = v.BindEnv("gorbagana_ws_rpc_url", "GORBAGANA_WS_RPC_URL")

	_ = v.BindEnv("development_program_id", "DEVELOPMENT_PROGRAM_ID")
	_ = v.BindEnv("production_program_id", "PRODUCTION_PROGRAM_ID")

	_ = v.BindEnv("rpc_rate_limit", "ARENA_RPC_RATE_LIMIT")

	_ = v.BindEnv("log_level", "LOG_LEVEL")
	_ = v.BindEnv("new_relic_license_key", "NEW_RELIC_LICENSE_KEY")
}

// Environment is the resolved network configuration.
type Environment struct {
	Name         string
	RPCURL       string
	WSURL        string
	ProgramID    string
	NetworkLabel string
	ExplorerURL  string

	RPCRateLimit       float64
	LogLevel           string
	NewRelicLicenseKey string
}

// Load reads the given .env files (".env" when none are given) into the
// process environment, then resolves the environment from it. Missing .env
// files are not an error.
func Load(envFiles ...string) (*Environment, error) {
	log := logrus.StandardLogger().WithField("type", "environment")

	if err := godotenv.Load(envFiles...); err != nil {
		log.WithError(err).Debug(".env file not loaded, using process environment")
	}

	config, err := ReadConfig()
	if err != nil {
		return nil, err
	}

	env := Resolve(config)
	if err := env.Validate(); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"name":       env.Name,
		"rpc_url":    env.RPCURL,
		"program_id": env.ProgramID,
	}).Debug("environment resolved")

	return env, nil
}

// ReadConfig reads the raw configuration from the process environment.
func ReadConfig() (*Config, error) {
	v := viper.New()
	bindEnv(v)

	config := defaultConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "error unmarshalling environment")
	}
	return &config, nil
}

// Resolve picks the development or production variant of config. Any
// NODE_ENV other than development resolves to production.
func Resolve(config *Config) *Environment {
	env := &Environment{
		RPCRateLimit:       config.RPCRateLimit,
		LogLevel:           config.LogLevel,
		NewRelicLicenseKey: config.NewRelicLicenseKey,
	}

	if strings.ToLower(config.NodeEnv) == Development {
		env.Name = Development
		env.RPCURL = config.SolanaDevnetRPCURL
		env.WSURL = websocketURL(config.SolanaDevnetRPCURL)
		env.ProgramID = config.DevelopmentProgramID
		env.NetworkLabel = DevnetNetworkLabel
		env.ExplorerURL = devnetExplorerURL
		return env
	}

	env.Name = Production
	env.RPCURL = config.GorbaganaRPCURL
	env.WSURL = config.GorbaganaWSRPCURL
	env.ProgramID = config.ProductionProgramID
	env.NetworkLabel = GorbaganaNetworkLabel
	env.ExplorerURL = gorbaganaExplorerURL
	return env
}

func websocketURL(rpcURL string) string {
	switch {
	case strings.HasPrefix(rpcURL, "https://"):
		return "wss://" + strings.TrimPrefix(rpcURL, "https://")
	case strings.HasPrefix(rpcURL, "http://"):
		return "ws://" + strings.TrimPrefix(rpcURL, "http://")
	}
	return rpcURL
}

func (e *Environment) IsDevelopment() bool {
	return e.Name == Development
}

func (e *Environment) IsProduction() bool {
	return e.Name == Production
}

// Program returns the decoded program address.
func (e *Environment) Program() (ed25519.PublicKey, error) {
	decoded, err := base58.Decode(e.ProgramID)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidEnvironment, "program id %q is not base58", e.ProgramID)
	}
	if len(decoded) != ed25519.PublicKeySize {
		return nil, errors.Wrapf(ErrInvalidEnvironment, "program id %q has length %d", e.ProgramID, len(decoded))
	}
	return decoded, nil
}

func (e *Environment) Validate() error {
	if len(e.RPCURL) == 0 {
		return errors.Wrap(ErrInvalidEnvironment, "rpc url is empty")
	}

	parsed, err := url.Parse(e.RPCURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return errors.Wrapf(ErrInvalidEnvironment, "rpc url %q is not an http endpoint", e.RPCURL)
	}

	if e.RPCRateLimit < 0 {
		return errors.Wrap(ErrInvalidEnvironment, "rpc rate limit is negative")
	}

	_, err = e.Program()
	return err
}

// TransactionURL links to a transaction in the network's explorer.
func (e *Environment) TransactionURL(signature string) string {
	return e.explorerLink("tx", signature)
}

// AccountURL links to an account in the network's explorer.
func (e *Environment) AccountURL(address string) string {
	return e.explorerLink("address", address)
}

func (e *Environment) explorerLink(kind, value string) string {
	link := fmt.Sprintf("%s/%s/%s", e.ExplorerURL, kind, value)
	if e.IsDevelopment() {
		link += "?cluster=devnet"
	}
	return link
}
