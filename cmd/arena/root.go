package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	figure "github.com/common-nighthawk/go-figure"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/daughters-of-aether/arena-client/pkg/environment"
	"github.com/daughters-of-aether/arena-client/pkg/metrics"
	"github.com/daughters-of-aether/arena-client/pkg/rate"
	"github.com/daughters-of-aether/arena-client/pkg/solana"
	"github.com/daughters-of-aether/arena-client/pkg/toast"
	"github.com/daughters-of-aether/arena-client/pkg/wallet"
)

const (
	appName = "arena-client"

	historyFileName = "history.json"

	metricsShutdownTimeout = 5 * time.Second
)

var (
	envFile     string
	keypairPath string
	jsonLogs    bool

	env         *environment.Environment
	metricsApp  *newrelic.Application
	toastStore  toast.Store
	rpcClient   solana.Client
	rootContext context.Context
)

var rootCmd = &cobra.Command{
	Use:               "arena",
	Short:             "Daughters of Aether arena client",
	Long:              `Create staked battles in the Daughters of Aether arena, manage your wallet and browse the roster.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: teardown,
	RunE: func(cmd *cobra.Command, args []string) error {
		printBanner()
		return cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "path to a .env file (default .env)")
	rootCmd.PersistentFlags().StringVar(&keypairPath, "keypair", "", "path to the wallet keypair file (default ~/.config/arena/id.json)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "emit logs as JSON")
}

func setup(cmd *cobra.Command, args []string) error {
	var envFiles []string
	if envFile != "" {
		envFiles = append(envFiles, envFile)
	}

	var err error
	env, err = environment.Load(envFiles...)
	if err != nil {
		return reportError(err)
	}

	if env.NewRelicLicenseKey != "" {
		metricsApp, err = newrelic.NewApplication(
			newrelic.ConfigFromEnvironment(),
			newrelic.ConfigAppName(appName),
			newrelic.ConfigLicense(env.NewRelicLicenseKey),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			logrus.StandardLogger().WithError(err).Warn("failure creating metrics application, continuing without metrics")
			metricsApp = nil
		}
	}
	configureLogger(env, metricsApp)

	rootContext = metrics.NewContext(cmd.Context(), metricsApp)
	toastStore = newToastStore()
	return nil
}

func teardown(cmd *cobra.Command, args []string) {
	if metricsApp != nil {
		metricsApp.Shutdown(metricsShutdownTimeout)
	}
}

func configureLogger(env *environment.Environment, metricsProvider *newrelic.Application) {
	var formatter logrus.Formatter = &logrus.TextFormatter{}
	if jsonLogs {
		formatter = &logrus.JSONFormatter{}
	}

	if metricsProvider != nil {
		logrus.SetFormatter(metrics.NewLogFormatter(metricsProvider, formatter))
	} else {
		logrus.SetFormatter(formatter)
	}

	level, err := logrus.ParseLevel(strings.ToLower(env.LogLevel))
	if err != nil {
		logrus.StandardLogger().WithField("log_level", env.LogLevel).Warn("unknown log level, ignoring")
	} else {
		logrus.SetLevel(level)
	}

	logrus.SetOutput(os.Stderr)
}

func printBanner() {
	banner := figure.NewFigure("AETHER", "larry3d", true)
	fmt.Println(titleStyle.Render(banner.String()))
}

func getRPCClient() solana.Client {
	if rpcClient != nil {
		return rpcClient
	}

	var opts []solana.Option
	if env.RPCRateLimit > 0 {
		opts = append(opts, solana.WithRateLimiter(rate.NewLocalRateLimiter(env.RPCRateLimit)))
	}

	rpcClient = solana.New(env.RPCURL, opts...)
	return rpcClient
}

func getKeypairPath() (string, error) {
	if keypairPath != "" {
		return keypairPath, nil
	}
	return wallet.DefaultPath()
}

func getHistoryPath() (string, error) {
	path, err := getKeypairPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(path), historyFileName), nil
}

func loadWallet(opts ...wallet.Option) (*wallet.Wallet, error) {
	path, err := getKeypairPath()
	if err != nil {
		return nil, err
	}

	opts = append([]wallet.Option{wallet.WithBalanceReader(getRPCClient())}, opts...)
	w, err := wallet.Load(path, opts...)
	if errors.Is(err, wallet.ErrKeypairNotFound) {
		return nil, errors.Errorf("no wallet at %s, run `arena wallet new` first", path)
	}
	return w, err
}

// reportError prints err for the user and returns it so cobra exits non-zero.
func reportError(err error) error {
	fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
	return err
}
