package testutil

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Test binaries log at trace level, but only to stdout when run with -v or
// when ARENA_TEST_LOGS is set.
func init() {
	logrus.SetLevel(logrus.TraceLevel)
	if !wantsLogs(os.Args) && os.Getenv("ARENA_TEST_LOGS") == "" {
		logrus.SetOutput(io.Discard)
	}
}

func wantsLogs(args []string) bool {
	for _, arg := range args {
		if arg == "-test.v" || strings.HasPrefix(arg, "-test.v=true") {
			return true
		}
	}
	return false
}

// DisableLogging silences the standard logger until reset is called.
func DisableLogging() (reset func()) {
	logger := logrus.StandardLogger()
	out, level := logger.Out, logger.GetLevel()

	logger.SetOutput(io.Discard)
	return func() {
		logger.SetOutput(out)
		logger.SetLevel(level)
	}
}
