// Package testlog creates loggers backed by testing.T to ease logging in
// tests. Logs are only printed for failing tests and when the verbose flag
// (-v) is passed to `go test`.
package testlog

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// UseStdout returns true if PINPON_TEST_STDOUT=1 and sends logs to stdout.
func UseStdout() bool {
	return os.Getenv("PINPON_TEST_STDOUT") == "1"
}

// Logger is the subset of testing.T (or testing.B) the test logger needs.
type Logger interface {
	Logf(format string, args ...interface{})
}

// Writer implements io.Writer on top of a Logger.
type Writer struct {
	t Logger
}

// Write forwards to the underlying Logger and never fails.
func (w *Writer) Write(p []byte) (n int, err error) {
	w.t.Logf("%s", p)
	return len(p), nil
}

// NewWriter creates a new io.Writer backed by a Logger.
func NewWriter(t Logger) io.Writer {
	if UseStdout() {
		return os.Stdout
	}
	return &Writer{t}
}

// HCLogger returns a new test hc-logger. Defaults to the Trace level;
// override with PINPON_TEST_LOG_LEVEL.
func HCLogger(t Logger) hclog.InterceptLogger {
	level := hclog.Trace
	envLogLevel := os.Getenv("PINPON_TEST_LOG_LEVEL")
	if envLogLevel != "" {
		level = hclog.LevelFromString(envLogLevel)
	}
	opts := &hclog.LoggerOptions{
		Level:           level,
		Output:          NewWriter(t),
		IncludeLocation: true,
	}
	return hclog.NewInterceptLogger(opts)
}
