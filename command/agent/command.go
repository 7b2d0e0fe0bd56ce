// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package agent

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hashicorp/cli"
	log "github.com/hashicorp/go-hclog"
	metrics "github.com/hashicorp/go-metrics"
	metricsprom "github.com/hashicorp/go-metrics/prometheus"
	"github.com/hashicorp/logutils"
	"github.com/posener/complete"

	"github.com/loan-mgt/fast-pin-pon-sub002/helper"
	flaghelper "github.com/loan-mgt/fast-pin-pon-sub002/helper/flags"
	gatedwriter "github.com/loan-mgt/fast-pin-pon-sub002/helper/gated-writer"
	"github.com/loan-mgt/fast-pin-pon-sub002/helper/logging"
	"github.com/loan-mgt/fast-pin-pon-sub002/helper/pointer"
	"github.com/loan-mgt/fast-pin-pon-sub002/version"
)

// gracefulTimeout controls how long we wait before forcefully terminating
const gracefulTimeout = 5 * time.Second

// Command is a Command implementation that runs the dispatch engine
// agent. The command will not end unless a shutdown message is sent on
// the ShutdownCh. If two messages are sent on the ShutdownCh it will
// forcibly exit.
type Command struct {
	Version    *version.VersionInfo
	Ui         cli.Ui
	ShutdownCh <-chan struct{}

	args       []string
	agent      *Agent
	httpServer *HTTPServer
	logFilter  *logutils.LevelFilter
	logOutput  io.Writer
}

func (c *Command) readConfig() *Config {
	var dev bool
	var configPath []string

	// Make a new, empty config.
	cmdConfig := &Config{
		Ports:    &Ports{},
		Backend:  &BackendConfig{},
		Dispatch: &DispatchConfig{},
	}

	flags := flag.NewFlagSet("agent", flag.ContinueOnError)
	flags.Usage = func() { c.Ui.Error(c.Help()) }

	// Dev options
	flags.BoolVar(&dev, "dev", false, "")

	// General options
	flags.Var((*flaghelper.StringFlag)(&configPath), "config", "config")
	flags.StringVar(&cmdConfig.BindAddr, "bind", "", "")
	flags.IntVar(&cmdConfig.Ports.HTTP, "http-port", 0, "")
	flags.StringVar(&cmdConfig.LogLevel, "log-level", "", "")
	flags.BoolVar(&cmdConfig.LogJson, "log-json", false, "")

	// Backend options
	flags.StringVar(&cmdConfig.Backend.Address, "backend-addr", "", "")

	// Dispatch options
	flags.Var((flaghelper.FuncDurationVar)(func(d time.Duration) error {
		cmdConfig.Dispatch.Interval = d
		return nil
	}), "dispatch-interval", "")
	flags.Var((flaghelper.FuncBoolVar)(func(b bool) error {
		cmdConfig.Dispatch.SchedulerEnabled = pointer.Of(!b)
		return nil
	}), "disable-scheduler", "")

	if err := flags.Parse(c.args); err != nil {
		return nil
	}

	// Load the configuration
	var config *Config
	if dev {
		config = DevConfig()
	} else {
		config = DefaultConfig()
	}

	for _, path := range configPath {
		current, err := LoadConfig(path)
		if err != nil {
			c.Ui.Error(fmt.Sprintf(
				"Error loading configuration from %s: %s", path, err))
			return nil
		}

		// The user asked us to load some config here but we didn't find any,
		// so we'll complain but continue.
		if current == nil || reflect.DeepEqual(current, &Config{}) {
			c.Ui.Warn(fmt.Sprintf("No configuration loaded from %s", path))
		}

		if config == nil {
			config = current
		} else {
			config = config.Merge(current)
		}
	}

	// Merge any CLI options over config file options
	config = config.Merge(cmdConfig)

	// Set the version info
	config.Version = c.Version

	// Normalize binds, ports, addresses
	if err := config.normalizeAddrs(); err != nil {
		c.Ui.Error(err.Error())
		return nil
	}

	if !c.IsValidConfig(config) {
		return nil
	}

	return config
}

// IsValidConfig returns true if the config is valid for launching the agent
func (c *Command) IsValidConfig(config *Config) bool {
	if config.Ports == nil || config.Ports.HTTP <= 0 {
		c.Ui.Error("Must specify a valid HTTP port")
		return false
	}

	if config.Backend == nil || config.Backend.Address == "" {
		c.Ui.Error("Must specify a backend address")
		return false
	}

	if config.Backend.Timeout < 0 {
		c.Ui.Error("Backend timeout must not be negative")
		return false
	}

	if config.Dispatch != nil && config.Dispatch.Interval < 0 {
		c.Ui.Error("Dispatch interval must not be negative")
		return false
	}

	return true
}

// SetupLoggers is used to setup the logGate and our logOutput
func SetupLoggers(ui cli.Ui, config *Config) (*logutils.LevelFilter, *gatedwriter.Writer, io.Writer) {
	// Pull the log level from the configuration, ensure it is titled and
	// then create the filter.
	logFilter := LevelFilter()
	logFilter.MinLevel = logutils.LogLevel(strings.ToUpper(config.LogLevel))
	if !ValidateLevelFilter(logFilter.MinLevel, logFilter) {
		ui.Error(fmt.Sprintf(
			"Invalid log level: %s. Valid log levels are: %v",
			logFilter.MinLevel, logFilter.Levels))
		return nil, nil, nil
	}

	// Create a gated log writer, which will store logs until we're ready
	// to show them.
	logGate := &gatedwriter.Writer{
		Writer: &cli.UiWriter{Ui: ui},
	}
	logFilter.Writer = logGate

	return logFilter, logGate, logFilter
}

// setupAgent is used to start the agent and various interfaces
func (c *Command) setupAgent(config *Config, logger log.InterceptLogger, logOutput io.Writer, inmem *metrics.InmemSink) error {
	c.Ui.Output("Starting engine agent...")

	agent, err := NewAgent(config, logger, logOutput, inmem)
	if err != nil {
		// log the error as well, so it appears at the end
		logger.Error("error starting agent", "error", err)
		c.Ui.Error(fmt.Sprintf("Error starting agent: %s", err))
		return err
	}
	c.agent = agent

	// Setup the HTTP server
	http, err := NewHTTPServer(agent, config)
	if err != nil {
		agent.Shutdown()
		c.Ui.Error(fmt.Sprintf("Error starting http server: %s", err))
		return err
	}
	c.httpServer = http

	return nil
}

// setupTelemetry is used to setup the telemetry sub-systems
func (c *Command) setupTelemetry(config *Config) (*metrics.InmemSink, error) {
	var telConfig *Telemetry
	if config.Telemetry == nil {
		telConfig = &Telemetry{}
	} else {
		telConfig = config.Telemetry
	}

	/* Setup telemetry
	Aggregate on the collection interval for one minute. Expose the
	metrics over stderr when there is a SIGUSR1 received.
	*/
	interval := telConfig.collectionInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	inm := metrics.NewInmemSink(interval, time.Minute)
	metrics.DefaultInmemSignal(inm)

	metricsConf := metrics.DefaultConfig("pinpon")
	metricsConf.EnableHostname = !telConfig.DisableHostname

	// Configure the statsite sink
	var fanout metrics.FanoutSink
	if telConfig.StatsiteAddr != "" {
		sink, err := metrics.NewStatsiteSink(telConfig.StatsiteAddr)
		if err != nil {
			return inm, err
		}
		fanout = append(fanout, sink)
	}

	// Configure the statsd sink
	if telConfig.StatsdAddr != "" {
		sink, err := metrics.NewStatsdSink(telConfig.StatsdAddr)
		if err != nil {
			return inm, err
		}
		fanout = append(fanout, sink)
	}

	// Configure the prometheus sink
	if telConfig.PrometheusMetrics {
		promSink, err := metricsprom.NewPrometheusSink()
		if err != nil {
			return inm, err
		}
		fanout = append(fanout, promSink)
	}

	// Initialize the global sink
	if len(fanout) > 0 {
		fanout = append(fanout, inm)
		metrics.NewGlobal(metricsConf, fanout)
	} else {
		metricsConf.EnableHostname = false
		metrics.NewGlobal(metricsConf, inm)
	}

	return inm, nil
}

func (c *Command) Run(args []string) int {
	c.Ui = &cli.PrefixedUi{
		OutputPrefix: "==> ",
		InfoPrefix:   "    ",
		ErrorPrefix:  "==> ",
		Ui:           c.Ui,
	}

	// Parse our configs
	c.args = args
	config := c.readConfig()
	if config == nil {
		return 1
	}

	// Setup the log outputs
	logFilter, logGate, logOutput := SetupLoggers(c.Ui, config)
	c.logFilter = logFilter
	c.logOutput = logOutput
	if logGate == nil {
		return 1
	}

	// Create logger
	logger := log.NewInterceptLogger(&log.LoggerOptions{
		Name:       "agent",
		Level:      log.LevelFromString(config.LogLevel),
		Output:     logOutput,
		JSONFormat: config.LogJson,
	})

	// Swap out UI implementation if json logging is enabled
	if config.LogJson {
		c.Ui = &logging.HcLogUI{Log: logger}
		// Don't buffer json logs because they aren't reordered anyway.
		logGate.Flush()
	}

	// Log config files
	if len(config.Files) > 0 {
		c.Ui.Output(fmt.Sprintf("Loaded configuration from %s", strings.Join(config.Files, ", ")))
	} else {
		c.Ui.Output("No configuration files loaded")
	}

	// Initialize the telemetry
	inmem, err := c.setupTelemetry(config)
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Error initializing telemetry: %s", err))
		return 1
	}

	// Create the agent
	if err := c.setupAgent(config, logger, logOutput, inmem); err != nil {
		logGate.Flush()
		return 1
	}
	defer func() {
		c.agent.Shutdown()

		// Shutdown the http server at the end, to ease debugging if
		// the agent takes time to shutdown.
		if c.httpServer != nil {
			c.httpServer.Shutdown()
		}
	}()

	// Compile agent information for output later
	info := map[string]string{
		"version":           config.Version.VersionNumber(),
		"log level":         config.LogLevel,
		"bind addrs":        fmt.Sprintf("HTTP: %s", config.normalizedAddrs.HTTP),
		"backend":           config.Backend.Address,
		"dispatch interval": c.agent.dispatchInterval().String(),
		"scheduler":         strconv.FormatBool(c.agent.schedulerEnabled()),
	}

	// Sort the keys for output
	infoKeys := make([]string, 0, len(info))
	for key := range info {
		infoKeys = append(infoKeys, key)
	}
	sort.Strings(infoKeys)

	// Agent configuration output
	padding := 18
	c.Ui.Output("Engine agent configuration:\n")
	for _, k := range infoKeys {
		c.Ui.Info(fmt.Sprintf(
			"%s%s: %s",
			strings.Repeat(" ", padding-len(k)),
			helper.Title(k),
			info[k]))
	}
	c.Ui.Output("")

	// Output the header that the agent has started
	c.Ui.Output("Engine agent started! Log data will stream in below:\n")

	// Enable log streaming
	logGate.Flush()

	notifySystemd(sdReady)

	// Wait for exit
	return c.handleSignals()
}

// handleSignals blocks until we get an exit-causing signal
func (c *Command) handleSignals() int {
	signalCh := make(chan os.Signal, 4)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGPIPE)

	// Wait for a signal
WAIT:
	var sig os.Signal
	select {
	case s := <-signalCh:
		sig = s
	case <-c.ShutdownCh:
		sig = os.Interrupt
	}

	// Skip any SIGPIPE signal and don't try to log it
	if sig == syscall.SIGPIPE {
		goto WAIT
	}

	c.Ui.Output(fmt.Sprintf("Caught signal: %v", sig))

	// Check if this is a SIGHUP
	if sig == syscall.SIGHUP {
		c.handleReload()
		goto WAIT
	}

	// Interrupts and terminations get a graceful shutdown; anything else
	// exits immediately.
	if sig != os.Interrupt && sig != syscall.SIGTERM {
		return 1
	}

	notifySystemd(sdStopping)

	// Attempt a graceful shutdown
	gracefulCh := make(chan struct{})
	c.Ui.Output("Gracefully shutting down agent...")
	go func() {
		if err := c.agent.Shutdown(); err != nil {
			c.Ui.Error(fmt.Sprintf("Error: %s", err))
			return
		}
		close(gracefulCh)
	}()

	// Wait several seconds for the shutdown to finish
	select {
	case <-signalCh:
		return 1
	case <-time.After(gracefulTimeout):
		return 1
	case <-gracefulCh:
		return 0
	}
}

// handleReload is invoked when we should reload our configs, e.g. SIGHUP
func (c *Command) handleReload() {
	c.Ui.Output("Reloading configuration...")
	newConf := c.readConfig()
	if newConf == nil {
		c.Ui.Error("Failed to reload configs")
		return
	}

	// Change the log level
	minLevel := logutils.LogLevel(strings.ToUpper(newConf.LogLevel))
	if ValidateLevelFilter(minLevel, c.logFilter) {
		c.logFilter.SetMinLevel(minLevel)
	} else {
		c.Ui.Error(fmt.Sprintf(
			"Invalid log level: %s. Valid log levels are: %v",
			minLevel, c.logFilter.Levels))

		// Keep the current log level
		newConf.LogLevel = c.agent.GetConfig().LogLevel
	}

	if c.agent.ShouldReload(newConf) {
		if err := c.agent.Reload(newConf); err != nil {
			c.agent.logger.Error("failed to reload the config", "error", err)
			return
		}
	}

	// A reload also rehydrates the static cache, so weight changes on the
	// backend take effect without waiting for a refresh callback.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.agent.Cache().Refresh(ctx); err != nil {
		c.agent.logger.Warn("static data refresh on reload failed", "error", err)
	}
}

func (c *Command) AutocompleteFlags() complete.Flags {
	configFilePredictor := complete.PredictOr(
		complete.PredictFiles("*.json"),
		complete.PredictFiles("*.hcl"))

	return map[string]complete.Predictor{
		"-dev":               complete.PredictNothing,
		"-config":            configFilePredictor,
		"-bind":              complete.PredictAnything,
		"-http-port":         complete.PredictAnything,
		"-backend-addr":      complete.PredictAnything,
		"-dispatch-interval": complete.PredictAnything,
		"-disable-scheduler": complete.PredictNothing,
		"-log-level":         complete.PredictAnything,
		"-log-json":          complete.PredictNothing,
	}
}

func (c *Command) AutocompleteArgs() complete.Predictor {
	return complete.PredictNothing
}

func (c *Command) Synopsis() string {
	return "Runs the dispatch engine agent"
}

func (c *Command) Help() string {
	helpText := `
Usage: pinpon-engine agent [options]

  Starts the engine agent and runs until an interrupt is received. The
  agent connects to the pinpon backend, keeps the static dispatch data
  warm, serves the backend callback endpoints over HTTP, and runs the
  periodic dispatch sweep.

  The agent's configuration primarily comes from the config files used,
  but a subset of the options may also be passed directly as CLI
  arguments.

General Options:

  -bind=<addr>
    The address the agent will bind to for the HTTP callback surface.
    Supports go-sockaddr templates. Defaults to 0.0.0.0.

  -config=<path>
    The path to either a single config file or a directory of config
    files to use for configuring the agent. This option may be specified
    multiple times. If multiple config files are used, the values from
    each will be merged together. During merging, values from files
    found later in the list are merged over values from previously
    parsed files.

  -http-port=<port>
    The port the agent serves HTTP on. Defaults to 8082.

  -log-level=<level>
    Specify the verbosity level of the agent's logs. Valid values
    include DEBUG, INFO, and WARN, in decreasing order of verbosity.
    The default is INFO.

  -log-json
    Output logs in a JSON format. The default is false.

  -dev
    Start the agent in development mode: DEBUG logging, loopback bind
    and a short dispatch interval. No other configuration is required.

Backend Options:

  -backend-addr=<addr>
    The base URL of the pinpon backend. Defaults to
    http://127.0.0.1:8080.

Dispatch Options:

  -dispatch-interval=<duration>
    Interval between periodic dispatch sweeps, e.g. "30s". Defaults to
    30s.

  -disable-scheduler
    Do not run the periodic dispatch sweep. Dispatches then only happen
    through the backend callbacks.
`
	return strings.TrimSpace(helpText)
}
