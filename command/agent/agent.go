// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package agent

import (
	"context"
	"fmt"
	"io"
	golog "log"
	"runtime"
	"strconv"
	"sync"
	"time"

	log "github.com/hashicorp/go-hclog"
	metrics "github.com/hashicorp/go-metrics"

	"github.com/loan-mgt/fast-pin-pon-sub002/api"
	"github.com/loan-mgt/fast-pin-pon-sub002/engine"
)

// initialRefreshTimeout bounds the static data hydration attempted during
// startup. Startup continues on failure; the periodic sweep retries.
const initialRefreshTimeout = 10 * time.Second

// Agent is a long running daemon that hosts the decision engine: the
// backend client, the static data cache, the dispatcher and its periodic
// scheduler, and the HTTP callback surface the backend notifies.
type Agent struct {
	config     *Config
	configLock sync.Mutex

	logger     log.InterceptLogger
	httpLogger log.Logger
	logOutput  io.Writer

	// client talks to the pinpon backend API.
	client *api.Client

	// gateway adapts the backend client to the engine's view of the
	// outside world.
	gateway *engine.APIGateway

	cache      *engine.StaticCache
	dispatcher *engine.Dispatcher
	scheduler  *engine.Scheduler

	shutdown     bool
	shutdownCh   chan struct{}
	shutdownLock sync.Mutex

	InmemSink *metrics.InmemSink
}

// NewAgent wires up and starts every subsystem called for by the given
// configuration.
func NewAgent(config *Config, logger log.InterceptLogger, logOutput io.Writer, inmem *metrics.InmemSink) (*Agent, error) {
	a := &Agent{
		config:     config,
		logOutput:  logOutput,
		shutdownCh: make(chan struct{}),
		InmemSink:  inmem,
	}

	// Create the loggers
	a.logger = logger
	a.httpLogger = a.logger.ResetNamed("http")

	// keep the global logger's format close to our own
	golog.SetFlags(golog.LstdFlags | golog.Lmicroseconds)

	if err := a.setupClient(); err != nil {
		return nil, err
	}
	a.setupEngine()

	// Hydrate the static data cache before serving. The backend may not
	// be reachable yet; scoring runs on defaults until a refresh
	// succeeds.
	ctx, cancel := context.WithTimeout(context.Background(), initialRefreshTimeout)
	defer cancel()
	if err := a.cache.Refresh(ctx); err != nil {
		a.logger.Warn("initial static data refresh failed, continuing with defaults", "error", err)
	}

	if a.schedulerEnabled() {
		a.scheduler.Start()
	}

	return a, nil
}

// setupClient creates the backend API client.
func (a *Agent) setupClient() error {
	client, err := api.NewClient(a.clientConfig())
	if err != nil {
		return fmt.Errorf("Failed to initialize backend client: %v", err)
	}
	a.client = client
	return nil
}

// clientConfig derives the backend client configuration by layering the
// agent's backend block over the environment driven defaults.
func (a *Agent) clientConfig() *api.Config {
	conf := api.DefaultConfig()
	b := a.config.Backend
	if b == nil {
		return conf
	}
	if b.Address != "" {
		conf.Address = b.Address
	}
	if b.Timeout != 0 {
		conf.Timeout = b.Timeout
	}
	if auth := b.Auth; auth != nil {
		if auth.TokenURL != "" {
			conf.AuthTokenURL = auth.TokenURL
		}
		if auth.Realm != "" {
			conf.AuthRealm = auth.Realm
		}
		if auth.ClientID != "" {
			conf.AuthClientID = auth.ClientID
		}
		if auth.ClientSecret != "" {
			conf.AuthClientSecret = auth.ClientSecret
		}
		if auth.Token != "" {
			conf.AuthToken = auth.Token
		}
	}
	return conf
}

// setupEngine wires the engine components together: gateway, cache,
// dispatcher, scheduler. The scheduler is created stopped.
func (a *Agent) setupEngine() {
	a.gateway = engine.NewAPIGateway(a.client, a.logger)
	a.cache = engine.NewStaticCache(a.gateway, a.logger)
	a.dispatcher = engine.NewDispatcher(a.gateway, a.cache, a.logger)
	a.scheduler = engine.NewScheduler(a.dispatcher, a.dispatchInterval(), a.logger)
}

func (a *Agent) dispatchInterval() time.Duration {
	if a.config.Dispatch != nil && a.config.Dispatch.Interval != 0 {
		return a.config.Dispatch.Interval
	}
	return engine.DefaultDispatchInterval
}

// schedulerEnabled reports whether the periodic dispatch sweep should
// run. Enabled unless the configuration says otherwise.
func (a *Agent) schedulerEnabled() bool {
	if a.config.Dispatch == nil || a.config.Dispatch.SchedulerEnabled == nil {
		return true
	}
	return *a.config.Dispatch.SchedulerEnabled
}

// Client returns the backend API client.
func (a *Agent) Client() *api.Client {
	return a.client
}

// Cache returns the static data cache.
func (a *Agent) Cache() *engine.StaticCache {
	return a.cache
}

// Dispatcher returns the dispatch decision maker.
func (a *Agent) Dispatcher() *engine.Dispatcher {
	return a.dispatcher
}

// Scheduler returns the periodic dispatch scheduler.
func (a *Agent) Scheduler() *engine.Scheduler {
	return a.scheduler
}

// Stats reports per-subsystem counters for debugging and operator
// insight.
func (a *Agent) Stats() map[string]map[string]string {
	return map[string]map[string]string{
		"engine": {
			"initialized":       strconv.FormatBool(a.cache.IsInitialized()),
			"scheduler_running": strconv.FormatBool(a.scheduler.IsRunning()),
			"dispatch_interval": a.dispatchInterval().String(),
		},
		"runtime": {
			"kernel.name": runtime.GOOS,
			"arch":        runtime.GOARCH,
			"version":     runtime.Version(),
			"max_procs":   strconv.FormatInt(int64(runtime.GOMAXPROCS(0)), 10),
			"goroutines":  strconv.FormatInt(int64(runtime.NumGoroutine()), 10),
			"cpu_count":   strconv.FormatInt(int64(runtime.NumCPU()), 10),
		},
	}
}

// ShouldReload determines if the scheduler has to be restarted to pick up
// the new configuration.
func (a *Agent) ShouldReload(newConfig *Config) bool {
	a.configLock.Lock()
	defer a.configLock.Unlock()

	if newConfig == nil || newConfig.Dispatch == nil {
		return false
	}
	if a.config.Dispatch == nil {
		return true
	}
	if newConfig.Dispatch.Interval != 0 && newConfig.Dispatch.Interval != a.config.Dispatch.Interval {
		return true
	}
	if newConfig.Dispatch.SchedulerEnabled != nil {
		if a.config.Dispatch.SchedulerEnabled == nil ||
			*newConfig.Dispatch.SchedulerEnabled != *a.config.Dispatch.SchedulerEnabled {
			return true
		}
	}
	return false
}

// Reload handles configuration changes for the agent. Provides a method
// that is easier to unit test, as this action is invoked via SIGHUP.
func (a *Agent) Reload(newConfig *Config) error {
	a.configLock.Lock()
	defer a.configLock.Unlock()

	if newConfig == nil || newConfig.Dispatch == nil {
		return fmt.Errorf("cannot reload agent with nil configuration")
	}

	if a.config.Dispatch == nil {
		a.config.Dispatch = newConfig.Dispatch
	} else {
		a.config.Dispatch = a.config.Dispatch.Merge(newConfig.Dispatch)
	}

	// Restart the scheduler so the new interval takes effect.
	a.scheduler.Stop()
	a.scheduler = engine.NewScheduler(a.dispatcher, a.dispatchInterval(), a.logger)
	if a.schedulerEnabled() {
		a.scheduler.Start()
	}
	return nil
}

// GetConfig returns the agent's config under lock.
func (a *Agent) GetConfig() *Config {
	a.configLock.Lock()
	defer a.configLock.Unlock()

	return a.config
}

// Shutdown is used to terminate the agent.
func (a *Agent) Shutdown() error {
	a.shutdownLock.Lock()
	defer a.shutdownLock.Unlock()

	if a.shutdown {
		return nil
	}

	a.logger.Info("requesting shutdown")
	if a.scheduler != nil {
		a.scheduler.Stop()
	}

	a.logger.Info("shutdown complete")
	a.shutdown = true
	close(a.shutdownCh)
	return nil
}
