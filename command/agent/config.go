// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package agent

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-sockaddr/template"

	"github.com/loan-mgt/fast-pin-pon-sub002/api"
	"github.com/loan-mgt/fast-pin-pon-sub002/engine"
	"github.com/loan-mgt/fast-pin-pon-sub002/helper/pointer"
	"github.com/loan-mgt/fast-pin-pon-sub002/version"
)

// Config is the configuration for the Pinpon engine agent.
type Config struct {
	// LogLevel is the level of the logs to put out
	LogLevel string `hcl:"log_level"`

	// LogJson enables log output in a JSON format
	LogJson bool `hcl:"log_json"`

	// BindAddr is the address on which the agent's HTTP services are
	// bound. Supports go-sockaddr templates.
	BindAddr string `hcl:"bind_addr"`

	// EnableDebug serves the pprof endpoints when set
	EnableDebug bool `hcl:"enable_debug"`

	// Ports picks the network ports we bind to.
	Ports *Ports `hcl:"ports"`

	// Backend configures how the agent reaches the dispatch backend.
	Backend *BackendConfig `hcl:"backend"`

	// Dispatch configures the periodic dispatch scheduler.
	Dispatch *DispatchConfig `hcl:"dispatch"`

	// Limits holds agent self-protection limits.
	Limits *Limits `hcl:"limits"`

	// Telemetry configures metrics emission
	Telemetry *Telemetry `hcl:"telemetry"`

	// normalizedAddrs is set by normalizeAddrs. Use it, not
	// BindAddr+Ports, when binding listeners.
	normalizedAddrs *NormalizedAddrs

	// DevMode is set by the -dev CLI flag.
	DevMode bool `hcl:"-"`

	// Version information is set at compilation time
	Version *version.VersionInfo `hcl:"-"`

	// Files holds the config files that were loaded, in load order
	Files []string `hcl:"-"`

	ExtraKeysHCL []string `hcl:",unusedKeys" json:"-"`
}

// NormalizedAddrs holds the concrete host:port addresses the agent binds
// to after template resolution.
type NormalizedAddrs struct {
	HTTP string
}

// Ports encapsulates the ports we bind to. If any are not specified then
// the defaults are used instead.
type Ports struct {
	HTTP int `hcl:"http"`

	ExtraKeysHCL []string `hcl:",unusedKeys" json:"-"`
}

func (p *Ports) Merge(b *Ports) *Ports {
	result := *p
	if b.HTTP != 0 {
		result.HTTP = b.HTTP
	}
	return &result
}

// BackendConfig holds the connection settings for the dispatch backend.
type BackendConfig struct {
	// Address is the base URL of the backend API.
	Address string `hcl:"address"`

	// Timeout bounds a single backend request.
	Timeout    time.Duration `hcl:"-"`
	TimeoutHCL string        `hcl:"timeout" json:"-"`

	// Auth configures the OIDC client credentials used against the
	// backend.
	Auth *BackendAuthConfig `hcl:"auth"`

	ExtraKeysHCL []string `hcl:",unusedKeys" json:"-"`
}

func (b *BackendConfig) Merge(o *BackendConfig) *BackendConfig {
	result := *b
	if o.Address != "" {
		result.Address = o.Address
	}
	if o.Timeout != 0 {
		result.Timeout = o.Timeout
	}
	if o.TimeoutHCL != "" {
		result.TimeoutHCL = o.TimeoutHCL
	}
	if o.Auth != nil {
		if result.Auth == nil {
			auth := *o.Auth
			result.Auth = &auth
		} else {
			result.Auth = result.Auth.Merge(o.Auth)
		}
	}
	return &result
}

// BackendAuthConfig carries the OIDC client credentials grant settings. A
// static Token bypasses the grant entirely.
type BackendAuthConfig struct {
	TokenURL     string `hcl:"token_url"`
	Realm        string `hcl:"realm"`
	ClientID     string `hcl:"client_id"`
	ClientSecret string `hcl:"client_secret"`
	Token        string `hcl:"token"`

	ExtraKeysHCL []string `hcl:",unusedKeys" json:"-"`
}

func (a *BackendAuthConfig) Merge(b *BackendAuthConfig) *BackendAuthConfig {
	result := *a
	if b.TokenURL != "" {
		result.TokenURL = b.TokenURL
	}
	if b.Realm != "" {
		result.Realm = b.Realm
	}
	if b.ClientID != "" {
		result.ClientID = b.ClientID
	}
	if b.ClientSecret != "" {
		result.ClientSecret = b.ClientSecret
	}
	if b.Token != "" {
		result.Token = b.Token
	}
	return &result
}

// DispatchConfig controls the periodic dispatch sweep.
type DispatchConfig struct {
	// Interval is the period between sweeps.
	Interval    time.Duration `hcl:"-"`
	IntervalHCL string        `hcl:"interval" json:"-"`

	// SchedulerEnabled starts the periodic scheduler with the agent.
	// Disabling it leaves dispatch purely callback driven.
	SchedulerEnabled *bool `hcl:"scheduler_enabled"`

	ExtraKeysHCL []string `hcl:",unusedKeys" json:"-"`
}

func (d *DispatchConfig) Merge(b *DispatchConfig) *DispatchConfig {
	result := *d
	if b.Interval != 0 {
		result.Interval = b.Interval
	}
	if b.IntervalHCL != "" {
		result.IntervalHCL = b.IntervalHCL
	}
	if b.SchedulerEnabled != nil {
		result.SchedulerEnabled = b.SchedulerEnabled
	}
	return &result
}

// Limits are the agent's self-protection limits.
type Limits struct {
	// HTTPMaxConnsPerClient bounds concurrent TCP connections per client
	// IP on the HTTP listener. 0 disables the limit.
	HTTPMaxConnsPerClient *int `hcl:"http_max_conns_per_client"`

	ExtraKeysHCL []string `hcl:",unusedKeys" json:"-"`
}

func (l *Limits) Merge(b *Limits) *Limits {
	result := *l
	if b.HTTPMaxConnsPerClient != nil {
		result.HTTPMaxConnsPerClient = b.HTTPMaxConnsPerClient
	}
	return &result
}

// Telemetry is the telemetry configuration for the agent
type Telemetry struct {
	StatsiteAddr       string `hcl:"statsite_address"`
	StatsdAddr         string `hcl:"statsd_address"`
	DisableHostname    bool   `hcl:"disable_hostname"`
	PrometheusMetrics  bool   `hcl:"prometheus_metrics"`
	CollectionInterval string `hcl:"collection_interval"`
	collectionInterval time.Duration

	ExtraKeysHCL []string `hcl:",unusedKeys" json:"-"`
}

func (t *Telemetry) Merge(b *Telemetry) *Telemetry {
	result := *t
	if b.StatsiteAddr != "" {
		result.StatsiteAddr = b.StatsiteAddr
	}
	if b.StatsdAddr != "" {
		result.StatsdAddr = b.StatsdAddr
	}
	if b.DisableHostname {
		result.DisableHostname = true
	}
	if b.PrometheusMetrics {
		result.PrometheusMetrics = true
	}
	if b.CollectionInterval != "" {
		result.CollectionInterval = b.CollectionInterval
	}
	if b.collectionInterval != 0 {
		result.collectionInterval = b.collectionInterval
	}
	return &result
}

// DevConfig is a Config that is used for dev mode.
func DevConfig() *Config {
	conf := DefaultConfig()
	conf.BindAddr = "127.0.0.1"
	conf.LogLevel = "DEBUG"
	conf.DevMode = true
	conf.EnableDebug = true
	conf.Dispatch.Interval = 5 * time.Second
	return conf
}

// DefaultConfig is the baseline configuration for the agent. Selected knobs
// honor PINPON_* environment variables so containerized deployments can run
// without a config file.
func DefaultConfig() *Config {
	c := &Config{
		LogLevel: "INFO",
		BindAddr: "0.0.0.0",
		Ports: &Ports{
			HTTP: 8082,
		},
		Backend: &BackendConfig{
			Address: api.DefaultBackendAddress,
			Auth:    &BackendAuthConfig{},
		},
		Dispatch: &DispatchConfig{
			Interval:         engine.DefaultDispatchInterval,
			SchedulerEnabled: pointer.Of(true),
		},
		Limits: &Limits{
			HTTPMaxConnsPerClient: pointer.Of(100),
		},
		Telemetry: &Telemetry{
			CollectionInterval: "1s",
			collectionInterval: 1 * time.Second,
		},
		Version: version.GetVersion(),
	}

	if v := os.Getenv("PINPON_BIND_ADDR"); v != "" {
		c.BindAddr = v
	}
	if v := os.Getenv("PINPON_HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Ports.HTTP = port
		}
	}
	if v := os.Getenv("PINPON_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("PINPON_DISPATCH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Dispatch.Interval = d
		}
	}
	if v := os.Getenv("PINPON_SCHEDULER_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Dispatch.SchedulerEnabled = pointer.Of(b)
		}
	}

	return c
}

// Merge merges two configurations.
func (c *Config) Merge(b *Config) *Config {
	if b == nil {
		return c
	}

	result := *c

	if b.LogLevel != "" {
		result.LogLevel = b.LogLevel
	}
	if b.LogJson {
		result.LogJson = true
	}
	if b.BindAddr != "" {
		result.BindAddr = b.BindAddr
	}
	if b.EnableDebug {
		result.EnableDebug = true
	}
	if b.DevMode {
		result.DevMode = true
	}
	if b.Version != nil {
		result.Version = b.Version
	}

	if result.Ports == nil && b.Ports != nil {
		ports := *b.Ports
		result.Ports = &ports
	} else if b.Ports != nil {
		result.Ports = result.Ports.Merge(b.Ports)
	}

	if result.Backend == nil && b.Backend != nil {
		backend := *b.Backend
		result.Backend = &backend
	} else if b.Backend != nil {
		result.Backend = result.Backend.Merge(b.Backend)
	}

	if result.Dispatch == nil && b.Dispatch != nil {
		dispatch := *b.Dispatch
		result.Dispatch = &dispatch
	} else if b.Dispatch != nil {
		result.Dispatch = result.Dispatch.Merge(b.Dispatch)
	}

	if result.Limits == nil && b.Limits != nil {
		limits := *b.Limits
		result.Limits = &limits
	} else if b.Limits != nil {
		result.Limits = result.Limits.Merge(b.Limits)
	}

	if result.Telemetry == nil && b.Telemetry != nil {
		telemetry := *b.Telemetry
		result.Telemetry = &telemetry
	} else if b.Telemetry != nil {
		result.Telemetry = result.Telemetry.Merge(b.Telemetry)
	}

	// Add the config files
	result.Files = append(result.Files, b.Files...)

	return &result
}

// normalizeAddrs resolves the bind address template and materializes the
// concrete listen addresses.
func (c *Config) normalizeAddrs() error {
	if c.BindAddr != "" {
		ipStr, err := parseSingleIPTemplate(c.BindAddr)
		if err != nil {
			return fmt.Errorf("bind address resolution failed: %v", err)
		}
		c.BindAddr = ipStr
	}

	c.normalizedAddrs = &NormalizedAddrs{
		HTTP: net.JoinHostPort(c.BindAddr, strconv.Itoa(c.Ports.HTTP)),
	}
	return nil
}

// parseSingleIPTemplate is used as a helper function to parse out a single
// IP address from a config parameter.
func parseSingleIPTemplate(ipTmpl string) (string, error) {
	out, err := template.Parse(ipTmpl)
	if err != nil {
		return "", fmt.Errorf("unable to parse address template %q: %v", ipTmpl, err)
	}

	ips := strings.Split(out, " ")
	switch len(ips) {
	case 0:
		return "", errors.New("no addresses found, please configure one")
	case 1:
		return ips[0], nil
	default:
		return "", fmt.Errorf("multiple addresses found (%q), please configure one", out)
	}
}
