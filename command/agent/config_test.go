// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package agent

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/loan-mgt/fast-pin-pon-sub002/ci"
	"github.com/loan-mgt/fast-pin-pon-sub002/engine"
	"github.com/loan-mgt/fast-pin-pon-sub002/helper/pointer"
)

func TestConfig_Merge(t *testing.T) {
	ci.Parallel(t)

	c0 := &Config{}

	c1 := &Config{
		LogLevel:  "INFO",
		BindAddr:  "127.0.0.1",
		Ports:     &Ports{HTTP: 8082},
		Backend:   &BackendConfig{Address: "http://127.0.0.1:8080"},
		Dispatch:  &DispatchConfig{},
		Limits:    &Limits{},
		Telemetry: &Telemetry{},
	}

	c2 := &Config{
		LogLevel:    "DEBUG",
		LogJson:     true,
		BindAddr:    "127.0.0.2",
		EnableDebug: true,
		Ports:       &Ports{HTTP: 9999},
		Backend: &BackendConfig{
			Address:    "http://10.1.1.1:8080",
			Timeout:    10 * time.Second,
			TimeoutHCL: "10s",
			Auth: &BackendAuthConfig{
				TokenURL:     "https://auth.example.com",
				Realm:        "pinpon",
				ClientID:     "engine",
				ClientSecret: "hunter2",
			},
		},
		Dispatch: &DispatchConfig{
			Interval:         45 * time.Second,
			IntervalHCL:      "45s",
			SchedulerEnabled: pointer.Of(false),
		},
		Limits: &Limits{HTTPMaxConnsPerClient: pointer.Of(10)},
		Telemetry: &Telemetry{
			StatsiteAddr:       "127.0.0.1:8125",
			PrometheusMetrics:  true,
			CollectionInterval: "5s",
			collectionInterval: 5 * time.Second,
		},
	}

	result := c0.Merge(c1)
	result = result.Merge(c2)

	expected := &Config{
		LogLevel:    "DEBUG",
		LogJson:     true,
		BindAddr:    "127.0.0.2",
		EnableDebug: true,
		Ports:       &Ports{HTTP: 9999},
		Backend: &BackendConfig{
			Address:    "http://10.1.1.1:8080",
			Timeout:    10 * time.Second,
			TimeoutHCL: "10s",
			Auth: &BackendAuthConfig{
				TokenURL:     "https://auth.example.com",
				Realm:        "pinpon",
				ClientID:     "engine",
				ClientSecret: "hunter2",
			},
		},
		Dispatch: &DispatchConfig{
			Interval:         45 * time.Second,
			IntervalHCL:      "45s",
			SchedulerEnabled: pointer.Of(false),
		},
		Limits: &Limits{HTTPMaxConnsPerClient: pointer.Of(10)},
		Telemetry: &Telemetry{
			StatsiteAddr:       "127.0.0.1:8125",
			PrometheusMetrics:  true,
			CollectionInterval: "5s",
			collectionInterval: 5 * time.Second,
		},
	}

	require.Equal(t, expected, result)
}

func TestConfig_Merge_PartialBlocks(t *testing.T) {
	ci.Parallel(t)

	// A later file only overrides the keys it names inside a block.
	base := &Config{
		Backend: &BackendConfig{
			Address: "http://127.0.0.1:8080",
			Timeout: 30 * time.Second,
			Auth:    &BackendAuthConfig{ClientID: "engine"},
		},
		Dispatch: &DispatchConfig{
			Interval:         30 * time.Second,
			SchedulerEnabled: pointer.Of(true),
		},
	}

	overlay := &Config{
		Backend:  &BackendConfig{Timeout: 5 * time.Second},
		Dispatch: &DispatchConfig{SchedulerEnabled: pointer.Of(false)},
	}

	result := base.Merge(overlay)

	require.Equal(t, "http://127.0.0.1:8080", result.Backend.Address)
	require.Equal(t, 5*time.Second, result.Backend.Timeout)
	require.Equal(t, "engine", result.Backend.Auth.ClientID)
	require.Equal(t, 30*time.Second, result.Dispatch.Interval)
	require.Equal(t, pointer.Of(false), result.Dispatch.SchedulerEnabled)

	// the originals are left alone
	require.Equal(t, 30*time.Second, base.Backend.Timeout)
	require.Equal(t, pointer.Of(true), base.Dispatch.SchedulerEnabled)
}

func TestConfig_DefaultConfig(t *testing.T) {
	ci.Parallel(t)

	c := DefaultConfig()
	require.Equal(t, "INFO", c.LogLevel)
	require.Equal(t, "0.0.0.0", c.BindAddr)
	require.Equal(t, 8082, c.Ports.HTTP)
	require.Equal(t, "http://127.0.0.1:8080", c.Backend.Address)
	require.Equal(t, engine.DefaultDispatchInterval, c.Dispatch.Interval)
	require.Equal(t, pointer.Of(true), c.Dispatch.SchedulerEnabled)
	require.NotNil(t, c.Version)
	require.False(t, c.DevMode)
}

func TestConfig_DefaultConfig_Env(t *testing.T) {
	t.Setenv("PINPON_BIND_ADDR", "10.0.0.5")
	t.Setenv("PINPON_HTTP_PORT", "9090")
	t.Setenv("PINPON_LOG_LEVEL", "WARN")
	t.Setenv("PINPON_DISPATCH_INTERVAL", "45s")
	t.Setenv("PINPON_SCHEDULER_ENABLED", "false")

	c := DefaultConfig()
	require.Equal(t, "10.0.0.5", c.BindAddr)
	require.Equal(t, 9090, c.Ports.HTTP)
	require.Equal(t, "WARN", c.LogLevel)
	require.Equal(t, 45*time.Second, c.Dispatch.Interval)
	require.Equal(t, pointer.Of(false), c.Dispatch.SchedulerEnabled)
}

func TestConfig_DevConfig(t *testing.T) {
	ci.Parallel(t)

	c := DevConfig()
	require.True(t, c.DevMode)
	require.True(t, c.EnableDebug)
	require.Equal(t, "127.0.0.1", c.BindAddr)
	require.Equal(t, "DEBUG", c.LogLevel)
	require.Equal(t, 5*time.Second, c.Dispatch.Interval)
}

func TestConfig_NormalizeAddrs(t *testing.T) {
	ci.Parallel(t)

	c := &Config{
		BindAddr: "169.254.1.5",
		Ports:    &Ports{HTTP: 8082},
	}
	require.NoError(t, c.normalizeAddrs())
	require.Equal(t, "169.254.1.5:8082", c.normalizedAddrs.HTTP)

	// sockaddr templates resolve to a concrete interface address
	c = &Config{
		BindAddr: `{{ GetAllInterfaces | include "flags" "loopback" | limit 1 | attr "address" }}`,
		Ports:    &Ports{HTTP: 4646},
	}
	require.NoError(t, c.normalizeAddrs())
	require.Contains(t, []string{"127.0.0.1:4646", "[::1]:4646"}, c.normalizedAddrs.HTTP)

	// multiple resolved addresses are rejected
	c = &Config{
		BindAddr: "1.2.3.4 5.6.7.8",
		Ports:    &Ports{HTTP: 8082},
	}
	require.Error(t, c.normalizeAddrs())
}

func TestConfig_ParseConfigFile(t *testing.T) {
	ci.Parallel(t)

	// Fails if the file doesn't exist
	if _, err := ParseConfigFile("/unicorns/leprechauns"); err == nil {
		t.Fatalf("expected error, got nothing")
	}

	fh, err := os.CreateTemp(t.TempDir(), "pinpon")
	if err != nil {
		t.Fatalf("err: %s", err)
	}

	// Invalid content returns error
	if _, err := fh.WriteString("nope;!!!"); err != nil {
		t.Fatalf("err: %s", err)
	}
	if _, err := ParseConfigFile(fh.Name()); err == nil {
		t.Fatalf("expected load error, got nothing")
	}

	// Valid content parses successfully
	if err := fh.Truncate(0); err != nil {
		t.Fatalf("err: %s", err)
	}
	if _, err := fh.Seek(0, 0); err != nil {
		t.Fatalf("err: %s", err)
	}
	if _, err := fh.WriteString(`{"log_level":"WARN"}`); err != nil {
		t.Fatalf("err: %s", err)
	}

	config, err := ParseConfigFile(fh.Name())
	if err != nil {
		t.Fatalf("err: %s", err)
	}
	if config.LogLevel != "WARN" {
		t.Fatalf("bad log level: %q", config.LogLevel)
	}
}

func TestConfig_LoadConfigDir(t *testing.T) {
	ci.Parallel(t)

	// Fails if the dir doesn't exist.
	if _, err := LoadConfigDir("/unicorns/leprechauns"); err == nil {
		t.Fatalf("expected error, got nothing")
	}

	dir := t.TempDir()

	// Returns empty config on empty dir
	config, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("err: %s", err)
	}
	if config == nil {
		t.Fatalf("should not be nil")
	}

	file1 := filepath.Join(dir, "conf1.hcl")
	err = os.WriteFile(file1, []byte(`{"log_level":"WARN"}`), 0600)
	if err != nil {
		t.Fatalf("err: %s", err)
	}

	file2 := filepath.Join(dir, "conf2.hcl")
	err = os.WriteFile(file2, []byte(`{"bind_addr":"127.0.0.9"}`), 0600)
	if err != nil {
		t.Fatalf("err: %s", err)
	}

	file3 := filepath.Join(dir, "conf3.hcl")
	err = os.WriteFile(file3, []byte(`nope;!!!`), 0600)
	if err != nil {
		t.Fatalf("err: %s", err)
	}

	// Fails if we have a bad config file
	if _, err := LoadConfigDir(dir); err == nil {
		t.Fatalf("expected load error, got nothing")
	}

	if err := os.Remove(file3); err != nil {
		t.Fatalf("err: %s", err)
	}

	// Works if configs are valid
	config, err = LoadConfigDir(dir)
	if err != nil {
		t.Fatalf("err: %s", err)
	}
	if config.LogLevel != "WARN" || config.BindAddr != "127.0.0.9" {
		t.Fatalf("bad: %#v", config)
	}
}

func TestConfig_LoadConfig(t *testing.T) {
	ci.Parallel(t)

	// Fails if the target doesn't exist
	if _, err := LoadConfig("/unicorns/leprechauns"); err == nil {
		t.Fatalf("expected error, got nothing")
	}

	fh, err := os.CreateTemp(t.TempDir(), "pinpon")
	if err != nil {
		t.Fatalf("err: %s", err)
	}

	if _, err := fh.WriteString(`{"log_level":"WARN"}`); err != nil {
		t.Fatalf("err: %s", err)
	}

	// Works on a config file
	config, err := LoadConfig(fh.Name())
	if err != nil {
		t.Fatalf("err: %s", err)
	}
	if config.LogLevel != "WARN" {
		t.Fatalf("bad: %#v", config)
	}

	expectedConfigFiles := []string{fh.Name()}
	if !reflect.DeepEqual(config.Files, expectedConfigFiles) {
		t.Errorf("Loaded configs don't match\nExpected\n%+vGot\n%+v\n",
			expectedConfigFiles, config.Files)
	}

	dir := t.TempDir()

	file1 := filepath.Join(dir, "config1.hcl")
	err = os.WriteFile(file1, []byte(`{"bind_addr":"127.0.0.9"}`), 0600)
	if err != nil {
		t.Fatalf("err: %s", err)
	}

	// Works on config dir
	config, err = LoadConfig(dir)
	if err != nil {
		t.Fatalf("err: %s", err)
	}
	if config.BindAddr != "127.0.0.9" {
		t.Fatalf("bad: %#v", config)
	}

	expectedConfigFiles = []string{file1}
	if !reflect.DeepEqual(config.Files, expectedConfigFiles) {
		t.Errorf("Loaded configs don't match\nExpected\n%+vGot\n%+v\n",
			expectedConfigFiles, config.Files)
	}
}
