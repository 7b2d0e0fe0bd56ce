// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package command

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/cli"
	"github.com/shoenig/test/must"

	"github.com/loan-mgt/fast-pin-pon-sub002/ci"
	"github.com/loan-mgt/fast-pin-pon-sub002/command/agent"
	"github.com/loan-mgt/fast-pin-pon-sub002/command/asset"
)

func TestInitCommand_Implements(t *testing.T) {
	ci.Parallel(t)
	var _ cli.Command = &InitCommand{}
}

func TestInitCommand_Run(t *testing.T) {
	ci.Parallel(t)

	ui := cli.NewMockUi()
	cmd := &InitCommand{Meta: Meta{Ui: ui}}
	path := filepath.Join(t.TempDir(), "engine.hcl")

	code := cmd.Run([]string{path})
	must.Zero(t, code)

	content, err := os.ReadFile(path)
	must.NoError(t, err)
	must.Eq(t, asset.ConfigExample, content)

	// the example must load through the agent's own config parser
	cfg, err := agent.ParseConfigFile(path)
	must.NoError(t, err)
	must.Eq(t, "INFO", cfg.LogLevel)
	must.Eq(t, 8082, cfg.Ports.HTTP)
	must.Eq(t, "http://127.0.0.1:8080", cfg.Backend.Address)
	must.Eq(t, 30*time.Second, cfg.Backend.Timeout)
	must.Eq(t, 30*time.Second, cfg.Dispatch.Interval)
	must.True(t, *cfg.Dispatch.SchedulerEnabled)
	must.Eq(t, 100, *cfg.Limits.HTTPMaxConnsPerClient)
	must.True(t, cfg.Telemetry.PrometheusMetrics)

	// refuses to overwrite an existing file
	code = cmd.Run([]string{path})
	must.One(t, code)
	must.StrContains(t, ui.ErrorWriter.String(), "already exists")
}

func TestInitCommand_Run_Short(t *testing.T) {
	ci.Parallel(t)

	ui := cli.NewMockUi()
	cmd := &InitCommand{Meta: Meta{Ui: ui}}
	path := filepath.Join(t.TempDir(), "engine.hcl")

	code := cmd.Run([]string{"-short", path})
	must.Zero(t, code)

	content, err := os.ReadFile(path)
	must.NoError(t, err)
	must.Eq(t, asset.ConfigExampleShort, content)

	cfg, err := agent.ParseConfigFile(path)
	must.NoError(t, err)
	must.Eq(t, "http://127.0.0.1:8080", cfg.Backend.Address)
	must.True(t, *cfg.Dispatch.SchedulerEnabled)
}

func TestInitCommand_Fails(t *testing.T) {
	ci.Parallel(t)

	ui := cli.NewMockUi()
	cmd := &InitCommand{Meta: Meta{Ui: ui}}

	code := cmd.Run([]string{"too", "many", "args"})
	must.One(t, code)
	must.StrContains(t, ui.ErrorWriter.String(), commandErrorText(cmd))
}
