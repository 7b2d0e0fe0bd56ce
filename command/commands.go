// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package command

import (
	"os"

	"github.com/hashicorp/cli"
	colorable "github.com/mattn/go-colorable"

	"github.com/loan-mgt/fast-pin-pon-sub002/command/agent"
	"github.com/loan-mgt/fast-pin-pon-sub002/version"
)

const (
	// EnvPinponCLINoColor is an env var that toggles colored UI output.
	EnvPinponCLINoColor = `PINPON_CLI_NO_COLOR`

	// EnvPinponCLIForceColor is an env var that forces colored UI output.
	EnvPinponCLIForceColor = `PINPON_CLI_FORCE_COLOR`
)

// NamedCommand exposes a command's name for shared help text.
type NamedCommand interface {
	Name() string
}

// Commands returns the mapping of CLI commands for the engine. Meta
// options set on the meta parameter apply to every command.
func Commands(metaPtr *Meta, agentUi cli.Ui) map[string]cli.CommandFactory {
	if metaPtr == nil {
		metaPtr = new(Meta)
	}

	meta := *metaPtr
	if meta.Ui == nil {
		meta.Ui = &cli.BasicUi{
			Reader:      os.Stdin,
			Writer:      colorable.NewColorableStdout(),
			ErrorWriter: colorable.NewColorableStderr(),
		}
	}

	all := map[string]cli.CommandFactory{
		"agent": func() (cli.Command, error) {
			return &agent.Command{
				Version:    version.GetVersion(),
				Ui:         agentUi,
				ShutdownCh: make(chan struct{}),
			}, nil
		},
		"agent-info": func() (cli.Command, error) {
			return &AgentInfoCommand{
				Meta: meta,
			}, nil
		},
		"config": func() (cli.Command, error) {
			return &ConfigCommand{
				Meta: meta,
			}, nil
		},
		"config validate": func() (cli.Command, error) {
			return &ConfigValidateCommand{
				Meta: meta,
			}, nil
		},
		"dispatch": func() (cli.Command, error) {
			return &DispatchCommand{
				Meta: meta,
			}, nil
		},
		"init": func() (cli.Command, error) {
			return &InitCommand{
				Meta: meta,
			}, nil
		},
		"monitor": func() (cli.Command, error) {
			return &MonitorCommand{
				Meta: meta,
			}, nil
		},
		"refresh": func() (cli.Command, error) {
			return &RefreshCommand{
				Meta: meta,
			}, nil
		},
		"status": func() (cli.Command, error) {
			return &StatusCommand{
				Meta: meta,
			}, nil
		},
		"version": func() (cli.Command, error) {
			return &VersionCommand{
				Version: version.GetVersion(),
				Ui:      meta.Ui,
			}, nil
		},
	}

	return all
}
