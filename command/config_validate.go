// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package command

import (
	"fmt"
	"reflect"
	"strings"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/posener/complete"

	"github.com/loan-mgt/fast-pin-pon-sub002/command/agent"
)

type ConfigValidateCommand struct {
	Meta
}

func (c *ConfigValidateCommand) Help() string {
	helpText := `
Usage: pinpon-engine config validate <config_path> [<config_path>...]

  Perform validation on a set of engine agent configuration files. This is
  useful to test the agent configuration without starting it.

  This command accepts the path to either a single config file or a directory
  of config files to use for configuring the agent. This option may be
  specified multiple times. If multiple config files are used, the values from
  each will be merged together. During merging, values from files found later
  in the list are merged over values from previously parsed files.

  Files are validated the way the agent loads them: values are layered over
  the default configuration before the checks run, so a fragment that only
  sets a backend address is still a valid configuration.
`
	return strings.TrimSpace(helpText)
}

func (c *ConfigValidateCommand) AutocompleteFlags() complete.Flags {
	return nil
}

func (c *ConfigValidateCommand) AutocompleteArgs() complete.Predictor {
	return complete.PredictOr(
		complete.PredictFiles("*.hcl"),
		complete.PredictFiles("*.json"),
		complete.PredictDirs("*"),
	)
}

func (c *ConfigValidateCommand) Synopsis() string {
	return "Validate config file/dir"
}

func (c *ConfigValidateCommand) Name() string { return "config validate" }

func (c *ConfigValidateCommand) Run(args []string) int {
	var mErr multierror.Error
	flags := c.Meta.FlagSet(c.Name(), FlagSetNone)
	flags.Usage = func() { c.Ui.Output(c.Help()) }
	if err := flags.Parse(args); err != nil {
		return 1
	}

	configPath := flags.Args()
	if len(configPath) < 1 {
		c.Ui.Error("Must specify at least one config file or directory")
		c.Ui.Error(commandErrorText(c))
		return 1
	}

	var config *agent.Config

	for _, path := range configPath {
		current, err := agent.LoadConfig(path)
		if err != nil {
			mErr.Errors = append(mErr.Errors, fmt.Errorf(
				"Error loading configuration from %s: %s", path, err))
			continue
		}

		// The user asked us to load some config here but we didn't find any,
		// so we'll complain but continue.
		if current == nil || reflect.DeepEqual(current, &agent.Config{}) {
			c.Ui.Warn(fmt.Sprintf("No configuration loaded from %s", path))
			continue
		}

		if config == nil {
			config = current
		} else {
			config = config.Merge(current)
		}
	}

	if err := mErr.ErrorOrNil(); err != nil {
		c.Ui.Error(err.Error())
		return 1
	}

	if config == nil {
		c.Ui.Error(fmt.Sprintf("No configuration loaded from %s",
			strings.Join(configPath, ", ")))
		return 1
	}

	// Layer the loaded files over the defaults, the same way the agent
	// builds its effective configuration at startup.
	config = agent.DefaultConfig().Merge(config)

	cmd := agent.Command{Ui: c.Ui}
	if !cmd.IsValidConfig(config) {
		c.Ui.Error("Configuration is invalid")
		return 1
	}

	c.Ui.Output("Configuration is valid!")
	return 0
}
