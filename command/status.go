// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/posener/complete"
)

type StatusCommand struct {
	Meta
}

func (c *StatusCommand) Help() string {
	helpText := `
Usage: pinpon-engine status [options]

  Display status information about the running engine agent. The agent
  reports "healthy" once it has completed its first static data refresh,
  and "initializing" before that.

General Options:

  ` + generalOptionsUsage()
	return strings.TrimSpace(helpText)
}

func (c *StatusCommand) Synopsis() string {
	return "Display status information about the engine agent"
}

func (c *StatusCommand) Name() string { return "status" }

func (c *StatusCommand) AutocompleteFlags() complete.Flags {
	return c.Meta.AutocompleteFlags(FlagSetClient)
}

func (c *StatusCommand) AutocompleteArgs() complete.Predictor {
	return complete.PredictNothing
}

func (c *StatusCommand) Run(args []string) int {
	flags := c.Meta.FlagSet(c.Name(), FlagSetClient)
	flags.Usage = func() { c.Ui.Output(c.Help()) }
	if err := flags.Parse(args); err != nil {
		return 1
	}

	if args = flags.Args(); len(args) > 0 {
		c.Ui.Error("This command takes no arguments")
		c.Ui.Error(commandErrorText(c))
		return 1
	}

	client, err := c.Meta.Client()
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Error initializing client: %s", err))
		return 1
	}

	health, err := client.Engine().Health(context.Background())
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Error querying engine status: %s", err))
		return 1
	}

	basic := []string{
		fmt.Sprintf("Address|%s", client.Address()),
		fmt.Sprintf("Status|%s", health.Status),
	}
	c.Ui.Output(formatKV(basic))

	return 0
}
