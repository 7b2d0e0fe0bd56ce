// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/posener/complete"
)

type RefreshCommand struct {
	Meta
}

func (c *RefreshCommand) Help() string {
	helpText := `
Usage: pinpon-engine refresh [options]

  Force the engine agent to reload its static data from the backend now
  instead of waiting for the next dispatch cycle. The backend calls the
  same endpoint after administrative writes to stations, unit types or
  engine configuration.

General Options:

  ` + generalOptionsUsage()
	return strings.TrimSpace(helpText)
}

func (c *RefreshCommand) Synopsis() string {
	return "Refresh the engine agent's static data cache"
}

func (c *RefreshCommand) Name() string { return "refresh" }

func (c *RefreshCommand) AutocompleteFlags() complete.Flags {
	return c.Meta.AutocompleteFlags(FlagSetClient)
}

func (c *RefreshCommand) AutocompleteArgs() complete.Predictor {
	return complete.PredictNothing
}

func (c *RefreshCommand) Run(args []string) int {
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

	if _, err := client.Engine().Refresh(context.Background()); err != nil {
		c.Ui.Error(fmt.Sprintf("Error refreshing static data: %s", err))
		return 1
	}

	c.Ui.Output("Static data cache refreshed")
	return 0
}
