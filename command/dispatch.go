// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/posener/complete"
)

type DispatchCommand struct {
	Meta
}

func (c *DispatchCommand) Help() string {
	helpText := `
Usage: pinpon-engine dispatch [options] <intervention-id>

  Trigger a dispatch decision for a single intervention. The engine scores
  every available unit against the intervention's unit type recommendations
  and commits the winning assignments to the backend. An intervention that
  needs no more units yields zero dispatches, which is not an error.

General Options:

  ` + generalOptionsUsage()
	return strings.TrimSpace(helpText)
}

func (c *DispatchCommand) Synopsis() string {
	return "Trigger a dispatch decision for an intervention"
}

func (c *DispatchCommand) Name() string { return "dispatch" }

func (c *DispatchCommand) AutocompleteFlags() complete.Flags {
	return c.Meta.AutocompleteFlags(FlagSetClient)
}

func (c *DispatchCommand) AutocompleteArgs() complete.Predictor {
	return complete.PredictAnything
}

func (c *DispatchCommand) Run(args []string) int {
	flags := c.Meta.FlagSet(c.Name(), FlagSetClient)
	flags.Usage = func() { c.Ui.Output(c.Help()) }
	if err := flags.Parse(args); err != nil {
		return 1
	}

	if args = flags.Args(); len(args) != 1 {
		c.Ui.Error("This command takes one argument: <intervention-id>")
		c.Ui.Error(commandErrorText(c))
		return 1
	}
	id := args[0]

	client, err := c.Meta.Client()
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Error initializing client: %s", err))
		return 1
	}

	resp, err := client.Engine().Dispatch(context.Background(), id)
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Error dispatching intervention %q: %s", id, err))
		return 1
	}

	if resp.Count == 0 {
		c.Ui.Output(fmt.Sprintf("No units dispatched for intervention %q", id))
		return 0
	}
	c.Ui.Output(fmt.Sprintf("Dispatched %d unit(s) for intervention %q", resp.Count, id))
	return 0
}
