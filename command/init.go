// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package command

import (
	"fmt"
	"os"
	"strings"

	"github.com/posener/complete"

	"github.com/loan-mgt/fast-pin-pon-sub002/command/asset"
)

const (
	// DefaultInitName is the default name we use when
	// initializing the example config file
	DefaultInitName = "example.pinpon.hcl"
)

// InitCommand generates a new agent config that you can customize to your
// liking, like vagrant init
type InitCommand struct {
	Meta
}

func (c *InitCommand) Help() string {
	helpText := `
Usage: pinpon-engine init <filename>

  Creates an example agent configuration that can be used as a starting point
  to customize further. If no filename is given, the default of "example.pinpon.hcl"
  will be used.

Init Options:

  -short
    If the short flag is set, a minimal config without comments is emitted.
`
	return strings.TrimSpace(helpText)
}

func (c *InitCommand) Synopsis() string {
	return "Create an example agent configuration"
}

func (c *InitCommand) AutocompleteFlags() complete.Flags {
	return complete.Flags{
		"-short": complete.PredictNothing,
	}
}

func (c *InitCommand) AutocompleteArgs() complete.Predictor {
	return complete.PredictNothing
}

func (c *InitCommand) Name() string { return "init" }

func (c *InitCommand) Run(args []string) int {
	var short bool

	flags := c.Meta.FlagSet(c.Name(), FlagSetNone)
	flags.Usage = func() { c.Ui.Output(c.Help()) }
	flags.BoolVar(&short, "short", false, "")

	if err := flags.Parse(args); err != nil {
		return 1
	}

	// at most one filename may be given
	args = flags.Args()
	if len(args) > 1 {
		c.Ui.Error("This command takes either no arguments or one: <filename>")
		c.Ui.Error(commandErrorText(c))
		return 1
	}

	filename := DefaultInitName
	if len(args) == 1 {
		filename = args[0]
	}

	// Check if the file already exists
	_, err := os.Stat(filename)
	if err != nil && !os.IsNotExist(err) {
		c.Ui.Error(fmt.Sprintf("Failed to stat %q: %v", filename, err))
		return 1
	}
	if !os.IsNotExist(err) {
		c.Ui.Error(fmt.Sprintf("Config %q already exists", filename))
		return 1
	}

	configSpec := asset.ConfigExample
	if short {
		configSpec = asset.ConfigExampleShort
	}

	// Write out the example
	err = os.WriteFile(filename, configSpec, 0660)
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Failed to write %q: %v", filename, err))
		return 1
	}

	// Success
	c.Ui.Output(fmt.Sprintf("Example agent config written to %s", filename))
	return 0
}
