// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package command

import (
	"flag"
	"os"
	"strings"

	"github.com/hashicorp/cli"
	colorable "github.com/mattn/go-colorable"
	isatty "github.com/mattn/go-isatty"
	"github.com/mitchellh/colorstring"
	"github.com/posener/complete"

	"github.com/loan-mgt/fast-pin-pon-sub002/api"
)

// FlagSetFlags selects which flag groups Meta.FlagSet installs into the
// FlagSet it returns.
type FlagSetFlags uint

const (
	FlagSetNone    FlagSetFlags = 0
	FlagSetClient  FlagSetFlags = 1 << iota
	FlagSetDefault              = FlagSetClient
)

// Meta holds the options and plumbing shared by nearly every command.
type Meta struct {
	Ui cli.Ui

	// These are set by the command line flags.
	flagAddress string

	// Whether to not-colorize output
	noColor bool

	// Whether to force colorized output
	forceColor bool
}

// FlagSet builds the common FlagSet for a command. The second parameter
// picks the flag groups to include, so commands that never talk to a
// running agent can leave the connectivity options out.
func (m *Meta) FlagSet(n string, fs FlagSetFlags) *flag.FlagSet {
	f := flag.NewFlagSet(n, flag.ContinueOnError)

	// FlagSetClient carries the engine connectivity options.
	if fs&FlagSetClient != 0 {
		f.StringVar(&m.flagAddress, "address", "", "")
		f.BoolVar(&m.noColor, "no-color", false, "")
		f.BoolVar(&m.forceColor, "force-color", false, "")
	}

	f.SetOutput(&uiErrorWriter{ui: m.Ui})

	return f
}

// AutocompleteFlags returns the flag completions matching the given flag
// groups.
func (m *Meta) AutocompleteFlags(fs FlagSetFlags) complete.Flags {
	if fs&FlagSetClient == 0 {
		return nil
	}

	return complete.Flags{
		"-address":     complete.PredictAnything,
		"-no-color":    complete.PredictNothing,
		"-force-color": complete.PredictNothing,
	}
}

// clientConfig builds the engine callback client configuration from the
// environment and command line flags.
func (m *Meta) clientConfig() *api.Config {
	config := api.DefaultEngineConfig()
	if m.flagAddress != "" {
		config.Address = m.flagAddress
	}
	return config
}

// Client builds an API client from the command line flags and env vars.
func (m *Meta) Client() (*api.Client, error) {
	return api.NewClient(m.clientConfig())
}

func (m *Meta) Colorize() *colorstring.Colorize {
	_, coloredUi := m.Ui.(*cli.ColoredUi)

	return &colorstring.Colorize{
		Colors:  colorstring.DefaultColors,
		Disable: !coloredUi,
		Reset:   true,
	}
}

func (m *Meta) SetupUi(args []string) {
	noColor := os.Getenv(EnvPinponCLINoColor) != ""
	forceColor := os.Getenv(EnvPinponCLIForceColor) != ""

	for _, arg := range args {
		// Check if color is set
		if arg == "-no-color" || arg == "--no-color" {
			noColor = true
		} else if arg == "-force-color" || arg == "--force-color" {
			forceColor = true
		}
	}

	m.Ui = &cli.BasicUi{
		Reader:      os.Stdin,
		Writer:      colorable.NewColorableStdout(),
		ErrorWriter: colorable.NewColorableStderr(),
	}

	// color only when it isn't disabled and stdout is a tty, or when
	// explicitly forced
	isTerminal := isatty.IsTerminal(os.Stdout.Fd())
	useColor := !noColor && (isTerminal || forceColor)
	if useColor {
		m.Ui = &cli.ColoredUi{
			ErrorColor: cli.UiColorRed,
			WarnColor:  cli.UiColorYellow,
			InfoColor:  cli.UiColorGreen,
			Ui:         m.Ui,
		}
	}
}

// generalOptionsUsage renders the help text for the options every client
// command accepts.
func generalOptionsUsage() string {
	helpText := `
  -address=<addr>
    The address of the engine agent's callback endpoint.
    Overrides the PINPON_ENGINE_ADDR environment variable if set.
    Default = http://127.0.0.1:8082

  -no-color
    Disables colored command output. Alternatively, PINPON_CLI_NO_COLOR may
    be set. Takes precedence over -force-color.

  -force-color
    Forces colored command output, for terminals the automatic detection
    misses. Alternatively, PINPON_CLI_FORCE_COLOR may be set. Has no effect
    when -no-color is also used.
`
	return strings.TrimSpace(helpText)
}
