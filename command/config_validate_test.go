// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package command

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/cli"
	"github.com/shoenig/test/must"

	"github.com/loan-mgt/fast-pin-pon-sub002/ci"
)

func TestConfigValidateCommand_FailWithEmptyDir(t *testing.T) {
	ci.Parallel(t)
	fh := t.TempDir()

	ui := cli.NewMockUi()
	cmd := &ConfigValidateCommand{Meta: Meta{Ui: ui}}
	args := []string{fh}

	code := cmd.Run(args)
	must.One(t, code)
	must.StrContains(t, ui.ErrorWriter.String(), "No configuration loaded")
}

func TestConfigValidateCommand_SucceedWithMinimalConfigFile(t *testing.T) {
	ci.Parallel(t)
	fh := t.TempDir()

	fp := filepath.Join(fh, "config.hcl")
	err := os.WriteFile(fp, []byte(`backend {
		address = "http://127.0.0.1:8080"
	}`), 0644)
	must.NoError(t, err)

	ui := cli.NewMockUi()
	cmd := &ConfigValidateCommand{Meta: Meta{Ui: ui}}
	args := []string{fh}

	code := cmd.Run(args)
	must.Zero(t, code)
	must.StrContains(t, ui.OutputWriter.String(), "Configuration is valid!")
}

func TestConfigValidateCommand_FailOnParseBadConfigFile(t *testing.T) {
	ci.Parallel(t)
	fh := t.TempDir()

	fp := filepath.Join(fh, "config.hcl")
	err := os.WriteFile(fp, []byte(`a: b`), 0644)
	must.NoError(t, err)

	ui := cli.NewMockUi()
	cmd := &ConfigValidateCommand{Meta: Meta{Ui: ui}}
	args := []string{fh}

	code := cmd.Run(args)
	must.One(t, code)
	must.StrContains(t, ui.ErrorWriter.String(), "Error loading configuration")
}

func TestConfigValidateCommand_FailOnValidateParsableConfigFile(t *testing.T) {
	ci.Parallel(t)
	fh := t.TempDir()

	fp := filepath.Join(fh, "config.hcl")
	err := os.WriteFile(fp, []byte(`dispatch {
		interval = "-10s"
	}`), 0644)
	must.NoError(t, err)

	ui := cli.NewMockUi()
	cmd := &ConfigValidateCommand{Meta: Meta{Ui: ui}}
	args := []string{fh}

	code := cmd.Run(args)
	must.One(t, code)
	must.StrContains(t, ui.ErrorWriter.String(), "Dispatch interval must not be negative")
}
