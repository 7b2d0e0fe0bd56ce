// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package command

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hashicorp/cli"
	"github.com/shoenig/test/must"

	"github.com/loan-mgt/fast-pin-pon-sub002/ci"
)

func TestStatusCommand_Implements(t *testing.T) {
	ci.Parallel(t)
	var _ cli.Command = &StatusCommand{}
}

func TestStatusCommand_Run(t *testing.T) {
	ci.Parallel(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "healthy"}`))
	}))
	defer srv.Close()

	ui := cli.NewMockUi()
	cmd := &StatusCommand{Meta: Meta{Ui: ui}}

	code := cmd.Run([]string{"-address=" + srv.URL})
	must.Zero(t, code)

	out := ui.OutputWriter.String()
	must.StrContains(t, out, "Address")
	must.StrContains(t, out, "Status")
	must.StrContains(t, out, "healthy")
}

func TestStatusCommand_Run_Initializing(t *testing.T) {
	ci.Parallel(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "initializing"}`))
	}))
	defer srv.Close()

	ui := cli.NewMockUi()
	cmd := &StatusCommand{Meta: Meta{Ui: ui}}

	code := cmd.Run([]string{"-address=" + srv.URL})
	must.Zero(t, code)
	must.StrContains(t, ui.OutputWriter.String(), "initializing")
}

func TestStatusCommand_Fails(t *testing.T) {
	ci.Parallel(t)
	ui := cli.NewMockUi()
	cmd := &StatusCommand{Meta: Meta{Ui: ui}}

	// Fails on misuse
	code := cmd.Run([]string{"some", "bad", "args"})
	must.One(t, code)
	must.StrContains(t, ui.ErrorWriter.String(), commandErrorText(cmd))
	ui.ErrorWriter.Reset()

	// Fails on connection failure
	code = cmd.Run([]string{"-address=nope"})
	must.One(t, code)
	must.StrContains(t, ui.ErrorWriter.String(), "Error querying engine status")
}
