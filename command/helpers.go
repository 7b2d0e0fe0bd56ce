// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package command

import (
	"bufio"
	"bytes"
	"fmt"

	"github.com/hashicorp/cli"
	"github.com/posener/complete"
	"github.com/ryanuber/columnize"
)

// formatKV aligns a set of "key|value" strings into k = v pairs using
// the columnize library.
func formatKV(in []string) string {
	columnConf := columnize.DefaultConfig()
	columnConf.Empty = "<none>"
	columnConf.Glue = " = "
	return columnize.Format(in, columnConf)
}

// mergeAutocompleteFlags joins multiple flag completion sets.
func mergeAutocompleteFlags(flags ...complete.Flags) complete.Flags {
	merged := make(map[string]complete.Predictor, len(flags))
	for _, f := range flags {
		for k, v := range f {
			merged[k] = v
		}
	}
	return merged
}

// commandErrorText renders the shared help hint printed under command
// errors.
func commandErrorText(cmd NamedCommand) string {
	return fmt.Sprintf("For additional help try 'pinpon-engine %s -help'", cmd.Name())
}

// uiErrorWriter adapts a cli.Ui to io.Writer. ui.ErrorWriter expects
// whole lines and adds its own line breaks, so incoming data is split on
// newlines and any partial line is buffered until the next write or
// Close.
type uiErrorWriter struct {
	ui  cli.Ui
	buf bytes.Buffer
}

func (w *uiErrorWriter) Write(data []byte) (int, error) {
	read := 0
	for len(data) != 0 {
		advance, token, err := bufio.ScanLines(data, false)
		if err != nil {
			return read, err
		}

		// no full line yet, keep the remainder for later
		if advance == 0 {
			r, err := w.buf.Write(data)
			return read + r, err
		}

		w.ui.Error(w.buf.String() + string(token))
		data = data[advance:]
		w.buf.Reset()
		read += advance
	}

	return read, nil
}

func (w *uiErrorWriter) Close() error {
	// emit what's remaining
	if w.buf.Len() != 0 {
		w.ui.Error(w.buf.String())
		w.buf.Reset()
	}
	return nil
}
