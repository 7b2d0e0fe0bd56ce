// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package agent

import (
	"io"
	"slices"

	"github.com/hashicorp/logutils"
)

// LevelFilter returns a LevelFilter covering every log level the agent
// accepts, defaulting to INFO.
func LevelFilter() *logutils.LevelFilter {
	return &logutils.LevelFilter{
		Levels:   []logutils.LogLevel{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "OFF"},
		MinLevel: "INFO",
		Writer:   io.Discard,
	}
}

// ValidateLevelFilter reports whether minLevel is one of the levels the
// filter accepts.
func ValidateLevelFilter(minLevel logutils.LogLevel, filter *logutils.LevelFilter) bool {
	return slices.Contains(filter.Levels, minLevel)
}
