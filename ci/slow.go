package ci

import (
	"os"
	"strconv"
	"testing"
)

// SkipSlow skips a slow test unless PINPON_SLOW_TEST is set to a true value.
func SkipSlow(t *testing.T, reason string) {
	value := os.Getenv("PINPON_SLOW_TEST")
	run, err := strconv.ParseBool(value)
	if !run || err != nil {
		t.Skipf("Skipping slow test: %s", reason)
	}
}

// Parallel marks t to run in parallel, unless CI is set to a true value.
//
// CI runners perform better with the tests in serial as long as
// GOMAXPROCS is left unrestricted.
func Parallel(t *testing.T) {
	value := os.Getenv("CI")
	isCI, err := strconv.ParseBool(value)
	if !isCI || err != nil {
		t.Parallel()
	}
}
