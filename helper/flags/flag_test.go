// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package flags

import (
	"flag"
	"reflect"
	"testing"

	"github.com/loan-mgt/fast-pin-pon-sub002/ci"
	"github.com/stretchr/testify/require"
)

func TestStringFlag_implements(t *testing.T) {
	ci.Parallel(t)

	var raw any = new(StringFlag)
	if _, ok := raw.(flag.Value); !ok {
		t.Fatalf("StringFlag should be a flag.Value")
	}
}

func TestStringFlagSet(t *testing.T) {
	ci.Parallel(t)

	sv := new(StringFlag)
	err := sv.Set("engine.hcl")
	if err != nil {
		t.Fatalf("err: %s", err)
	}

	err = sv.Set("extra.json")
	if err != nil {
		t.Fatalf("err: %s", err)
	}

	expected := []string{"engine.hcl", "extra.json"}
	if !reflect.DeepEqual([]string(*sv), expected) {
		t.Fatalf("Bad: %#v", sv)
	}
}

func TestStringFlagSet_Append(t *testing.T) {
	ci.Parallel(t)

	// Repeatable flags like -config accumulate in order.
	var paths StringFlag

	flagSet := flag.NewFlagSet("test", flag.PanicOnError)
	flagSet.Var(&paths, "config", "config, specify more than once")

	args := []string{"-config", "base.hcl", "-config", "override.json", "-config", "extra.hcl"}
	err := flagSet.Parse(args)
	require.NoError(t, err)

	result := paths.String()
	require.Equal(t, "base.hcl,override.json,extra.hcl", result)
}
