// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package ci

import (
	"fmt"

	"github.com/shoenig/test/portal"
)

// panicTester reports port acquisition failures as panics; the allocator
// is package state with no *testing.T in scope.
type panicTester struct{}

func (t *panicTester) Fatalf(msg string, args ...any) {
	panic(fmt.Sprintf(msg, args...))
}

// PortAllocator hands out free localhost ports so tests can bind real
// HTTP listeners without colliding with one another.
var PortAllocator = portal.New(
	new(panicTester),
	portal.WithAddress("127.0.0.1"),
)
