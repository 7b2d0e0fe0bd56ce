// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package pointer contains a generic helper for taking the address of a
// value, mostly used to populate optional config fields.
package pointer

// Of returns a pointer to a copy of the given value.
func Of[A any](a A) *A {
	return &a
}
