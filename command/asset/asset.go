// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package asset

import _ "embed"

//go:embed example.pinpon.hcl
var ConfigExample []byte

//go:embed example-short.pinpon.hcl
var ConfigExampleShort []byte
