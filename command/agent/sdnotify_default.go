// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

//go:build !linux

package agent

// notifySystemd is a no-op on platforms without systemd.
func notifySystemd(string) {}
