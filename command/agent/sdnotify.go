// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package agent

// State messages for the systemd notify protocol, per sd_notify(3). The
// agent reports READY once its HTTP listener is serving and STOPPING when
// shutdown begins; notifySystemd is a no-op outside Linux.
const (
	sdReady    = "READY=1"
	sdStopping = "STOPPING=1"
)
