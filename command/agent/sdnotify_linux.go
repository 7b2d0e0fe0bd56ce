// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

//go:build linux

package agent

import (
	"net"
	"os"
)

// notifySystemd sends a state message on the systemd notify socket when
// one is configured, so Type=notify units can track the agent lifecycle.
// Errors are swallowed; notification is strictly best-effort.
func notifySystemd(message string) {
	socketPath := os.Getenv("NOTIFY_SOCKET")
	if socketPath == "" {
		return
	}

	addr := &net.UnixAddr{Name: socketPath, Net: "unixgram"}
	conn, err := net.DialUnix(addr.Net, nil, addr)
	if err != nil {
		return
	}
	defer conn.Close()

	conn.Write([]byte(message))
}
