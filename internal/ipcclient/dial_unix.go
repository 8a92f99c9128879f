//go:build !windows

// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

package ipcclient

import (
	"context"
	"fmt"
	"net"
)

// socketPath mirrors ipcserver's own socketPath; kept as a small,
// independent copy rather than an import so the client never depends on
// the server package (and, on Windows, never pulls in go-winio's server
// listener code it doesn't need).
func socketPath(placeholder string) string {
	return fmt.Sprintf("/var/run/%s.sock", placeholder)
}

func dialEndpoint(ctx context.Context, placeholder string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "unix", socketPath(placeholder))
}
