//go:build windows

// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

package ipcclient

import (
	"context"
	"net"

	"github.com/Microsoft/go-winio"
)

func pipePath(placeholder string) string {
	return `\\.\pipe\` + placeholder
}

func dialEndpoint(ctx context.Context, placeholder string) (net.Conn, error) {
	return winio.DialPipeContext(ctx, pipePath(placeholder))
}
