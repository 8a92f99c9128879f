//go:build windows

// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

package ipcserver

import (
	"fmt"
	"net"
	"strings"

	"github.com/Microsoft/go-winio"
	"golang.org/x/sys/windows"

	"github.com/libnyanpasu/nyanpasu-service/internal/ipcserver/acl"
)

// everyoneSDDL is the bare-minimum descriptor (Everyone: generic all),
// kept only as a documented reference for what "no access control at
// all" looks like. It must never be used as the actual production
// default; see buildSecurityDescriptor.
const everyoneSDDL = "D:(A;;GA;;;WD)"

// pipePath returns the fixed named pipe path for the endpoint.
func pipePath(placeholder string) string {
	return `\\.\pipe\` + placeholder
}

// Listen creates the named pipe listener, restricting access to the SID
// allowlist if one is configured, or to the current user's SID alone
// otherwise. It never binds with the unrestricted Everyone descriptor in
// production.
func Listen(cfg EndpointConfig) (net.Listener, error) {
	sddl, err := buildSecurityDescriptor(cfg.ACLAllowlistPath)
	if err != nil {
		return nil, err
	}

	ln, err := winio.ListenPipe(pipePath(cfg.Placeholder), &winio.PipeConfig{
		SecurityDescriptor: sddl,
		MessageMode:        false,
	})
	if err != nil {
		return nil, fmt.Errorf("ipcserver: listen on named pipe: %w", err)
	}
	return ln, nil
}

// buildSecurityDescriptor constructs an SDDL string granting generic-all
// pipe access to every SID in the allowlist file at path. An empty or
// missing allowlist falls back to the current user's SID alone, which is
// always safer than the unrestricted Everyone descriptor.
func buildSecurityDescriptor(allowlistPath string) (string, error) {
	var sids []string
	if allowlistPath != "" {
		loaded, err := acl.Load(allowlistPath)
		if err != nil {
			return "", fmt.Errorf("ipcserver: load acl allowlist: %w", err)
		}
		sids = loaded
	}

	if len(sids) == 0 {
		currentSID, err := currentUserSID()
		if err != nil {
			return "", fmt.Errorf("ipcserver: resolve current user sid: %w", err)
		}
		sids = []string{currentSID}
	}

	var b strings.Builder
	b.WriteString("D:")
	for _, sid := range sids {
		fmt.Fprintf(&b, "(A;;GA;;;%s)", sid)
	}
	return b.String(), nil
}

func currentUserSID() (string, error) {
	token := windows.GetCurrentProcessToken()
	tokenUser, err := token.GetTokenUser()
	if err != nil {
		return "", err
	}
	return tokenUser.User.Sid.String(), nil
}
