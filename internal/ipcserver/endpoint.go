// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

package ipcserver

// EndpointConfig configures the platform-specific local IPC listener.
type EndpointConfig struct {
	// Placeholder names the endpoint: \\.\pipe\<Placeholder> on Windows,
	// /var/run/<Placeholder>.sock elsewhere.
	Placeholder string

	// ACLAllowlistPath points at the SID allowlist file (Windows only).
	// An empty allowlist falls back to the current user's SID alone,
	// never an "Everyone" descriptor.
	ACLAllowlistPath string

	// SocketGroup is the Unix group that should own the socket file
	// (e.g. "nyanpasu"). Ignored on Windows.
	SocketGroup string
}
