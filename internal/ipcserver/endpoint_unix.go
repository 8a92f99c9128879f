//go:build !windows

// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

package ipcserver

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/user"
	"strconv"
)

// socketPath returns the fixed Unix domain socket path for the endpoint,
// mirroring nyanpasu_ipc::utils::os's "/var/run/<placeholder>.sock"
// convention.
func socketPath(placeholder string) string {
	return fmt.Sprintf("/var/run/%s.sock", placeholder)
}

// Listen binds the Unix domain socket, removing any stale socket file
// left behind by a previous (crashed) instance, then restricts ownership
// to root:<SocketGroup> with mode 0664 so only members of that group can
// connect.
func Listen(cfg EndpointConfig) (net.Listener, error) {
	path := socketPath(cfg.Placeholder)

	if err := removeStaleSocket(path); err != nil {
		return nil, err
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("ipcserver: listen on %q: %w", path, err)
	}

	if err := restrictSocketOwnership(path, cfg.SocketGroup); err != nil {
		ln.Close()
		return nil, err
	}

	return ln, nil
}

// removeStaleSocket removes path if it exists. A prior unclean shutdown
// leaves the socket file behind; net.Listen would otherwise fail with
// "address already in use".
func removeStaleSocket(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("ipcserver: remove stale socket %q: %w", path, err)
	}
	return nil
}

func restrictSocketOwnership(path, group string) error {
	if err := os.Chmod(path, 0o664); err != nil {
		return fmt.Errorf("ipcserver: chmod %q: %w", path, err)
	}

	if group == "" {
		return nil
	}

	grp, err := user.LookupGroup(group)
	if err != nil {
		// A missing group (e.g. not provisioned by the installer yet) is
		// not fatal: the socket still exists with root-only group access.
		return nil
	}
	gid, err := strconv.Atoi(grp.Gid)
	if err != nil {
		return fmt.Errorf("ipcserver: parse gid for group %q: %w", group, err)
	}

	if err := os.Chown(path, 0, gid); err != nil {
		return fmt.Errorf("ipcserver: chown %q: %w", path, err)
	}
	return nil
}
