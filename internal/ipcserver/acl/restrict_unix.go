//go:build !windows

// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

package acl

import "os"

// restrictFilePermissions on Unix relies on a plain file mode: the
// allowlist has no security effect there (see package doc), so 0600 is
// enough to keep other local users from reading it.
func restrictFilePermissions(path string) error {
	return os.Chmod(path, 0o600)
}
