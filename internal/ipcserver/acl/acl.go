// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

// Package acl implements the ACL allowlist file used to restrict which
// Windows security principals (by SID string) may connect to the named
// pipe endpoint, grounded on nyanpasu_ipc/src/utils/acl.rs and
// nyanpasu_service/src/utils/acl.rs from the original Rust implementation.
//
// The file format is deliberately trivial: one SID string per line,
// filtered to lines beginning with "S-" on read so stray blank lines or
// comments never end up treated as principals. On Unix the file still
// exists (for parity and tooling) but has no security effect: access
// control there is enforced by filesystem permissions on the socket
// itself (see internal/ipcserver's unix endpoint).
package acl

import (
	"fmt"
	"os"
	"strings"
)

// FileName is the allowlist's fixed name inside the service config dir.
const FileName = "acl.list"

// Load reads the allowlist at path, filtering out anything that isn't a
// well-formed SID-looking line. A missing file is not an error: it is
// treated as an empty allowlist.
func Load(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("acl: read %q: %w", path, err)
	}

	var sids []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "S-") {
			sids = append(sids, line)
		}
	}
	return sids, nil
}

// Save writes sids to path, one per line, truncating any existing
// content. It does not filter its input: callers are expected to pass
// already-validated SID strings.
func Save(path string, sids []string) error {
	content := strings.Join(sids, "\n")
	if len(sids) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("acl: write %q: %w", path, err)
	}
	return restrictFilePermissions(path)
}

// EnsureExists creates an empty allowlist file at path if one doesn't
// already exist. Idempotent.
func EnsureExists(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("acl: stat %q: %w", path, err)
	}
	return Save(path, nil)
}
