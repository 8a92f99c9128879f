// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

package procutil

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadPIDFile reads the integer PID stored at path. It returns an error
// wrapping os.IsNotExist when the file is absent, so callers can treat
// "no prior instance" as a non-fatal case.
func ReadPIDFile(path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, fmt.Errorf("procutil: malformed pid file %q: %w", path, err)
	}
	return pid, nil
}

// WritePIDFile writes the current process's PID to path, overwriting any
// existing content.
func WritePIDFile(path string) error {
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

// DeletePIDFile removes path, ignoring a not-exist error so a repeated or
// partial shutdown never fails on this step.
func DeletePIDFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
