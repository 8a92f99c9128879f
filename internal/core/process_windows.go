//go:build windows

// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

package core

import (
	"os"
	"os/exec"
)

// terminateGracefully on Windows has no SIGTERM equivalent reachable from
// another process without a console control handler, so it goes straight
// to Kill, matching the original implementation's Windows code path.
func terminateGracefully(cmd *exec.Cmd) error {
	return killImmediately(cmd)
}

func killImmediately(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}

// isCleanExitSignal: Windows process exits don't carry a Unix signal, so
// cleanliness is judged purely by exit code (handled by the caller).
func isCleanExitSignal(state *os.ProcessState) bool {
	return false
}
