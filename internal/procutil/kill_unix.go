// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

//go:build !windows

package procutil

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// killProcessByPID sends SIGTERM to pid. It first probes pid with signal 0
// and returns an error if the process does not exist, which
// ReclaimPriorInstance logs as the common case of a clean prior exit.
func killProcessByPID(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	if err := proc.Signal(syscall.Signal(0)); err != nil {
		return fmt.Errorf("procutil: pid %d not running: %w", pid, err)
	}
	return proc.Signal(syscall.SIGTERM)
}

// sweepProcessesByName kills every running process whose command name
// matches name exactly, using pkill the way the Rust implementation
// shells out to system process utilities rather than walking /proc by
// hand.
func sweepProcessesByName(name string) error {
	cmd := exec.Command("pkill", "-TERM", "-x", name)
	return cmd.Run()
}
