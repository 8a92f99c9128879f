// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

//go:build windows

package procutil

import (
	"os/exec"
	"strconv"
)

// killProcessByPID terminates pid via taskkill, matching the way the
// Windows side of the original implementation shells out rather than
// opening a process handle by hand for a one-shot termination.
func killProcessByPID(pid int) error {
	cmd := exec.Command("taskkill", "/PID", strconv.Itoa(pid), "/F")
	return cmd.Run()
}

// sweepProcessesByName kills every running process whose image name is
// name+".exe".
func sweepProcessesByName(name string) error {
	cmd := exec.Command("taskkill", "/IM", name+".exe", "/F")
	return cmd.Run()
}
