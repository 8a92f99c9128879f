// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

package core

import "errors"

var (
	// ErrAlreadyRunning is returned by Start when an instance is already
	// running or in the process of stopping.
	ErrAlreadyRunning = errors.New("core: instance already running")

	// ErrNotRunning is returned by Stop/Restart when there is no running
	// instance to act on.
	ErrNotRunning = errors.New("core: no instance running")

	// ErrMissingConfig is returned by Start when no config file path was
	// supplied.
	ErrMissingConfig = errors.New("core: config_file is required")
)
