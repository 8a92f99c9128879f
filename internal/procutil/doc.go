// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

// Package procutil provides the small set of OS-process helpers the
// service needs at startup: reading/writing its own PID file, and
// reclaiming a prior service instance (and any dangling supervised core
// processes it left behind) before binding the IPC endpoint, mirroring
// nyanpasu_utils::os::kill_by_pid_file and create_pid_file as called from
// server_inner in the original implementation.
package procutil
