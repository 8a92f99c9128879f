// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

package procutil

import (
	"os"

	"github.com/rs/zerolog"
)

// ReclaimPriorInstance terminates a previous service instance recorded in
// the PID file at pidFilePath, then sweeps any dangling processes whose
// name matches coreNames (e.g. "mihomo", "clash") left running by a
// service that crashed without stopping its supervised child. Both steps
// are best-effort: a failure to find or kill a stale process is logged,
// never returned, since a missing prior instance is the common case.
func ReclaimPriorInstance(logger zerolog.Logger, pidFilePath string, coreNames []string) {
	if pid, err := ReadPIDFile(pidFilePath); err == nil {
		if err := killProcessByPID(pid); err != nil {
			logger.Debug().Err(err).Int("pid", pid).Msg("no prior service process to reclaim")
		} else {
			logger.Info().Int("pid", pid).Msg("terminated prior service instance")
		}
	} else if !os.IsNotExist(err) {
		logger.Warn().Err(err).Str("path", pidFilePath).Msg("failed to read prior pid file")
	}

	if err := DeletePIDFile(pidFilePath); err != nil {
		logger.Warn().Err(err).Str("path", pidFilePath).Msg("failed to remove stale pid file")
	}

	for _, name := range coreNames {
		if err := sweepProcessesByName(name); err != nil {
			logger.Debug().Err(err).Str("name", name).Msg("no dangling core process swept")
		}
	}
}
