// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

package ipcserver

import "strings"

// isBenignAcceptError reports whether err represents a peer that
// disconnected before the accept finished (connection refused/aborted/
// reset). These happen routinely under load and carry no actionable
// information, so the accept loop retries immediately without logging.
//
// Matching on the error string rather than a specific errno type keeps
// this classification portable across the unix/windows syscall error
// constants without a build-tag split, at the cost of being a little
// coarser than an errno comparison.
func isBenignAcceptError(err error) bool {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection aborted"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "econnaborted"),
		strings.Contains(msg, "econnreset"),
		strings.Contains(msg, "econnrefused"):
		return true
	default:
		return false
	}
}
