// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

package ipcclient

import "fmt"

// ServerResponseError wraps an envelope carrying envelope.OtherError: the
// request reached the server and was understood, but the server reports
// a domain-level failure (e.g. "core already running").
type ServerResponseError struct {
	Code int
	Msg  string
}

func (e *ServerResponseError) Error() string {
	return fmt.Sprintf("ipcclient: server responded with error (code=%d): %s", e.Code, e.Msg)
}
