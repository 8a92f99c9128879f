// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

package envelope

import "fmt"

// ServerResponseError is returned when the server decoded and responded
// with a well-formed envelope whose Code is not Ok. It preserves the
// server's message verbatim so callers can surface it without guessing
// at a transport-level failure.
type ServerResponseError struct {
	Code Code
	Msg  string
}

func (e *ServerResponseError) Error() string {
	return fmt.Sprintf("server responded with error (code=%d): %s", e.Code, e.Msg)
}

// Ok returns the envelope's data when Code == Ok, or a *ServerResponseError
// otherwise. This is the client-side counterpart to the server's
// Success/OtherErrorf constructors: every convenience method in
// internal/ipcclient funnels its decoded envelope through Ok before
// returning to the caller.
func (e Envelope[T]) Ok() (T, error) {
	var zero T
	if e.Code != Ok {
		return zero, &ServerResponseError{Code: e.Code, Msg: e.Msg}
	}
	if e.Data == nil {
		return zero, nil
	}
	return *e.Data, nil
}
