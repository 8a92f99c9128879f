// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

// Package ipcclient is the companion to internal/ipcserver: a thin HTTP/1.1
// client that dials the same local-only endpoint (named pipe on Windows,
// Unix domain socket elsewhere) and speaks the same envelope format,
// mirroring nyanpasu_ipc::client::Client from the original Rust
// implementation.
//
// Every call returns a typed payload on success, a *ServerResponseError
// when the server answered with an OtherError envelope, or a plain
// transport error (dial failure, malformed response, context
// cancellation) for everything else.
package ipcclient
