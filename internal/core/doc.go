// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

// Package core implements the supervised lifecycle of the external
// networking core child process (mihomo / mihomo-alpha / clash-rs /
// clash-premium), grounded on nyanpasu_service/src/server/instance.rs and
// nyanpasu_utils/src/core/instance.rs from the original Rust
// implementation.
//
// Supervisor is itself a suture.Service: Serve blocks for the lifetime of
// the process and exposes Start/Stop/Restart/Status/CheckConfig as methods
// called from the IPC router's handlers. Internally it runs a small state
// machine (Idle -> Running -> Stopping -> Failed) protected by a mutex,
// with a dedicated goroutine per running instance that multiplexes stdout,
// stderr, and process exit into a single child-event stream, and a bounded
// recovery loop that only engages for unsolicited exits (the instance
// dying on its own, as opposed to a caller-initiated Stop).
package core
