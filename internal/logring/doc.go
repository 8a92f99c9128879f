// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

// Package logring implements the in-memory log ring buffer and broadcast
// fan-out described by the core supervisor's log routing: a fixed-capacity
// FIFO ring that every zerolog record is appended to (via Ring.Write, wired
// into zerolog.MultiLevelWriter alongside the normal stderr/file writer),
// plus a single replaceable subscriber hook that forwards each new line to
// the event bus as a Log event.
//
// Grounded on nyanpasu_service/src/logging.rs and
// nyanpasu_ipc/src/api/log.rs from the original Rust implementation: the
// ring there is a fixed-size VecDeque<TraceLog> guarded by a mutex, with a
// single OnceLock-style subscriber slot invoked outside the lock on every
// push so a slow subscriber can never stall the logger itself.
package logring
