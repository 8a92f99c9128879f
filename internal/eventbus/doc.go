// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

// Package eventbus implements the push-channel fan-out that feeds every
// connected IPC client (over the gorilla/websocket push handler in
// internal/ipcserver) with Log and CoreStateChanged events.
//
// Grounded on nyanpasu_service/src/server/routing/ws.rs from the original
// Rust implementation, with one deliberate fix: subscriber ids there are
// assigned as `events_subscribers.len() + 1`, which is unsafe under
// concurrent connects (two simultaneous subscribers can observe the same
// length and collide on the same id). This package assigns ids from a
// monotonic atomic.Uint64 counter instead, so ids are never reused and
// never depend on the current subscriber count.
package eventbus
