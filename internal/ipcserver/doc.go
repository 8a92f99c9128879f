// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

// Package ipcserver implements the local-only IPC transport: a platform
// endpoint (Windows named pipe via go-winio, Unix domain socket
// elsewhere), an HTTP/1.1 router built on chi/v5 exposing the seven fixed
// core/status/log/network endpoints, and a gorilla/websocket push channel
// that streams internal/eventbus events to connected clients.
//
// Grounded on nyanpasu_ipc/src/server/mod.rs, nyanpasu_ipc/src/utils/os.rs,
// and nyanpasu_service/src/server/routing/* from the original Rust
// implementation.
package ipcserver
