// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

package ipcserver

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const (
	pushWriteTimeout = 10 * time.Second
	pushPingPeriod   = 30 * time.Second
	pushPongWait     = 60 * time.Second
)

// upgrader is a single shared websocket.Upgrader; the IPC endpoint is
// local-only (no cross-origin browser clients), so origin checking is a
// no-op rather than the header-inspection dance a public-facing server
// would need.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handlePush upgrades the connection and streams eventbus events to the
// client until either side closes the connection. Each connection gets
// its own subscriber id from the bus's atomic counter (see
// internal/eventbus), never derived from the current subscriber count.
func (h *Handlers) handlePush(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Warn().Err(err).Msg("push channel upgrade failed")
		return
	}
	defer conn.Close()

	id, mailbox := h.Bus.Subscribe()
	defer h.Bus.Unsubscribe(id)

	closed := make(chan struct{})
	go pumpReadsForClose(conn, closed)

	ticker := time.NewTicker(pushPingPeriod)
	defer ticker.Stop()

	conn.SetReadDeadline(time.Now().Add(pushPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pushPongWait))
		return nil
	})

	for {
		select {
		case ev, ok := <-mailbox:
			if !ok {
				return
			}
			b, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(pushWriteTimeout))
			if err := conn.WriteMessage(websocket.BinaryMessage, b); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(pushWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-closed:
			return
		}
	}
}

// pumpReadsForClose drains and discards any client-sent frames, which
// this push-only channel doesn't otherwise expect, so gorilla's read loop
// keeps processing control frames (pong, close) and the connection's read
// deadline keeps getting reset by the pong handler. It closes closed once
// reading fails (client close, expired read deadline, broken connection).
func pumpReadsForClose(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
