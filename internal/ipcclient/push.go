// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

package ipcclient

import (
	"context"
	"net"
	"net/http"

	"github.com/gorilla/websocket"
)

// defaultPushURL mirrors defaultBaseURL but with the ws scheme gorilla's
// dialer expects; the host is never actually resolved since dialing is
// routed through the endpoint's DialContext.
const defaultPushURL = "ws://ipc.local/ws/events"

// Subscribe opens the push channel and returns the live connection. The
// caller owns the returned connection's lifecycle (ReadMessage/Close);
// Subscribe itself does not interpret events, leaving event decoding
// (see internal/eventbus.Event) to the caller, matching the
// fire-and-forget fan-out nature of the server's /ws endpoint.
func (c *Client) Subscribe(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		NetDialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			return dialEndpoint(ctx, c.placeholder)
		},
	}

	conn, _, err := dialer.DialContext(ctx, defaultPushURL, http.Header{})
	if err != nil {
		return nil, err
	}
	return conn, nil
}
