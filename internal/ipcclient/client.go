// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

package ipcclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/libnyanpasu/nyanpasu-service/internal/envelope"
)

// defaultBaseURL is a placeholder host: the actual connection is routed
// through Transport.DialContext to the local named pipe or Unix socket,
// so the host/port in the URL is never resolved or dialed literally.
const defaultBaseURL = "http://ipc.local"

// Client talks to a single nyanpasu-service instance's IPC endpoint.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	placeholder string
}

// New creates a Client that dials the endpoint named by placeholder
// (matching the EndpointConfig.Placeholder the service was started with).
func New(placeholder string) *Client {
	c := &Client{baseURL: defaultBaseURL, placeholder: placeholder}
	c.httpClient = &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				return dialEndpoint(ctx, placeholder)
			},
		},
	}
	return c
}

// newWithHTTPClient builds a Client against an arbitrary base URL and
// transport, bypassing the platform endpoint dialer. Used by tests to
// exercise request building/envelope decoding against httptest.Server
// without needing a real named pipe or Unix socket.
func newWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: baseURL, httpClient: hc}
}

// do performs an HTTP request against the endpoint and decodes the
// response as an Envelope[T], translating an OtherError code into a
// *ServerResponseError.
func do[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var zero T

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return zero, fmt.Errorf("ipcclient: encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return zero, fmt.Errorf("ipcclient: build request: %w", err)
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return zero, fmt.Errorf("ipcclient: request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, fmt.Errorf("ipcclient: read response body: %w", err)
	}

	env, err := envelope.Unmarshal[T](raw)
	if err != nil {
		return zero, fmt.Errorf("ipcclient: decode envelope from %s: %w", path, err)
	}

	if env.Code != envelope.Ok {
		return zero, &ServerResponseError{Code: int(env.Code), Msg: env.Msg}
	}
	if env.Data == nil {
		return zero, nil
	}
	return *env.Data, nil
}
