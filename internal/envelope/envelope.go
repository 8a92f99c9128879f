// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

// Package envelope implements the wire-level response envelope shared by
// every IPC endpoint, mirroring nyanpasu_ipc::api::Response from the
// original Rust implementation: a fixed {code, msg, data, ts} shape that
// lets the client distinguish transport success from application-level
// failure without inspecting the HTTP status line.
package envelope

import (
	"time"

	"github.com/goccy/go-json"
)

// Code is the application-level response code carried inside the envelope.
// It is orthogonal to the HTTP status code: a 200 response can still carry
// Code == OtherError when the server chose to report a domain failure
// without tearing down the connection.
type Code int

const (
	// Ok indicates the request was processed successfully.
	Ok Code = 0
	// OtherError indicates an application-level failure; Msg carries detail.
	OtherError Code = -1
)

// Envelope is the generic response wrapper returned by every endpoint.
// Data is a pointer so a nil payload serializes as JSON null rather than
// a zero value, matching the original Rust Option<T> semantics.
type Envelope[T any] struct {
	Code Code   `json:"code"`
	Msg  string `json:"msg,omitempty"`
	Data *T     `json:"data"`
	TS   int64  `json:"ts"`
}

// Success builds an Ok envelope carrying data.
func Success[T any](data T) Envelope[T] {
	return Envelope[T]{
		Code: Ok,
		Msg:  "ok",
		Data: &data,
		TS:   nowMillis(),
	}
}

// SuccessEmpty builds an Ok envelope with no payload, used by endpoints
// that only acknowledge a command (e.g. core/stop).
func SuccessEmpty() Envelope[struct{}] {
	return Envelope[struct{}]{
		Code: Ok,
		Msg:  "ok",
		TS:   nowMillis(),
	}
}

// OtherErrorf builds an OtherError envelope carrying a human-readable message.
func OtherErrorf[T any](msg string) Envelope[T] {
	return Envelope[T]{
		Code: OtherError,
		Msg:  msg,
		TS:   nowMillis(),
	}
}

// Marshal serializes the envelope using goccy/go-json, matching the rest
// of the IPC transport's JSON encoding.
func Marshal[T any](e Envelope[T]) ([]byte, error) {
	return json.Marshal(e)
}

// Unmarshal decodes an envelope from raw JSON bytes.
func Unmarshal[T any](b []byte) (Envelope[T], error) {
	var e Envelope[T]
	err := json.Unmarshal(b, &e)
	return e, err
}

// nowMillis is overridden in tests to produce deterministic timestamps.
var nowMillis = func() int64 {
	return time.Now().UnixMilli()
}
