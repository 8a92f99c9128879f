// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

package envelope

import (
	"testing"
)

type statusPayload struct {
	Running bool   `json:"running"`
	Version string `json:"version"`
}

func TestSuccessRoundTrip(t *testing.T) {
	original := nowMillis
	nowMillis = func() int64 { return 1700000000000 }
	defer func() { nowMillis = original }()

	env := Success(statusPayload{Running: true, Version: "1.2.3"})

	b, err := Marshal(env)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	decoded, err := Unmarshal[statusPayload](b)
	if err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if decoded.Code != Ok {
		t.Errorf("expected Ok code, got %d", decoded.Code)
	}
	if decoded.TS != 1700000000000 {
		t.Errorf("expected fixed timestamp, got %d", decoded.TS)
	}
	if decoded.Data == nil || !decoded.Data.Running || decoded.Data.Version != "1.2.3" {
		t.Errorf("unexpected data: %+v", decoded.Data)
	}
}

func TestOtherErrorfRoundTrip(t *testing.T) {
	env := OtherErrorf[statusPayload]("core binary not found")

	b, err := Marshal(env)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	decoded, err := Unmarshal[statusPayload](b)
	if err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if decoded.Code != OtherError {
		t.Errorf("expected OtherError code, got %d", decoded.Code)
	}
	if decoded.Msg != "core binary not found" {
		t.Errorf("unexpected msg: %q", decoded.Msg)
	}
	if decoded.Data != nil {
		t.Errorf("expected nil data, got %+v", decoded.Data)
	}
}

func TestEnvelopeOk(t *testing.T) {
	t.Run("Ok code returns data", func(t *testing.T) {
		env := Success(statusPayload{Running: true})

		data, err := env.Ok()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !data.Running {
			t.Error("expected Running true")
		}
	})

	t.Run("OtherError code returns typed error", func(t *testing.T) {
		env := OtherErrorf[statusPayload]("core process not running")

		_, err := env.Ok()
		if err == nil {
			t.Fatal("expected error, got nil")
		}

		var respErr *ServerResponseError
		if !asServerResponseError(err, &respErr) {
			t.Fatalf("expected *ServerResponseError, got %T", err)
		}
		if respErr.Msg != "core process not running" {
			t.Errorf("unexpected message: %q", respErr.Msg)
		}
	})

	t.Run("Ok code with nil data returns zero value", func(t *testing.T) {
		env := SuccessEmpty()

		_, err := env.Ok()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func asServerResponseError(err error, target **ServerResponseError) bool {
	e, ok := err.(*ServerResponseError)
	if !ok {
		return false
	}
	*target = e
	return true
}
