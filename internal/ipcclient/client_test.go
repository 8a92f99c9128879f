// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

package ipcclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/libnyanpasu/nyanpasu-service/internal/core"
	"github.com/libnyanpasu/nyanpasu-service/internal/envelope"
)

func TestStatusDecodesSuccessEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/status" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		env := envelope.Success(StatusResponse{
			Version:      "0.1.0",
			RuntimeInfos: RuntimeInfos{ServiceDataDir: "/var/lib/nyanpasu"},
			CoreInfos:    core.Infos{State: core.RunningCoreState(), Pid: 1234},
		})
		b, _ := envelope.Marshal(env)
		w.Write(b)
	}))
	defer server.Close()

	client := newWithHTTPClient(server.URL, server.Client())
	status, err := client.Status(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !status.CoreInfos.State.Running() || status.CoreInfos.Pid != 1234 {
		t.Errorf("unexpected status: %+v", status)
	}
	if status.Version == "" {
		t.Error("expected non-empty version")
	}
}

func TestStartCoreReturnsServerResponseErrorOnOtherError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req CoreStartRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		env := envelope.OtherErrorf[struct{}]("core already running")
		b, _ := envelope.Marshal(env)
		w.Write(b)
	}))
	defer server.Close()

	client := newWithHTTPClient(server.URL, server.Client())
	err := client.StartCore(context.Background(), CoreStartRequest{
		CoreType:   "mihomo",
		ConfigFile: "/etc/nyanpasu/config.yaml",
	})

	var srvErr *ServerResponseError
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	if !asServerResponseError(err, &srvErr) {
		t.Fatalf("expected *ServerResponseError, got %T: %v", err, err)
	}
	if srvErr.Msg != "core already running" {
		t.Errorf("unexpected message: %q", srvErr.Msg)
	}
}

func TestStopCoreSucceedsOnEmptyEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env := envelope.SuccessEmpty()
		b, _ := envelope.Marshal(env)
		w.Write(b)
	}))
	defer server.Close()

	client := newWithHTTPClient(server.URL, server.Client())
	if err := client.StopCore(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRetrieveLogsDecodesEntries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/logs/retrieve" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		env := envelope.Success(LogsResponse{
			Entries: []LogEntry{{Level: "info", Message: "hello"}},
		})
		b, _ := envelope.Marshal(env)
		w.Write(b)
	}))
	defer server.Close()

	client := newWithHTTPClient(server.URL, server.Client())
	logs, err := client.RetrieveLogs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logs.Entries) != 1 || logs.Entries[0].Message != "hello" {
		t.Errorf("unexpected logs: %+v", logs)
	}
}

func TestInspectLogsDecodesEntries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/logs/inspect" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		env := envelope.Success(LogsResponse{
			Entries: []LogEntry{{Level: "info", Message: "hello"}},
		})
		b, _ := envelope.Marshal(env)
		w.Write(b)
	}))
	defer server.Close()

	client := newWithHTTPClient(server.URL, server.Client())
	logs, err := client.InspectLogs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logs.Entries) != 1 || logs.Entries[0].Message != "hello" {
		t.Errorf("unexpected logs: %+v", logs)
	}
}

// asServerResponseError is a small errors.As wrapper kept local to this
// test file to avoid importing the "errors" package solely for one check.
func asServerResponseError(err error, target **ServerResponseError) bool {
	se, ok := err.(*ServerResponseError)
	if !ok {
		return false
	}
	*target = se
	return true
}
