// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

package core

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// writeScript creates an executable shell script in a temp dir whose body
// ignores its argv (the real core binaries take -m/-d/-f/-c flags this
// harness never needs to interpret) and returns its path.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fake-core.sh")
	content := "#!/bin/sh\n" + body
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("failed to write fake core script: %v", err)
	}
	return path
}

func writeConfigFile(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("proxies: []\n"), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func testSupervisor(t *testing.T, delayCheckpoint time.Duration, recovery RecoveryConfig) (*Supervisor, context.CancelFunc) {
	t.Helper()
	logger := zerolog.New(io.Discard)
	s := NewSupervisor(logger, delayCheckpoint, recovery)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = s.Serve(ctx) }()

	// Give Serve a moment to capture rootCtx before any Start() runs.
	time.Sleep(10 * time.Millisecond)
	return s, cancel
}

func TestStatusWhenIdle(t *testing.T) {
	s, cancel := testSupervisor(t, 20*time.Millisecond, RecoveryConfig{})
	defer cancel()

	infos := s.Status()
	if infos.State.Running() {
		t.Errorf("expected stopped state, got %+v", infos.State)
	}
	if infos.StateChangedAt <= 0 {
		t.Errorf("expected a positive state_changed_at, got %d", infos.StateChangedAt)
	}
}

func TestStartWithMissingConfig(t *testing.T) {
	s, cancel := testSupervisor(t, 20*time.Millisecond, RecoveryConfig{})
	defer cancel()

	err := s.Start(context.Background(), Instance{
		CoreType:   TypeMihomo,
		ConfigFile: "/nonexistent/path/config.yaml",
		BinaryPath: "/bin/true",
	})
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestStartRejectsUnknownCoreType(t *testing.T) {
	s, cancel := testSupervisor(t, 20*time.Millisecond, RecoveryConfig{})
	defer cancel()

	err := s.Start(context.Background(), Instance{
		CoreType:   "unknown",
		ConfigFile: writeConfigFile(t),
		BinaryPath: "/bin/true",
	})
	if err == nil {
		t.Fatal("expected error for unknown core type")
	}
}

func TestStartStatusStopRoundTrip(t *testing.T) {
	script := writeScript(t, "sleep 5\n")
	configFile := writeConfigFile(t)

	s, cancel := testSupervisor(t, 20*time.Millisecond, RecoveryConfig{})
	defer cancel()

	inst := Instance{CoreType: TypeMihomo, ConfigFile: configFile, BinaryPath: script}

	if err := s.Start(context.Background(), inst); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}

	infos := s.Status()
	if !infos.State.Running() {
		t.Fatalf("expected running state, got %+v", infos.State)
	}
	if infos.Pid == 0 {
		t.Error("expected nonzero pid while running")
	}
	startedAt := infos.StateChangedAt

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("unexpected stop error: %v", err)
	}

	infos = s.Status()
	if infos.State.Running() {
		t.Errorf("expected stopped state after stop, got %+v", infos.State)
	}
	if infos.StateChangedAt <= startedAt {
		t.Errorf("expected state_changed_at to advance on stop: start=%d stop=%d", startedAt, infos.StateChangedAt)
	}
}

func TestStopWithNoRunningInstanceReturnsErrNotRunning(t *testing.T) {
	s, cancel := testSupervisor(t, 20*time.Millisecond, RecoveryConfig{})
	defer cancel()

	if err := s.Stop(context.Background()); err != ErrNotRunning {
		t.Errorf("expected ErrNotRunning, got %v", err)
	}
}

func TestStartWhileRunningReturnsErrAlreadyRunning(t *testing.T) {
	script := writeScript(t, "sleep 5\n")
	configFile := writeConfigFile(t)

	s, cancel := testSupervisor(t, 20*time.Millisecond, RecoveryConfig{})
	defer cancel()

	inst := Instance{CoreType: TypeMihomo, ConfigFile: configFile, BinaryPath: script}
	if err := s.Start(context.Background(), inst); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	defer s.Stop(context.Background())

	if err := s.Start(context.Background(), inst); err != ErrAlreadyRunning {
		t.Errorf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestExitBeforeCheckpointIsReportedWithoutRecovery(t *testing.T) {
	script := writeScript(t, "exit 1\n")
	configFile := writeConfigFile(t)

	s, cancel := testSupervisor(t, 20*time.Millisecond, RecoveryConfig{MaxAttempts: 2, Delay: 30 * time.Millisecond})
	defer cancel()

	inst := Instance{CoreType: TypeMihomo, ConfigFile: configFile, BinaryPath: script}

	err := s.Start(context.Background(), inst)
	if err == nil {
		t.Fatal("expected start to report the unsolicited exit")
	}

	// The exit lands before the 20ms checkpoint, so Start reports it and no
	// recovery runs. Wait well past 2 attempts * 30ms, by which any
	// recovery attempt would have brought the instance back up.
	time.Sleep(300 * time.Millisecond)

	infos := s.Status()
	if infos.State.Running() {
		t.Errorf("expected stopped state after the early exit, got %+v", infos.State)
	}
	if infos.State.Reason() == "" {
		t.Error("expected a failure reason after the early exit")
	}
}

func TestRestartPreservesInstanceSpec(t *testing.T) {
	script := writeScript(t, "sleep 5\n")
	configFile := writeConfigFile(t)

	s, cancel := testSupervisor(t, 20*time.Millisecond, RecoveryConfig{})
	defer cancel()

	inst := Instance{CoreType: TypeMihomoAlpha, ConfigFile: configFile, BinaryPath: script}
	if err := s.Start(context.Background(), inst); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}

	if err := s.Restart(context.Background()); err != nil {
		t.Fatalf("unexpected restart error: %v", err)
	}

	infos := s.Status()
	if !infos.State.Running() {
		t.Fatalf("expected running state after restart, got %+v", infos.State)
	}
	if infos.CoreType != TypeMihomoAlpha {
		t.Errorf("expected core type preserved across restart, got %q", infos.CoreType)
	}

	s.Stop(context.Background())
}

func TestCheckConfigRunsOneShotValidation(t *testing.T) {
	script := writeScript(t, "echo ok\n")
	configFile := writeConfigFile(t)

	s, cancel := testSupervisor(t, 20*time.Millisecond, RecoveryConfig{})
	defer cancel()

	inst := Instance{CoreType: TypeMihomo, ConfigFile: configFile, BinaryPath: script}

	out, err := s.CheckConfig(context.Background(), inst)
	if err != nil {
		t.Fatalf("unexpected check_config error: %v", err)
	}
	if out == "" {
		t.Error("expected non-empty check_config output")
	}
}

func TestStateChangesPublishesTransitionsInOrder(t *testing.T) {
	script := writeScript(t, "sleep 5\n")
	configFile := writeConfigFile(t)

	s, cancel := testSupervisor(t, 20*time.Millisecond, RecoveryConfig{})
	defer cancel()

	inst := Instance{CoreType: TypeMihomo, ConfigFile: configFile, BinaryPath: script}
	if err := s.Start(context.Background(), inst); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("unexpected stop error: %v", err)
	}

	var states []CoreState
	var timestamps []int64
	timeout := time.After(time.Second)
collect:
	for {
		select {
		case infos := <-s.StateChanges():
			states = append(states, infos.State)
			timestamps = append(timestamps, infos.StateChangedAt)
			if !infos.State.Running() && len(states) >= 2 {
				break collect
			}
		case <-timeout:
			break collect
		}
	}

	if len(states) < 2 {
		t.Fatalf("expected at least 2 state transitions, got %+v", states)
	}
	if !states[0].Running() {
		t.Errorf("expected first transition to be running, got %+v", states[0])
	}
	if states[len(states)-1].Running() {
		t.Errorf("expected last transition to be stopped, got %+v", states[len(states)-1])
	}
	if timestamps[len(timestamps)-1] <= timestamps[0] {
		t.Errorf("expected state_changed_at to strictly increase: %v", timestamps)
	}
}
