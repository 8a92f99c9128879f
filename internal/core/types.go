// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

package core

import (
	"encoding/json"
	"time"
)

// Type identifies which core binary is being supervised, mirroring
// nyanpasu_utils::core::CoreType.
type Type string

const (
	TypeMihomo       Type = "mihomo"
	TypeMihomoAlpha  Type = "mihomo-alpha"
	TypeClashRust    Type = "clash-rs"
	TypeClashPremium Type = "clash-premium"
	TypeSingBox      Type = "sing-box"
)

// Valid reports whether t is one of the known core types.
func (t Type) Valid() bool {
	switch t {
	case TypeMihomo, TypeMihomoAlpha, TypeClashRust, TypeClashPremium, TypeSingBox:
		return true
	default:
		return false
	}
}

// State is the supervisor's internal, coarse-grained lifecycle state,
// mirroring the state enum in nyanpasu_service/src/server/instance.rs.
// It is never exposed directly; CoreState is the two-variant projection
// observable outside the supervisor.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateStopping State = "stopping"
	StateFailed   State = "failed"
)

// CoreState is the external projection of State, mirroring
// nyanpasu_ipc::api::status::CoreState's tagged Running/Stopped(reason)
// enum: CoreInstanceState only ever distinguishes "alive" from "not
// alive" at the handle level, so Idle/Failed collapse to Stopped and
// Running/Stopping (still alive, cancellation merely requested) collapse
// to Running.
type CoreState struct {
	running bool
	reason  string
}

// RunningCoreState reports the core as currently running.
func RunningCoreState() CoreState {
	return CoreState{running: true}
}

// StoppedCoreState reports the core as stopped, optionally carrying a
// failure reason (empty for a clean stop or the idle state).
func StoppedCoreState(reason string) CoreState {
	return CoreState{reason: reason}
}

// Running reports whether c represents the Running variant.
func (c CoreState) Running() bool {
	return c.running
}

// Reason returns the stopped reason, if any.
func (c CoreState) Reason() string {
	return c.reason
}

// MarshalJSON renders the externally tagged {"Running":null} or
// {"Stopped":null|"<reason>"} shape matching CoreState's serde
// representation in the original implementation.
func (c CoreState) MarshalJSON() ([]byte, error) {
	if c.running {
		return []byte(`{"Running":null}`), nil
	}
	if c.reason == "" {
		return []byte(`{"Stopped":null}`), nil
	}
	reason, err := json.Marshal(c.reason)
	if err != nil {
		return nil, err
	}
	return append(append([]byte(`{"Stopped":`), reason...), '}'), nil
}

// projectState maps the supervisor's internal State to its external
// CoreState, using lastError as the Stopped reason when transitioning
// out of a failure.
func projectState(s State, lastError string) CoreState {
	switch s {
	case StateRunning, StateStopping:
		return RunningCoreState()
	case StateFailed:
		return StoppedCoreState(lastError)
	default:
		return StoppedCoreState("")
	}
}

// Instance describes the core process to spawn: which binary and which
// config file to hand it. This is the (core_type, config_path) pair the
// supervisor remembers across restart().
type Instance struct {
	CoreType   Type
	ConfigFile string
	// AppDir is the working directory the core binary logs/state live
	// under (passed as -d to every core type).
	AppDir string
	// BinaryPath is the resolved path to the core executable. Resolution
	// (ResolveBinaryPath looks under the data dir, then the app dir) is the
	// caller's responsibility; the supervisor just execs what it's given.
	BinaryPath string
}

// Infos is the status projection returned by Status() and published to
// the event bus on every state transition, mirroring CoreInfos:
// {core_type?, state, state_changed_at, config_path?}.
type Infos struct {
	State      CoreState `json:"state"`
	CoreType   Type      `json:"core_type,omitempty"`
	ConfigPath string    `json:"config_path,omitempty"`
	Pid        int       `json:"pid,omitempty"`
	// StateChangedAt is monotonic milliseconds since the Unix epoch,
	// stamped on every transition (mirroring the original's
	// state_changed_at: Arc<AtomicI64>, updated on every child event).
	StateChangedAt int64      `json:"state_changed_at"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	// LastError carries the most recent stderr tail + error message when
	// State is Stopped with a failure reason, bounded at maxErrorBufferLines.
	LastError string `json:"last_error,omitempty"`
}
