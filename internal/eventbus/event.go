// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

package eventbus

import (
	"encoding/json"

	"github.com/libnyanpasu/nyanpasu-service/internal/logring"
)

// Kind discriminates the two event variants pushed to subscribers, mirroring
// nyanpasu_ipc::api::ws::events::Event from the original implementation.
type Kind string

const (
	// KindLog carries a single log ring entry as it is appended.
	KindLog Kind = "log"
	// KindCoreStateChanged carries a projection of the core supervisor's
	// state whenever it transitions.
	KindCoreStateChanged Kind = "core_state_changed"
)

// CoreStateChanged is the payload published whenever the core supervisor's
// state machine transitions. It intentionally duplicates a handful of
// fields from internal/core.Infos rather than importing that package,
// to keep the event bus free of a dependency on the core state machine.
type CoreStateChanged struct {
	State      State  `json:"state"`
	CoreType   string `json:"core_type,omitempty"`
	ConfigPath string `json:"config_path,omitempty"`
	Pid        int    `json:"pid,omitempty"`
}

// State is the external two-variant projection of the core supervisor's
// state (Running, or Stopped with an optional failure reason). It
// duplicates internal/core.CoreState's tagged-enum wire shape rather than
// importing it, for the same decoupling reason as CoreStateChanged.
type State struct {
	running bool
	reason  string
}

// RunningState reports the core as currently running.
func RunningState() State {
	return State{running: true}
}

// StoppedState reports the core as stopped, optionally carrying a
// failure reason.
func StoppedState(reason string) State {
	return State{reason: reason}
}

// MarshalJSON renders the externally tagged {"Running":null} or
// {"Stopped":null|"<reason>"} shape, matching CoreState's serde
// representation in the original implementation.
func (s State) MarshalJSON() ([]byte, error) {
	if s.running {
		return []byte(`{"Running":null}`), nil
	}
	if s.reason == "" {
		return []byte(`{"Stopped":null}`), nil
	}
	reason, err := json.Marshal(s.reason)
	if err != nil {
		return nil, err
	}
	return append(append([]byte(`{"Stopped":`), reason...), '}'), nil
}

// Event is the envelope delivered to every subscriber's mailbox.
type Event struct {
	Kind      Kind              `json:"kind"`
	Log       *logring.Entry    `json:"log,omitempty"`
	CoreState *CoreStateChanged `json:"core_state,omitempty"`
}

// NewLogEvent wraps a log ring entry as an Event.
func NewLogEvent(entry logring.Entry) Event {
	return Event{Kind: KindLog, Log: &entry}
}

// NewCoreStateChangedEvent wraps a core state transition as an Event.
func NewCoreStateChangedEvent(state CoreStateChanged) Event {
	return Event{Kind: KindCoreStateChanged, CoreState: &state}
}
