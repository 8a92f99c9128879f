// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

package logring

import (
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// DefaultCapacity is the fixed ring size used in production, matching the
// original implementation's 100-entry trace log buffer.
const DefaultCapacity = 100

// Level mirrors zerolog's textual level names as they appear in a log line.
type Level string

// Known levels, in increasing severity.
const (
	LevelTrace Level = "trace"
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Entry is one line retained in the ring.
type Entry struct {
	Time    time.Time `json:"time"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
}

// Subscriber receives every entry as it is appended to the ring. It must
// not block: Ring invokes subscribers synchronously under its own lock's
// release, so a slow subscriber only delays its own delivery, never the
// logger or other callers of Write.
type Subscriber func(Entry)

// Ring is a fixed-capacity FIFO buffer of log entries with a single
// replaceable subscriber. It implements io.Writer so it can be plugged
// directly into zerolog.MultiLevelWriter as an additional sink.
type Ring struct {
	mu         sync.Mutex
	capacity   int
	entries    []Entry
	subscriber Subscriber
}

// New creates a Ring with the given capacity. A capacity <= 0 falls back
// to DefaultCapacity.
func New(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{
		capacity: capacity,
		entries:  make([]Entry, 0, capacity),
	}
}

// Subscribe installs the ring's single subscriber, replacing any previous
// one. Pass nil to detach.
func (r *Ring) Subscribe(sub Subscriber) {
	r.mu.Lock()
	r.subscriber = sub
	r.mu.Unlock()
}

// Push appends an entry, evicting the oldest one if the ring is full, and
// notifies the current subscriber (if any).
func (r *Ring) Push(e Entry) {
	sub := r.appendLocked(e)
	if sub != nil {
		sub(e)
	}
}

// pushSilent appends an entry like Push but never notifies the subscriber,
// for lines that could not be parsed and so carry no event worth pushing.
func (r *Ring) pushSilent(e Entry) {
	r.appendLocked(e)
}

// appendLocked appends e to the ring under the mutex and returns the
// current subscriber, if any, for the caller to invoke outside the lock.
func (r *Ring) appendLocked(e Entry) Subscriber {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) >= r.capacity {
		// Evict oldest. Capacity is small (100) so a slice shift is fine;
		// no need for a circular index scheme.
		copy(r.entries, r.entries[1:])
		r.entries = r.entries[:len(r.entries)-1]
	}
	r.entries = append(r.entries, e)
	return r.subscriber
}

// Retrieve drains every entry currently held, oldest first, and empties
// the ring. The caller owns the returned slice afterwards; a subsequent
// Retrieve or Inspect call sees nothing until new entries are pushed.
func (r *Ring) Retrieve() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.entries
	r.entries = make([]Entry, 0, r.capacity)
	return out
}

// Inspect returns a snapshot copy of every entry currently held, oldest
// first, leaving the ring unchanged.
func (r *Ring) Inspect() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// logLine is the subset of a zerolog JSON record this writer cares about.
type logLine struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Write implements io.Writer, decoding each zerolog JSON record and pushing
// it onto the ring. Lines that fail to parse as JSON (e.g. console-format
// output in development) are still buffered verbatim with LevelInfo so
// nothing is silently dropped, but raise no subscriber event: only
// well-formed log records are worth pushing to a connected client.
func (r *Ring) Write(p []byte) (int, error) {
	var line logLine
	if err := json.Unmarshal(p, &line); err != nil {
		r.pushSilent(Entry{Time: time.Now(), Level: LevelInfo, Message: string(p)})
		return len(p), nil
	}

	ts, err := time.Parse(time.RFC3339, line.Time)
	if err != nil {
		ts = time.Now()
	}

	r.Push(Entry{
		Time:    ts,
		Level:   Level(line.Level),
		Message: line.Message,
	})
	return len(p), nil
}
