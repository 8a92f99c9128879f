// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

package eventbus

import (
	"context"
	"sync"
	"sync/atomic"
)

// MailboxCapacity is the bounded channel size for each subscriber. A
// subscriber that cannot keep up has events silently dropped rather than
// blocking the publisher, matching the original implementation's
// best-effort broadcast semantics over its websocket connections.
const MailboxCapacity = 100

// ID identifies a single subscriber's mailbox.
type ID uint64

// Bus is a concurrency-safe publish/subscribe fan-out. It implements
// suture.Service so it can be supervised directly as the tree's
// messaging-layer service: Serve simply blocks until the context is
// canceled, then closes every outstanding mailbox.
type Bus struct {
	nextID atomic.Uint64

	mu        sync.RWMutex
	mailboxes map[ID]chan Event
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{
		mailboxes: make(map[ID]chan Event),
	}
}

// Subscribe registers a new mailbox and returns its id and receive channel.
// Callers must eventually call Unsubscribe with the returned id.
func (b *Bus) Subscribe() (ID, <-chan Event) {
	id := ID(b.nextID.Add(1))
	ch := make(chan Event, MailboxCapacity)

	b.mu.Lock()
	b.mailboxes[id] = ch
	b.mu.Unlock()

	return id, ch
}

// Unsubscribe removes and closes the mailbox for id. Safe to call more than
// once; subsequent calls are no-ops.
func (b *Bus) Unsubscribe(id ID) {
	b.mu.Lock()
	ch, ok := b.mailboxes[id]
	if ok {
		delete(b.mailboxes, id)
	}
	b.mu.Unlock()

	if ok {
		close(ch)
	}
}

// Broadcast delivers ev to every current subscriber. A subscriber whose
// mailbox is full has the event dropped for it rather than stalling the
// other subscribers or the publisher.
func (b *Bus) Broadcast(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.mailboxes {
		select {
		case ch <- ev:
		default:
		}
	}
}

// SubscriberCount returns the current number of active mailboxes. Useful
// for tests and diagnostics.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.mailboxes)
}

// Serve implements suture.Service. It blocks until ctx is canceled, then
// closes every remaining subscriber mailbox so connection handlers observe
// channel closure and can terminate their push loops.
func (b *Bus) Serve(ctx context.Context) error {
	<-ctx.Done()

	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.mailboxes {
		close(ch)
		delete(b.mailboxes, id)
	}
	return ctx.Err()
}

// String implements fmt.Stringer for suture's logging.
func (b *Bus) String() string {
	return "eventbus"
}
