// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

package supervisor

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockService is a minimal suture.Service implementation used by the
// supervisor tree's own tests. It is not part of the production binary.
type MockService struct {
	name string

	mu         sync.Mutex
	startCount int
	failCount  int
}

// NewMockService creates a mock service with the given name.
func NewMockService(name string) *MockService {
	return &MockService{name: name}
}

// SetFailCount configures the service to return an error from Serve the
// first n times it is started, then succeed (block until ctx is done, or
// return nil after 5 seconds).
func (m *MockService) SetFailCount(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failCount = n
}

// StartCount returns how many times Serve has been invoked.
func (m *MockService) StartCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startCount
}

// Serve implements suture.Service.
func (m *MockService) Serve(ctx context.Context) error {
	m.mu.Lock()
	m.startCount++
	shouldFail := m.failCount > 0
	if shouldFail {
		m.failCount--
	}
	m.mu.Unlock()

	if shouldFail {
		return fmt.Errorf("mock service %s: injected failure", m.name)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Second):
		return nil
	}
}

// String implements fmt.Stringer for suture's logging.
func (m *MockService) String() string {
	return m.name
}
