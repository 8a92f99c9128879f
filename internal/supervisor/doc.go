// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

/*
Package supervisor provides process supervision for nyanpasu-service using suture v4.

This package implements a hierarchical supervisor tree that manages the lifecycle
of all long-running services in the application. It provides Erlang/OTP-style
supervision with automatic restart, failure isolation, and graceful shutdown.

# Overview

The supervisor tree organizes services into three layers for failure isolation:

	RootSupervisor ("nyanpasu-service")
	├── CoreSupervisor ("core-layer")
	│   └── core.Supervisor (owns the mihomo/clash child process)
	├── MessagingSupervisor ("messaging-layer")
	│   └── eventbus.Bus (push-channel fan-out to connected IPC clients)
	└── TransportSupervisor ("transport-layer")
	    └── ipcserver.Server (named pipe / unix socket accept loop + router)

This hierarchy ensures that:
  - A crash in the supervised core child process doesn't take down the IPC
    transport's ability to answer status/log requests
  - Event bus fan-out failures don't prevent the core from being restarted
  - Each layer can restart independently

# Key Features

Automatic Restart:
  - Crashed services are automatically restarted
  - Exponential backoff prevents restart storms
  - Configurable failure thresholds and decay rates

Failure Isolation:
  - Services are organized into logical groups
  - Child supervisor failures don't propagate upward
  - Each layer has independent failure counting

Graceful Shutdown:
  - Context cancellation triggers orderly shutdown
  - Configurable shutdown timeout per service
  - UnstoppedServiceReport for debugging hangs

Structured Logging:
  - Integration with slog for structured events
  - Logs service starts, stops, failures, and restarts
  - Event hooks via sutureslog adapter

# Usage Example

Basic setup in main.go:

	import (
	    "log/slog"
	    "github.com/libnyanpasu/nyanpasu-service/internal/supervisor"
	)

	func main() {
	    logger := slog.Default()
	    config := supervisor.DefaultTreeConfig()

	    tree, err := supervisor.NewSupervisorTree(logger, config)
	    if err != nil {
	        log.Fatal(err)
	    }

	    // Add services to appropriate layers
	    tree.AddCoreService(coreSupervisor)
	    tree.AddMessagingService(eventBus)
	    tree.AddTransportService(ipcServer)

	    // Start the tree (blocks until context canceled)
	    ctx := context.Background()
	    if err := tree.Serve(ctx); err != nil {
	        log.Printf("Supervisor stopped: %v", err)
	    }
	}

Background operation:

	// Start in background
	errChan := tree.ServeBackground(ctx)

	// Do other setup...

	// Wait for shutdown
	if err := <-errChan; err != nil {
	    log.Printf("Supervisor error: %v", err)
	}

# Configuration

The TreeConfig controls restart behavior:

	config := supervisor.TreeConfig{
	    FailureThreshold: 5.0,          // Failures before backoff
	    FailureDecay:     30.0,         // Seconds for failures to decay
	    FailureBackoff:   15 * time.Second, // Backoff duration
	    ShutdownTimeout:  10 * time.Second, // Per-service shutdown timeout
	}

Default values match suture's production-ready defaults:
  - FailureThreshold: 5 failures
  - FailureDecay: 30 seconds
  - FailureBackoff: 15 seconds
  - ShutdownTimeout: 10 seconds

# Failure Handling

The supervisor uses a failure counter with exponential decay:

1. Each service failure increments the counter
2. Counter decays exponentially over time (FailureDecay seconds)
3. When counter exceeds FailureThreshold, supervisor enters backoff
4. During backoff, restarts are delayed by FailureBackoff duration
5. If failures continue, the child supervisor may be restarted by parent

Note this suture-level restart is distinct from the core package's own
bounded recovery loop (5 attempts, 5s delay) for the supervised child
process — that recovery logic runs in goroutines started by
core.Supervisor's per-instance event loop, not in its Serve method, and an
ordinary core crash never makes Serve return an error to suture; suture-level
restart is the last resort for a core.Supervisor that panics or exits
its Serve method entirely.

# Service Interface

All services must implement suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Return behavior:
  - Return nil: Service stopped cleanly, will not be restarted
  - Return error: Service crashed, will be restarted
  - Context canceled: Shutdown requested, return promptly

# Debugging Shutdown Issues

If services don't stop within the timeout:

	// Get report of unstopped services
	report, err := tree.UnstoppedServiceReport()
	for _, svc := range report {
	    log.Printf("Service didn't stop: %v", svc)
	}

Common causes:
  - Goroutines not respecting context cancellation
  - Blocked network I/O without deadlines (accept loop ignoring ctx)
  - Mutex deadlocks during shutdown

# Thread Safety

The SupervisorTree is safe for concurrent use:
  - Services can be added from any goroutine
  - Remove operations are synchronized
  - Multiple services can crash simultaneously

# See Also

  - github.com/thejerf/suture/v4: Underlying library
  - internal/core: the supervised child process state machine
  - internal/eventbus: the messaging-layer push fan-out
  - internal/ipcserver: the transport-layer accept loop and router
*/
package supervisor
