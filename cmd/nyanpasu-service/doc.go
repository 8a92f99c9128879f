// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

/*
Package main is the entry point for nyanpasu-service, the privileged
background service that supervises the nyanpasu client's networking core
(mihomo/clash) and exposes it to the unprivileged desktop client over a
local-only IPC channel.

# Application Architecture

The process wires three services into a Suture v4 supervisor tree:

	RootSupervisor ("nyanpasu-service")
	├── CoreSupervisor ("core-layer")
	│   └── core.Supervisor (owns the mihomo/clash child process)
	├── MessagingSupervisor ("messaging-layer")
	│   └── eventbus.Bus (push-channel fan-out to connected IPC clients)
	└── TransportSupervisor ("transport-layer")
	    └── ipcserver.Server (named pipe / unix socket accept loop + router)

Component initialization order:

 1. Configuration: Koanf v2, layered defaults + optional YAML file + environment
 2. Logging: zerolog, fanned out to stderr and the in-memory log ring
 3. Prior-instance reclamation: terminate a leftover service process (PID
    file) and any dangling core processes it left running
 4. Core Supervisor, Event Bus, IPC Transport: constructed and wired so
    supervisor state transitions and log lines both reach connected
    clients as push-channel events
 5. Supervisor tree: runs every service until a shutdown signal arrives

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest
priority wins): environment variables prefixed NYANPASU_SERVICE_, an
optional YAML file passed via -config, then built-in defaults. See
internal/config for the full field list.

# Signal Handling

The service handles graceful shutdown on SIGINT and SIGTERM:

 1. Cancels the supervisor tree's context
 2. The core supervisor stops the supervised child and suppresses recovery
 3. The transport layer stops accepting new IPC connections
 4. Waits for every service to report stopped
 5. Deletes its PID file

# See Also

  - internal/config: runtime configuration
  - internal/core: the core supervisor state machine
  - internal/eventbus: push-channel fan-out
  - internal/ipcserver: the local IPC transport and HTTP router
  - internal/supervisor: the Suture v4 tree wiring the three together
*/
package main
