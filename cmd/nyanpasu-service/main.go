// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/libnyanpasu/nyanpasu-service/internal/config"
	"github.com/libnyanpasu/nyanpasu-service/internal/core"
	"github.com/libnyanpasu/nyanpasu-service/internal/eventbus"
	"github.com/libnyanpasu/nyanpasu-service/internal/ipcserver"
	"github.com/libnyanpasu/nyanpasu-service/internal/logging"
	"github.com/libnyanpasu/nyanpasu-service/internal/logring"
	"github.com/libnyanpasu/nyanpasu-service/internal/procutil"
	"github.com/libnyanpasu/nyanpasu-service/internal/supervisor"
)

// danglingCoreProcessNames lists the child process names swept on startup
// if a prior service instance left one running, matching the
// server_inner TODO ("use common name") in the original implementation.
var danglingCoreProcessNames = []string{"mihomo", "mihomo-alpha", "clash-rs", "clash-premium"}

const pidFileName = "service.pid"

//nolint:gocyclo // sequential startup wiring, same shape as the teacher's main
func main() {
	configPath := flag.String("config", "", "path to an optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	ring := logring.New(cfg.LogRingCapacity)
	logging.Init(logging.Config{
		Level:        cfg.LogLevel,
		Format:       cfg.LogFormat,
		ExtraWriters: []io.Writer{ring},
	})

	logging.Info().Msg("starting nyanpasu-service")

	pidFilePath := filepath.Join(cfg.ServiceDataDir, pidFileName)
	procutil.ReclaimPriorInstance(logging.Logger(), pidFilePath, danglingCoreProcessNames)

	if err := os.MkdirAll(cfg.ServiceDataDir, 0o755); err != nil {
		logging.Fatal().Err(err).Str("dir", cfg.ServiceDataDir).Msg("failed to create service data dir")
	}
	if err := os.MkdirAll(cfg.ServiceConfigDir, 0o755); err != nil {
		logging.Fatal().Err(err).Str("dir", cfg.ServiceConfigDir).Msg("failed to create service config dir")
	}

	if err := procutil.WritePIDFile(pidFilePath); err != nil {
		logging.Error().Err(err).Str("path", pidFilePath).Msg("failed to write pid file")
	}
	defer func() {
		if err := procutil.DeletePIDFile(pidFilePath); err != nil {
			logging.Error().Err(err).Msg("failed to remove pid file")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := eventbus.New()

	recovery := core.RecoveryConfig{
		MaxAttempts: cfg.RecoveryMaxAttempts,
		Delay:       cfg.RecoveryDelay,
	}
	coreSupervisor := core.NewSupervisor(logging.Logger(), cfg.DelayCheckpoint, recovery)

	runtimeInfos := ipcserver.RuntimeInfos{
		ServiceDataDir:    cfg.ServiceDataDir,
		ServiceConfigDir:  cfg.ServiceConfigDir,
		ExternalConfigDir: cfg.ExternalConfigDir,
		ExternalDataDir:   cfg.ExternalDataDir,
		ExternalAppDir:    cfg.ExternalAppDir,
	}

	handlers := &ipcserver.Handlers{
		Supervisor: coreSupervisor,
		Ring:       ring,
		Bus:        bus,
		Infos:      runtimeInfos,
		Logger:     logging.Logger(),
	}

	endpointCfg := ipcserver.EndpointConfig{
		Placeholder:      cfg.Placeholder,
		ACLAllowlistPath: filepath.Join(cfg.ServiceConfigDir, "acl.list"),
		SocketGroup:      "nyanpasu",
	}
	transport := ipcserver.NewServer(endpointCfg, handlers)

	// Pump core state transitions into the event bus as CoreStateChanged
	// events, and every ring write into the bus as Log events, per the
	// server lifecycle's event wiring step.
	go pumpCoreStateChanges(ctx, coreSupervisor, bus)
	ring.Subscribe(func(entry logring.Entry) {
		bus.Broadcast(eventbus.NewLogEvent(entry))
	})

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create supervisor tree")
	}

	tree.AddCoreService(coreSupervisor)
	tree.AddMessagingService(bus)
	tree.AddTransportService(transport)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	logging.Info().Str("placeholder", cfg.Placeholder).Msg("starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("context canceled, waiting for supervisor tree to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor shutdown error")
		}
	}

	if unstopped, err := tree.UnstoppedServiceReport(); err == nil && len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("services failed to stop within timeout")
	}

	logging.Info().Msg("nyanpasu-service stopped")
}

// pumpCoreStateChanges forwards every Infos projection published by the
// core supervisor onto the event bus as a CoreStateChanged event, until
// either the channel closes or ctx is canceled.
func pumpCoreStateChanges(ctx context.Context, sup *core.Supervisor, bus *eventbus.Bus) {
	for {
		select {
		case infos, ok := <-sup.StateChanges():
			if !ok {
				return
			}
			state := eventbus.StoppedState(infos.State.Reason())
			if infos.State.Running() {
				state = eventbus.RunningState()
			}
			bus.Broadcast(eventbus.NewCoreStateChangedEvent(eventbus.CoreStateChanged{
				State:      state,
				CoreType:   string(infos.CoreType),
				ConfigPath: infos.ConfigPath,
				Pid:        infos.Pid,
			}))
		case <-ctx.Done():
			return
		}
	}
}
