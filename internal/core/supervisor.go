// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

package core

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// maxErrorBufferLines bounds the stderr tail carried alongside a failure,
// matching the original implementation's 6-line error buffer.
const maxErrorBufferLines = 6

// gracefulStopTimeout is how long Stop waits after sending a graceful
// termination signal before escalating to an immediate kill.
const gracefulStopTimeout = 8 * time.Second

// lastStateChangeMillis backs nowMillis' monotonic guarantee.
var lastStateChangeMillis int64

// nowMillis returns milliseconds since the Unix epoch, strictly greater
// than the previous call's result within this process, mirroring the
// original's AtomicI64 state_changed_at (which only ever moves forward
// because it's written from a single serialized event loop). Wall-clock
// time can otherwise repeat across two transitions that land in the same
// millisecond.
func nowMillis() int64 {
	for {
		old := atomic.LoadInt64(&lastStateChangeMillis)
		next := time.Now().UnixMilli()
		if next <= old {
			next = old + 1
		}
		if atomic.CompareAndSwapInt64(&lastStateChangeMillis, old, next) {
			return next
		}
	}
}

// RecoveryConfig tunes the bounded restart loop triggered by an
// unsolicited instance exit.
type RecoveryConfig struct {
	MaxAttempts int
	Delay       time.Duration
}

type childEventKind int

const (
	evStdout childEventKind = iota
	evStderr
	evTerminated
	evError
)

type childEvent struct {
	kind     childEventKind
	line     string
	err      error
	exitCode int
}

// Supervisor owns the lifecycle of a single supervised core child process.
// It implements suture.Service: Serve blocks for the service's lifetime
// and is the root context every instance and recovery attempt derives
// from, so canceling it (service shutdown) unconditionally tears down any
// running instance and suppresses further recovery attempts.
type Supervisor struct {
	logger          zerolog.Logger
	delayCheckpoint time.Duration
	recovery        RecoveryConfig

	rootCtx context.Context

	mu           sync.Mutex
	state        State
	instance     *Instance
	infos        Infos
	cmd          *exec.Cmd
	instanceDone chan struct{}
	generation   uint64

	stateCh chan Infos
}

// NewSupervisor creates a Supervisor. delayCheckpoint and recovery should
// come from config.RuntimeConfig; a zero RecoveryConfig disables recovery
// entirely.
func NewSupervisor(logger zerolog.Logger, delayCheckpoint time.Duration, recovery RecoveryConfig) *Supervisor {
	return &Supervisor{
		logger:          logger,
		delayCheckpoint: delayCheckpoint,
		recovery:        recovery,
		state:           StateIdle,
		infos:           Infos{State: StoppedCoreState(""), StateChangedAt: nowMillis()},
		stateCh:         make(chan Infos, 16),
	}
}

// StateChanges returns the channel of Infos projections published on every
// state transition. main.go pumps these into the event bus as
// CoreStateChanged events.
func (s *Supervisor) StateChanges() <-chan Infos {
	return s.stateCh
}

// Serve implements suture.Service. It blocks until ctx is canceled, then
// forces any running instance down.
func (s *Supervisor) Serve(ctx context.Context) error {
	s.mu.Lock()
	s.rootCtx = ctx
	s.mu.Unlock()

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), gracefulStopTimeout)
	defer cancel()
	_ = s.Stop(stopCtx)

	return ctx.Err()
}

// String implements fmt.Stringer for suture's logging.
func (s *Supervisor) String() string {
	return "core-supervisor"
}

// Status returns a snapshot of the current state projection.
func (s *Supervisor) Status() Infos {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.infos
}

// Start spawns inst as the supervised core process. It blocks until either
// the delay checkpoint elapses (interpreted as a successful start) or the
// instance fails before then.
func (s *Supervisor) Start(ctx context.Context, inst Instance) error {
	if !inst.CoreType.Valid() {
		return &ErrUnsupportedCoreType{Type: inst.CoreType}
	}
	if inst.ConfigFile == "" {
		return ErrMissingConfig
	}
	if _, err := os.Stat(inst.ConfigFile); err != nil {
		return fmt.Errorf("core: config file not accessible: %w", err)
	}

	s.mu.Lock()
	if s.state == StateRunning || s.state == StateStopping {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.generation++
	s.mu.Unlock()

	return s.doStart(ctx, inst)
}

// doStart performs the actual spawn and is shared between Start and the
// recovery loop (which bypasses Start's generation bump and already-running
// check, since recovery only ever runs after the prior instance has fully
// terminated).
func (s *Supervisor) doStart(ctx context.Context, inst Instance) error {
	argv, err := buildArgv(inst)
	if err != nil {
		return err
	}

	cmd := exec.Command(inst.BinaryPath, argv...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("core: stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("core: stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("core: spawn failed: %w", err)
	}

	done := make(chan struct{})

	s.mu.Lock()
	instCopy := inst
	s.instance = &instCopy
	s.cmd = cmd
	s.instanceDone = done
	s.setStateLocked(StateRunning, &instCopy, cmd.Process.Pid, "")
	s.mu.Unlock()
	s.publishState()

	events := make(chan childEvent, 32)
	var wg sync.WaitGroup
	wg.Add(3)
	go s.readLines(stdout, evStdout, events, &wg)
	go s.readLines(stderr, evStderr, events, &wg)
	go s.waiter(cmd, events, &wg)
	go func() {
		wg.Wait()
		close(events)
	}()

	resultCh := make(chan error, 1)
	go s.runEventLoop(events, resultCh, instCopy, done)

	select {
	case err := <-resultCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// readLines streams r line-by-line as events of kind, and reports a read
// error (distinct from a clean EOF on process exit) as evError.
func (s *Supervisor) readLines(r io.Reader, kind childEventKind, events chan<- childEvent, wg *sync.WaitGroup) {
	defer wg.Done()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		events <- childEvent{kind: kind, line: scanner.Text()}
	}
	if err := scanner.Err(); err != nil {
		events <- childEvent{kind: evError, err: fmt.Errorf("core: reading child output: %w", err)}
	}
}

// waiter blocks on cmd.Wait and reports the outcome as a single terminated
// event once the child process has fully exited.
func (s *Supervisor) waiter(cmd *exec.Cmd, events chan<- childEvent, wg *sync.WaitGroup) {
	defer wg.Done()
	_ = cmd.Wait()

	exitCode := -1
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}
	if isCleanExitSignal(cmd.ProcessState) {
		exitCode = 0
	}

	events <- childEvent{kind: evTerminated, exitCode: exitCode}
}

// runEventLoop is the per-instance state machine: it classifies child
// events, drives state transitions, and resolves resultCh exactly once
// with the outcome the original start() caller is waiting on, then keeps
// draining until the child's output/exit is fully observed.
func (s *Supervisor) runEventLoop(events <-chan childEvent, resultCh chan<- error, inst Instance, done chan struct{}) {
	defer close(done)

	checkpoint := time.NewTimer(s.delayCheckpoint)
	defer checkpoint.Stop()

	var errBuf []string
	var resultSent bool
	sendResult := func(err error) {
		if !resultSent {
			resultSent = true
			resultCh <- err
		}
	}

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.kind {
			case evStdout:
				s.logger.Info().Str("core_type", string(inst.CoreType)).Msg(ev.line)

			case evStderr:
				s.logger.Error().Str("core_type", string(inst.CoreType)).Msg(ev.line)
				errBuf = append(errBuf, ev.line)
				if len(errBuf) > maxErrorBufferLines {
					errBuf = errBuf[len(errBuf)-maxErrorBufferLines:]
				}

			case evError:
				s.mu.Lock()
				s.setStateLocked(StateFailed, &inst, 0, strings.Join(append(errBuf, ev.err.Error()), "\n"))
				s.mu.Unlock()
				s.publishState()
				sendResult(ev.err)
				return

			case evTerminated:
				s.mu.Lock()
				wasStopping := s.state == StateStopping
				s.mu.Unlock()

				clean := wasStopping || ev.exitCode == 0

				if clean {
					s.mu.Lock()
					s.setStateLocked(StateIdle, nil, 0, "")
					s.mu.Unlock()
					s.publishState()
					sendResult(nil)
					return
				}

				exitErr := fmt.Errorf("core: process exited unexpectedly with code %d", ev.exitCode)

				s.mu.Lock()
				s.setStateLocked(StateFailed, &inst, 0, strings.Join(append(errBuf, exitErr.Error()), "\n"))
				s.mu.Unlock()
				s.publishState()

				// Recovery only follows an exit after the start caller was
				// already answered by the checkpoint; an earlier exit is
				// reported to that caller instead.
				callerAnswered := resultSent
				sendResult(exitErr)
				if callerAnswered {
					go s.maybeRecover(inst)
				}
				return
			}

		case <-checkpoint.C:
			sendResult(nil)
		}
	}
}

// maybeRecover implements the bounded recovery loop: up to recovery.MaxAttempts
// restarts, recovery.Delay apart, aborted immediately if the service is
// shutting down or if an explicit Start/Stop call (which bumps generation)
// superseded this recovery attempt in the meantime.
func (s *Supervisor) maybeRecover(failedInst Instance) {
	s.mu.Lock()
	capturedGen := s.generation
	maxAttempts := s.recovery.MaxAttempts
	delay := s.recovery.Delay
	rootCtx := s.rootCtx
	s.mu.Unlock()

	if maxAttempts <= 0 || rootCtx == nil {
		return
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		select {
		case <-rootCtx.Done():
			return
		case <-time.After(delay):
		}

		s.mu.Lock()
		superseded := s.generation != capturedGen
		s.mu.Unlock()
		if superseded {
			return
		}

		s.logger.Warn().
			Int("attempt", attempt).
			Int("max_attempts", maxAttempts).
			Str("core_type", string(failedInst.CoreType)).
			Msg("attempting core recovery after unsolicited exit")

		if err := s.doStart(rootCtx, failedInst); err == nil {
			return
		}
	}

	s.logger.Error().
		Int("max_attempts", maxAttempts).
		Msg("core recovery exhausted all attempts, giving up")
}

// Stop terminates the running instance, preferring a graceful signal and
// escalating to an immediate kill if it doesn't exit within
// gracefulStopTimeout.
func (s *Supervisor) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return ErrNotRunning
	}
	cmd := s.cmd
	done := s.instanceDone
	s.generation++
	s.setStateLocked(StateStopping, s.instance, s.infos.Pid, "")
	s.mu.Unlock()
	s.publishState()

	if cmd == nil || done == nil {
		return nil
	}

	if err := terminateGracefully(cmd); err != nil {
		s.logger.Warn().Err(err).Msg("failed to send graceful termination signal")
	}

	select {
	case <-done:
		return nil
	case <-time.After(gracefulStopTimeout):
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := killImmediately(cmd); err != nil {
		s.logger.Warn().Err(err).Msg("failed to force-kill core process")
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Restart stops the running instance and starts it again with the same
// (core_type, config_file) pair. It returns ErrNotRunning when no instance
// is running.
func (s *Supervisor) Restart(ctx context.Context) error {
	s.mu.Lock()
	inst := s.instance
	running := s.state == StateRunning
	s.mu.Unlock()

	if inst == nil || !running {
		return ErrNotRunning
	}

	if err := s.Stop(ctx); err != nil && err != ErrNotRunning {
		return err
	}
	return s.Start(ctx, *inst)
}

// CheckConfig runs the core binary in its one-shot validation mode against
// inst's config file, without touching the supervisor's own state. For
// clash-rs, stdout and stderr are combined into a single report since that
// core type doesn't separate validation diagnostics between the two
// streams.
func (s *Supervisor) CheckConfig(ctx context.Context, inst Instance) (string, error) {
	argv, err := buildCheckConfigArgv(inst)
	if err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, inst.BinaryPath, argv...)

	if combinesCheckConfigOutput(inst.CoreType) {
		out, err := cmd.CombinedOutput()
		return string(out), err
	}

	out, err := cmd.Output()
	return string(out), err
}

// setStateLocked must be called with s.mu held. It updates state, the
// cached Infos projection (including the externally-observable
// CoreState and its failure reason), and stamps state_changed_at on
// every transition, mirroring the original's state_changed_at.store()
// call at every point instance.rs raises a state-affecting child event.
// lastError is the failure detail to attach when state == StateFailed;
// it is ignored for every other state.
func (s *Supervisor) setStateLocked(state State, inst *Instance, pid int, lastError string) {
	s.state = state

	infos := Infos{
		State:          projectState(state, lastError),
		Pid:            pid,
		StateChangedAt: nowMillis(),
	}
	if inst != nil {
		infos.CoreType = inst.CoreType
		infos.ConfigPath = inst.ConfigFile
	}
	if state == StateRunning {
		now := time.Now()
		infos.StartedAt = &now
	}
	if state == StateFailed {
		infos.LastError = lastError
	}
	s.infos = infos
}

// publishState sends a copy of the current Infos on stateCh without
// blocking; a slow or absent consumer never stalls the state machine.
func (s *Supervisor) publishState() {
	s.mu.Lock()
	infos := s.infos
	s.mu.Unlock()

	select {
	case s.stateCh <- infos:
	default:
	}
}
