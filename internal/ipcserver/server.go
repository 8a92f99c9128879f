// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

package ipcserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	acceptErrorBackoff  = time.Second
	shutdownGracePeriod = 5 * time.Second
)

// Server is the transport-layer suture.Service: it owns the platform
// endpoint listener and the HTTP server answering on it.
type Server struct {
	cfg      EndpointConfig
	handlers *Handlers
	logger   zerolog.Logger
}

// NewServer creates a Server ready to be added to the supervisor tree's
// transport layer.
func NewServer(cfg EndpointConfig, h *Handlers) *Server {
	return &Server{cfg: cfg, handlers: h, logger: h.Logger}
}

// String implements fmt.Stringer for suture's logging.
func (s *Server) String() string {
	return "ipc-transport"
}

// Serve implements suture.Service: it binds the platform endpoint, serves
// HTTP on it until ctx is canceled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := Listen(s.cfg)
	if err != nil {
		return err
	}

	wrapped := &retryingListener{Listener: ln, logger: s.logger}

	httpServer := &http.Server{Handler: NewRouter(s.handlers)}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(wrapped)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn().Err(err).Msg("ipc transport shutdown did not complete gracefully")
		}
		<-serveErr
		return ctx.Err()

	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// retryingListener wraps a net.Listener's Accept to classify transient
// accept-time errors the way the original accept loop does: connections
// that were refused/aborted/reset by the peer before the accept
// completed are silently retried, other non-timeout net.Error values are
// logged and retried after a short backoff so a single bad Accept doesn't
// take the whole transport down, and a closed listener, a timeout or any
// other error is returned.
type retryingListener struct {
	net.Listener
	logger zerolog.Logger
}

func (l *retryingListener) Accept() (net.Conn, error) {
	for {
		conn, err := l.Listener.Accept()
		if err == nil {
			return conn, nil
		}

		if isBenignAcceptError(err) {
			continue
		}

		if errors.Is(err, net.ErrClosed) {
			return nil, err
		}

		var netErr net.Error
		if errors.As(err, &netErr) && !netErr.Timeout() {
			l.logger.Warn().Err(err).Msg("ipc transport accept error, retrying")
			time.Sleep(acceptErrorBackoff)
			continue
		}

		// Listener closed or a non-retryable error: surface it so
		// http.Server.Serve returns and Serve's select can shut down.
		return nil, err
	}
}
