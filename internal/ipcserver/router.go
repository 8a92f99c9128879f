// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

package ipcserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/libnyanpasu/nyanpasu-service/internal/core"
	"github.com/libnyanpasu/nyanpasu-service/internal/eventbus"
	"github.com/libnyanpasu/nyanpasu-service/internal/logring"
	"github.com/libnyanpasu/nyanpasu-service/internal/middleware"
)

// RuntimeInfos is the five-directory projection returned by GET /status
// alongside the core state, mirroring the RuntimeInfos the original
// server constructs once at startup and never mutates afterward.
type RuntimeInfos struct {
	ServiceDataDir    string `json:"service_data_dir"`
	ServiceConfigDir  string `json:"service_config_dir"`
	ExternalConfigDir string `json:"external_config_dir"`
	ExternalDataDir   string `json:"external_data_dir"`
	ExternalAppDir    string `json:"external_app_dir"`
}

// Handlers bundles everything the router needs to serve the fixed set of
// IPC endpoints.
type Handlers struct {
	Supervisor *core.Supervisor
	Ring       *logring.Ring
	Bus        *eventbus.Bus
	Infos      RuntimeInfos
	Logger     zerolog.Logger
}

// NewRouter builds the chi/v5 router exposing every IPC endpoint, with
// request-id/correlation-id and structured access logging middleware
// applied to every route.
func NewRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(func(next http.Handler) http.Handler {
		return middleware.RequestID(next.ServeHTTP)
	})
	r.Use(accessLogMiddleware(h.Logger))

	r.Get("/status", h.handleStatus)
	r.Post("/core/start", h.handleCoreStart)
	r.Post("/core/stop", h.handleCoreStop)
	r.Post("/core/restart", h.handleCoreRestart)
	r.Get("/logs/retrieve", h.handleLogsRetrieve)
	r.Get("/logs/inspect", h.handleLogsInspect)
	r.Post("/network/set_dns", h.handleSetDNS)
	r.Get("/ws/events", h.handlePush)

	return r
}

// accessLogMiddleware logs method/path/status/duration/correlation-id for
// every request, matching the teacher's tracing-middleware idiom from
// internal/middleware.
func accessLogMiddleware(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetRequestID(r.Context())).
				Msg("ipc request")
		})
	}
}
