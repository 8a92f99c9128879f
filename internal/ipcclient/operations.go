// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

package ipcclient

import (
	"context"
	"net/http"

	"github.com/libnyanpasu/nyanpasu-service/internal/core"
)

// StatusResponse mirrors ipcserver.StatusResponse; duplicated here rather
// than imported so the client never pulls in the server's chi/go-winio
// listener dependencies.
type StatusResponse struct {
	Version      string       `json:"version"`
	CoreInfos    core.Infos   `json:"core_infos"`
	RuntimeInfos RuntimeInfos `json:"runtime_infos"`
}

// RuntimeInfos mirrors ipcserver.RuntimeInfos.
type RuntimeInfos struct {
	ServiceDataDir    string `json:"service_data_dir"`
	ServiceConfigDir  string `json:"service_config_dir"`
	ExternalConfigDir string `json:"external_config_dir"`
	ExternalDataDir   string `json:"external_data_dir"`
	ExternalAppDir    string `json:"external_app_dir"`
}

// Status fetches the current runtime and core state, matching
// Client::status in the original implementation.
func (c *Client) Status(ctx context.Context) (StatusResponse, error) {
	return do[StatusResponse](ctx, c, http.MethodGet, "/status", nil)
}

// CoreStartRequest mirrors ipcserver.CoreStartRequest. The service
// resolves the core's binary path and app dir itself; the caller only
// names which core type to run and against which config file.
type CoreStartRequest struct {
	CoreType   string `json:"core_type"`
	ConfigFile string `json:"config_file"`
}

// StartCore asks the service to spawn a core instance, matching
// Client::start_core.
func (c *Client) StartCore(ctx context.Context, req CoreStartRequest) error {
	_, err := do[struct{}](ctx, c, http.MethodPost, "/core/start", req)
	return err
}

// StopCore asks the service to stop the running core instance, matching
// Client::stop_core.
func (c *Client) StopCore(ctx context.Context) error {
	_, err := do[struct{}](ctx, c, http.MethodPost, "/core/stop", nil)
	return err
}

// RestartCore asks the service to restart the core instance with its
// current (core_type, config_file) pair, matching Client::restart_core.
func (c *Client) RestartCore(ctx context.Context) error {
	_, err := do[struct{}](ctx, c, http.MethodPost, "/core/restart", nil)
	return err
}

// LogEntry mirrors a single entry of ipcserver.LogsResponse.
type LogEntry struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

// LogsResponse mirrors ipcserver.LogsResponse.
type LogsResponse struct {
	Entries []LogEntry `json:"entries"`
}

// RetrieveLogs drains the service's in-memory log ring: every entry
// currently held is returned and removed, so a subsequent retrieve or
// inspect sees nothing until new lines are pushed.
func (c *Client) RetrieveLogs(ctx context.Context) (LogsResponse, error) {
	return do[LogsResponse](ctx, c, http.MethodGet, "/logs/retrieve", nil)
}

// InspectLogs returns a snapshot of the service's log ring without
// draining it.
func (c *Client) InspectLogs(ctx context.Context) (LogsResponse, error) {
	return do[LogsResponse](ctx, c, http.MethodGet, "/logs/inspect", nil)
}

// SetDNSRequest mirrors ipcserver.SetDNSRequest.
type SetDNSRequest struct {
	Servers []string `json:"dns_servers"`
}

// SetDNS asks the service to apply the given DNS server list.
func (c *Client) SetDNS(ctx context.Context, servers []string) error {
	_, err := do[struct{}](ctx, c, http.MethodPost, "/network/set_dns", SetDNSRequest{Servers: servers})
	return err
}
