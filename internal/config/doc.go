// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

// Package config loads and validates the service's runtime configuration
// using the same layered koanf v2 approach as the rest of the nyanpasu-
// service stack: struct defaults, then an optional YAML file, then
// environment variable overrides, merged in that order so later layers
// win.
//
// The resulting RuntimeConfig corresponds to RuntimeInfos in the original
// Rust implementation (nyanpasu_service/src/cmds/server.rs), with five
// directory fields (service data/config dirs plus the three external
// nyanpasu_* dirs owned by the GUI client) rather than the four-field
// variant that appears in the older nyanpasu_ipc::api::status module —
// the five-field shape is what the server actually constructs at startup
// and is authoritative here.
package config
