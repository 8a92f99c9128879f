// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

package config

import (
	"fmt"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/libnyanpasu/nyanpasu-service/internal/validation"
)

// RuntimeConfig is the full set of directories and tunables the server
// needs at startup, equivalent to RuntimeInfos in the original Rust
// implementation plus the IPC/recovery tuning the distilled spec adds.
type RuntimeConfig struct {
	// Directories owned by the service itself.
	ServiceDataDir   string `koanf:"service_data_dir" validate:"required"`
	ServiceConfigDir string `koanf:"service_config_dir" validate:"required"`

	// Directories owned by the nyanpasu GUI client, passed in at startup
	// and never written to by the service.
	ExternalConfigDir string `koanf:"external_config_dir" validate:"required"`
	ExternalDataDir   string `koanf:"external_data_dir" validate:"required"`
	ExternalAppDir    string `koanf:"external_app_dir" validate:"required"`

	// Placeholder is the IPC endpoint name: the named pipe suffix on
	// Windows (\\.\pipe\<placeholder>) or the unix socket base name
	// (/var/run/<placeholder>.sock).
	Placeholder string `koanf:"placeholder" validate:"required"`

	// LogRingCapacity bounds the in-memory log ring. 0 means use
	// logring.DefaultCapacity.
	LogRingCapacity int `koanf:"log_ring_capacity" validate:"gte=0"`

	// Recovery tuning for the core supervisor's bounded restart loop.
	RecoveryMaxAttempts int           `koanf:"recovery_max_attempts" validate:"gte=0"`
	RecoveryDelay       time.Duration `koanf:"recovery_delay" validate:"gte=0"`

	// DelayCheckpoint is how long the core supervisor waits after spawning
	// the child before concluding the start succeeded.
	DelayCheckpoint time.Duration `koanf:"delay_checkpoint" validate:"gte=0"`

	// LogLevel and LogFormat configure internal/logging.
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`
}

// Defaults returns the built-in defaults, equivalent to the constants in
// nyanpasu_service/src/consts.rs.
func Defaults() RuntimeConfig {
	return RuntimeConfig{
		Placeholder:         "nyanpasu_ipc",
		LogRingCapacity:     100,
		RecoveryMaxAttempts: 5,
		RecoveryDelay:       5 * time.Second,
		DelayCheckpoint:     1500 * time.Millisecond,
		LogLevel:            "info",
		LogFormat:           "json",
	}
}

// Load builds a RuntimeConfig by layering, in order: built-in defaults,
// an optional YAML file at path (skipped if path is empty; a non-empty
// path that cannot be loaded, including a missing file, makes Load
// fail), then environment variables prefixed NYANPASU_SERVICE_.
// Each layer overrides the previous one field-by-field.
func Load(path string) (*RuntimeConfig, error) {
	k := koanf.New(".")

	defaults := Defaults()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load file %q: %w", path, err)
		}
	}

	envProvider := env.Provider("NYANPASU_SERVICE_", ".", envKeyMap)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	var cfg RuntimeConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// envKeyMap strips the NYANPASU_SERVICE_ prefix and lowercases the
// remainder, e.g. NYANPASU_SERVICE_SERVICE_DATA_DIR -> service_data_dir.
func envKeyMap(s string) string {
	const prefix = "NYANPASU_SERVICE_"
	key := s
	if len(s) > len(prefix) {
		key = s[len(prefix):]
	}
	return toLowerSnake(key)
}

func toLowerSnake(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// Validate checks struct tags via internal/validation and a handful of
// cross-field invariants that validator tags can't express.
func (c *RuntimeConfig) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.RecoveryMaxAttempts == 0 && c.RecoveryDelay > 0 {
		return fmt.Errorf("config: recovery_delay set but recovery_max_attempts is 0")
	}
	return nil
}
