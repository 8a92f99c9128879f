// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	d := Defaults()

	if d.LogRingCapacity != 100 {
		t.Errorf("expected default log ring capacity 100, got %d", d.LogRingCapacity)
	}
	if d.RecoveryMaxAttempts != 5 {
		t.Errorf("expected default recovery attempts 5, got %d", d.RecoveryMaxAttempts)
	}
	if d.RecoveryDelay != 5*time.Second {
		t.Errorf("expected default recovery delay 5s, got %v", d.RecoveryDelay)
	}
	if d.DelayCheckpoint != 1500*time.Millisecond {
		t.Errorf("expected default delay checkpoint 1500ms, got %v", d.DelayCheckpoint)
	}
}

func TestLoadWithoutFileUsesDefaultsAndEnv(t *testing.T) {
	t.Setenv("NYANPASU_SERVICE_SERVICE_DATA_DIR", "/var/lib/nyanpasu")
	t.Setenv("NYANPASU_SERVICE_SERVICE_CONFIG_DIR", "/etc/nyanpasu")
	t.Setenv("NYANPASU_SERVICE_EXTERNAL_CONFIG_DIR", "/home/user/.config/nyanpasu")
	t.Setenv("NYANPASU_SERVICE_EXTERNAL_DATA_DIR", "/home/user/.local/share/nyanpasu")
	t.Setenv("NYANPASU_SERVICE_EXTERNAL_APP_DIR", "/opt/nyanpasu")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ServiceDataDir != "/var/lib/nyanpasu" {
		t.Errorf("expected env override for service_data_dir, got %q", cfg.ServiceDataDir)
	}
	if cfg.LogRingCapacity != 100 {
		t.Errorf("expected default log ring capacity to survive env layering, got %d", cfg.LogRingCapacity)
	}
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
service_data_dir: /var/lib/nyanpasu
service_config_dir: /etc/nyanpasu
external_config_dir: /home/user/.config/nyanpasu
external_data_dir: /home/user/.local/share/nyanpasu
external_app_dir: /opt/nyanpasu
log_ring_capacity: 200
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.LogRingCapacity != 200 {
		t.Errorf("expected file override log_ring_capacity=200, got %d", cfg.LogRingCapacity)
	}
	if cfg.ServiceDataDir != "/var/lib/nyanpasu" {
		t.Errorf("unexpected service_data_dir: %q", cfg.ServiceDataDir)
	}
}

func TestValidateRejectsMissingDirectories(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for missing required directories")
	}
}

func TestValidateRejectsRecoveryDelayWithoutAttempts(t *testing.T) {
	cfg := Defaults()
	cfg.ServiceDataDir = "/a"
	cfg.ServiceConfigDir = "/b"
	cfg.ExternalConfigDir = "/c"
	cfg.ExternalDataDir = "/d"
	cfg.ExternalAppDir = "/e"
	cfg.RecoveryMaxAttempts = 0
	cfg.RecoveryDelay = time.Second

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for recovery_delay set with recovery_max_attempts=0")
	}
}
