// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

package core

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ErrUnsupportedCoreType is returned when building argv for a core type
// this supervisor does not yet know how to launch.
type ErrUnsupportedCoreType struct {
	Type Type
}

func (e *ErrUnsupportedCoreType) Error() string {
	return fmt.Sprintf("core: unsupported core type %q", e.Type)
}

// buildArgv constructs the argument vector for spawning inst, mirroring
// the per-core-type flag conventions in
// nyanpasu_service/src/server/instance.rs:
//
//	mihomo / mihomo-alpha: -m -d <app_dir> -f <config>
//	clash-rs:              -d <app_dir> -c <config>
//	clash-premium:         -d <app_dir> -f <config>
//	sing-box:              not implemented upstream either
func buildArgv(inst Instance) ([]string, error) {
	switch inst.CoreType {
	case TypeMihomo, TypeMihomoAlpha:
		return []string{"-m", "-d", inst.AppDir, "-f", inst.ConfigFile}, nil
	case TypeClashRust:
		return []string{"-d", inst.AppDir, "-c", inst.ConfigFile}, nil
	case TypeClashPremium:
		return []string{"-d", inst.AppDir, "-f", inst.ConfigFile}, nil
	case TypeSingBox:
		return nil, &ErrUnsupportedCoreType{Type: inst.CoreType}
	default:
		return nil, &ErrUnsupportedCoreType{Type: inst.CoreType}
	}
}

// buildCheckConfigArgv constructs the argument vector for a one-shot
// config validation run (the check_config operation), which every core
// type performs as a "-t" (test) invocation against the same flags used
// to start it, except clash-rs which combines stdout+stderr for its
// validation report rather than separating them.
func buildCheckConfigArgv(inst Instance) ([]string, error) {
	switch inst.CoreType {
	case TypeMihomo, TypeMihomoAlpha:
		return []string{"-m", "-t", "-d", inst.AppDir, "-f", inst.ConfigFile}, nil
	case TypeClashRust:
		return []string{"-t", "-d", inst.AppDir, "-c", inst.ConfigFile}, nil
	case TypeClashPremium:
		return []string{"-t", "-d", inst.AppDir, "-f", inst.ConfigFile}, nil
	case TypeSingBox:
		return nil, &ErrUnsupportedCoreType{Type: inst.CoreType}
	default:
		return nil, &ErrUnsupportedCoreType{Type: inst.CoreType}
	}
}

// combinesCheckConfigOutput reports whether this core type's check_config
// output must be captured as a single combined stdout+stderr stream
// rather than read separately, matching clash-rs's validation reporter.
func combinesCheckConfigOutput(t Type) bool {
	return t == TypeClashRust
}

// ExecutableName returns the expected binary filename for t, matching
// nyanpasu_utils::core::CoreType::get_executable_name, with the .exe
// suffix added on Windows.
func ExecutableName(t Type) string {
	name := string(t)
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return name
}

// ErrBinaryNotFound is returned by ResolveBinaryPath when the core's
// executable isn't present in either search directory.
type ErrBinaryNotFound struct {
	Type Type
}

func (e *ErrBinaryNotFound) Error() string {
	return fmt.Sprintf("core: executable for %q not found", e.Type)
}

// ResolveBinaryPath searches for t's executable, first under dataDir
// (the client application's own data directory) and then under appDir
// (the client application's install directory), mirroring
// server::instance::find_binary_path's "Data Dir -> Sidecar Dir" order.
func ResolveBinaryPath(t Type, dataDir, appDir string) (string, error) {
	name := ExecutableName(t)

	candidate := filepath.Join(dataDir, name)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}

	candidate = filepath.Join(appDir, name)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}

	return "", &ErrBinaryNotFound{Type: t}
}
