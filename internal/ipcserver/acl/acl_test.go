// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

package acl

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	sids, err := Load(filepath.Join(dir, "acl.list"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sids) != 0 {
		t.Errorf("expected empty allowlist, got %v", sids)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "acl.list")

	want := []string{"S-1-5-21-1111111111-2222222222-3333333333-1001", "S-1-5-21-1111111111-2222222222-3333333333-1002"}

	if err := Save(path, want); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d sids, got %d", len(want), len(got))
	}
	for i, sid := range want {
		if got[i] != sid {
			t.Errorf("entry %d: expected %q, got %q", i, sid, got[i])
		}
	}
}

func TestLoadFiltersNonSIDLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "acl.list")

	raw := "S-1-5-21-1-2-3-1001\n\n# comment\nnot-a-sid\nS-1-5-21-1-2-3-1002\n"
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 valid sids, got %d: %v", len(got), got)
	}
}

func TestEnsureExistsIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "acl.list")

	if err := EnsureExists(path); err != nil {
		t.Fatalf("unexpected error on first call: %v", err)
	}
	if err := EnsureExists(path); err != nil {
		t.Fatalf("unexpected error on second call: %v", err)
	}

	sids, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sids) != 0 {
		t.Errorf("expected empty allowlist after EnsureExists, got %v", sids)
	}
}
