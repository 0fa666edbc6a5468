package repo

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigSetSaveReload(t *testing.T) {
	r, err := Init(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	r.Config.Set("user", "name", "Alice")
	r.Config.Set("user", "email", "alice@example.com")
	if err := r.Config.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	cfg, err := LoadConfig(filepath.Join(r.GitDir, "config"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got := cfg.Get("user", "name"); got != "Alice" {
		t.Fatalf("user.name = %q, want %q", got, "Alice")
	}
	if got := cfg.Get("user", "email"); got != "alice@example.com" {
		t.Fatalf("user.email = %q, want %q", got, "alice@example.com")
	}
	if got := cfg.Get("core", "repositoryformatversion"); got != "0" {
		t.Fatalf("core.repositoryformatversion = %q, want %q", got, "0")
	}
	if got := cfg.Get("user", "signingkey"); got != "" {
		t.Fatalf("unset key = %q, want empty", got)
	}
}

func TestConfigWrittenAsINI(t *testing.T) {
	r, err := Init(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(r.GitDir, "config"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[core]") {
		t.Fatalf("config missing [core] section:\n%s", data)
	}
	if !strings.Contains(string(data), "repositoryformatversion") {
		t.Fatalf("config missing repositoryformatversion:\n%s", data)
	}
}

func TestFormatVersionMissingKeyIsZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(path, []byte("[core]\n\tbare = false\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	v, err := cfg.FormatVersion()
	if err != nil {
		t.Fatalf("FormatVersion: %v", err)
	}
	if v != 0 {
		t.Fatalf("FormatVersion = %d, want 0", v)
	}
	if err := cfg.CheckFormatVersion(); err != nil {
		t.Fatalf("CheckFormatVersion: %v", err)
	}

	cfg.Set("core", "repositoryformatversion", "2")
	if err := cfg.CheckFormatVersion(); !errors.Is(err, ErrUnsupportedFormatVersion) {
		t.Fatalf("CheckFormatVersion(2) error = %v, want ErrUnsupportedFormatVersion", err)
	}
}
