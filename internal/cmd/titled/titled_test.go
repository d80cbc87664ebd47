package titled

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/louisbranch/pagetitle/internal/platform/errors"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("titled", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.HTTPAddr != "localhost:8087" {
		t.Fatalf("HTTPAddr = %q, want %q", cfg.HTTPAddr, "localhost:8087")
	}
	if cfg.SessionIdle != 30*time.Minute {
		t.Fatalf("SessionIdle = %s, want 30m", cfg.SessionIdle)
	}
	if cfg.SiteMapPath != "" {
		t.Fatalf("SiteMapPath = %q, want empty", cfg.SiteMapPath)
	}
}

func TestParseConfigFlagsOverrideEnv(t *testing.T) {
	t.Setenv("TITLED_HTTP_ADDR", "env-addr:1")
	t.Setenv("TITLED_SESSION_IDLE", "5m")

	fs := flag.NewFlagSet("titled", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-http-addr", "127.0.0.1:9087"})
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.HTTPAddr != "127.0.0.1:9087" {
		t.Fatalf("HTTPAddr = %q, want flag value", cfg.HTTPAddr)
	}
	if cfg.SessionIdle != 5*time.Minute {
		t.Fatalf("SessionIdle = %s, want env value 5m", cfg.SessionIdle)
	}
}

func TestNewLogger(t *testing.T) {
	if _, err := NewLogger("debug"); err != nil {
		t.Fatalf("NewLogger(debug) error = %v", err)
	}
	if _, err := NewLogger("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestLoadSiteMap(t *testing.T) {
	m, err := LoadSiteMap("")
	if err != nil {
		t.Fatalf("LoadSiteMap(\"\") error = %v", err)
	}
	if m.Root == nil || m.Root.ID != "shell" {
		t.Fatalf("root = %+v, want embedded shell", m.Root)
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("root:\n  id: shell\n"), 0o600); err != nil {
		t.Fatalf("write site map: %v", err)
	}
	if _, err := LoadSiteMap(path); !apperrors.IsCode(err, apperrors.CodeInvalidArgument) {
		t.Fatalf("LoadSiteMap(bad) error = %v, want invalid argument", err)
	}
}
