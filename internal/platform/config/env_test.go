package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	Port      int    `env:"TEST_PORT" envDefault:"123"`
	Separator string `env:"TEST_SEPARATOR" envDefault:" • "`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
	if cfg.Separator != " • " {
		t.Fatalf("expected default separator, got %q", cfg.Separator)
	}
}

func TestParseEnvReadsPrefixedVariables(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("TITLED_TEST_PORT", "8087")
	t.Setenv("TEST_PORT", "1")

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 8087 {
		t.Fatalf("expected prefixed port 8087, got %d", cfg.Port)
	}
}

func TestParseEnvWithPrefixUsesCustomPrefix(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("OTHER_TEST_SEPARATOR", " | ")

	if err := ParseEnvWithPrefix(&cfg, "OTHER_"); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Separator != " | " {
		t.Fatalf("expected custom prefix separator, got %q", cfg.Separator)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("TITLED_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
