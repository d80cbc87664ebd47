package cmd

import (
	"context"
	"errors"
	"flag"
	"testing"
)

type testConfig struct {
	Address   string `env:"CMD_TEST_ADDRESS" envDefault:"127.0.0.1:8080"`
	Separator string `env:"CMD_TEST_SEPARATOR" envDefault:" • "`
}

func TestParseConfigReadsEnvAndFlags(t *testing.T) {
	t.Setenv("TITLED_CMD_TEST_ADDRESS", "env:9000")
	t.Setenv("TITLED_CMD_TEST_SEPARATOR", " | ")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfgRef := testConfig{}
	if err := ParseConfig(&cfgRef); err != nil {
		t.Fatalf("load config defaults: %v", err)
	}
	fs.StringVar(&cfgRef.Address, "address", cfgRef.Address, "address")
	fs.StringVar(&cfgRef.Separator, "separator", cfgRef.Separator, "separator")

	if err := ParseArgs(fs, []string{"-address", "flag:9001"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if cfgRef.Address != "flag:9001" {
		t.Fatalf("expected flag value for address, got %q", cfgRef.Address)
	}
	if cfgRef.Separator != " | " {
		t.Fatalf("expected env separator, got %q", cfgRef.Separator)
	}
}

func TestParseConfigFromArgsReadsEnvAndFlags(t *testing.T) {
	t.Setenv("TITLED_CMD_TEST_ADDRESS", "configarg:9000")

	cfgRef := testConfig{}
	fs := flag.NewFlagSet("configargs", flag.ContinueOnError)
	fs.StringVar(&cfgRef.Address, "address", "", "address")
	if err := ParseConfigFromArgs(&cfgRef, fs, []string{"-address", "flag:9002"}); err != nil {
		t.Fatalf("parse config and args: %v", err)
	}
	if cfgRef.Address != "flag:9002" {
		t.Fatalf("expected parsed flag address, got %q", cfgRef.Address)
	}
	if cfgRef.Separator != " • " {
		t.Fatalf("expected default separator, got %q", cfgRef.Separator)
	}
}

func TestParseArgsRejectsNilParser(t *testing.T) {
	if err := ParseArgs(nil, []string{}); err == nil {
		t.Fatal("expected parse args to reject nil parser")
	}
}

func TestParseConfigRejectsNilTarget(t *testing.T) {
	if err := ParseConfig[testConfig](nil); err == nil {
		t.Fatal("expected nil config target error")
	}
}

func TestRunWithTelemetryRunsLoop(t *testing.T) {
	t.Setenv("TITLED_OTEL_ENDPOINT", "")
	want := errors.New("stopped")
	err := RunWithTelemetry(context.Background(), ServiceTitled, func(context.Context) error {
		return want
	})
	if !errors.Is(err, want) {
		t.Fatalf("RunWithTelemetry error = %v, want %v", err, want)
	}
}

func TestRunWithTelemetryRejectsMissingInputs(t *testing.T) {
	if err := RunWithTelemetry(context.Background(), "", func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected missing service error")
	}
	if err := RunWithTelemetry(context.Background(), ServiceTitled, nil); err == nil {
		t.Fatal("expected missing run function error")
	}
}

func TestRunWithTelemetryDefaultsNilContext(t *testing.T) {
	t.Setenv("TITLED_OTEL_ENDPOINT", "")
	//nolint:staticcheck // nil context is part of the contract.
	err := RunWithTelemetry(nil, ServiceTitled, func(ctx context.Context) error {
		if ctx == nil {
			return errors.New("nil context passed to run")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunWithTelemetry() error = %v", err)
	}
}

func TestParseConfigFromArgsKeepsEnvWithoutFlags(t *testing.T) {
	t.Setenv("TITLED_CMD_TEST_ADDRESS", "env-only:9000")

	cfgRef := testConfig{}
	fs := flag.NewFlagSet("envonly", flag.ContinueOnError)
	fs.StringVar(&cfgRef.Address, "address", "", "address")
	if err := ParseConfigFromArgs(&cfgRef, fs, nil); err != nil {
		t.Fatalf("parse config and args: %v", err)
	}
	if cfgRef.Address != "env-only:9000" {
		t.Fatalf("expected env address, got %q", cfgRef.Address)
	}
}
