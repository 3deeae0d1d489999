package utils

import (
	"bytes"
	"go/format"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// TestReadTOML reads a known test config and checks overridden and
// defaulted keys.
func TestReadTOML(t *testing.T) {
	cfg, err := ReadTOML("testConf.toml")
	if err != nil {
		t.Fatalf("ReadTOML: %v", err)
	}

	if cfg.Network.URL != "ws://example.test/ws" {
		t.Fatalf(`Network.URL = %q, want "ws://example.test/ws"`, cfg.Network.URL)
	}
	if cfg.Network.Codec != "proto" {
		t.Fatalf(`Network.Codec = %q, want "proto"`, cfg.Network.Codec)
	}
	if cfg.Player.Nickname != "test" {
		t.Fatalf(`Player.Nickname = %q, want "test"`, cfg.Player.Nickname)
	}
	if cfg.Player.Speed != 1 {
		t.Fatalf(`Player.Speed = %v, want 1`, cfg.Player.Speed)
	}
	// Untouched keys keep their defaults.
	if cfg.Player.ReportEpsilon != 0.1 {
		t.Fatalf(`Player.ReportEpsilon = %v, want 0.1`, cfg.Player.ReportEpsilon)
	}
	if cfg.Retry.Attempts != 3 {
		t.Fatalf(`Retry.Attempts = %v, want 3`, cfg.Retry.Attempts)
	}
	if cfg.Retry.Interval() != 500*time.Millisecond {
		t.Fatalf(`Retry.Interval() = %v, want 500ms`, cfg.Retry.Interval())
	}
	if cfg.UI.Resolution.X != 1 || cfg.UI.Resolution.Y != 1 {
		t.Fatalf(`UI.Resolution = %+v, want {1 1}`, cfg.UI.Resolution)
	}

	want := []LandmarkConfig{{Name: "well", X: 10, Y: -20, Near: 30, Far: 60, DwellMS: 500}}
	if diff := cmp.Diff(want, cfg.Landmarks); diff != "" {
		t.Fatalf("Landmarks mismatch (-want +got):\n%s", diff)
	}
}

func TestReadTOMLMissingFile(t *testing.T) {
	cfg, err := ReadTOML(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("ReadTOML: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Fatalf("missing file should yield defaults (-want +got):\n%s", diff)
	}
}

func TestNewLogger(t *testing.T) {
	tests := map[string]LoggingConfig{
		"console":       {Level: "debug", Format: "console"},
		"json":          {Level: "warn", Format: "json"},
		"bad level":     {Level: "loud", Format: "console"},
		"empty default": {},
	}
	for name, cfg := range tests {
		t.Run(name, func(t *testing.T) {
			logger, err := NewLogger(cfg)
			if err != nil {
				t.Fatalf("NewLogger: %v", err)
			}
			logger.Debug("hello")
		})
	}
}

func TestAlmostEqual(t *testing.T) {
	if !AlmostEqual(0.1+0.2, 0.3, 1e-9) {
		t.Fatal("0.1+0.2 should almost equal 0.3")
	}
	if AlmostEqual(1, 1.1, 0.01) {
		t.Fatal("1 and 1.1 should not be almost equal at 0.01")
	}
}

// TestSourceFormatted keeps the package gofmt-clean; struct tag alignment in
// the config types is easy to break by hand.
func TestSourceFormatted(t *testing.T) {
	files, err := filepath.Glob("*.go")
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	for _, name := range files {
		src, err := os.ReadFile(name)
		if err != nil {
			t.Fatalf("ReadFile(%s): %v", name, err)
		}
		formatted, err := format.Source(src)
		if err != nil {
			t.Fatalf("format.Source(%s): %v", name, err)
		}
		if !bytes.Equal(src, formatted) {
			t.Errorf("%s is not gofmt-clean", name)
		}
	}
}
