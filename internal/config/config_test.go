package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"output_dir": "out", "mode": "ue5_skm", "sample_rate": 24, "workers": 4}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.OutputDir != "out" || cfg.Mode != "ue5_skm" || cfg.SampleRate != 24 || cfg.Workers != 4 {
		t.Errorf("loaded config: %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestResolveFlagsOverride(t *testing.T) {
	cfg := Config{OutputDir: "file_out", Mode: "mixamo", SampleRate: 24, Workers: 2}
	cfg.Resolve(Flags{OutputDir: "flag_out", Mode: "ue5_skm", SampleRate: 60, Workers: 8, Preview: true})

	if cfg.OutputDir != "flag_out" {
		t.Errorf("output dir: %q", cfg.OutputDir)
	}
	if cfg.Mode != "ue5_skm" {
		t.Errorf("mode: %q", cfg.Mode)
	}
	if cfg.SampleRate != 60 {
		t.Errorf("sample rate: %g", cfg.SampleRate)
	}
	if cfg.Workers != 8 {
		t.Errorf("workers: %d", cfg.Workers)
	}
	if !cfg.Preview {
		t.Error("preview flag not applied")
	}
}

func TestResolveDefaults(t *testing.T) {
	var cfg Config
	cfg.Resolve(Flags{})

	if cfg.Mode != "mixamo" {
		t.Errorf("default mode: %q", cfg.Mode)
	}
	if cfg.SampleRate != 30 {
		t.Errorf("default sample rate: %g", cfg.SampleRate)
	}
	if cfg.Workers <= 0 {
		t.Errorf("default workers: %d", cfg.Workers)
	}
}

func TestResolveKeepsFileValues(t *testing.T) {
	cfg := Config{OutputDir: "file_out", SampleRate: 24}
	cfg.Resolve(Flags{})

	if cfg.OutputDir != "file_out" {
		t.Errorf("output dir overwritten: %q", cfg.OutputDir)
	}
	if cfg.SampleRate != 24 {
		t.Errorf("sample rate overwritten: %g", cfg.SampleRate)
	}
}
