package config

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
)

// Config holds all configurable conversion settings.
type Config struct {
	OutputDir  string  `json:"output_dir"`
	Mode       string  `json:"mode"`
	SampleRate float64 `json:"sample_rate"`
	Preview    bool    `json:"preview"`
	Workers    int     `json:"workers"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	OutputDir  string
	Mode       string
	SampleRate float64
	Preview    bool
	Workers    int
}

// Resolve fills in empty fields from CLI flags and defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Mode != "" {
		c.Mode = flags.Mode
	}
	if flags.SampleRate > 0 {
		c.SampleRate = flags.SampleRate
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Preview {
		c.Preview = true
	}

	// Defaults
	if c.Mode == "" {
		c.Mode = "mixamo"
	}
	if c.SampleRate <= 0 {
		c.SampleRate = 30
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}
