package config

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strings"

	"bvhgav/internal/gav"
)

// Config holds conversion settings shared by the command line tools.
type Config struct {
	SourceExt string `json:"source_ext"`
	OutputExt string `json:"output_ext"`

	Workers      int `json:"workers"`
	JointWorkers int `json:"joint_workers"`

	// DecodeMode is "compat" or "reconstruct".
	DecodeMode string `json:"decode_mode"`
	Canonical  bool   `json:"canonical"`

	WriteManifest bool   `json:"write_manifest"`
	ManifestName  string `json:"manifest_name"`
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Workers    int
	DecodeMode string
	Canonical  bool
	Manifest   bool
}

// Load reads a JSON config file. Fields not set in the file keep their zero values.
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

// Resolve applies CLI overrides, then fills empty fields with defaults.
func (c *Config) Resolve(flags Flags) error {
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.DecodeMode != "" {
		c.DecodeMode = flags.DecodeMode
	}
	if flags.Canonical {
		c.Canonical = true
	}
	if flags.Manifest {
		c.WriteManifest = true
	}

	if c.SourceExt == "" {
		c.SourceExt = ".bvh"
	}
	if c.OutputExt == "" {
		c.OutputExt = ".npy"
	}
	for _, ext := range []*string{&c.SourceExt, &c.OutputExt} {
		if !strings.HasPrefix(*ext, ".") {
			*ext = "." + *ext
		}
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.JointWorkers <= 0 {
		c.JointWorkers = 1
	}
	if c.ManifestName == "" {
		c.ManifestName = "manifest.json"
	}

	mode, err := gav.ParseDecodeMode(c.DecodeMode)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.DecodeMode = mode.String()
	return nil
}

// Mode returns the resolved decode mode.
func (c *Config) Mode() gav.DecodeMode {
	mode, _ := gav.ParseDecodeMode(c.DecodeMode)
	return mode
}
