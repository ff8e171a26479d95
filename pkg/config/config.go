// Package config provides configuration loading and management for pixeledge.
// It handles loading configuration from YAML files, applies overrides from the
// environment (optionally read from a .env file) and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"pixeledge/internal/models"
	"pixeledge/pkg/edge"
	"pixeledge/pkg/profile"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "PIXELEDGE_"

// Config represents the application configuration loaded from YAML
type Config struct {
	// Detection parameters
	Detection struct {
		// Threshold is the intensity level separating background from
		// foreground; zero selects the detector default
		Threshold uint8 `yaml:"threshold"`

		// Policy is "first" or "all" and controls how many transitions
		// each scanline reports
		Policy string `yaml:"policy"`

		// AutoThreshold derives the threshold from the region histogram
		// (Otsu) instead of using Threshold
		AutoThreshold bool `yaml:"autoThreshold"`

		// Workers specifies how many goroutines scan in parallel
		Workers int `yaml:"workers"`

		// Smooth is the radius of the median filter applied before
		// detection; zero disables it
		Smooth int `yaml:"smooth"`
	} `yaml:"detection"`

	// Regions lists the areas to inspect; an empty list inspects the whole
	// image left to right and top to bottom
	Regions []models.Region `yaml:"regions"`

	// Output parameters
	Output struct {
		// OverlayPath is where the image with highlighted edges is saved
		OverlayPath string `yaml:"overlayPath"`

		// ReportPath is where the YAML inspection report is written
		ReportPath string `yaml:"reportPath"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`

	// Server parameters
	Server struct {
		// Addr is the listen address of the HTTP API
		Addr string `yaml:"addr"`

		// MaxUploadBytes limits the size of uploaded images
		MaxUploadBytes int64 `yaml:"maxUploadBytes"`

		// MaxPixels limits width*height of uploaded images, checked on the
		// image header before decoding
		MaxPixels int64 `yaml:"maxPixels"`
	} `yaml:"server"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Detection.Threshold = edge.DefaultThreshold
	cfg.Detection.Policy = edge.FirstEdge.String()
	cfg.Detection.Workers = runtime.NumCPU() // Use all available cores by default

	cfg.Output.Verbose = true

	cfg.Server.Addr = ":8080"
	cfg.Server.MaxUploadBytes = 32 << 20
	cfg.Server.MaxPixels = 64 << 20

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		return cfg, nil
	}

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

// LoadEnvFile reads KEY=VALUE pairs from the given .env files into the
// process environment without overriding variables that are already set.
// Missing files are ignored.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("error loading env file %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides configuration values from PIXELEDGE_* environment
// variables.
func (c *Config) ApplyEnv() error {
	if v, ok := lookup("THRESHOLD"); ok {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return fmt.Errorf("invalid %sTHRESHOLD: %w", EnvPrefix, err)
		}
		c.Detection.Threshold = uint8(n)
	}
	if v, ok := lookup("POLICY"); ok {
		c.Detection.Policy = v
	}
	if v, ok := lookup("AUTO_THRESHOLD"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sAUTO_THRESHOLD: %w", EnvPrefix, err)
		}
		c.Detection.AutoThreshold = b
	}
	if v, ok := lookup("WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sWORKERS: %w", EnvPrefix, err)
		}
		c.Detection.Workers = n
	}
	if v, ok := lookup("SMOOTH"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sSMOOTH: %w", EnvPrefix, err)
		}
		c.Detection.Smooth = n
	}
	if v, ok := lookup("OVERLAY"); ok {
		c.Output.OverlayPath = v
	}
	if v, ok := lookup("REPORT"); ok {
		c.Output.ReportPath = v
	}
	if v, ok := lookup("VERBOSE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sVERBOSE: %w", EnvPrefix, err)
		}
		c.Output.Verbose = b
	}
	if v, ok := lookup("ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := lookup("MAX_PIXELS"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %sMAX_PIXELS: %w", EnvPrefix, err)
		}
		c.Server.MaxPixels = n
	}
	return nil
}

// Validate checks that every value can be used by the inspection pipeline.
func (c *Config) Validate() error {
	if _, err := edge.ParsePolicy(c.Detection.Policy); err != nil {
		return err
	}
	if c.Detection.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Detection.Workers)
	}
	if c.Detection.Smooth < 0 {
		return fmt.Errorf("smooth must be non-negative, got %d", c.Detection.Smooth)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("maxUploadBytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	if c.Server.MaxPixels <= 0 {
		return fmt.Errorf("maxPixels must be positive, got %d", c.Server.MaxPixels)
	}
	for i, r := range c.Regions {
		if _, err := profile.ParseDirection(r.Direction); err != nil {
			return fmt.Errorf("region %d (%s): %w", i, r.Name, err)
		}
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}
