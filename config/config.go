package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the worm toolchain configuration
type Config struct {
	// Execution settings
	Execution struct {
		MaxSteps    uint64 `toml:"max_steps"`
		EnableTrace bool   `toml:"enable_trace"`
		TraceFile   string `toml:"trace_file"`
	} `toml:"execution"`

	// Display settings
	Display struct {
		ColorOutput bool `toml:"color_output"`
	} `toml:"display"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Execution defaults
	cfg.Execution.MaxSteps = 10000000
	cfg.Execution.EnableTrace = false
	cfg.Execution.TraceFile = ""

	// Display defaults
	cfg.Display.ColorOutput = true

	return cfg
}

// configEnvVar lets a worm invocation point at a config file directly,
// bypassing the OS default location entirely — useful for CI, containers,
// and tests that don't want to touch the real user config directory.
const configEnvVar = "WORM_CONFIG"

// GetConfigPath returns the config file path: WORM_CONFIG if set, else
// config.toml under the OS's standard per-user config directory (as
// resolved by os.UserConfigDir: $XDG_CONFIG_HOME or ~/.config on Linux,
// Application Support on macOS, %AppData% on Windows).
func GetConfigPath() string {
	if override := os.Getenv(configEnvVar); override != "" {
		return override
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "config.toml"
	}
	configDir := filepath.Join(base, "worm")

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	// If file doesn't exist, return default config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read and parse config file
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file
func (c *Config) SaveTo(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Create file
	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close config file: %w", closeErr)
		}
	}()

	// Encode to TOML
	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
