// Package config provides configuration management for joybind.
package config

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"joybind/internal/vjoy"
)

// Config represents the application configuration
type Config struct {
	Device      DeviceConfig      `toml:"device"`
	Calibration CalibrationConfig `toml:"calibration"`
	Capture     CaptureConfig     `toml:"capture"`
	Logging     LoggingConfig     `toml:"logging"`
	Bindings    BindingsConfig    `toml:"bindings"`
}

// DeviceConfig selects the virtual joystick
type DeviceConfig struct {
	// ID is the vJoy device number (1-based)
	ID uint `toml:"id"`

	// LibraryPath is the location of vJoyInterface.dll
	LibraryPath string `toml:"library_path"`
}

// CalibrationConfig controls how candidate bindings are exercised
type CalibrationConfig struct {
	// Repeat is how many times a candidate write is repeated
	Repeat int `toml:"repeat"`

	// Delay is the pause after each repetition (e.g. "1s", "500ms")
	Delay Duration `toml:"delay"`
}

// CaptureConfig controls screenshots
type CaptureConfig struct {
	// OutputDir receives captured PNG files
	OutputDir string `toml:"output_dir"`

	// Isolated runs window captures in a worker process
	Isolated bool `toml:"isolated"`

	// Preview opens captured images in the default viewer
	Preview bool `toml:"preview"`

	// FullContent asks the compositor for DirectComposition content as well
	FullContent bool `toml:"full_content"`
}

// LoggingConfig controls diagnostic output
type LoggingConfig struct {
	// Debug logs every driver call
	Debug bool `toml:"debug"`

	// Dir, when set, receives a log file per run
	Dir string `toml:"dir"`
}

// BindingsConfig locates the keybinding file
type BindingsConfig struct {
	// File is the YAML file recorded bindings are saved to
	File string `toml:"file"`
}

// Duration is a time.Duration written as a string such as "1s" in the config file.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// DefaultConfig returns a new Config with defaults rooted at dir
func DefaultConfig(dir string) *Config {
	return &Config{
		Device: DeviceConfig{
			ID:          1,
			LibraryPath: vjoy.DefaultLibraryPath,
		},
		Calibration: CalibrationConfig{
			Repeat: 5,
			Delay:  Duration{time.Second},
		},
		Capture: CaptureConfig{
			OutputDir:   filepath.Join(dir, "shots"),
			Preview:     true,
			FullContent: true,
		},
		Logging: LoggingConfig{
			Dir: filepath.Join(dir, "log"),
		},
		Bindings: BindingsConfig{
			File: filepath.Join(dir, "bindings.yaml"),
		},
	}
}

// Manager handles loading and saving configuration
type Manager struct {
	mu         sync.Mutex
	configPath string
	config     *Config
	onChanged  []func(*Config)
	overrides  []func(*Config)
}

// NewManager creates a configuration manager for path, or for the default
// location when path is empty
func NewManager(path string) (*Manager, error) {
	if path == "" {
		var err error
		if path, err = getConfigPath(); err != nil {
			return nil, err
		}
	}
	return &Manager{
		configPath: path,
		config:     DefaultConfig(filepath.Dir(path)),
	}, nil
}

// getConfigPath returns the path to the configuration file
func getConfigPath() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		configDir = filepath.Join(appData, "joybind")
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, ".config", "joybind")
	}

	return filepath.Join(configDir, "config.toml"), nil
}

// Path returns the configuration file location
func (m *Manager) Path() string {
	return m.configPath
}

// Load reads the configuration from disk. A missing file keeps the defaults.
func (m *Manager) Load() error {
	cfg, err := m.read()
	if err != nil {
		return err
	}
	if cfg == nil {
		return nil
	}
	m.Set(m.overridden(cfg))
	return nil
}

// SetOverrides installs adjustments, such as command-line flags, that are
// applied to the current configuration and to every configuration read from
// disk afterwards.
func (m *Manager) SetOverrides(fns ...func(*Config)) {
	m.mu.Lock()
	m.overrides = fns
	cfg := *m.config
	m.mu.Unlock()
	m.Set(m.overridden(&cfg))
}

func (m *Manager) overridden(cfg *Config) *Config {
	m.mu.Lock()
	fns := m.overrides
	m.mu.Unlock()
	for _, fn := range fns {
		fn(cfg)
	}
	return cfg
}

func (m *Manager) read() (*Config, error) {
	cfg := DefaultConfig(filepath.Dir(m.configPath))
	if _, err := toml.DecodeFile(m.configPath, cfg); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode %s: %w", m.configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", m.configPath, err)
	}
	return cfg, nil
}

// Validate rejects settings that cannot work
func (c *Config) Validate() error {
	if c.Device.ID < 1 {
		return fmt.Errorf("device.id must be at least 1")
	}
	if c.Calibration.Repeat < 1 {
		return fmt.Errorf("calibration.repeat must be at least 1")
	}
	if c.Calibration.Delay.Duration < 0 {
		return fmt.Errorf("calibration.delay must not be negative")
	}
	return nil
}

// Save writes the configuration to disk
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m.config); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(m.configPath), 0755); err != nil {
		return err
	}

	log.Printf("Config: Saving configuration to %s (%d bytes)", m.configPath, buf.Len())
	return os.WriteFile(m.configPath, buf.Bytes(), 0644)
}

// Get returns a copy of the current configuration
func (m *Manager) Get() *Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg := *m.config
	return &cfg
}

// Set updates the configuration and notifies callbacks
func (m *Manager) Set(config *Config) {
	m.mu.Lock()
	m.config = config
	callbacks := make([]func(*Config), len(m.onChanged))
	copy(callbacks, m.onChanged)
	m.mu.Unlock()
	for _, fn := range callbacks {
		fn(config)
	}
}

// RegisterChangeCallback registers a function to be called when config changes
func (m *Manager) RegisterChangeCallback(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChanged = append(m.onChanged, fn)
}
