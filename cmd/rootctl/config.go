package main

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/entwanne/root-robot/pkg/robot"
)

// Config holds rootctl configuration. Values come from the config file,
// then environment variables, then command-line flags, later sources
// winning.
type Config struct {
	// Transport selects how robots are reached: serial, bridge or sim.
	Transport string `yaml:"transport" env:"ROOTCTL_TRANSPORT"`

	// SerialPrefix filters serial port names, e.g. "/dev/ttyUSB".
	SerialPrefix string `yaml:"serial_prefix" env:"ROOTCTL_SERIAL_PREFIX"`

	// BaudRate overrides the serial baud rate. Zero keeps the default.
	BaudRate int `yaml:"baud_rate" env:"ROOTCTL_BAUD_RATE"`

	// DiscoveryTimeout bounds each scan.
	DiscoveryTimeout time.Duration `yaml:"discovery_timeout" env:"ROOTCTL_DISCOVERY_TIMEOUT"`

	// LogFile enables packet capture to a CBOR log file.
	LogFile string `yaml:"log_file" env:"ROOTCTL_LOG_FILE"`

	// LogLevel sets console log verbosity: debug, info, warn, error.
	LogLevel string `yaml:"log_level" env:"ROOTCTL_LOG_LEVEL"`

	// Calibration overrides the color reader reference values.
	Calibration CalibrationConfig `yaml:"calibration"`
}

// CalibrationConfig holds color calibration overrides. Zero fields keep
// the built-in defaults.
type CalibrationConfig struct {
	Ambient int `yaml:"ambient" env:"ROOTCTL_CAL_AMBIENT"`
	Red     int `yaml:"red" env:"ROOTCTL_CAL_RED"`
	Green   int `yaml:"green" env:"ROOTCTL_CAL_GREEN"`
	Blue    int `yaml:"blue" env:"ROOTCTL_CAL_BLUE"`
}

// Update converts the overrides to a calibration update. Only non-zero
// fields are applied.
func (c CalibrationConfig) Update() robot.CalibrationUpdate {
	var u robot.CalibrationUpdate
	if c.Ambient != 0 {
		u.Ambient = &c.Ambient
	}
	if c.Red != 0 {
		u.Red = &c.Red
	}
	if c.Green != 0 {
		u.Green = &c.Green
	}
	if c.Blue != 0 {
		u.Blue = &c.Blue
	}
	return u
}

// DefaultConfig returns the configuration used when no file or
// environment overrides are present.
func DefaultConfig() Config {
	return Config{
		Transport:        "serial",
		DiscoveryTimeout: robot.DefaultDiscoveryTimeout,
		LogLevel:         "info",
	}
}

// LoadConfig builds the effective configuration. The file is optional
// unless a path was given explicitly.
func LoadConfig(path string, explicit bool) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// No config file is fine.
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for values main cannot act on.
func (c Config) Validate() error {
	switch c.Transport {
	case "serial", "bridge", "sim":
	default:
		return fmt.Errorf("unknown transport: %s", c.Transport)
	}
	if c.DiscoveryTimeout <= 0 {
		return fmt.Errorf("discovery timeout must be positive, got %s", c.DiscoveryTimeout)
	}
	return nil
}
