// SPDX-License-Identifier: MIT

// Package config loads the pelorus YAML configuration file. Command-line
// flags override anything set here.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pelorus-nav/pelorus/pkg/ai2"
)

type Config struct {
	Device  DeviceConfig  `yaml:"device"`
	Session SessionConfig `yaml:"session"`
	Capture CaptureConfig `yaml:"capture"`
}

// DeviceConfig selects the transport. At most one of path, port, and url
// may be set; path wins the default when nothing is configured anywhere.
type DeviceConfig struct {
	Path        string `yaml:"path"` // GNSS character device, e.g. /dev/gnss0
	Port        string `yaml:"port"` // serial port, e.g. /dev/ttyUSB0
	Baud        int    `yaml:"baud"`
	URL         string `yaml:"url"` // WebSocket bridge
	Username    string `yaml:"username"`
	NoSSLVerify bool   `yaml:"no_ssl_verify"`
}

type SessionConfig struct {
	Settle    time.Duration `yaml:"settle"`
	Sentences []string      `yaml:"sentences"`
	NMEA      bool          `yaml:"nmea"`
}

type CaptureConfig struct {
	Enable bool   `yaml:"enable"`
	Path   string `yaml:"path"`
}

// sentenceBits maps config sentence names to mask bits.
var sentenceBits = map[string]byte{
	"position":     ai2.MaskPosition,
	"speed_course": ai2.MaskSpeedCourse,
	"satellites":   ai2.MaskSatellites,
	"time":         ai2.MaskTime,
	"dop":          ai2.MaskDOP,
	"status":       ai2.MaskStatus,
	"all":          ai2.MaskAll,
}

// SentenceMask folds the configured sentence names into a mask byte. An
// empty list means no mask command is sent during bring-up.
func (s SessionConfig) SentenceMask() (byte, error) {
	var mask byte
	for _, name := range s.Sentences {
		bit, ok := sentenceBits[name]
		if !ok {
			return 0, fmt.Errorf("session.sentences: unknown sentence category %q", name)
		}
		mask |= bit
	}
	return mask, nil
}

// Default returns the configuration used when no config file is given.
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	transports := 0
	for _, v := range []string{cfg.Device.Path, cfg.Device.Port, cfg.Device.URL} {
		if v != "" {
			transports++
		}
	}
	if transports > 1 {
		return Config{}, fmt.Errorf("device.path, device.port and device.url are mutually exclusive")
	}
	// Zero means "not set" and gets the default below.
	if cfg.Device.Baud < 0 {
		return Config{}, fmt.Errorf("device.baud must not be negative")
	}
	if cfg.Session.Settle < 0 {
		return Config{}, fmt.Errorf("session.settle must be >= 0")
	}
	if _, err := cfg.Session.SentenceMask(); err != nil {
		return Config{}, err
	}
	if cfg.Capture.Enable && cfg.Capture.Path == "" {
		return Config{}, fmt.Errorf("capture.path is required when capture.enable is true")
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Device.Baud == 0 {
		cfg.Device.Baud = 115200
	}
	if cfg.Session.Settle == 0 {
		cfg.Session.Settle = ai2.DefaultSettleDelay
	}
}
