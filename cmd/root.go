// SPDX-License-Identifier: MIT

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pelorus-nav/pelorus/pkg/config"
)

var (
	configPath string

	// Character device flag
	devicePath string

	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool
)

var rootCmd = &cobra.Command{
	Use:   "pelorus",
	Short: "AI2 GNSS Receiver Monitor",
	Long: `Pelorus - A CLI tool for monitoring and driving GNSS receivers speaking
the AI2 framed serial protocol.

Provides commands for live record decoding, receiver session control,
connectivity testing, capture playback, and an interactive monitor.

Connection modes:
  Device:    --device /dev/gnss0 (the receiver's native character device)
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]

Settings can also come from a YAML config file (--config); flags win over
the file. For WebSocket authentication, the password is read from the
PELORUS_PASSWORD environment variable, or prompted interactively if not
set. The --password flag is intentionally not provided to avoid leaking
credentials in shell history.`,
	Version: "1.0.0",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")

	rootCmd.PersistentFlags().StringVarP(&devicePath, "device", "d", "", "GNSS character device")

	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 0, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")
}

// loadConfig merges the config file (when given) with command-line flags;
// flags override the file. Selecting a transport on the command line
// clears any transport from the file.
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return config.Config{}, err
		}
	}

	switch {
	case devicePath != "":
		cfg.Device.Path, cfg.Device.Port, cfg.Device.URL = devicePath, "", ""
	case portName != "":
		cfg.Device.Path, cfg.Device.Port, cfg.Device.URL = "", portName, ""
	case wsURL != "":
		cfg.Device.Path, cfg.Device.Port, cfg.Device.URL = "", "", wsURL
	}
	if baudRate > 0 {
		cfg.Device.Baud = baudRate
	}
	if wsUsername != "" {
		cfg.Device.Username = wsUsername
	}
	if wsNoSSLVerify {
		cfg.Device.NoSSLVerify = true
	}

	return cfg, nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
