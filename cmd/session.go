// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pelorus-nav/pelorus/pkg/ai2"
	"github.com/pelorus-nav/pelorus/pkg/config"
)

var (
	sessionNMEA   bool
	sessionSettle time.Duration
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Drive the receiver through its power states",
	Long: `Send the AI2 bring-up and shutdown command sequences.

The receiver drops commands that arrive while it is still processing the
previous one, so a settle delay is inserted after each command (--settle,
default 200ms).

Subcommands:
  start  bring the receiver up and start position reporting
  stop   return the receiver to idle (keeps ephemeris/almanac)
  off    hard power-down (loses satellite tracking state)`,
}

var sessionStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Bring the receiver up and start reporting",
	Long: `Run the bring-up sequence: enable error reporting, query protocol and
firmware versions, step through idle, configure fix rate and position
reporting, then switch the receiver on.

With --nmea the receiver is instead started in native NMEA passthrough
mode; sentences then arrive as text records.`,
	RunE: runSessionStart,
}

var sessionStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Return the receiver to idle",
	RunE:  runSessionStop,
}

var sessionOffCmd = &cobra.Command{
	Use:   "off",
	Short: "Hard power-down the receiver",
	RunE:  runSessionOff,
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionStartCmd, sessionStopCmd, sessionOffCmd)

	sessionCmd.PersistentFlags().DurationVar(&sessionSettle, "settle", 0, "Delay after each command (default from config, 200ms)")
	sessionStartCmd.Flags().BoolVar(&sessionNMEA, "nmea", false, "Start in NMEA passthrough mode")
}

func openSession() (Connection, *ai2.Session, config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, config.Config{}, err
	}

	conn, connInfo, err := OpenConnection(cfg.Device)
	if err != nil {
		return nil, nil, config.Config{}, err
	}

	settle := cfg.Session.Settle
	if sessionSettle > 0 {
		settle = sessionSettle
	}

	s := ai2.NewSession(conn, settle)
	s.Trace = func(name string) { log.Printf("sending: %s", name) }

	fmt.Printf("Connection: %s\n", connInfo)
	return conn, s, cfg, nil
}

func sessionContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runSessionStart(cmd *cobra.Command, args []string) error {
	conn, s, cfg, err := openSession()
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, stop := sessionContext()
	defer stop()

	if sessionNMEA || cfg.Session.NMEA {
		if err := s.StartNMEA(ctx); err != nil {
			return fmt.Errorf("nmea bring-up: %w", err)
		}
		fmt.Println("Receiver started in NMEA passthrough mode")
		return nil
	}

	mask, err := cfg.Session.SentenceMask()
	if err != nil {
		return err
	}
	if err := s.Start(ctx, mask); err != nil {
		return fmt.Errorf("bring-up: %w", err)
	}
	fmt.Println("Receiver on")
	return nil
}

func runSessionStop(cmd *cobra.Command, args []string) error {
	conn, s, _, err := openSession()
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, stop := sessionContext()
	defer stop()

	if err := s.Stop(ctx); err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	fmt.Println("Receiver idle")
	return nil
}

func runSessionOff(cmd *cobra.Command, args []string) error {
	conn, s, _, err := openSession()
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, stop := sessionContext()
	defer stop()

	if err := s.PowerOff(ctx); err != nil {
		return fmt.Errorf("power off: %w", err)
	}
	fmt.Println("Receiver off")
	return nil
}
