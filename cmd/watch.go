// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pelorus-nav/pelorus/pkg/ai2"
)

var (
	watchCapturePath string
	watchShowFrames  bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Display decoded receiver records in human-readable format",
	Long: `Continuously decode and display AI2 records as they arrive.

Each position fix, satellite measurement set, NMEA sentence, and receiver
event is printed with its decoded fields; unknown record types are hex
dumped. Decode errors are reported inline and the decode loop
resynchronizes on the next frame.

With --capture, every decoded record is also appended to a CBOR capture
file for later replay with the playback command.

Supports device, serial and WebSocket connections.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchCapturePath, "capture", "", "Append decoded records to a CBOR capture file")
	watchCmd.Flags().BoolVar(&watchShowFrames, "frames", false, "Also print a header line per frame")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	conn, connInfo, err := OpenConnection(cfg.Device)
	if err != nil {
		return err
	}
	defer conn.Close()

	capturePath := watchCapturePath
	if capturePath == "" && cfg.Capture.Enable {
		capturePath = cfg.Capture.Path
	}

	var capture *ai2.CaptureWriter
	if capturePath != "" {
		f, err := os.OpenFile(capturePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open capture file: %w", err)
		}
		defer f.Close()
		capture = ai2.NewCaptureWriter(f)
	}

	fmt.Printf("Pelorus - Record Watch\n")
	fmt.Printf("Connection: %s\n", connInfo)
	if capturePath != "" {
		fmt.Printf("Capture: %s\n", capturePath)
	}
	fmt.Printf("Press Ctrl+C to exit\n\n")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stream := ai2.NewStream(conn, 0)
	stream.Start(ctx)

	// Closing the transport on Ctrl+C unblocks the pending read so the
	// stream can wind down.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for ev := range stream.Events() {
		switch {
		case ev.Err != nil:
			fmt.Printf("[ERROR] %v\n", ev.Err)

		case ev.Record != nil:
			if watchShowFrames && ev.Frame != nil {
				fmt.Println(ai2.FormatFrame(ev.Frame))
			}
			fmt.Println(ai2.FormatRecord(ev.Record))

			if capture != nil {
				if err := capture.WriteRecord(ev.Frame.Timestamp(), ev.Record); err != nil {
					log.Printf("capture error: %v", err)
				}
			}

		case ev.Frame != nil && ev.Frame.IsAck():
			if watchShowFrames {
				fmt.Println(ai2.FormatFrame(ev.Frame))
			}
		}
	}

	fmt.Printf("\n%s", stream.Stats().Snapshot())
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("connection lost: %w", err)
	}
	return nil
}
