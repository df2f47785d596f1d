// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pelorus-nav/pelorus/pkg/ai2"
)

var (
	frameTestTimeout int
)

var frameTestCmd = &cobra.Command{
	Use:   "frame_test",
	Short: "Test connection by waiting for a valid AI2 frame",
	Long: `Wait for a valid AI2 frame on the connection until timeout.

This command connects to a device, serial port or WebSocket and waits for
any frame that passes the checksum check. Line noise and framing errors
are ignored while waiting.

Exit codes:
  0 - Frame received before timeout
  1 - Timeout reached without receiving a valid frame
  2 - Connection error

Useful for checking that a receiver is alive and speaking binary AI2
rather than NMEA.`,
	RunE: runFrameTest,
}

func init() {
	rootCmd.AddCommand(frameTestCmd)
	frameTestCmd.Flags().IntVar(&frameTestTimeout, "timeout", 10, "Timeout in seconds to wait for a frame")
}

func runFrameTest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	conn, connInfo, err := OpenConnection(cfg.Device)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("Pelorus - Frame Test\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n", frameTestTimeout)
	fmt.Printf("Waiting for valid AI2 frame...\n\n")

	decoder := ai2.NewDecoder()
	buf := make([]byte, 128)

	// Channel for frame reception
	frameChan := make(chan *ai2.Frame, 1)
	errChan := make(chan error, 1)

	// Reader goroutine
	go func() {
		decodeErrors := 0
		for {
			n, err := conn.Read(buf)
			if err != nil {
				errChan <- err
				return
			}

			for i := 0; i < n; i++ {
				frame, decodeErr := decoder.DecodeByte(buf[i])
				if decodeErr != nil {
					// Ignore decode errors while waiting, just count them
					decodeErrors++
					continue
				}
				if frame != nil {
					// Got a valid frame!
					if decoder.NoiseBytes() > 0 || decodeErrors > 0 {
						fmt.Printf("(skipped %d noise bytes, %d framing errors before sync)\n",
							decoder.NoiseBytes(), decodeErrors)
					}
					frameChan <- frame
					return
				}
			}
		}
	}()

	// Wait for frame or timeout
	select {
	case frame := <-frameChan:
		fmt.Printf("SUCCESS: Received valid frame\n")
		fmt.Printf("  Class: 0x%02X\n", frame.Class())
		fmt.Printf("  Body: %d bytes\n", len(frame.Body()))
		fmt.Printf("  Checksum: 0x%04X\n", frame.Checksum())
		if frame.IsAck() {
			fmt.Printf("  (acknowledgement frame)\n")
		} else if subs, err := frame.Subpackets(); err == nil {
			for _, sub := range subs {
				fmt.Printf("  Sub-packet: %s (0x%02X), %d bytes\n",
					ai2.FormatRecordType(sub.Type), sub.Type, len(sub.Payload))
			}
		}
		os.Exit(0)

	case err := <-errChan:
		fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		os.Exit(2)

	case <-time.After(time.Duration(frameTestTimeout) * time.Second):
		fmt.Fprintf(os.Stderr, "TIMEOUT: No valid frame received within %d seconds\n", frameTestTimeout)
		os.Exit(1)
	}

	return nil
}
