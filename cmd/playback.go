// SPDX-License-Identifier: MIT

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pelorus-nav/pelorus/pkg/ai2"
)

var playbackCmd = &cobra.Command{
	Use:   "playback <capture-file>",
	Short: "Print records from a CBOR capture file",
	Long: `Replay a capture file written by 'watch --capture'.

Each record is printed in the same human-readable format as the live
watch command, prefixed with its original observation time.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlayback,
}

func init() {
	rootCmd.AddCommand(playbackCmd)
}

func runPlayback(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	reader := ai2.NewCaptureReader(f)
	count := 0
	for {
		at, rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("record %d: %w", count+1, err)
		}

		fmt.Printf("[%s] %s\n", at.Format("2006-01-02 15:04:05"), ai2.FormatRecord(rec))
		count++
	}

	fmt.Printf("\n%d records\n", count)
	return nil
}
