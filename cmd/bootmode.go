// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pelorus-nav/pelorus/pkg/bootcfg"
)

var (
	bootSARImage     string
	bootMode         string
	bootRecovery     bool
	bootRestart      bool
	bootSysrqTrigger string
)

var bootmodeCmd = &cobra.Command{
	Use:   "bootmode",
	Short: "Write an OMAP4 boot-configuration record",
	Long: `Write the software boot-order record (or a u-boot boot mode string)
into a SAR RAM image, optionally followed by a sysrq emergency restart.

The record tells the boot ROM which devices to try on the next warm
reset; --recovery selects the serial/USB/MMC order used to reflash a
device. --mode instead writes a NUL-terminated mode string for old
factory u-boots.

The SAR RAM image is an ordinary file or device node (--sar-image);
mapping physical memory is the operator's job, typically via a /dev/mem
helper. With --restart, "u" and "b" are written to the sysrq trigger,
which remounts filesystems read-only and reboots THE LOCAL MACHINE.`,
	RunE: runBootmode,
}

func init() {
	rootCmd.AddCommand(bootmodeCmd)
	bootmodeCmd.Flags().StringVar(&bootSARImage, "sar-image", "", "SAR RAM image file to write (required)")
	bootmodeCmd.Flags().StringVar(&bootMode, "mode", "", "u-boot boot mode string (e.g. normal_boot)")
	bootmodeCmd.Flags().BoolVar(&bootRecovery, "recovery", false, "Write the UART/USB/MMC1 recovery boot order")
	bootmodeCmd.Flags().BoolVar(&bootRestart, "restart", false, "Trigger a sysrq remount+reboot afterwards")
	bootmodeCmd.Flags().StringVar(&bootSysrqTrigger, "sysrq-trigger", "/proc/sysrq-trigger", "Sysrq trigger file")
}

func runBootmode(cmd *cobra.Command, args []string) error {
	if bootSARImage == "" {
		return fmt.Errorf("--sar-image is required")
	}
	if bootRecovery == (bootMode == "") {
		return fmt.Errorf("exactly one of --recovery and --mode must be given")
	}

	f, err := os.OpenFile(bootSARImage, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("open SAR image: %w", err)
	}
	defer f.Close()

	if bootRecovery {
		record := bootcfg.RecoveryRecord()
		if err := bootcfg.Write(f, record); err != nil {
			return err
		}
		fmt.Printf("Boot order written: %v\n", record.Devices)
	} else {
		if err := bootcfg.WriteBootMode(f, bootMode); err != nil {
			return err
		}
		fmt.Printf("Boot mode written: %s\n", bootMode)
	}

	if !bootRestart {
		return nil
	}

	trigger, err := os.OpenFile(bootSysrqTrigger, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("cannot reboot via sysrq, no emergency ro mount possible: %w", err)
	}
	defer trigger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("Restarting via sysrq...")
	return bootcfg.Restart(ctx, trigger)
}
