// SPDX-License-Identifier: MIT

// Package bootcfg builds the OMAP4 software boot-order record consumed by
// the boot ROM on a warm reset. The record and its pointer live in public
// SAR RAM; this package only produces the bytes and writes them to a
// caller-supplied sink, it never touches /dev/mem itself.
package bootcfg

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

// SAR RAM layout. The boot ROM finds the record through the pointer slot;
// the record itself sits a little further into the free area.
const (
	SARRAMBase    = 0x4A326000
	PointerOffset = 0xA00 // PUBLIC_SW_BOOT_CFG_ADDR
	RecordOffset  = 0xA0C // PUBLIC_SAR_RAM_1_FREE, may conflict with power saving code

	recordMarker = 0xCF00AA01
	recordLength = 0xC // flags + 5 device slots, bytes

	maxDevices = 5
)

// Device is a boot ROM device code.
type Device uint16

// Boot device codes for the OMAP4 boot ROM.
const (
	DeviceMMC1 Device = 0x05 // external card slot (MMC2 is the eMMC)
	DeviceUART Device = 0x43
	DeviceUSB  Device = 0x45 // USB UTMI
)

// String returns the device code name.
func (d Device) String() string {
	switch d {
	case DeviceMMC1:
		return "MMC1"
	case DeviceUART:
		return "UART"
	case DeviceUSB:
		return "USB"
	default:
		return fmt.Sprintf("DEVICE(0x%02X)", uint16(d))
	}
}

// Record is a software boot-order record: the ROM tries the listed
// devices in order. Up to five devices; unused slots are zero.
type Record struct {
	Flags   uint16
	Devices []Device
}

// RecoveryRecord is the boot order used to reflash a bricked device:
// serial first, then USB, then the external card slot.
func RecoveryRecord() Record {
	return Record{Devices: []Device{DeviceUART, DeviceUSB, DeviceMMC1}}
}

// MarshalBinary encodes the record: marker, length, flags, five device
// slots, all little-endian.
func (r Record) MarshalBinary() ([]byte, error) {
	if len(r.Devices) > maxDevices {
		return nil, fmt.Errorf("boot record holds at most %d devices, got %d", maxDevices, len(r.Devices))
	}

	buf := make([]byte, 8+recordLength)
	binary.LittleEndian.PutUint32(buf[0:4], recordMarker)
	binary.LittleEndian.PutUint32(buf[4:8], recordLength)
	binary.LittleEndian.PutUint16(buf[8:10], r.Flags)
	for i, d := range r.Devices {
		binary.LittleEndian.PutUint16(buf[10+2*i:12+2*i], uint16(d))
	}
	return buf, nil
}

// Write places the record in the SAR RAM image and points the boot ROM
// pointer slot at it. w is the SAR RAM region starting at SARRAMBase.
func Write(w io.WriterAt, r Record) error {
	rec, err := r.MarshalBinary()
	if err != nil {
		return err
	}
	if _, err := w.WriteAt(rec, RecordOffset); err != nil {
		return fmt.Errorf("write boot record: %w", err)
	}

	var ptr [4]byte
	binary.LittleEndian.PutUint32(ptr[:], SARRAMBase+RecordOffset)
	if _, err := w.WriteAt(ptr[:], PointerOffset); err != nil {
		return fmt.Errorf("write boot record pointer: %w", err)
	}
	return nil
}

// WriteBootMode stores a NUL-terminated boot mode string ("normal",
// "normal_boot") where old factory u-boots look for it. Shares the record
// slot, so it is exclusive with Write.
func WriteBootMode(w io.WriterAt, mode string) error {
	if mode == "" {
		return fmt.Errorf("empty boot mode")
	}
	for i := 0; i < len(mode); i++ {
		if mode[i] < 0x20 || mode[i] > 0x7E {
			return fmt.Errorf("boot mode must be printable ASCII")
		}
	}
	// Stay inside the mapped SAR RAM page, NUL included.
	if len(mode)+1 > 0x1000-RecordOffset {
		return fmt.Errorf("boot mode string too long")
	}
	if _, err := w.WriteAt(append([]byte(mode), 0), RecordOffset); err != nil {
		return fmt.Errorf("write boot mode: %w", err)
	}
	return nil
}

// restartPause gives the read-only remount time to land before the reset.
const restartPause = time.Second

// Restart asks the kernel for an emergency read-only remount followed by
// an immediate reboot, via a sysrq trigger writer. The pause between the
// two is context-interruptible; once "b" is written the machine is gone.
func Restart(ctx context.Context, trigger io.Writer) error {
	if _, err := trigger.Write([]byte("u")); err != nil {
		return fmt.Errorf("sysrq remount: %w", err)
	}

	t := time.NewTimer(restartPause)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
	}

	if _, err := trigger.Write([]byte("b")); err != nil {
		return fmt.Errorf("sysrq reboot: %w", err)
	}
	return nil
}
