// SPDX-License-Identifier: MIT

package ai2

import (
	"bytes"
	"errors"
	"testing"
)

// feed pushes a byte stream through a decoder and collects every
// delivered frame and every reported error.
func feed(d *Decoder, stream []byte) (frames []*Frame, errs []error) {
	for _, b := range stream {
		f, err := d.DecodeByte(b)
		if err != nil {
			errs = append(errs, err)
		}
		if f != nil {
			frames = append(frames, f)
		}
	}
	return frames, errs
}

// mustFrame encodes a frame whose class is known to be encodable.
func mustFrame(t *testing.T, class byte, body []byte) []byte {
	t.Helper()
	wire, err := EncodeFrame(class, body)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return wire
}

// ============================================================
// Frame Assembler Tests
// ============================================================

func TestDecoder_GoldenInitFrames(t *testing.T) {
	// Wire captures from a TI receiver bring-up, checked byte for byte.
	tests := []struct {
		name    string
		wire    []byte
		class   byte
		op      byte
		payload []byte
	}{
		{
			name:    "error report on",
			wire:    []byte{0x10, 0x00, 0xF5, 0x01, 0x00, 0x01, 0x07, 0x01, 0x10, 0x03},
			class:   ClassSystem,
			op:      CmdErrorReport,
			payload: []byte{0x01},
		},
		{
			name:    "protocol query",
			wire:    []byte{0x10, 0x01, 0xF1, 0x01, 0x00, 0x05, 0x08, 0x01, 0x10, 0x03},
			class:   ClassReceiver,
			op:      CmdProtocolQuery,
			payload: []byte{0x05},
		},
		{
			name:    "version query",
			wire:    []byte{0x10, 0x01, 0xF0, 0x00, 0x00, 0x01, 0x01, 0x10, 0x03},
			class:   ClassReceiver,
			op:      CmdVersionQuery,
			payload: []byte{},
		},
		{
			name:    "receiver idle",
			wire:    []byte{0x10, 0x01, 0x02, 0x01, 0x00, 0x02, 0x16, 0x00, 0x10, 0x03},
			class:   ClassReceiver,
			op:      CmdReceiverState,
			payload: []byte{0x02},
		},
		{
			name:    "receiver on",
			wire:    []byte{0x10, 0x01, 0x02, 0x01, 0x00, 0x03, 0x17, 0x00, 0x10, 0x03},
			class:   ClassReceiver,
			op:      CmdReceiverState,
			payload: []byte{0x03},
		},
		{
			name:    "nmea start",
			wire:    []byte{0x10, 0x00, 0x22, 0x01, 0x00, 0x01, 0x34, 0x00, 0x10, 0x03},
			class:   ClassSystem,
			op:      CmdNMEAStart,
			payload: []byte{0x01},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frames, errs := feed(NewDecoder(), tt.wire)
			if len(errs) != 0 {
				t.Fatalf("decode errors: %v", errs)
			}
			if len(frames) != 1 {
				t.Fatalf("expected 1 frame, got %d", len(frames))
			}

			f := frames[0]
			if f.Class() != tt.class {
				t.Errorf("class: got 0x%02X, want 0x%02X", f.Class(), tt.class)
			}
			subs, err := f.Subpackets()
			if err != nil || len(subs) != 1 {
				t.Fatalf("Subpackets: %v, %d subs", err, len(subs))
			}
			if subs[0].Type != tt.op {
				t.Errorf("op: got 0x%02X, want 0x%02X", subs[0].Type, tt.op)
			}
			if !bytes.Equal(subs[0].Payload, tt.payload) {
				t.Errorf("payload: got % X, want % X", subs[0].Payload, tt.payload)
			}
		})
	}
}

func TestDecoder_NoiseResynchronization(t *testing.T) {
	frame := []byte{0x10, 0x01, 0x02, 0x01, 0x00, 0x02, 0x16, 0x00, 0x10, 0x03}

	stream := append([]byte{0x55, 0xAA, 0x00, 0xFF}, frame...)

	d := NewDecoder()
	frames, errs := feed(d, stream)
	if len(errs) != 0 {
		t.Fatalf("decode errors: %v", errs)
	}
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame after noise, got %d", len(frames))
	}
	if d.NoiseBytes() != 4 {
		t.Errorf("noise bytes: got %d, want 4", d.NoiseBytes())
	}
}

func TestDecoder_BackToBackFrames(t *testing.T) {
	f1 := []byte{0x10, 0x01, 0x02, 0x01, 0x00, 0x02, 0x16, 0x00, 0x10, 0x03}
	f2 := []byte{0x10, 0x01, 0x02, 0x01, 0x00, 0x03, 0x17, 0x00, 0x10, 0x03}

	frames, errs := feed(NewDecoder(), append(append([]byte{}, f1...), f2...))
	if len(errs) != 0 {
		t.Fatalf("decode errors: %v", errs)
	}
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}

	// Order preserved: idle first, on second
	if frames[0].Body()[3] != 0x02 || frames[1].Body()[3] != 0x03 {
		t.Error("frames delivered out of order")
	}
}

func TestDecoder_ChecksumSensitivity(t *testing.T) {
	wire, err := EncodeCommand(ClassReceiver, CmdReceiverState, []byte{0x03})
	if err != nil {
		t.Fatal(err)
	}

	// Flip every bit of every byte except the trailing Mark+Term. No
	// corruption may ever produce a successfully decoded frame.
	for pos := 0; pos < len(wire)-2; pos++ {
		for bit := 0; bit < 8; bit++ {
			corrupted := append([]byte(nil), wire...)
			corrupted[pos] ^= 1 << bit

			frames, errs := feed(NewDecoder(), corrupted)
			if len(frames) != 0 {
				t.Fatalf("corrupted frame decoded (byte %d bit %d): % X", pos, bit, corrupted)
			}
			// Depending on where the flip lands this is a checksum
			// mismatch, a framing error, or silence (flipped sync);
			// a checksum pass is the one thing that must not happen.
			_ = errs
		}
	}
}

func TestDecoder_ChecksumMismatchReported(t *testing.T) {
	wire := []byte{0x10, 0x01, 0x02, 0x01, 0x00, 0x02, 0x16, 0x00, 0x10, 0x03}
	corrupted := append([]byte(nil), wire...)
	corrupted[5] ^= 0x01 // payload byte, checksum left alone

	frames, errs := feed(NewDecoder(), corrupted)
	if len(frames) != 0 {
		t.Fatal("corrupted frame decoded")
	}
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	var cksum *ChecksumError
	if !errors.As(errs[0], &cksum) {
		t.Fatalf("expected ChecksumError, got %T: %v", errs[0], errs[0])
	}
	if cksum.Want != 0x0016 {
		t.Errorf("frame checksum: got 0x%04X, want 0x0016", cksum.Want)
	}
}

func TestDecoder_StuffedContent(t *testing.T) {
	// Payload full of Mark bytes: stuffing must round-trip them
	payload := []byte{0x10, 0x10, 0x00, 0x10, 0x03, 0x10}
	wire, err := EncodeCommand(ClassReceiver, 0x42, payload)
	if err != nil {
		t.Fatal(err)
	}

	frames, errs := feed(NewDecoder(), wire)
	if len(errs) != 0 {
		t.Fatalf("decode errors: %v", errs)
	}
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	subs, err := frames[0].Subpackets()
	if err != nil || len(subs) != 1 {
		t.Fatalf("Subpackets: %v", err)
	}
	if !bytes.Equal(subs[0].Payload, payload) {
		t.Errorf("payload: got % X, want % X", subs[0].Payload, payload)
	}
}

func TestDecoder_CancelledFrame(t *testing.T) {
	// Terminator right after sync: we joined mid-frame
	frames, errs := feed(NewDecoder(), []byte{0x10, 0x03})
	if len(frames) != 0 {
		t.Fatal("unexpected frame")
	}
	if len(errs) != 1 || !errors.Is(errs[0], ErrFrameCancelled) {
		t.Fatalf("expected ErrFrameCancelled, got %v", errs)
	}

	// Escaped terminator with no content: empty frame
	frames, errs = feed(NewDecoder(), []byte{0x10, 0x10, 0x03})
	if len(frames) != 0 {
		t.Fatal("unexpected frame")
	}
	if len(errs) != 1 || !errors.Is(errs[0], ErrFrameCancelled) {
		t.Fatalf("expected ErrFrameCancelled, got %v", errs)
	}
}

func TestDecoder_InvalidEscape(t *testing.T) {
	// Mark followed by neither Mark nor Term discards the frame instead
	// of silently keeping the stray byte.
	frames, errs := feed(NewDecoder(), []byte{0x10, 0x01, 0x02, 0x10, 0x42})
	if len(frames) != 0 {
		t.Fatal("unexpected frame")
	}
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	var esc *InvalidEscapeError
	if !errors.As(errs[0], &esc) {
		t.Fatalf("expected InvalidEscapeError, got %T", errs[0])
	}
	if esc.Byte != 0x42 {
		t.Errorf("escape byte: got 0x%02X, want 0x42", esc.Byte)
	}
}

func TestDecoder_InvalidEscapeThenResync(t *testing.T) {
	bad := []byte{0x10, 0x01, 0x02, 0x10, 0x42}
	good := []byte{0x10, 0x01, 0x02, 0x01, 0x00, 0x02, 0x16, 0x00, 0x10, 0x03}

	d := NewDecoder()
	frames, errs := feed(d, append(bad, good...))
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if len(frames) != 1 {
		t.Fatalf("expected recovery with 1 frame, got %d", len(frames))
	}
}

func TestDecoder_OverlongFrame(t *testing.T) {
	stream := make([]byte, 0, MaxFrameSize+16)
	stream = append(stream, 0x10, 0x01)
	for i := 0; i < MaxFrameSize+8; i++ {
		stream = append(stream, 0x42)
	}

	frames, errs := feed(NewDecoder(), stream)
	if len(frames) != 0 {
		t.Fatal("unexpected frame")
	}
	if len(errs) == 0 {
		t.Fatal("expected overlong frame error")
	}
	var overlong *FrameTooLongError
	if !errors.As(errs[0], &overlong) {
		t.Fatalf("expected FrameTooLongError, got %T", errs[0])
	}
}

func TestDecoder_AckFrame(t *testing.T) {
	wire := mustFrame(t, ClassAck, nil)

	frames, errs := feed(NewDecoder(), wire)
	if len(errs) != 0 {
		t.Fatalf("decode errors: %v", errs)
	}
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	if !frames[0].IsAck() {
		t.Error("expected an acknowledgement frame")
	}
	if len(frames[0].Body()) != 0 {
		t.Error("ack frame should have no body")
	}
}

func TestDecoder_ShortFrame(t *testing.T) {
	// sync + class + terminator: no room for a checksum
	frames, errs := feed(NewDecoder(), []byte{0x10, 0x01, 0x10, 0x03})
	if len(frames) != 0 {
		t.Fatal("unexpected frame")
	}
	if len(errs) != 1 || !errors.Is(errs[0], ErrFrameTooShort) {
		t.Fatalf("expected ErrFrameTooShort, got %v", errs)
	}
}
