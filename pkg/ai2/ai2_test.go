// SPDX-License-Identifier: MIT

package ai2

import (
	"bytes"
	"errors"
	"testing"
)

// ============================================================
// Checksum Tests
// ============================================================

func TestChecksum_Empty(t *testing.T) {
	if sum := Checksum(nil); sum != 0 {
		t.Errorf("checksum of empty data should be 0, got 0x%04X", sum)
	}
}

func TestChecksum_KnownVectors(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected uint16
	}{
		{
			// sync + class + sub-packet of the error-reporting command
			name:     "error report command content",
			data:     []byte{0x10, 0x00, 0xF5, 0x01, 0x00, 0x01},
			expected: 0x0107,
		},
		{
			name:     "receiver idle command content",
			data:     []byte{0x10, 0x01, 0x02, 0x01, 0x00, 0x02},
			expected: 0x0016,
		},
		{
			name:     "wraps modulo 65536",
			data:     bytes.Repeat([]byte{0xFF}, 257),
			expected: uint16(257 * 0xFF),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if sum := Checksum(tt.data); sum != tt.expected {
				t.Errorf("checksum mismatch: expected 0x%04X, got 0x%04X", tt.expected, sum)
			}
		})
	}
}

// ============================================================
// Stuffing Tests
// ============================================================

func TestStuffBytes(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		out  []byte
	}{
		{"no marks", []byte{0x01, 0x02, 0x03}, []byte{0x01, 0x02, 0x03}},
		{"single mark doubles", []byte{0x10}, []byte{0x10, 0x10}},
		{"mark between content", []byte{0x01, 0x10, 0x02}, []byte{0x01, 0x10, 0x10, 0x02}},
		{"consecutive marks", []byte{0x10, 0x10}, []byte{0x10, 0x10, 0x10, 0x10}},
		{"empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stuffBytes(tt.in)
			if !bytes.Equal(got, tt.out) {
				t.Errorf("stuffBytes(% X) = % X, want % X", tt.in, got, tt.out)
			}
		})
	}
}

func TestUnstuffBytes_RoundTrip(t *testing.T) {
	inputs := [][]byte{
		{},
		{0x01, 0x02, 0x03},
		{0x10},
		{0x10, 0x10, 0x10},
		{0x00, 0x10, 0xFF, 0x10, 0x03},
	}

	for _, in := range inputs {
		got, err := UnstuffBytes(stuffBytes(in))
		if err != nil {
			t.Fatalf("UnstuffBytes(stuffBytes(% X)) error: %v", in, err)
		}
		if !bytes.Equal(got, in) {
			t.Errorf("round trip of % X gave % X", in, got)
		}
	}
}

func TestUnstuffBytes_Errors(t *testing.T) {
	if _, err := UnstuffBytes([]byte{0x10}); err == nil {
		t.Error("expected error for trailing unpaired mark")
	}
	if _, err := UnstuffBytes([]byte{0x10, 0x42}); err == nil {
		t.Error("expected error for mark followed by non-mark")
	}
}

// ============================================================
// Sub-packet Demultiplexer Tests
// ============================================================

func TestSplitBody_ThreeSubpackets(t *testing.T) {
	p1 := []byte{0xAA}
	p2 := []byte{0xBB, 0xCC, 0xDD}
	p3 := []byte{}

	var body []byte
	body = AppendSubpacket(body, 0x06, p1)
	body = AppendSubpacket(body, 0x08, p2)
	body = AppendSubpacket(body, 0xD3, p3)

	if want := len(p1) + len(p2) + len(p3) + 9; len(body) != want {
		t.Fatalf("body length %d, want %d", len(body), want)
	}

	subs, err := SplitBody(body)
	if err != nil {
		t.Fatalf("SplitBody error: %v", err)
	}
	if len(subs) != 3 {
		t.Fatalf("expected 3 sub-packets, got %d", len(subs))
	}

	if subs[0].Type != 0x06 || !bytes.Equal(subs[0].Payload, p1) {
		t.Errorf("sub-packet 0 mismatch: %+v", subs[0])
	}
	if subs[1].Type != 0x08 || !bytes.Equal(subs[1].Payload, p2) {
		t.Errorf("sub-packet 1 mismatch: %+v", subs[1])
	}
	if subs[2].Type != 0xD3 || len(subs[2].Payload) != 0 {
		t.Errorf("sub-packet 2 mismatch: %+v", subs[2])
	}
}

func TestSplitBody_Truncated(t *testing.T) {
	var body []byte
	body = AppendSubpacket(body, 0x06, []byte{0x01, 0x02})
	// Second sub-packet claims 100 payload bytes but only 2 follow
	body = append(body, 0x08, 100, 0x00, 0xAA, 0xBB)

	subs, err := SplitBody(body)
	if err == nil {
		t.Fatal("expected truncation error")
	}
	var trunc *TruncatedError
	if !errors.As(err, &trunc) {
		t.Fatalf("expected TruncatedError, got %T: %v", err, err)
	}
	if trunc.Type != 0x08 || trunc.Need != 100 || trunc.Have != 2 {
		t.Errorf("unexpected truncation details: %+v", trunc)
	}

	// The complete sub-packet before the cut is still delivered
	if len(subs) != 1 || subs[0].Type != 0x06 {
		t.Fatalf("expected 1 delivered sub-packet, got %d", len(subs))
	}
}

func TestSplitBody_Empty(t *testing.T) {
	subs, err := SplitBody(nil)
	if err != nil {
		t.Fatalf("SplitBody(nil) error: %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("expected no sub-packets, got %d", len(subs))
	}
}

func TestSplitBody_TrailingShortHeader(t *testing.T) {
	// Fewer than 3 bytes remaining is not an error, just the end
	subs, err := SplitBody([]byte{0x06, 0x00})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("expected no sub-packets, got %d", len(subs))
	}
}

// ============================================================
// Frame Tests
// ============================================================

func TestFrame_Accessors(t *testing.T) {
	body := AppendSubpacket(nil, TypeError, []byte{0x01, 0x00})
	f := NewFrame(ClassSystem, body)

	if f.Class() != ClassSystem {
		t.Errorf("class mismatch: 0x%02X", f.Class())
	}
	if f.IsAck() {
		t.Error("class 0 frame should not be an ack")
	}
	if !bytes.Equal(f.Body(), body) {
		t.Error("body mismatch")
	}

	subs, err := f.Subpackets()
	if err != nil || len(subs) != 1 {
		t.Fatalf("Subpackets: %v, %d subs", err, len(subs))
	}
}

func TestFrame_Ack(t *testing.T) {
	f := NewFrame(ClassAck, nil)
	if !f.IsAck() {
		t.Error("class 2 frame should be an ack")
	}
	if len(f.Body()) != 0 {
		t.Error("ack frames carry no body")
	}
}
