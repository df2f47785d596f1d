// SPDX-License-Identifier: MIT

package ai2

import (
	"bytes"
	"testing"
)

func TestEncodeCommand_GoldenVectors(t *testing.T) {
	// Expected wire bytes are captures from a real receiver bring-up.
	tests := []struct {
		name string
		cmd  Command
		wire []byte
	}{
		{
			name: "error report on",
			cmd:  ErrorReportCommand(true),
			wire: []byte{0x10, 0x00, 0xF5, 0x01, 0x00, 0x01, 0x07, 0x01, 0x10, 0x03},
		},
		{
			name: "protocol query",
			cmd:  ProtocolQueryCommand(),
			wire: []byte{0x10, 0x01, 0xF1, 0x01, 0x00, 0x05, 0x08, 0x01, 0x10, 0x03},
		},
		{
			name: "version query",
			cmd:  VersionQueryCommand(),
			wire: []byte{0x10, 0x01, 0xF0, 0x00, 0x00, 0x01, 0x01, 0x10, 0x03},
		},
		{
			name: "receiver idle",
			cmd:  ReceiverStateCommand(ReceiverIdle),
			wire: []byte{0x10, 0x01, 0x02, 0x01, 0x00, 0x02, 0x16, 0x00, 0x10, 0x03},
		},
		{
			name: "receiver on",
			cmd:  ReceiverStateCommand(ReceiverOn),
			wire: []byte{0x10, 0x01, 0x02, 0x01, 0x00, 0x03, 0x17, 0x00, 0x10, 0x03},
		},
		{
			name: "fix rate default",
			cmd:  FixRateCommand(0),
			wire: []byte{0x10, 0x01, 0xED, 0x01, 0x00, 0x00, 0xFF, 0x00, 0x10, 0x03},
		},
		{
			name: "position report config",
			cmd:  PositionReportCommand(),
			wire: []byte{
				0x10, 0x01, 0x06, 0x0D, 0x00, 0x01, 0x0E, 0x00, 0x00, 0x00,
				0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x34, 0x00,
				0x10, 0x03,
			},
		},
		{
			name: "nmea start",
			cmd:  NMEAStartCommand(),
			wire: []byte{0x10, 0x00, 0x22, 0x01, 0x00, 0x01, 0x34, 0x00, 0x10, 0x03},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wire, err := tt.cmd.Encode()
			if err != nil {
				t.Fatalf("encode error: %v", err)
			}
			if !bytes.Equal(wire, tt.wire) {
				t.Errorf("wire mismatch:\n got  % X\n want % X", wire, tt.wire)
			}
		})
	}
}

func TestEncodeCommand_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		class   byte
		command byte
		payload []byte
	}{
		{"empty payload", ClassReceiver, 0x02, nil},
		{"single byte", ClassReceiver, 0x02, []byte{0x03}},
		{"single mark", ClassSystem, 0x7F, []byte{0x10}},
		{"all marks", ClassReceiver, 0x10, []byte{0x10, 0x10, 0x10, 0x10}},
		{"mark and terminator bytes", ClassSystem, 0xE5, []byte{0x10, 0x03, 0x10, 0x03}},
		{"mark class", Mark, 0x01, []byte{0xAA, 0xBB}},
		{"long payload crossing length high byte", ClassReceiver, 0x06, bytes.Repeat([]byte{0x10, 0x42}, 200)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wire, err := EncodeCommand(tt.class, tt.command, tt.payload)
			if err != nil {
				t.Fatalf("encode error: %v", err)
			}

			if wire[0] != Mark {
				t.Errorf("frame should start with Mark, got 0x%02X", wire[0])
			}
			if wire[len(wire)-2] != Mark || wire[len(wire)-1] != Term {
				t.Error("frame should end with Mark+Term")
			}

			frames, errs := feed(NewDecoder(), wire)
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
			if err != nil {
				t.Fatalf("Subpackets: %v", err)
			}
			if len(subs) != 1 {
				t.Fatalf("expected 1 sub-packet, got %d", len(subs))
			}
			if subs[0].Type != tt.command {
				t.Errorf("command: got 0x%02X, want 0x%02X", subs[0].Type, tt.command)
			}
			want := tt.payload
			if want == nil {
				want = []byte{}
			}
			if !bytes.Equal(subs[0].Payload, want) {
				t.Errorf("payload mismatch:\n got  % X\n want % X", subs[0].Payload, want)
			}
		})
	}
}

func TestEncodeFrame_TerminatorClassRejected(t *testing.T) {
	// Class 0x03 reaches the wire unescaped right after the sync byte,
	// where the decoder reads it as the tail of an abandoned frame. The
	// encoder must refuse it rather than emit an undecodable frame.
	if _, err := EncodeFrame(Term, nil); err == nil {
		t.Error("EncodeFrame accepted the terminator byte as a class")
	}
	if _, err := EncodeCommand(Term, 0x02, []byte{0x01}); err == nil {
		t.Error("EncodeCommand accepted the terminator byte as a class")
	}
}

func TestEncodeCommand_PayloadTooLarge(t *testing.T) {
	if _, err := EncodeCommand(ClassReceiver, 0x06, make([]byte, 0x10000)); err == nil {
		t.Error("expected error for payload over 65535 bytes")
	}
}

func TestEncodeFrame_MultiSubpacketBody(t *testing.T) {
	var body []byte
	body = AppendSubpacket(body, TypeError, []byte{0x01, 0x00})
	body = AppendSubpacket(body, TypeAsyncEvent, []byte{0x02})
	wire := mustFrame(t, ClassSystem, body)

	frames, errs := feed(NewDecoder(), wire)
	if len(errs) != 0 || len(frames) != 1 {
		t.Fatalf("decode: frames=%d errs=%v", len(frames), errs)
	}
	subs, err := frames[0].Subpackets()
	if err != nil {
		t.Fatalf("Subpackets: %v", err)
	}
	if len(subs) != 2 || subs[0].Type != TypeError || subs[1].Type != TypeAsyncEvent {
		t.Errorf("unexpected sub-packets: %+v", subs)
	}
}
