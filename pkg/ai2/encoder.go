// SPDX-License-Identifier: MIT

package ai2

import (
	"encoding/binary"
	"fmt"
)

// EncodeFrame builds a complete wire-formatted frame around an arbitrary
// body: sync byte, class, body, little-endian checksum over the unescaped
// logical bytes, byte stuffing on everything between the sync byte and the
// checksum inclusive, then the Mark+Term terminator.
//
// The terminator byte is not a legal class: on the wire it would sit
// unescaped right after the sync byte, where a decoder reads it as the
// tail of an abandoned frame.
func EncodeFrame(class byte, body []byte) ([]byte, error) {
	if class == Term {
		return nil, fmt.Errorf("class 0x%02X collides with the frame terminator", class)
	}

	content := make([]byte, 0, 2+len(body)+2)
	content = append(content, Mark, class)
	content = append(content, body...)

	sum := Checksum(content)
	content = append(content, byte(sum), byte(sum>>8))

	// Worst case every stuffed byte doubles.
	frame := make([]byte, 0, 2*len(content)+2)
	frame = append(frame, Mark)
	frame = append(frame, stuffBytes(content[1:])...)
	frame = append(frame, Mark, Term)

	return frame, nil
}

// EncodeCommand builds an outbound command frame carrying a single
// sub-packet: command opcode, payload length (little-endian), payload.
// This is the exact dual of the decoder: feeding the result back through
// a Decoder and SplitBody reproduces (class, command, payload).
func EncodeCommand(class, command byte, payload []byte) ([]byte, error) {
	if len(payload) > 0xFFFF {
		return nil, fmt.Errorf("command 0x%02X payload too large: %d bytes", command, len(payload))
	}
	return EncodeFrame(class, AppendSubpacket(nil, command, payload))
}

// AppendSubpacket appends a type/length/payload sub-packet to dst and
// returns the extended slice. Useful for building multi-sub-packet frame
// bodies.
func AppendSubpacket(dst []byte, typ byte, payload []byte) []byte {
	var length [2]byte
	binary.LittleEndian.PutUint16(length[:], uint16(len(payload)))
	dst = append(dst, typ, length[0], length[1])
	return append(dst, payload...)
}
