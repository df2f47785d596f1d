// SPDX-License-Identifier: MIT

package ai2

import "encoding/binary"

// Subpacket is one typed, length-delimited unit inside a frame body.
type Subpacket struct {
	Type    byte
	Payload []byte
}

// SplitBody demultiplexes a frame body into its sub-packets. Sub-packets
// are packed back to back: type (1 byte), payload length (2 bytes,
// little-endian), then exactly that many payload bytes. Zero-length
// payloads are legal.
//
// If a declared length runs past the end of the body, the sub-packets
// extracted so far are returned together with a TruncatedError; the rest
// of the body is not processed.
func SplitBody(body []byte) ([]Subpacket, error) {
	var subs []Subpacket

	for len(body) >= 3 {
		typ := body[0]
		length := int(binary.LittleEndian.Uint16(body[1:3]))
		body = body[3:]

		if len(body) < length {
			return subs, &TruncatedError{Type: typ, Need: length, Have: len(body)}
		}

		subs = append(subs, Subpacket{Type: typ, Payload: body[:length]})
		body = body[length:]
	}

	return subs, nil
}
