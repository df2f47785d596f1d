// SPDX-License-Identifier: MIT

package ai2

import "time"

// Frame represents one validated, unescaped AI2 frame.
type Frame struct {
	class     byte
	body      []byte
	checksum  uint16
	timestamp time.Time
}

// NewFrame creates a frame with the given class and body. The checksum is
// the one a well-formed encoding of this frame would carry.
func NewFrame(class byte, body []byte) *Frame {
	content := make([]byte, 0, 2+len(body))
	content = append(content, Mark, class)
	content = append(content, body...)
	return &Frame{
		class:     class,
		body:      body,
		checksum:  Checksum(content),
		timestamp: time.Now(),
	}
}

// Class returns the frame's channel/category byte.
func (f *Frame) Class() byte {
	return f.class
}

// Body returns the frame content after the sync and class bytes, i.e. the
// packed sub-packets. Empty for acknowledgements.
func (f *Frame) Body() []byte {
	return f.body
}

// Checksum returns the frame's validated 16-bit checksum.
func (f *Frame) Checksum() uint16 {
	return f.checksum
}

// Timestamp returns the frame's decode timestamp.
func (f *Frame) Timestamp() time.Time {
	return f.timestamp
}

// IsAck returns true for pure acknowledgement frames, which carry no
// sub-packets.
func (f *Frame) IsAck() bool {
	return f.class == ClassAck
}

// Subpackets demultiplexes the frame body. See SplitBody.
func (f *Frame) Subpackets() ([]Subpacket, error) {
	return SplitBody(f.body)
}
