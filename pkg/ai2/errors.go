// SPDX-License-Identifier: MIT

package ai2

import (
	"errors"
	"fmt"
)

// Sentinel decode outcomes. Both are recoverable: the decoder has already
// resynchronized when they are returned.
var (
	// ErrFrameCancelled is returned when a terminator arrives before any
	// frame content, i.e. the tail of a frame whose start we never saw.
	ErrFrameCancelled = errors.New("frame cancelled before any content")

	// ErrFrameTooShort is returned for a terminated frame too small to
	// hold a class byte and checksum.
	ErrFrameTooShort = errors.New("frame too short for class and checksum")
)

// ChecksumError reports a frame whose transmitted checksum does not match
// the running sum of its content. The frame is dropped; retransmission is
// the sender's problem.
type ChecksumError struct {
	Want uint16 // checksum carried by the frame
	Got  uint16 // checksum computed over the received bytes
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch: frame says 0x%04X, computed 0x%04X", e.Want, e.Got)
}

// FrameTooLongError reports an in-progress frame that exceeded
// MaxFrameSize and was abandoned.
type FrameTooLongError struct {
	Limit int
}

func (e *FrameTooLongError) Error() string {
	return fmt.Sprintf("overlong frame, throwing away (limit %d bytes)", e.Limit)
}

// InvalidEscapeError reports a Mark byte followed by something other than
// Mark or Term. The stream is corrupt at that point and the frame is
// discarded rather than mis-assembled.
type InvalidEscapeError struct {
	Byte byte
}

func (e *InvalidEscapeError) Error() string {
	return fmt.Sprintf("mark byte followed by 0x%02X, discarding frame", e.Byte)
}

// TruncatedError reports a sub-packet whose declared length runs past the
// end of the frame body. Sub-packets before it are still delivered.
type TruncatedError struct {
	Type byte
	Need int
	Have int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("sub-packet 0x%02X cut off: need %d payload bytes, have %d", e.Type, e.Need, e.Have)
}

// ShortRecordError reports a record payload smaller than its fixed header.
type ShortRecordError struct {
	Type byte
	Need int
	Have int
}

func (e *ShortRecordError) Error() string {
	return fmt.Sprintf("record 0x%02X too short: need %d bytes, have %d", e.Type, e.Need, e.Have)
}

// MalformedRecordError reports a record whose payload length is outright
// wrong for its type, e.g. an error report that is not exactly 2 bytes.
type MalformedRecordError struct {
	Type byte
	Len  int
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("record 0x%02X malformed: unexpected length %d", e.Type, e.Len)
}
