// SPDX-License-Identifier: MIT

package ai2

import (
	"encoding/binary"
	"time"
)

// Decoder implements the AI2 frame assembler state machine.
//
// Feed it one byte at a time; it resynchronizes on the Mark byte, undoes
// byte stuffing, and delivers checksum-validated frames. All errors are
// per-frame: the decoder has already returned to idle when one is
// reported, and the next Mark starts a fresh frame.
//
// A Decoder is not safe for concurrent use; it is meant to be owned by a
// single read loop.
type Decoder struct {
	state    int
	buffer   []byte // unescaped frame content, sync byte included
	escaping bool
	noise    uint64
}

// NewDecoder creates a new frame decoder in the idle state.
func NewDecoder() *Decoder {
	return &Decoder{
		state:  stateIdle,
		buffer: make([]byte, 0, MaxFrameSize),
	}
}

// Reset returns the decoder to idle, discarding any partial frame.
func (d *Decoder) Reset() {
	d.state = stateIdle
	d.escaping = false
	d.buffer = d.buffer[:0]
}

// NoiseBytes returns the number of bytes discarded while waiting for
// frame synchronization. Noise is expected after open and after any
// framing loss; it is a diagnostic, not an error.
func (d *Decoder) NoiseBytes() uint64 {
	return d.noise
}

// DecodeByte processes a single byte through the decoder state machine.
// Returns a completed frame, or nil while a frame is still in progress.
// Errors are recoverable per-frame outcomes: ChecksumError,
// FrameTooLongError, InvalidEscapeError, ErrFrameCancelled,
// ErrFrameTooShort.
func (d *Decoder) DecodeByte(b byte) (*Frame, error) {
	if d.state == stateIdle {
		if b != Mark {
			d.noise++
			return nil, nil
		}
		// The sync byte is frame content: it feeds the checksum.
		d.state = stateInFrame
		d.escaping = false
		d.buffer = append(d.buffer[:0], Mark)
		return nil, nil
	}

	if d.escaping {
		d.escaping = false
		switch b {
		case Term:
			return d.finalize()
		case Mark:
			// Doubled Mark: one literal Mark of content.
			return nil, d.push(Mark)
		default:
			// Keeping the stray byte would silently corrupt the frame;
			// treat it as a framing error.
			d.Reset()
			return nil, &InvalidEscapeError{Byte: b}
		}
	}

	if b == Mark {
		d.escaping = true
		return nil, nil
	}

	if b == Term && len(d.buffer) == 1 {
		// Bare terminator right after sync: we joined mid-frame, most
		// likely on the tail of a frame whose start we missed. This
		// makes the terminator byte unusable as a class; the encoder
		// refuses it.
		d.Reset()
		return nil, ErrFrameCancelled
	}

	return nil, d.push(b)
}

// push appends one byte of unescaped content, enforcing the frame size
// limit.
func (d *Decoder) push(b byte) error {
	if len(d.buffer) >= MaxFrameSize {
		d.Reset()
		return &FrameTooLongError{Limit: MaxFrameSize}
	}
	d.buffer = append(d.buffer, b)
	return nil
}

// finalize validates the accumulated frame and hands it out.
func (d *Decoder) finalize() (*Frame, error) {
	buf := d.buffer

	if len(buf) <= 1 {
		// Mark, Mark, Term with nothing in between: an empty frame,
		// cancelled by the sender.
		d.Reset()
		return nil, ErrFrameCancelled
	}
	if len(buf) < 4 {
		d.Reset()
		return nil, ErrFrameTooShort
	}

	want := binary.LittleEndian.Uint16(buf[len(buf)-2:])
	got := Checksum(buf[:len(buf)-2])
	if want != got {
		d.Reset()
		return nil, &ChecksumError{Want: want, Got: got}
	}

	frame := &Frame{
		class:     buf[1],
		body:      append([]byte(nil), buf[2:len(buf)-2]...),
		checksum:  want,
		timestamp: time.Now(),
	}

	d.Reset()
	return frame, nil
}
