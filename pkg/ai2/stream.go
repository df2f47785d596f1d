// SPDX-License-Identifier: MIT

package ai2

import (
	"context"
	"errors"
	"io"
)

// Event is one decode outcome published by a Stream. Exactly one of
// Record and Err is set for record events; acknowledgement frames publish
// with only Frame set.
type Event struct {
	Frame  *Frame // the frame this event came from, nil for frame-level errors
	Record Record
	Err    error
}

// Stream runs the decode loop for one transport: a background goroutine
// reads raw bytes, assembles frames, demultiplexes sub-packets, decodes
// records, and publishes Events on a buffered channel.
//
// The loop never blocks on the consumer. When the channel is full, events
// are dropped and counted; frame assembly keeps running. The loop ends
// when the reader fails (a closed transport unblocks the pending read) or
// the context is cancelled, after which the event channel is closed and
// Err reports any terminal transport error.
type Stream struct {
	r      io.Reader
	dec    *Decoder
	stats  *Statistics
	events chan Event
	err    error
}

// NewStream creates a stream reading from r. A buffer of zero or less
// selects a default event channel capacity of 256.
func NewStream(r io.Reader, buffer int) *Stream {
	if buffer <= 0 {
		buffer = 256
	}
	return &Stream{
		r:      r,
		dec:    NewDecoder(),
		stats:  NewStatistics(),
		events: make(chan Event, buffer),
	}
}

// Events returns the event channel. It is closed when the decode loop
// terminates.
func (s *Stream) Events() <-chan Event {
	return s.events
}

// Stats returns the stream's statistics tracker.
func (s *Stream) Stats() *Statistics {
	return s.stats
}

// Err returns the terminal transport error, if any. Only valid after the
// event channel has been closed. Cancellation and plain end-of-stream are
// not errors.
func (s *Stream) Err() error {
	return s.err
}

// Start launches the decode loop goroutine.
//
// Cancelling ctx stops the loop at the next read return; to unblock a
// read in progress, close the transport.
func (s *Stream) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *Stream) run(ctx context.Context) {
	defer close(s.events)

	buf := make([]byte, 512)
	for {
		n, err := s.r.Read(buf)

		for i := 0; i < n; i++ {
			frame, decodeErr := s.dec.DecodeByte(buf[i])
			if decodeErr != nil {
				s.stats.NoteError(decodeErr)
				s.publish(Event{Err: decodeErr})
			}
			if frame != nil {
				s.handleFrame(frame)
			}
		}

		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, io.EOF) {
				s.err = err
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (s *Stream) handleFrame(frame *Frame) {
	s.stats.NoteFrame(frame)

	if frame.IsAck() {
		s.publish(Event{Frame: frame})
		return
	}

	subs, err := frame.Subpackets()
	for _, sub := range subs {
		rec, recErr := DecodeRecord(sub.Type, sub.Payload)
		if recErr != nil {
			s.stats.NoteError(recErr)
			s.publish(Event{Frame: frame, Err: recErr})
			continue
		}
		s.stats.NoteRecord(rec)
		s.publish(Event{Frame: frame, Record: rec})
	}
	if err != nil {
		// Truncated body: earlier sub-packets were still delivered.
		s.stats.NoteError(err)
		s.publish(Event{Frame: frame, Err: err})
	}
}

// publish hands an event to the consumer without ever blocking the decode
// loop.
func (s *Stream) publish(ev Event) {
	select {
	case s.events <- ev:
	default:
		s.stats.NoteDropped()
	}
}
