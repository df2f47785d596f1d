// SPDX-License-Identifier: MIT

package ai2

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Statistics tracks frame and record counts and error rates for one
// decode loop. Safe for concurrent use: the decode loop updates it while
// a UI reads snapshots.
type Statistics struct {
	mu    sync.Mutex
	start time.Time
	s     Summary
}

// Summary is a point-in-time copy of the counters.
type Summary struct {
	Frames         uint64
	Acks           uint64
	Records        uint64
	UnknownRecords uint64
	RecordsByType  map[byte]uint64

	ChecksumErrors  uint64
	OverlongFrames  uint64
	CancelledFrames uint64
	EscapeErrors    uint64
	ShortFrames     uint64
	TruncatedSubs   uint64
	RecordErrors    uint64
	DroppedEvents   uint64

	Elapsed   time.Duration
	FrameRate float64 // frames/sec
	ErrorRate float64 // errors/sec
}

// NewStatistics creates a statistics tracker.
func NewStatistics() *Statistics {
	return &Statistics{
		start: time.Now(),
		s:     Summary{RecordsByType: make(map[byte]uint64)},
	}
}

// NoteFrame counts a delivered frame.
func (st *Statistics) NoteFrame(f *Frame) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.Frames++
	if f.IsAck() {
		st.s.Acks++
	}
}

// NoteRecord counts a decoded record.
func (st *Statistics) NoteRecord(rec Record) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.Records++
	st.s.RecordsByType[rec.RecordType()]++
	if _, ok := rec.(Unknown); ok {
		st.s.UnknownRecords++
	}
}

// NoteError classifies a decode error into its counter.
func (st *Statistics) NoteError(err error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	var (
		cksum    *ChecksumError
		overlong *FrameTooLongError
		escape   *InvalidEscapeError
		trunc    *TruncatedError
		short    *ShortRecordError
		malf     *MalformedRecordError
	)
	switch {
	case errors.As(err, &cksum):
		st.s.ChecksumErrors++
	case errors.As(err, &overlong):
		st.s.OverlongFrames++
	case errors.As(err, &escape):
		st.s.EscapeErrors++
	case errors.Is(err, ErrFrameCancelled):
		st.s.CancelledFrames++
	case errors.Is(err, ErrFrameTooShort):
		st.s.ShortFrames++
	case errors.As(err, &trunc):
		st.s.TruncatedSubs++
	case errors.As(err, &short), errors.As(err, &malf):
		st.s.RecordErrors++
	default:
		st.s.RecordErrors++
	}
}

// NoteDropped counts an event discarded because the consumer lagged.
func (st *Statistics) NoteDropped() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.DroppedEvents++
}

// Snapshot returns a copy of the counters with rates filled in.
func (st *Statistics) Snapshot() Summary {
	st.mu.Lock()
	defer st.mu.Unlock()

	out := st.s
	out.RecordsByType = make(map[byte]uint64, len(st.s.RecordsByType))
	for k, v := range st.s.RecordsByType {
		out.RecordsByType[k] = v
	}

	out.Elapsed = time.Since(st.start)
	if secs := out.Elapsed.Seconds(); secs > 0 {
		out.FrameRate = float64(out.Frames) / secs
		errCount := out.ChecksumErrors + out.OverlongFrames + out.CancelledFrames +
			out.EscapeErrors + out.ShortFrames + out.TruncatedSubs + out.RecordErrors
		out.ErrorRate = float64(errCount) / secs
	}

	return out
}

// String returns a formatted counter summary.
func (s Summary) String() string {
	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", s.Elapsed.Seconds())
	result += fmt.Sprintf("Frames:          %8d\n", s.Frames)
	result += fmt.Sprintf("Acks:            %8d\n", s.Acks)
	result += fmt.Sprintf("Records:         %8d\n", s.Records)

	if s.UnknownRecords > 0 {
		result += fmt.Sprintf("Unknown Records: %8d\n", s.UnknownRecords)
	}
	if s.ChecksumErrors > 0 {
		result += fmt.Sprintf("Checksum Errors: %8d\n", s.ChecksumErrors)
	}
	if s.OverlongFrames > 0 {
		result += fmt.Sprintf("Overlong Frames: %8d\n", s.OverlongFrames)
	}
	if s.CancelledFrames > 0 {
		result += fmt.Sprintf("Cancelled:       %8d\n", s.CancelledFrames)
	}
	if s.EscapeErrors > 0 {
		result += fmt.Sprintf("Escape Errors:   %8d\n", s.EscapeErrors)
	}
	if s.ShortFrames > 0 {
		result += fmt.Sprintf("Short Frames:    %8d\n", s.ShortFrames)
	}
	if s.TruncatedSubs > 0 {
		result += fmt.Sprintf("Truncated Subs:  %8d\n", s.TruncatedSubs)
	}
	if s.RecordErrors > 0 {
		result += fmt.Sprintf("Record Errors:   %8d\n", s.RecordErrors)
	}
	if s.DroppedEvents > 0 {
		result += fmt.Sprintf("Dropped Events:  %8d\n", s.DroppedEvents)
	}

	result += fmt.Sprintf("Frame Rate:      %8.1f frames/sec\n", s.FrameRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}
