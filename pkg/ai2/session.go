// SPDX-License-Identifier: MIT

package ai2

import (
	"context"
	"fmt"
	"io"
	"time"
)

// DefaultSettleDelay is the pause after each command. The receiver drops
// commands that arrive while it is still processing the previous one.
const DefaultSettleDelay = 200 * time.Millisecond

// Session sequences command frames to drive the receiver through its
// power states. It owns no transport: writes go to the supplied writer,
// which may be shared with a concurrently running Stream reading the
// other direction.
//
// Acknowledgement frames are not correlated to commands; state
// transitions are fire-and-forget with a settle delay in between.
type Session struct {
	w      io.Writer
	settle time.Duration

	// Trace, when set, is called with each command's name before it is
	// sent.
	Trace func(name string)
}

// NewSession creates a session writing to w. A settle of zero or less
// selects DefaultSettleDelay.
func NewSession(w io.Writer, settle time.Duration) *Session {
	if settle <= 0 {
		settle = DefaultSettleDelay
	}
	return &Session{w: w, settle: settle}
}

// Send encodes and writes one command, then waits out the settle delay.
// The wait aborts early when ctx is cancelled.
func (s *Session) Send(ctx context.Context, cmd Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.Trace != nil {
		s.Trace(cmd.Name)
	}

	wire, err := cmd.Encode()
	if err != nil {
		return fmt.Errorf("encode %s: %w", cmd.Name, err)
	}
	if _, err := s.w.Write(wire); err != nil {
		return fmt.Errorf("send %s: %w", cmd.Name, err)
	}

	return s.settleWait(ctx)
}

// Start brings the receiver from power-on to the On state: enable error
// reporting, query protocol and firmware versions, step through Idle,
// configure fix rate and position reporting, then switch On. When mask is
// nonzero the sentence categories it names are enabled before the final
// state switch.
func (s *Session) Start(ctx context.Context, mask byte) error {
	cmds := []Command{
		ErrorReportCommand(true),
		ProtocolQueryCommand(),
		VersionQueryCommand(),
		ReceiverStateCommand(ReceiverIdle),
		FixRateCommand(0),
		PositionReportCommand(),
	}
	if mask != 0 {
		cmds = append(cmds, SentenceMaskCommand(mask))
	}
	cmds = append(cmds, ReceiverStateCommand(ReceiverOn))
	return s.run(ctx, cmds)
}

// StartNMEA brings the receiver up in native NMEA passthrough mode.
// Sentences arrive as FreeText records instead of binary reports.
func (s *Session) StartNMEA(ctx context.Context) error {
	return s.run(ctx, []Command{
		ErrorReportCommand(true),
		ProtocolQueryCommand(),
		NMEAStartCommand(),
	})
}

// Stop returns the receiver to Idle. Ephemeris and almanac state are
// preserved, so the next Start reacquires quickly.
func (s *Session) Stop(ctx context.Context) error {
	return s.run(ctx, []Command{ReceiverStateCommand(ReceiverIdle)})
}

// PowerOff hard-powers the receiver down. Satellite tracking state is
// lost; prefer Stop unless the device is going away.
func (s *Session) PowerOff(ctx context.Context) error {
	return s.run(ctx, []Command{
		ReceiverStateCommand(ReceiverIdle),
		ReceiverStateCommand(ReceiverOff),
	})
}

func (s *Session) run(ctx context.Context, cmds []Command) error {
	for _, cmd := range cmds {
		if err := s.Send(ctx, cmd); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) settleWait(ctx context.Context) error {
	t := time.NewTimer(s.settle)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
