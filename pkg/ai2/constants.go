// SPDX-License-Identifier: MIT

// Package ai2 implements the AI2 framed serial protocol spoken by TI GNSS
// receivers (the /dev/tigps and mainline /dev/gnssN character devices).
//
// The package provides a byte-stream frame decoder with resynchronization,
// sub-packet demultiplexing, typed record decoding, and the matching
// command frame encoder. Large parts of the protocol are undocumented;
// unrecognized sub-packet types always decode into Unknown records.
package ai2

// Protocol framing bytes. Mark doubles as the escape introducer: a Mark in
// frame content is transmitted twice, and Mark followed by Term ends the
// frame.
const (
	Mark = 0x10
	Term = 0x03
)

// MaxFrameSize bounds the unescaped frame buffer. A frame growing past
// this is thrown away and the decoder resynchronizes.
const MaxFrameSize = 1024

// Frame classes. Commands go out on ClassSystem/ClassReceiver; a received
// frame with ClassAck carries no sub-packets.
const (
	ClassSystem   = 0x00
	ClassReceiver = 0x01
	ClassAck      = 0x02
)

// Sub-packet types reported by the receiver.
const (
	TypePosition    = 0x06
	TypeMeasurement = 0x08
	TypeFreeText    = 0xD3
	TypePositionExt = 0xD5
	TypeAsyncEvent  = 0xF1
	TypeError       = 0xF5
)

// Commands understood by the receiver. Only CmdReceiverState and
// CmdSentenceMask are documented; the rest are replayed from captured
// bring-up traffic.
const (
	CmdReceiverState  = 0x02
	CmdPositionReport = 0x06
	CmdNMEAConfig     = 0x08
	CmdNMEAStart      = 0x22
	CmdSentenceMask   = 0xE5
	CmdFixRate        = 0xED
	CmdVersionQuery   = 0xF0
	CmdProtocolQuery  = 0xF1
	CmdErrorReport    = 0xF5
)

// ReceiverState is the power state driven by CmdReceiverState.
type ReceiverState uint8

// Receiver power states. Idle keeps ephemeris and almanac state; Off is a
// hard power-down that discards satellite tracking.
const (
	ReceiverOff  ReceiverState = 1
	ReceiverIdle ReceiverState = 2
	ReceiverOn   ReceiverState = 3
)

// String returns the power state name.
func (s ReceiverState) String() string {
	switch s {
	case ReceiverOff:
		return "OFF"
	case ReceiverIdle:
		return "IDLE"
	case ReceiverOn:
		return "ON"
	default:
		return "INVALID"
	}
}

// Sentence category mask bits for CmdSentenceMask.
const (
	MaskPosition    = 0x01
	MaskSpeedCourse = 0x02
	MaskSatellites  = 0x04
	MaskTime        = 0x08
	MaskDOP         = 0x10
	MaskStatus      = 0x20
	MaskAll         = 0x3F
)

// ErrCodeChecksum is the TypeError code the receiver reports when a frame
// we sent failed its checksum check.
const ErrCodeChecksum = 0x0001

// EventKind identifies an asynchronous receiver event.
type EventKind uint8

// Known async event codes. The set is small and partially documented;
// anything else is surfaced with the raw code preserved.
const (
	EventStartup EventKind = 0x00
	EventWakeup  EventKind = 0x01
	EventSleep   EventKind = 0x02
)

// Fixed record layout sizes, from the packed on-wire structs.
const (
	positionHeaderSize    = 31 // fcount(4) + unknown(2) + lat(4) + lon(4) + alt(2) + unknown(15)
	positionExtHeaderSize = 61 // fcount(4) + unknown(2) + lat(4) + lon(4) + unknown(47)
	satEntrySize          = 6  // sv(1) + unknown(5)
	measurementEntrySize  = 28 // sv(1) + snr(2) + cno(2) + unknown(23)
	recordTimestampSize   = 4
)

// Decoder states (internal)
const (
	stateIdle = iota
	stateInFrame
)
