// SPDX-License-Identifier: MIT

package ai2

// Command builder functions create named command frames ready for
// encoding. The opcodes and payloads come from captured bring-up traffic
// against TI receivers; where a payload byte's meaning is unknown it is
// replayed verbatim.

// Command is one outbound command: a class, an opcode, and a payload.
type Command struct {
	Name    string
	Class   byte
	Op      byte
	Payload []byte
}

// Encode returns the command's wire bytes.
func (c Command) Encode() ([]byte, error) {
	return EncodeCommand(c.Class, c.Op, c.Payload)
}

// ReceiverStateCommand drives the receiver power state. Idle keeps
// ephemeris/almanac state; Off discards satellite tracking entirely.
func ReceiverStateCommand(state ReceiverState) Command {
	return Command{
		Name:    "receiver " + state.String(),
		Class:   ClassReceiver,
		Op:      CmdReceiverState,
		Payload: []byte{byte(state)},
	}
}

// SentenceMaskCommand enables the given sentence categories (Mask* bits)
// before the receiver is switched on.
func SentenceMaskCommand(mask byte) Command {
	return Command{
		Name:    "sentence mask",
		Class:   ClassReceiver,
		Op:      CmdSentenceMask,
		Payload: []byte{mask, 0x00, 0x00, 0x00},
	}
}

// ErrorReportCommand sets the device's error reporting flag. Sent first in
// every bring-up sequence.
func ErrorReportCommand(enable bool) Command {
	payload := []byte{0x00}
	if enable {
		payload[0] = 0x01
	}
	return Command{
		Name:    "error reporting",
		Class:   ClassSystem,
		Op:      CmdErrorReport,
		Payload: payload,
	}
}

// ProtocolQueryCommand asks the receiver for its protocol configuration.
func ProtocolQueryCommand() Command {
	return Command{
		Name:    "protocol query",
		Class:   ClassReceiver,
		Op:      CmdProtocolQuery,
		Payload: []byte{0x05},
	}
}

// VersionQueryCommand asks the receiver for its firmware version.
func VersionQueryCommand() Command {
	return Command{
		Name:  "version query",
		Class: ClassReceiver,
		Op:    CmdVersionQuery,
	}
}

// FixRateCommand sets the fix reporting rate. Zero selects the receiver
// default.
func FixRateCommand(rate byte) Command {
	return Command{
		Name:    "fix rate",
		Class:   ClassReceiver,
		Op:      CmdFixRate,
		Payload: []byte{rate},
	}
}

// PositionReportCommand configures position reporting. The payload is a
// captured configuration block; only the leading enable byte is
// understood.
func PositionReportCommand() Command {
	return Command{
		Name:  "position report config",
		Class: ClassReceiver,
		Op:    CmdPositionReport,
		Payload: []byte{
			0x01, 0x0E, 0x00, 0x00, 0x00, 0x00, 0x01,
			0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		},
	}
}

// NMEAStartCommand switches the receiver's output to native NMEA
// sentences, delivered as FreeText records.
func NMEAStartCommand() Command {
	return Command{
		Name:    "nmea start",
		Class:   ClassSystem,
		Op:      CmdNMEAStart,
		Payload: []byte{0x01},
	}
}
