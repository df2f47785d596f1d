// SPDX-License-Identifier: MIT

package ai2

import "encoding/binary"

// Record is one decoded sub-packet. It is a pure value: records carry no
// identity beyond their content and are never mutated after decode.
type Record interface {
	RecordType() byte
}

// PositionFix is a basic position report (TypePosition).
//
// Latitude and longitude arrive as signed 32-bit fixed-point fractions of
// a half-circle; altitude in half-meter steps. FCount is probably
// milliseconds since the start of reporting.
type PositionFix struct {
	FCount     uint32
	LatDeg     float64
	LonDeg     float64
	AltitudeM  float64
	Satellites []uint8 // PRNs of the satellites used in the fix
}

// RecordType implements Record.
func (PositionFix) RecordType() byte { return TypePosition }

// ExtendedPositionFix is the extended position report (TypePositionExt).
// Same fix encoding as PositionFix but a larger, mostly undocumented
// header and no altitude field at a known offset.
type ExtendedPositionFix struct {
	FCount     uint32
	LatDeg     float64
	LonDeg     float64
	Satellites []uint8
}

// RecordType implements Record.
func (ExtendedPositionFix) RecordType() byte { return TypePositionExt }

// MeasurementEntry is one satellite's signal measurement.
type MeasurementEntry struct {
	SV    uint8
	SNRdB float64
	CNodB float64
}

// SatelliteMeasurementSet is a per-satellite signal report
// (TypeMeasurement). Excess counts trailing bytes that did not form a
// whole entry; a nonzero value is a warning, not a decode failure.
type SatelliteMeasurementSet struct {
	FCount  uint32
	Entries []MeasurementEntry
	Excess  int
}

// RecordType implements Record.
func (SatelliteMeasurementSet) RecordType() byte { return TypeMeasurement }

// FreeText is a passthrough text sentence (TypeFreeText), used by the
// receiver's native NMEA output mode. The text is not validated or
// reframed.
type FreeText struct {
	FCount uint32
	Text   string
}

// RecordType implements Record.
func (FreeText) RecordType() byte { return TypeFreeText }

// AsyncEvent is an unsolicited receiver event (TypeAsyncEvent).
type AsyncEvent struct {
	Kind EventKind
}

// RecordType implements Record.
func (AsyncEvent) RecordType() byte { return TypeAsyncEvent }

// Known returns false for event codes outside the documented set; the raw
// code is preserved in Kind either way.
func (e AsyncEvent) Known() bool {
	switch e.Kind {
	case EventStartup, EventWakeup, EventSleep:
		return true
	}
	return false
}

// ErrorReport is an error code reported by the receiver (TypeError).
type ErrorReport struct {
	Code uint16
}

// RecordType implements Record.
func (ErrorReport) RecordType() byte { return TypeError }

// IsChecksumReport returns true when the receiver is telling us a frame we
// sent failed its checksum.
func (e ErrorReport) IsChecksumReport() bool {
	return e.Code == ErrCodeChecksum
}

// Unknown wraps a sub-packet of a type this package does not decode.
// Unknown types are a normal occurrence: the protocol is only partially
// documented.
type Unknown struct {
	Type byte
	Raw  []byte
}

// RecordType implements Record.
func (u Unknown) RecordType() byte { return u.Type }

// DecodeRecord decodes a sub-packet into a typed record. Decoders are
// total over payloads of any length: short or mis-sized payloads yield a
// ShortRecordError or MalformedRecordError, never a panic, and an
// unrecognized type always succeeds as Unknown.
func DecodeRecord(typ byte, payload []byte) (Record, error) {
	switch typ {
	case TypePosition:
		return decodePosition(payload)
	case TypePositionExt:
		return decodePositionExt(payload)
	case TypeMeasurement:
		return decodeMeasurement(payload)
	case TypeFreeText:
		return decodeFreeText(payload)
	case TypeAsyncEvent:
		return decodeAsyncEvent(payload)
	case TypeError:
		return decodeError(payload)
	default:
		return Unknown{Type: typ, Raw: append([]byte(nil), payload...)}, nil
	}
}

// fixedToDegrees converts the receiver's signed 32-bit fraction of a
// half-circle to degrees. halfCircle is 90 for latitude, 180 for
// longitude.
func fixedToDegrees(raw int32, halfCircle float64) float64 {
	return halfCircle * float64(raw) / 2147483648.0
}

func decodePosition(p []byte) (Record, error) {
	if len(p) < positionHeaderSize {
		return nil, &ShortRecordError{Type: TypePosition, Need: positionHeaderSize, Have: len(p)}
	}

	fix := PositionFix{
		FCount:    binary.LittleEndian.Uint32(p[0:4]),
		LatDeg:    fixedToDegrees(int32(binary.LittleEndian.Uint32(p[6:10])), 90),
		LonDeg:    fixedToDegrees(int32(binary.LittleEndian.Uint32(p[10:14])), 180),
		AltitudeM: float64(int16(binary.LittleEndian.Uint16(p[14:16]))) / 2,
	}

	for off := positionHeaderSize; off+satEntrySize <= len(p); off += satEntrySize {
		fix.Satellites = append(fix.Satellites, p[off])
	}

	return fix, nil
}

func decodePositionExt(p []byte) (Record, error) {
	if len(p) < positionExtHeaderSize {
		return nil, &ShortRecordError{Type: TypePositionExt, Need: positionExtHeaderSize, Have: len(p)}
	}

	fix := ExtendedPositionFix{
		FCount: binary.LittleEndian.Uint32(p[0:4]),
		LatDeg: fixedToDegrees(int32(binary.LittleEndian.Uint32(p[6:10])), 90),
		LonDeg: fixedToDegrees(int32(binary.LittleEndian.Uint32(p[10:14])), 180),
	}

	for off := positionExtHeaderSize; off+satEntrySize <= len(p); off += satEntrySize {
		fix.Satellites = append(fix.Satellites, p[off])
	}

	return fix, nil
}

func decodeMeasurement(p []byte) (Record, error) {
	if len(p) < recordTimestampSize {
		return nil, &ShortRecordError{Type: TypeMeasurement, Need: recordTimestampSize, Have: len(p)}
	}

	set := SatelliteMeasurementSet{
		FCount: binary.LittleEndian.Uint32(p[0:4]),
		Excess: (len(p) - recordTimestampSize) % measurementEntrySize,
	}

	for off := recordTimestampSize; off+measurementEntrySize <= len(p); off += measurementEntrySize {
		set.Entries = append(set.Entries, MeasurementEntry{
			SV:    p[off],
			SNRdB: float64(binary.LittleEndian.Uint16(p[off+1:off+3])) / 10,
			CNodB: float64(binary.LittleEndian.Uint16(p[off+3:off+5])) / 10,
		})
	}

	return set, nil
}

func decodeFreeText(p []byte) (Record, error) {
	if len(p) < recordTimestampSize {
		return nil, &ShortRecordError{Type: TypeFreeText, Need: recordTimestampSize, Have: len(p)}
	}
	return FreeText{
		FCount: binary.LittleEndian.Uint32(p[0:4]),
		Text:   string(p[recordTimestampSize:]),
	}, nil
}

func decodeAsyncEvent(p []byte) (Record, error) {
	if len(p) != 1 {
		return nil, &MalformedRecordError{Type: TypeAsyncEvent, Len: len(p)}
	}
	return AsyncEvent{Kind: EventKind(p[0])}, nil
}

func decodeError(p []byte) (Record, error) {
	if len(p) != 2 {
		return nil, &MalformedRecordError{Type: TypeError, Len: len(p)}
	}
	return ErrorReport{Code: binary.LittleEndian.Uint16(p)}, nil
}
