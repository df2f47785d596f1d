// SPDX-License-Identifier: MIT

package ai2

import (
	"fmt"
	"strings"
)

// FormatRecordType returns the human-readable name for a sub-packet type.
func FormatRecordType(typ byte) string {
	switch typ {
	case TypePosition:
		return "POSITION"
	case TypePositionExt:
		return "POSITION_EXT"
	case TypeMeasurement:
		return "MEASUREMENT"
	case TypeFreeText:
		return "NMEA"
	case TypeAsyncEvent:
		return "EVENT"
	case TypeError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FormatEventKind returns the name of an async event code.
func FormatEventKind(kind EventKind) string {
	switch kind {
	case EventStartup:
		return "STARTUP"
	case EventWakeup:
		return "WAKEUP"
	case EventSleep:
		return "SLEEP"
	default:
		return fmt.Sprintf("UNKNOWN(0x%02X)", byte(kind))
	}
}

// FormatRecord formats a decoded record into a one-line human-readable
// string.
func FormatRecord(rec Record) string {
	switch r := rec.(type) {
	case PositionFix:
		return fmt.Sprintf("position: fcount: %d, lat: %f lon: %f altitude: %.1f sv:%s",
			r.FCount, r.LatDeg, r.LonDeg, r.AltitudeM, formatSVList(r.Satellites))

	case ExtendedPositionFix:
		return fmt.Sprintf("position_ext: fcount: %d, lat: %f lon: %f sv:%s",
			r.FCount, r.LatDeg, r.LonDeg, formatSVList(r.Satellites))

	case SatelliteMeasurementSet:
		var b strings.Builder
		fmt.Fprintf(&b, "measurement: fcount: %d, sats: %d", r.FCount, len(r.Entries))
		if r.Excess > 0 {
			fmt.Fprintf(&b, " (excess data: %d bytes)", r.Excess)
		}
		for _, e := range r.Entries {
			fmt.Fprintf(&b, "\n  SV: %d SNR: %.1f CNo: %.1f", e.SV, e.SNRdB, e.CNodB)
		}
		return b.String()

	case FreeText:
		return fmt.Sprintf("nmea: fcount: %d: %s", r.FCount, strings.TrimRight(r.Text, "\r\n"))

	case AsyncEvent:
		return fmt.Sprintf("event: %s", FormatEventKind(r.Kind))

	case ErrorReport:
		if r.IsChecksumReport() {
			return fmt.Sprintf("error: device reported invalid checksum (code 0x%04X)", r.Code)
		}
		return fmt.Sprintf("error: code 0x%04X", r.Code)

	case Unknown:
		return fmt.Sprintf("unknown record type 0x%02X len: %d%s", r.Type, len(r.Raw), formatHex(r.Raw))

	default:
		return fmt.Sprintf("record type 0x%02X", rec.RecordType())
	}
}

// FormatFrame formats a frame header line: timestamp, class, body size.
func FormatFrame(f *Frame) string {
	kind := "frame"
	if f.IsAck() {
		kind = "ack"
	}
	return fmt.Sprintf("[%s] %s class=0x%02X len=%d",
		f.Timestamp().Format("15:04:05.000"), kind, f.Class(), len(f.Body()))
}

func formatSVList(svs []uint8) string {
	var b strings.Builder
	for _, sv := range svs {
		fmt.Fprintf(&b, " %d", sv)
	}
	return b.String()
}

func formatHex(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n  ")
	for i, v := range data {
		if i > 0 && i%16 == 0 {
			b.WriteString("\n  ")
		}
		fmt.Fprintf(&b, "%02x ", v)
	}
	return b.String()
}
