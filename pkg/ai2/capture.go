// SPDX-License-Identifier: MIT

package ai2

import (
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Record capture files are a plain concatenation of CBOR-encoded
// envelopes, one per decoded record. The format is self-describing enough
// to survive new record fields: unknown map keys are ignored on read.

type captureEnvelope struct {
	Type byte            `cbor:"1,keyasint"`
	At   time.Time       `cbor:"2,keyasint"`
	Body cbor.RawMessage `cbor:"3,keyasint"`
}

// CaptureWriter appends decoded records to a capture stream.
type CaptureWriter struct {
	enc *cbor.Encoder
}

// NewCaptureWriter creates a capture writer on w.
func NewCaptureWriter(w io.Writer) *CaptureWriter {
	return &CaptureWriter{enc: cbor.NewEncoder(w)}
}

// WriteRecord appends one record with its observation time.
func (cw *CaptureWriter) WriteRecord(at time.Time, rec Record) error {
	body, err := cbor.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record 0x%02X: %w", rec.RecordType(), err)
	}
	return cw.enc.Encode(captureEnvelope{
		Type: rec.RecordType(),
		At:   at,
		Body: body,
	})
}

// CaptureReader reads back a capture stream written by CaptureWriter.
type CaptureReader struct {
	dec *cbor.Decoder
}

// NewCaptureReader creates a capture reader on r.
func NewCaptureReader(r io.Reader) *CaptureReader {
	return &CaptureReader{dec: cbor.NewDecoder(r)}
}

// Next returns the next captured record. io.EOF signals a clean end of
// the stream.
func (cr *CaptureReader) Next() (time.Time, Record, error) {
	var env captureEnvelope
	if err := cr.dec.Decode(&env); err != nil {
		if err == io.EOF {
			return time.Time{}, nil, io.EOF
		}
		return time.Time{}, nil, fmt.Errorf("read capture envelope: %w", err)
	}

	rec, err := unmarshalRecord(env.Type, env.Body)
	if err != nil {
		return time.Time{}, nil, err
	}
	return env.At, rec, nil
}

func unmarshalRecord(typ byte, body cbor.RawMessage) (Record, error) {
	var (
		rec Record
		err error
	)
	switch typ {
	case TypePosition:
		var r PositionFix
		err = cbor.Unmarshal(body, &r)
		rec = r
	case TypePositionExt:
		var r ExtendedPositionFix
		err = cbor.Unmarshal(body, &r)
		rec = r
	case TypeMeasurement:
		var r SatelliteMeasurementSet
		err = cbor.Unmarshal(body, &r)
		rec = r
	case TypeFreeText:
		var r FreeText
		err = cbor.Unmarshal(body, &r)
		rec = r
	case TypeAsyncEvent:
		var r AsyncEvent
		err = cbor.Unmarshal(body, &r)
		rec = r
	case TypeError:
		var r ErrorReport
		err = cbor.Unmarshal(body, &r)
		rec = r
	default:
		var r Unknown
		err = cbor.Unmarshal(body, &r)
		r.Type = typ
		rec = r
	}
	if err != nil {
		return nil, fmt.Errorf("decode captured record 0x%02X: %w", typ, err)
	}
	return rec, nil
}
