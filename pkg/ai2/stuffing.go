// SPDX-License-Identifier: MIT

package ai2

import "fmt"

// stuffBytes applies byte stuffing: every Mark byte in the data is doubled
// so the decoder can tell content apart from the Mark+Term frame
// terminator. All other bytes pass through verbatim.
func stuffBytes(data []byte) []byte {
	// Worst case every byte is a Mark and doubles
	result := make([]byte, 0, len(data)*2)

	for _, b := range data {
		if b == Mark {
			result = append(result, Mark, Mark)
		} else {
			result = append(result, b)
		}
	}

	return result
}

// UnstuffBytes collapses doubled Mark bytes back into single literals.
// This is the inverse of the encoder's stuffing for frame content; it does
// not handle the terminator sequence. A lone Mark not followed by another
// Mark is an error, as is a trailing unpaired Mark.
func UnstuffBytes(data []byte) ([]byte, error) {
	result := make([]byte, 0, len(data))
	escaping := false

	for _, b := range data {
		if escaping {
			if b != Mark {
				return nil, fmt.Errorf("lone mark byte followed by 0x%02X", b)
			}
			result = append(result, Mark)
			escaping = false
		} else if b == Mark {
			escaping = true
		} else {
			result = append(result, b)
		}
	}

	if escaping {
		return nil, fmt.Errorf("incomplete escape sequence at end of data")
	}

	return result, nil
}
