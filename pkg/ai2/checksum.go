// SPDX-License-Identifier: MIT

package ai2

// Checksum computes the AI2 frame checksum: the 16-bit sum of every byte,
// modulo 65536. The checksum domain starts at the leading sync byte and
// runs through the last payload byte; it is transmitted little-endian.
func Checksum(data []byte) uint16 {
	var sum uint16
	for _, b := range data {
		sum += uint16(b)
	}
	return sum
}
