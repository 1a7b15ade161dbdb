// Package binpack implements a fixed big-endian integer layout for sketch
// rows and band keys: a uint64 is serialized high-byte-first into 8 bytes,
// and a two-element sketch row becomes 16 bytes by concatenating both
// fields in order.
package binpack

import "encoding/binary"

// Uint64Size is the encoded width of a single uint64 field.
const Uint64Size = 8

// RowSize is the encoded width of one sketch row (k*, t*).
const RowSize = 2 * Uint64Size

// PutUint64 writes v into dst[0:8] big-endian. dst must have length >= 8.
func PutUint64(dst []byte, v uint64) {
	binary.BigEndian.PutUint64(dst, v)
}

// Uint64 reads a big-endian uint64 from src[0:8]. src must have length >= 8.
func Uint64(src []byte) uint64 {
	return binary.BigEndian.Uint64(src)
}

// AppendUint64 appends the big-endian encoding of v to dst and returns the
// extended slice.
func AppendUint64(dst []byte, v uint64) []byte {
	var buf [Uint64Size]byte
	PutUint64(buf[:], v)
	return append(dst, buf[:]...)
}

// AppendRow appends the big-endian encoding of a sketch row (k, t) to dst.
func AppendRow(dst []byte, k, t uint64) []byte {
	dst = AppendUint64(dst, k)
	dst = AppendUint64(dst, t)
	return dst
}
