package discovery

import "errors"

// The expanded frame's remaining length is always re-encoded as exactly two
// bytes. Every discovery document plus topic lands between 256 and 511 bytes,
// so only that window is supported; the general multi-byte encoding lives in
// the model package. Values outside the window are reported as an explicit
// error instead of silently emitting a wrong length byte.
const (
	minTwoByteRemaining = 256
	maxTwoByteRemaining = 511
)

var errPayloadTooLarge = errors.New("discovery: remaining length outside the two-byte window [256,511]")

func encodeRemainingLength(n int) ([2]byte, error) {
	if n < minTwoByteRemaining || n > maxTwoByteRemaining {
		return [2]byte{}, errPayloadTooLarge
	}
	if n < 384 {
		return [2]byte{byte(n-256) | 0x80, 0x02}, nil
	}
	return [2]byte{byte(n-384) | 0x80, 0x03}, nil
}

func decodeRemainingLength(b [2]byte) int {
	return int(b[0]&0x7F) + int(b[1])<<7
}
