// Package id generates lexicographically sortable identifiers: 26-char
// ULIDs and 16-char short IDs, both in Crockford base32.
package id

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// Crockford base32: no I, L, O, U, so IDs survive manual transcription.
const alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// NewULID returns a 26-character ULID: 10 chars of millisecond timestamp
// (48 bits) followed by 16 chars of randomness (80 bits). IDs sort by
// creation time.
func NewULID() string {
	var out [26]byte

	encodeTime(out[:10], uint64(time.Now().UnixMilli()))
	encodeRandom(out[10:], 10)

	return string(out[:])
}

// NewShortID returns a 16-character ID: 6 chars of timestamp (30 bits,
// ~34 years of range) followed by 10 chars of randomness. URL-safe and
// time-sortable like a ULID, at smaller size and higher collision odds.
func NewShortID() string {
	var out [16]byte

	encodeTime(out[:6], uint64(time.Now().UnixMilli())&0x3FFFFFFF)
	encodeRandom(out[6:], 6)

	return string(out[:])
}

// encodeTime writes v right-aligned into dst, 5 bits per character.
func encodeTime(dst []byte, v uint64) {
	for i := len(dst) - 1; i >= 0; i-- {
		dst[i] = alphabet[v&0x1F]
		v >>= 5
	}
}

// encodeRandom fills dst from n random bytes, consuming 5 bits per
// character MSB-first. A trailing partial group is left-padded with zeros.
func encodeRandom(dst []byte, n int) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// Degraded fallback so ID generation never blocks the caller.
		var t [8]byte
		binary.BigEndian.PutUint64(t[:], uint64(time.Now().UnixNano()))
		copy(buf, t[:])
	}

	var acc uint64
	bits, j := 0, 0
	for _, b := range buf {
		acc = acc<<8 | uint64(b)
		bits += 8
		for bits >= 5 && j < len(dst) {
			dst[j] = alphabet[(acc>>(bits-5))&0x1F]
			bits -= 5
			j++
		}
	}
	if j < len(dst) && bits > 0 {
		dst[j] = alphabet[(acc<<(5-bits))&0x1F]
	}
}
