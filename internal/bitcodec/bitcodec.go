// Package bitcodec converts packed uint32 word arrays to and from the
// portable text form used for persistence and export.
//
// Words are serialized as little-endian bytes and the byte stream is
// encoded with standard, padded base64. The encoding is fixed regardless
// of host endianness so that a value written on one machine decodes
// identically on any other.
package bitcodec

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
)

const wordSize = 4

var (
	// ErrMalformed reports text that is not valid standard base64.
	ErrMalformed = errors.New("bitcodec: malformed encoding")
	// ErrLength reports a payload whose byte length does not match the
	// expected word count.
	ErrLength = errors.New("bitcodec: unexpected length")
)

// Encode returns the base64 text of the little-endian bytes of words.
func Encode(words []uint32) string {
	buf := make([]byte, len(words)*wordSize)
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[i*wordSize:], w)
	}
	return base64.StdEncoding.EncodeToString(buf)
}

// DecodeStrict decodes text into exactly n words.
func DecodeStrict(text string, n int) ([]uint32, error) {
	raw, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(raw) != n*wordSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrLength, len(raw), n*wordSize)
	}
	words := make([]uint32, n)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(raw[i*wordSize:])
	}
	return words, nil
}

// Decode is DecodeStrict with recovery: any malformed input yields n zero
// words instead of an error.
func Decode(text string, n int) []uint32 {
	words, err := DecodeStrict(text, n)
	if err != nil {
		return make([]uint32, n)
	}
	return words
}
