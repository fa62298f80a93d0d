// Package compact encodes byte sequences as short z-base-32 strings.
//
// The byte sequence is read as a big-endian number. Its bit string is padded
// on the left with zero bits up to the next multiple of five, so the encoding
// of a single 0x01 byte is "yb" rather than "yr". There are no padding
// characters and the alphabet is case-sensitive.
package compact

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/tv42/zbase32"
)

// Alphabet is the z-base-32 alphabet, in digit order.
const Alphabet = "ybndrfg8ejkmcpqxot1uwisza345h769"

// ErrInvalidEncoding indicates that a string is not a canonical compact
// encoding of any byte sequence.
var ErrInvalidEncoding = errors.New("invalid compact encoding")

// EncodedLen returns the length of the encoding of n bytes.
func EncodedLen(n int) int {
	return (8*n + 4) / 5
}

// Encode returns the compact encoding of b. An empty slice encodes to "".
func Encode(b []byte) string {
	if len(b) == 0 {
		return ""
	}

	bits := 5 * EncodedLen(len(b))
	buf := make([]byte, (bits+7)/8)

	v := new(big.Int).SetBytes(b)
	v.Lsh(v, uint(8*len(buf)-bits))
	v.FillBytes(buf)

	return zbase32.EncodeBitsToString(buf, bits)
}

// Decode inverts Encode. The byte count is recovered from the string length,
// so leading zero bytes survive a round trip.
func Decode(s string) ([]byte, error) {
	if s == "" {
		return []byte{}, nil
	}

	bits := 5 * len(s)
	n := bits / 8
	if n == 0 || EncodedLen(n) != len(s) {
		return nil, fmt.Errorf("%w: %q has no byte-aligned length", ErrInvalidEncoding, s)
	}

	for i := 0; i < len(s); i++ {
		if strings.IndexByte(Alphabet, s[i]) < 0 {
			return nil, fmt.Errorf("%w: %q contains %q", ErrInvalidEncoding, s, s[i])
		}
	}

	raw, err := zbase32.DecodeBitsString(s, bits)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidEncoding, s, err)
	}

	v := new(big.Int).SetBytes(raw)
	v.Rsh(v, uint(8*len(raw)-bits))
	if v.BitLen() > 8*n {
		return nil, fmt.Errorf("%w: %q has non-zero padding bits", ErrInvalidEncoding, s)
	}

	return v.FillBytes(make([]byte, n)), nil
}
