package bigint

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
)

// ErrInvalidEncoding indicates that a hexadecimal or decimal string could not
// be parsed as a non-negative integer.
var ErrInvalidEncoding = errors.New("invalid encoding")

// zeroHex is what the permissive decimal path returns when it cannot convert.
const zeroHex = "0x00"

// HexToBytes parses a hexadecimal string into big-endian bytes.
//
// An optional "0x" or "0X" prefix is stripped and digits are consumed two at a
// time. An odd digit count is treated as if a leading "0" were present. Leading
// zero bytes are dropped, but the result is never empty: zero yields a single
// 0x00 byte.
func HexToBytes(s string) ([]byte, error) {
	digits := trimHexPrefix(s)
	if len(digits)%2 == 1 {
		digits = "0" + digits
	}

	raw, err := hex.DecodeString(digits)
	if err != nil {
		return nil, fmt.Errorf("%w: hex %q: %v", ErrInvalidEncoding, s, err)
	}

	i := 0
	for i < len(raw) && raw[i] == 0 {
		i++
	}
	if i == len(raw) {
		return []byte{0x00}, nil
	}
	return raw[i:], nil
}

// BytesToHex formats big-endian bytes as a "0x"-prefixed string with exactly
// two lower-case digits per byte.
func BytesToHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

// DecToHex converts a decimal string to a "0x"-prefixed hexadecimal string
// with an even number of digits. Empty, malformed or negative input yields
// "0x00".
func DecToHex(dec string) string {
	v, err := ParseDec(dec)
	if err != nil {
		return zeroHex
	}

	digits := v.Text(16)
	if len(digits)%2 == 1 {
		digits = "0" + digits
	}
	return "0x" + digits
}

// HexToDec converts a hexadecimal string (optional "0x" prefix) to its
// canonical decimal form. An empty digit string is zero.
func HexToDec(s string) (string, error) {
	digits := trimHexPrefix(s)
	if digits == "" {
		return "0", nil
	}
	if !isHex(digits) {
		return "", fmt.Errorf("%w: hex %q", ErrInvalidEncoding, s)
	}

	v, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return "", fmt.Errorf("%w: hex %q", ErrInvalidEncoding, s)
	}
	return v.String(), nil
}

// DecToBytes converts a decimal string to big-endian bytes. It shares the
// permissive behaviour of DecToHex.
func DecToBytes(dec string) []byte {
	b, err := HexToBytes(DecToHex(dec))
	if err != nil {
		return []byte{0x00}
	}
	return b
}

// BytesToDec converts big-endian bytes to a canonical decimal string. An
// empty slice is zero.
func BytesToDec(b []byte) string {
	dec, err := HexToDec(BytesToHex(b))
	if err != nil || dec == "" {
		return "0"
	}
	return dec
}

// ParseDec strictly parses a non-negative decimal string. Signs, separators
// and empty input are rejected. Leading zeros are accepted.
func ParseDec(dec string) (*big.Int, error) {
	if dec == "" {
		return nil, fmt.Errorf("%w: empty decimal", ErrInvalidEncoding)
	}
	for i := 0; i < len(dec); i++ {
		if dec[i] < '0' || dec[i] > '9' {
			return nil, fmt.Errorf("%w: decimal %q", ErrInvalidEncoding, dec)
		}
	}

	v, ok := new(big.Int).SetString(dec, 10)
	if !ok {
		return nil, fmt.Errorf("%w: decimal %q", ErrInvalidEncoding, dec)
	}
	return v, nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
