// Package bigint converts arbitrary-precision non-negative integers between
// three representations: canonical decimal strings, "0x"-prefixed
// hexadecimal strings and big-endian byte sequences.
//
// Sequence numbers handed out by a counter store are unbounded, so they are
// never squeezed through a fixed-width integer type. Decimal is the transport
// form, bytes are what the compact encoder consumes, and hexadecimal is the
// bridge between the two.
//
// # Round Trip
//
// For every canonical decimal string v (no sign, no leading zeros except "0"):
//
//	bigint.BytesToDec(bigint.DecToBytes(v)) == v
//
// # Permissive Decimal Input
//
// DecToHex and DecToBytes never fail. Empty, malformed or negative decimal
// input yields the encoding of zero. Callers that need to reject bad input
// use ParseDec instead.
package bigint
