// Package noncer derives per-message AEAD nonces deterministically from a
// session's base IV and a message sequence number.
//
// The scheme XORs the big-endian 32-bit sequence into the trailing 4 bytes
// of the 96-bit base IV, so for a fixed base IV every sequence in
// [1, 2^32-1] yields a distinct nonce. Determinism is load-bearing: both
// sides must compute the same nonce for the same sequence without any
// steady-state randomness.
//
// A session must renegotiate before the sequence space is exhausted; the
// deriver refuses to wrap around.
package noncer
