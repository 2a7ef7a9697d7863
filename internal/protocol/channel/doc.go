// Package channel implements the per-message envelope protocol on top of the
// derived session keys: authenticated encryption with deterministic nonces,
// replay detection and sequence enforcement.
//
// # Seal
//
// Each seal pre-increments the outbound sequence under the channel mutex,
// derives the nonce for that sequence, and encrypts a payload that embeds
// the sequence inside the authenticated plaintext. The operation tag is the
// AEAD additional data. The sequence only advances when encryption succeeds,
// so a failed seal never burns a nonce.
//
// # Open
//
// The inbound nonce is checked against a bounded replay cache before any
// decryption is attempted; a hit is rejected unconditionally. After a
// successful decrypt the embedded sequence must satisfy the configured
// policy: strictly last+1 by default, or within a bounded reordering window
// when one is configured. Windowed mode keeps a bitmap of accepted sequences
// so a duplicate is rejected even after its nonce has aged out of the replay
// cache. Every failure drops that single message and
// increments a counter; none of them terminates the session by itself. The
// caller decides when a run of violations warrants teardown.
//
// A Channel is owned by exactly one session and must never be shared across
// sessions.
package channel
