// Package derive turns raw key-agreement output and a session context into
// the symmetric material for one session.
//
// # Flow
//
//  1. X25519 between the local private and peer public ephemeral keys.
//  2. Salt = SHA256(initiatorID | "|" | responderID | "|" | codeIdentity),
//     in fixed role order on both sides.
//  3. Transcript = SHA256 over both ephemeral publics, sorted bytewise so
//     either side computes the same value. The transcript is appended to the
//     HKDF info labels, binding the keys to this specific handshake instance
//     and not just the origin pair.
//  4. HKDF-SHA256 expands the shared secret twice: a 32-byte AES-256-GCM key
//     under "palisade/v1/aead" and a 12-byte base IV under "palisade/v1/iv".
//
// The raw shared secret is wiped as soon as expansion completes. Two
// sessions differing in any context field derive unreconcilable material;
// the mismatch surfaces as an authentication failure at open time, never as
// a silent success.
package derive
