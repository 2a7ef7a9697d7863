// Package crypto exposes the minimal primitives used by palisade.
//
// Contents
//
//   - X25519 key generation and Diffie–Hellman (GenerateX25519, DH)
//   - HKDF-SHA256 expansion into fixed-length outputs (HKDF)
//   - AES-256-GCM AEAD construction (NewAEAD)
//   - Short public-key fingerprints for display/logging (Fingerprint)
//
// # Notes
//
// All functions are pure and stateless. Fixed-size array types from
// internal/domain are used throughout to avoid accidental reallocations of
// secret material; callers should wipe derived secrets when practical to
// reduce their lifetime in memory.
package crypto
