// Package domain holds the shared types of the secure channel: fixed-size
// key material, the session binding context, derived session keys, the wire
// envelope, the closed set of operation tags and the transport abstraction.
//
// Nothing in this package performs cryptography; it only defines the shapes
// that internal/crypto and internal/protocol operate on. All key types are
// fixed-size arrays to avoid accidental reallocation of secret material.
package domain
