// Package handshake bootstraps one secure channel per side from nothing but
// an untrusted transport.
//
// Both sides run the same one-shot state machine:
//
//	Idle → KeysGenerated → LocalAnnounced → PeerKeyReceived →
//	SessionDerived → Ready, with Failed(reason) terminal.
//
// Each attempt generates a fresh ephemeral key pair, announces the public
// half together with endpoint metadata, waits (with a caller deadline) for
// the peer's announce, validates it, and derives the session. There are no
// retries inside the machine: a failed attempt is abandoned and the caller
// starts over with a new Handshaker, never reusing key material.
//
// The roles differ only in which slot of the canonical session context each
// side's endpoint ID occupies. The code identity folded into the context is
// always the locally configured value, not the peer's claim; a peer running
// different code than expected derives different keys and every subsequent
// open fails closed.
package handshake
