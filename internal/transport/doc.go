// Package transport provides concrete carriers for the opaque byte blobs
// the protocol exchanges. The channel and handshake only see
// domain.Transport; nothing here is trusted and nothing here is part of the
// security boundary.
//
// Two implementations:
//
//   - Pair: an in-process duplex built on Go channels, used by tests and
//     the demo to run both sides in one process.
//   - Framed: length-prefixed frames over any io.ReadWriter (a pipe, a
//     socket, a message port adapter).
package transport
