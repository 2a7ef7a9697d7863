package domain

import "context"

// Transport is the abstract duplex the channel and handshake run over. It
// moves opaque byte blobs and promises nothing else: no ordering, no
// uniqueness, no confidentiality. Everything above it assumes the blobs can
// be dropped, duplicated, reordered or forged.
type Transport interface {
	Send(ctx context.Context, b []byte) error
	Receive(ctx context.Context) ([]byte, error)
}

// SecureChannel is what the session layer hands to application code: sealed
// send and verified receive over one established session.
type SecureChannel interface {
	Seal(body []byte, op Op) (Envelope, error)
	Open(env Envelope, op Op) ([]byte, error)
	Close()
}
