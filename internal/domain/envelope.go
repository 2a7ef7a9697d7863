package domain

import (
	"github.com/samber/oops"
	"github.com/vmihailenco/msgpack/v5"
)

// Envelope is the only thing that crosses the untrusted transport: the
// per-message nonce and the ciphertext (authentication tag included). It
// carries no plaintext, no key material and no cleartext session context.
type Envelope struct {
	Nonce      []byte `msgpack:"n"`
	Ciphertext []byte `msgpack:"c"`
}

// Payload is the authenticated plaintext inside the ciphertext. The sequence
// number lives here, inside the encrypted-and-authenticated region, so the
// receiver can cryptographically verify the claimed ordering rather than
// trusting an open wire field.
type Payload struct {
	Seq  uint64 `msgpack:"s"`
	Body []byte `msgpack:"b"`
}

// Marshal encodes the envelope for the transport.
func (e Envelope) Marshal() ([]byte, error) {
	b, err := msgpack.Marshal(e)
	if err != nil {
		return nil, oops.Wrapf(err, "marshal envelope")
	}
	return b, nil
}

// UnmarshalEnvelope decodes transport bytes back into an envelope. It checks
// shape only (nonce length); everything else is the channel's job.
func UnmarshalEnvelope(b []byte) (Envelope, error) {
	var e Envelope
	if err := msgpack.Unmarshal(b, &e); err != nil {
		return Envelope{}, oops.Wrapf(err, "unmarshal envelope")
	}
	if len(e.Nonce) != BaseIVSize {
		return Envelope{}, oops.Errorf("envelope nonce: want %d bytes, got %d", BaseIVSize, len(e.Nonce))
	}
	return e, nil
}
