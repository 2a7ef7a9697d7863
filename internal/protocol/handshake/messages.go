package handshake

import (
	"errors"

	"github.com/samber/oops"
	"github.com/vmihailenco/msgpack/v5"

	"palisade/internal/domain"
)

// ErrMalformedAnnounce means the peer's handshake message failed
// well-formedness validation.
var ErrMalformedAnnounce = errors.New("handshake: malformed announce")

// Announce is the single handshake message each side transmits: its
// ephemeral public key and context metadata. Nothing in it is secret and
// nothing in it is trusted; a tampered announce produces a divergent
// derivation, which fails closed at the first open.
type Announce struct {
	PublicKey    []byte `msgpack:"k"`
	EndpointID   string `msgpack:"e"`
	CodeIdentity string `msgpack:"c"`
}

func (a Announce) Marshal() ([]byte, error) {
	b, err := msgpack.Marshal(a)
	if err != nil {
		return nil, oops.Wrapf(err, "marshal announce")
	}
	return b, nil
}

// ParseAnnounce decodes and validates a peer announce: the key must be a
// 32-byte X25519 encoding and the endpoint identifier must be present. The
// code identity may be empty (absent values are canonically empty strings).
func ParseAnnounce(b []byte) (Announce, error) {
	var a Announce
	if err := msgpack.Unmarshal(b, &a); err != nil {
		return Announce{}, oops.Wrapf(ErrMalformedAnnounce, "decode: %v", err)
	}
	if len(a.PublicKey) != 32 {
		return Announce{}, oops.Wrapf(ErrMalformedAnnounce, "public key: want 32 bytes, got %d", len(a.PublicKey))
	}
	if a.EndpointID == "" {
		return Announce{}, oops.Wrapf(ErrMalformedAnnounce, "empty endpoint id")
	}
	return a, nil
}

// PeerPublic returns the announced key as a fixed-size public key.
func (a Announce) PeerPublic() domain.X25519Public {
	return domain.MustX25519Public(a.PublicKey)
}
