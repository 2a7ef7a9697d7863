package noncer

import (
	"encoding/binary"
	"errors"

	"github.com/samber/oops"

	"palisade/internal/domain"
)

// MaxSequence is the largest sequence number the derivation can represent.
// Reaching it means the session's nonce space is spent and a fresh handshake
// is required; the counter is never wrapped.
const MaxSequence = uint64(1)<<32 - 1

var (
	// ErrInvalidSequence means a non-positive sequence reached the deriver.
	// Attacker input cannot cause this; it is an internal invariant violation.
	ErrInvalidSequence = errors.New("noncer: sequence must be positive")

	// ErrSequenceExhausted means the sequence counter has hit the 32-bit
	// derivation limit and the session must renegotiate.
	ErrSequenceExhausted = errors.New("noncer: sequence space exhausted")
)

// FromSequence derives the unique nonce for seq under base.
//
// The result equals base with the big-endian encoding of seq XORed into its
// last 4 bytes. Same inputs always produce the same output.
func FromSequence(base [domain.BaseIVSize]byte, seq uint64) ([domain.BaseIVSize]byte, error) {
	var nonce [domain.BaseIVSize]byte
	if seq == 0 {
		return nonce, oops.Wrapf(ErrInvalidSequence, "got sequence 0")
	}
	if seq > MaxSequence {
		return nonce, oops.Wrapf(ErrSequenceExhausted, "sequence %d exceeds 32-bit limit", seq)
	}

	nonce = base
	var ctr [4]byte
	binary.BigEndian.PutUint32(ctr[:], uint32(seq))
	for i := 0; i < 4; i++ {
		nonce[domain.BaseIVSize-4+i] ^= ctr[i]
	}
	return nonce, nil
}
