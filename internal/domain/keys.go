package domain

import (
	"fmt"

	"palisade/internal/util/memzero"
)

// ------------- X25519 -------------

type X25519Private [32]byte
type X25519Public [32]byte

func (k X25519Private) Slice() []byte { return k[:] }
func (k X25519Public) Slice() []byte  { return k[:] }

func MustX25519Public(b []byte) X25519Public {
	if len(b) != 32 {
		panic(fmt.Errorf("X25519 public: want 32 bytes, got %d", len(b)))
	}
	var out X25519Public
	copy(out[:], b)
	return out
}

// KeyPair is one side's ephemeral key-agreement material. Generated fresh for
// every handshake attempt and never reused across attempts.
type KeyPair struct {
	Private X25519Private
	Public  X25519Public
}

// Wipe zeroes the private half. The pair must not be used afterwards.
func (kp *KeyPair) Wipe() {
	memzero.Zero(kp.Private[:])
}

// ------------- Derived session material -------------

const (
	// AEADKeySize is the AES-256-GCM key length.
	AEADKeySize = 32
	// BaseIVSize is the derived base IV length, equal to the GCM nonce size.
	BaseIVSize = 12
)

// SessionKeys is the symmetric material derived from one handshake. Both
// sides derive bit-identical values given matching keys and context; any
// divergence surfaces later as an AEAD authentication failure.
type SessionKeys struct {
	AEADKey [AEADKeySize]byte
	BaseIV  [BaseIVSize]byte
}

// Wipe zeroes the AEAD key. The base IV is not secret but is cleared too so
// a torn-down session leaves nothing behind.
func (sk *SessionKeys) Wipe() {
	memzero.Zero(sk.AEADKey[:])
	memzero.Zero(sk.BaseIV[:])
}
