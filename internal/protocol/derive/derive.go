package derive

import (
	"bytes"
	"errors"

	"github.com/samber/oops"

	"palisade/internal/crypto"
	"palisade/internal/domain"
	"palisade/internal/util/memzero"
)

const (
	infoAEAD = "palisade/v1/aead"
	infoIV   = "palisade/v1/iv"
)

// ErrKeyAgreement means the peer public key was malformed or incompatible.
// The handshake attempt is dead; the caller must restart with fresh keys.
var ErrKeyAgreement = errors.New("derive: key agreement failed")

// Session derives the AEAD key and base IV for one session.
//
// localPub must be the public half of localPriv; it participates in the
// transcript binding only. Both sides, given matching key pairs and an
// identical canonicalized context, derive bit-identical outputs.
func Session(
	localPriv domain.X25519Private,
	localPub domain.X25519Public,
	peerPub domain.X25519Public,
	ctx domain.SessionContext,
) (domain.SessionKeys, error) {
	secret, err := crypto.DH(localPriv, peerPub)
	if err != nil {
		return domain.SessionKeys{}, oops.Wrapf(ErrKeyAgreement, "%v", err)
	}
	defer memzero.Zero(secret[:])

	salt := crypto.SHA256(ctx.SaltPreimage())
	transcript := transcriptHash(localPub, peerPub)

	keyBytes, err := crypto.HKDF(secret[:], salt, append([]byte(infoAEAD), transcript...), domain.AEADKeySize)
	if err != nil {
		return domain.SessionKeys{}, err
	}
	ivBytes, err := crypto.HKDF(secret[:], salt, append([]byte(infoIV), transcript...), domain.BaseIVSize)
	if err != nil {
		memzero.Zero(keyBytes)
		return domain.SessionKeys{}, err
	}

	var sk domain.SessionKeys
	copy(sk.AEADKey[:], keyBytes)
	copy(sk.BaseIV[:], ivBytes)
	memzero.ZeroAll(keyBytes, ivBytes)
	return sk, nil
}

// transcriptHash hashes both ephemeral publics in bytewise order, so the
// initiator and responder reach the same value without agreeing on who
// hashes first.
func transcriptHash(a, b domain.X25519Public) []byte {
	lo, hi := a, b
	if bytes.Compare(lo[:], hi[:]) > 0 {
		lo, hi = hi, lo
	}
	return crypto.SHA256(append(lo.Slice(), hi.Slice()...))
}
