package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"github.com/samber/oops"
	"golang.org/x/crypto/curve25519"

	"palisade/internal/domain"
)

// GenerateX25519 returns a fresh Curve25519 key pair.
// The private key is clamped per RFC 7748.
func GenerateX25519() (domain.KeyPair, error) {
	var kp domain.KeyPair
	if _, err := rand.Read(kp.Private[:]); err != nil {
		return domain.KeyPair{}, oops.Wrapf(err, "generate X25519 private key")
	}
	clamp(&kp.Private)
	pub, err := curve25519.X25519(kp.Private.Slice(), curve25519.Basepoint)
	if err != nil {
		return domain.KeyPair{}, oops.Wrapf(err, "derive X25519 public key")
	}
	copy(kp.Public[:], pub)
	return kp, nil
}

// DH computes the X25519 shared secret. It errors on a malformed or
// low-order peer public key; it never substitutes a default value.
func DH(priv domain.X25519Private, pub domain.X25519Public) ([32]byte, error) {
	var out [32]byte
	secret, err := curve25519.X25519(priv.Slice(), pub.Slice())
	if err != nil {
		return out, err
	}
	copy(out[:], secret)
	return out, nil
}

// Fingerprint returns a short fingerprint of the public key, safe to log.
func Fingerprint(pub domain.X25519Public) string {
	sum := sha256.Sum256(pub[:])
	return hex.EncodeToString(sum[:10])
}

func clamp(k *domain.X25519Private) {
	k[0] &= 248
	k[31] &= 127
	k[31] |= 64
}
