package crypto

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/samber/oops"

	"palisade/internal/domain"
)

// NewAEAD builds an AES-256-GCM AEAD from a derived session key.
func NewAEAD(key [domain.AEADKeySize]byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, oops.Wrapf(err, "create AES cipher")
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, oops.Wrapf(err, "create GCM")
	}
	return aead, nil
}
