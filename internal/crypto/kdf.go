package crypto

import (
	"crypto/sha256"
	"io"

	"github.com/samber/oops"
	"golang.org/x/crypto/hkdf"
)

// HKDF derives outLen bytes from secret under the given salt and info label
// using HKDF-SHA256 (RFC 5869).
func HKDF(secret, salt, info []byte, outLen int) ([]byte, error) {
	r := hkdf.New(sha256.New, secret, salt, info)
	out := make([]byte, outLen)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, oops.Wrapf(err, "hkdf expand %q", info)
	}
	return out, nil
}

// SHA256 is a convenience wrapper returning the digest as a slice.
func SHA256(b []byte) []byte {
	sum := sha256.Sum256(b)
	return sum[:]
}
