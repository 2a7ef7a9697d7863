package channel

import (
	"crypto/rand"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"palisade/internal/domain"
	"palisade/internal/protocol/noncer"
)

func testKeys(t *testing.T) domain.SessionKeys {
	t.Helper()
	var sk domain.SessionKeys
	_, err := rand.Read(sk.AEADKey[:])
	require.NoError(t, err)
	_, err = rand.Read(sk.BaseIV[:])
	require.NoError(t, err)
	return sk
}

func TestSeal_SequenceExhaustion(t *testing.T) {
	c, err := New(testKeys(t), Config{})
	require.NoError(t, err)

	// Jump the counter to the end of the nonce space.
	c.outSeq = noncer.MaxSequence - 1

	_, err = c.Seal([]byte("last one"), domain.OpPing)
	require.NoError(t, err)
	assert.Equal(t, noncer.MaxSequence, c.OutboundSequence())

	_, err = c.Seal([]byte("one too many"), domain.OpPing)
	assert.True(t, errors.Is(err, noncer.ErrSequenceExhausted))

	// The failed seal must not have advanced the counter.
	assert.Equal(t, noncer.MaxSequence, c.OutboundSequence())
}

func TestNearingExhaustion(t *testing.T) {
	c, err := New(testKeys(t), Config{})
	require.NoError(t, err)

	assert.False(t, c.NearingExhaustion())
	c.outSeq = noncer.MaxSequence - exhaustionMargin
	assert.True(t, c.NearingExhaustion())
}

func TestReplayCache_FIFOEviction(t *testing.T) {
	rc := newReplayCache(3)

	nonce := func(b byte) (n [domain.BaseIVSize]byte) {
		n[0] = b
		return
	}

	assert.False(t, rc.checkAndAdd(nonce(1)))
	assert.False(t, rc.checkAndAdd(nonce(2)))
	assert.False(t, rc.checkAndAdd(nonce(3)))
	assert.True(t, rc.checkAndAdd(nonce(1)), "still cached")

	// Inserting a fourth evicts the oldest (1).
	assert.False(t, rc.checkAndAdd(nonce(4)))
	assert.Equal(t, 3, rc.size())
	assert.False(t, rc.checkAndAdd(nonce(1)), "evicted, readmitted")
	assert.True(t, rc.checkAndAdd(nonce(3)), "2 was evicted next, not 3")
}
