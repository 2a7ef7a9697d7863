package derive_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"palisade/internal/crypto"
	"palisade/internal/domain"
	"palisade/internal/protocol/derive"
)

func makePair(t *testing.T) domain.KeyPair {
	t.Helper()
	kp, err := crypto.GenerateX25519()
	require.NoError(t, err)
	return kp
}

func TestSession_Symmetry(t *testing.T) {
	a := makePair(t)
	b := makePair(t)
	ctx := domain.SessionContext{
		InitiatorID:  "host",
		ResponderID:  "enclave",
		CodeIdentity: "v1",
	}

	aKeys, err := derive.Session(a.Private, a.Public, b.Public, ctx)
	require.NoError(t, err)
	bKeys, err := derive.Session(b.Private, b.Public, a.Public, ctx)
	require.NoError(t, err)

	assert.Equal(t, aKeys.AEADKey, bKeys.AEADKey, "AEAD keys must match")
	assert.Equal(t, aKeys.BaseIV, bKeys.BaseIV, "base IVs must match")
}

func TestSession_ContextDivergence(t *testing.T) {
	a := makePair(t)
	b := makePair(t)
	base := domain.SessionContext{
		InitiatorID:  "host",
		ResponderID:  "enclave",
		CodeIdentity: "v1",
	}

	ref, err := derive.Session(a.Private, a.Public, b.Public, base)
	require.NoError(t, err)

	seenKeys := map[[domain.AEADKeySize]byte]string{ref.AEADKey: "base"}
	seenIVs := map[[domain.BaseIVSize]byte]string{ref.BaseIV: "base"}

	for i := 0; i < 100; i++ {
		ctx := base
		switch i % 3 {
		case 0:
			ctx.InitiatorID = fmt.Sprintf("host-%d", i)
		case 1:
			ctx.ResponderID = fmt.Sprintf("enclave-%d", i)
		case 2:
			ctx.CodeIdentity = fmt.Sprintf("v1-%d", i)
		}

		got, err := derive.Session(a.Private, a.Public, b.Public, ctx)
		require.NoError(t, err)

		label := fmt.Sprintf("variation %d", i)
		if prev, dup := seenKeys[got.AEADKey]; dup {
			t.Fatalf("AEAD key collision between %s and %s", prev, label)
		}
		if prev, dup := seenIVs[got.BaseIV]; dup {
			t.Fatalf("base IV collision between %s and %s", prev, label)
		}
		seenKeys[got.AEADKey] = label
		seenIVs[got.BaseIV] = label
	}
}

func TestSession_EmptyFieldsDoNotCollide(t *testing.T) {
	a := makePair(t)
	b := makePair(t)

	one, err := derive.Session(a.Private, a.Public, b.Public,
		domain.SessionContext{InitiatorID: "host", ResponderID: "", CodeIdentity: "v1"})
	require.NoError(t, err)
	two, err := derive.Session(a.Private, a.Public, b.Public,
		domain.SessionContext{InitiatorID: "host", ResponderID: "v1", CodeIdentity: ""})
	require.NoError(t, err)

	assert.NotEqual(t, one.AEADKey, two.AEADKey)
}

func TestSession_HandshakeBinding(t *testing.T) {
	// Same context, different ephemeral pairs: the transcript binding must
	// yield different material.
	a1, b1 := makePair(t), makePair(t)
	a2, b2 := makePair(t), makePair(t)
	ctx := domain.SessionContext{InitiatorID: "host", ResponderID: "enclave", CodeIdentity: "v1"}

	k1, err := derive.Session(a1.Private, a1.Public, b1.Public, ctx)
	require.NoError(t, err)
	k2, err := derive.Session(a2.Private, a2.Public, b2.Public, ctx)
	require.NoError(t, err)

	assert.NotEqual(t, k1.AEADKey, k2.AEADKey)
}

func TestSession_MalformedPeerKey(t *testing.T) {
	a := makePair(t)
	var lowOrder domain.X25519Public // all-zero point

	_, err := derive.Session(a.Private, a.Public, lowOrder, domain.SessionContext{})
	assert.True(t, errors.Is(err, derive.ErrKeyAgreement))
}
