package handshake_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"palisade/internal/domain"
	"palisade/internal/protocol/channel"
	"palisade/internal/protocol/handshake"
	"palisade/internal/transport"
)

// establish runs both sides of a handshake over an in-memory pair.
func establish(t *testing.T, hostCode, enclaveCode string) (*channel.Channel, *channel.Channel) {
	t.Helper()

	hostT, enclaveT := transport.Pair()
	ctx := context.Background()

	var (
		wg                  sync.WaitGroup
		hostCh, enclaveCh   *channel.Channel
		hostErr, enclaveErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		h := handshake.New(handshake.Config{
			Role:         handshake.Initiator,
			EndpointID:   "host",
			CodeIdentity: hostCode,
			Timeout:      time.Second,
		})
		hostCh, hostErr = h.Run(ctx, hostT)
	}()
	go func() {
		defer wg.Done()
		h := handshake.New(handshake.Config{
			Role:         handshake.Responder,
			EndpointID:   "enclave",
			CodeIdentity: enclaveCode,
			Timeout:      time.Second,
		})
		enclaveCh, enclaveErr = h.Run(ctx, enclaveT)
	}()
	wg.Wait()

	require.NoError(t, hostErr)
	require.NoError(t, enclaveErr)
	return hostCh, enclaveCh
}

func TestHandshake_EndToEndScenario(t *testing.T) {
	host, enclave := establish(t, "v1", "v1")

	// Host seals PING as its message 1; enclave opens it.
	ping, err := host.Seal([]byte(`{"op":"PING"}`), domain.OpPing)
	require.NoError(t, err)
	body, err := enclave.Open(ping, domain.OpPing)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"op":"PING"}`), body)

	// Enclave seals PONG as message 1 on its own outbound counter.
	pong, err := enclave.Seal([]byte(`{"op":"PONG"}`), domain.OpPong)
	require.NoError(t, err)
	body, err = host.Open(pong, domain.OpPong)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"op":"PONG"}`), body)

	// Host replays its own first envelope back at the enclave: the nonce is
	// already in the enclave's cache.
	_, err = enclave.Open(ping, domain.OpPing)
	assert.True(t, errors.Is(err, channel.ErrReplayDetected))
}

func TestHandshake_ContextMismatch(t *testing.T) {
	// The enclave derives with codeIdentity v2 while the host expects v1:
	// the handshake itself completes, but nothing decrypts.
	host, imposter := establish(t, "v1", "v2")

	env, err := host.Seal([]byte("secret request"), domain.OpExecute)
	require.NoError(t, err)

	_, err = imposter.Open(env, domain.OpExecute)
	assert.True(t, errors.Is(err, channel.ErrAuthentication))
}

func TestHandshake_Timeout(t *testing.T) {
	hostT, _ := transport.Pair() // nobody ever answers

	h := handshake.New(handshake.Config{
		Role:       handshake.Initiator,
		EndpointID: "host",
		Timeout:    50 * time.Millisecond,
	})
	_, err := h.Run(context.Background(), hostT)
	assert.True(t, errors.Is(err, handshake.ErrTimeout))
	assert.Equal(t, handshake.StateFailed, h.State())
	assert.Error(t, h.Failure())
}

func TestHandshake_MalformedAnnounce(t *testing.T) {
	hostT, peerT := transport.Pair()
	ctx := context.Background()

	// The "peer" sends garbage instead of an announce.
	require.NoError(t, peerT.Send(ctx, []byte{0xde, 0xad, 0xbe, 0xef}))

	h := handshake.New(handshake.Config{
		Role:       handshake.Initiator,
		EndpointID: "host",
		Timeout:    time.Second,
	})
	_, err := h.Run(ctx, hostT)
	assert.True(t, errors.Is(err, handshake.ErrMalformedAnnounce))
	assert.Equal(t, handshake.StateFailed, h.State())
}

func TestHandshake_RejectsEmptyEndpointID(t *testing.T) {
	hostT, peerT := transport.Pair()
	ctx := context.Background()

	bad := handshake.Announce{PublicKey: make([]byte, 32), EndpointID: ""}
	wire, err := bad.Marshal()
	require.NoError(t, err)
	require.NoError(t, peerT.Send(ctx, wire))

	h := handshake.New(handshake.Config{
		Role:       handshake.Initiator,
		EndpointID: "host",
		Timeout:    time.Second,
	})
	_, err = h.Run(ctx, hostT)
	assert.True(t, errors.Is(err, handshake.ErrMalformedAnnounce))
}

func TestHandshake_OneShot(t *testing.T) {
	host, _ := establishHandshakers(t)

	_, err := host.Run(context.Background(), nil)
	assert.True(t, errors.Is(err, handshake.ErrSpent))
}

// establishHandshakers completes a handshake and returns the spent machines.
func establishHandshakers(t *testing.T) (*handshake.Handshaker, *handshake.Handshaker) {
	t.Helper()
	hostT, enclaveT := transport.Pair()
	ctx := context.Background()

	hi := handshake.New(handshake.Config{
		Role: handshake.Initiator, EndpointID: "host", CodeIdentity: "v1", Timeout: time.Second,
	})
	ri := handshake.New(handshake.Config{
		Role: handshake.Responder, EndpointID: "enclave", CodeIdentity: "v1", Timeout: time.Second,
	})

	var wg sync.WaitGroup
	wg.Add(2)
	var e1, e2 error
	go func() { defer wg.Done(); _, e1 = hi.Run(ctx, hostT) }()
	go func() { defer wg.Done(); _, e2 = ri.Run(ctx, enclaveT) }()
	wg.Wait()
	require.NoError(t, e1)
	require.NoError(t, e2)
	require.Equal(t, handshake.StateReady, hi.State())
	require.Equal(t, handshake.StateReady, ri.State())
	return hi, ri
}
