package transport_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"palisade/internal/transport"
)

func TestPair_RoundTrip(t *testing.T) {
	a, b := transport.Pair()
	ctx := context.Background()

	require.NoError(t, a.Send(ctx, []byte("ping")))
	got, err := b.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("ping"), got)

	require.NoError(t, b.Send(ctx, []byte("pong")))
	got, err = a.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("pong"), got)
}

func TestPair_SenderBufferReuse(t *testing.T) {
	a, b := transport.Pair()
	ctx := context.Background()

	buf := []byte("original")
	require.NoError(t, a.Send(ctx, buf))
	copy(buf, "mutated!")

	got, err := b.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), got)
}

func TestPair_ReceiveHonorsContext(t *testing.T) {
	a, _ := transport.Pair()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := a.Receive(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFramed_RoundTrip(t *testing.T) {
	left, right := net.Pipe()
	defer left.Close()
	defer right.Close()

	a := transport.NewFramed(left)
	b := transport.NewFramed(right)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		done <- a.Send(ctx, []byte("framed message"))
	}()

	got, err := b.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("framed message"), got)
	require.NoError(t, <-done)
}

func TestFramed_EmptyFrame(t *testing.T) {
	left, right := net.Pipe()
	defer left.Close()
	defer right.Close()

	a := transport.NewFramed(left)
	b := transport.NewFramed(right)
	ctx := context.Background()

	go func() { _ = a.Send(ctx, nil) }()

	got, err := b.Receive(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}
