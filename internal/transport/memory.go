package transport

import (
	"context"
	"errors"

	"palisade/internal/domain"
)

// ErrTransportClosed means the counterpart end was closed.
var ErrTransportClosed = errors.New("transport: closed")

// memoryEnd is one side of an in-process duplex.
type memoryEnd struct {
	out chan<- []byte
	in  <-chan []byte
}

// Pair returns two connected in-process transports. Messages are copied on
// send, so a caller reusing its buffer cannot mutate blobs in flight.
func Pair() (domain.Transport, domain.Transport) {
	ab := make(chan []byte, 64)
	ba := make(chan []byte, 64)
	return &memoryEnd{out: ab, in: ba}, &memoryEnd{out: ba, in: ab}
}

func (m *memoryEnd) Send(ctx context.Context, b []byte) error {
	msg := make([]byte, len(b))
	copy(msg, b)
	select {
	case m.out <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *memoryEnd) Receive(ctx context.Context) ([]byte, error) {
	select {
	case msg, ok := <-m.in:
		if !ok {
			return nil, ErrTransportClosed
		}
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

var _ domain.Transport = (*memoryEnd)(nil)
