package transport

import (
	"context"
	"encoding/binary"
	"io"
	"sync"

	"github.com/samber/oops"

	"palisade/internal/domain"
)

// MaxFrameSize caps a single frame. Anything larger is treated as a
// malformed or hostile peer, not buffered.
const MaxFrameSize = 1 << 20

// Framed carries blobs over any io.ReadWriter as big-endian
// uint32-length-prefixed frames.
type Framed struct {
	rw io.ReadWriter

	sendMu sync.Mutex
	recvMu sync.Mutex
}

func NewFramed(rw io.ReadWriter) *Framed {
	return &Framed{rw: rw}
}

func (f *Framed) Send(ctx context.Context, b []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(b) > MaxFrameSize {
		return oops.Errorf("frame too large: %d bytes", len(b))
	}
	f.sendMu.Lock()
	defer f.sendMu.Unlock()

	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(b)))
	if _, err := f.rw.Write(hdr[:]); err != nil {
		return oops.Wrapf(err, "write frame header")
	}
	if _, err := f.rw.Write(b); err != nil {
		return oops.Wrapf(err, "write frame body")
	}
	return nil
}

func (f *Framed) Receive(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.recvMu.Lock()
	defer f.recvMu.Unlock()

	var hdr [4]byte
	if _, err := io.ReadFull(f.rw, hdr[:]); err != nil {
		return nil, oops.Wrapf(err, "read frame header")
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n > MaxFrameSize {
		return nil, oops.Errorf("frame too large: %d bytes", n)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(f.rw, body); err != nil {
		return nil, oops.Wrapf(err, "read frame body")
	}
	return body, nil
}

var _ domain.Transport = (*Framed)(nil)
