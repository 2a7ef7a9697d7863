package channel

import (
	"crypto/cipher"
	"errors"
	"sync"
	"time"

	"github.com/samber/oops"
	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"

	"palisade/internal/crypto"
	"palisade/internal/domain"
	"palisade/internal/protocol/noncer"
	"palisade/internal/util/memzero"
)

var log = logrus.WithField("component", "channel")

var (
	// ErrReplayDetected means the inbound nonce was already seen. The
	// message is dropped; the session continues.
	ErrReplayDetected = errors.New("channel: replay detected")

	// ErrAuthentication means the AEAD tag did not verify: wrong key, wrong
	// nonce, wrong operation tag, tampered ciphertext, or a context mismatch
	// between the sealer and the opener. They are indistinguishable on
	// purpose.
	ErrAuthentication = errors.New("channel: authentication failed")

	// ErrSequenceViolation means the authenticated sequence number did not
	// satisfy the ordering policy.
	ErrSequenceViolation = errors.New("channel: sequence violation")

	// ErrClosed means the channel was torn down.
	ErrClosed = errors.New("channel: closed")

	// ErrUnknownOp means the operation tag is not in the closed tag set.
	ErrUnknownOp = errors.New("channel: unknown operation tag")
)

// exhaustionMargin is how many sequence numbers before the 32-bit limit
// NearingExhaustion starts reporting true, giving the session layer room to
// renegotiate before Seal starts failing.
const exhaustionMargin = 1 << 16

// MaxWindow caps Config.Window: accepted sequence numbers inside the window
// are tracked in a 64-bit map, so the window cannot usefully exceed 64.
const MaxWindow = 64

// Config tunes a channel. The zero value gives the documented defaults:
// strict monotonic sequencing and a 4096-entry replay cache.
type Config struct {
	// ReplayCacheSize bounds the inbound nonce cache (FIFO eviction).
	ReplayCacheSize int

	// Window permits inbound reordering up to this many sequence numbers
	// behind the highest accepted value. 0 means strict: every message must
	// carry exactly lastAccepted+1. Values above MaxWindow are clamped.
	Window uint64
}

// Channel is the mutable per-session protocol state. One instance is owned
// exclusively by one session. All state transitions happen under a single
// mutex, and every mutation is apply-on-success: a failed seal or open
// leaves the sequence counters untouched. Only the replay cache remembers a
// rejected nonce, so a failed envelope cannot be retried into acceptance.
type Channel struct {
	mu   sync.Mutex
	aead cipher.AEAD
	keys domain.SessionKeys

	outSeq uint64
	lastIn uint64
	seen   uint64 // bit i set = sequence lastIn-i was accepted
	replay *replayCache
	window uint64
	closed bool

	stats         metrics
	establishedAt time.Time
}

// New builds a channel around derived session keys.
func New(keys domain.SessionKeys, cfg Config) (*Channel, error) {
	aead, err := crypto.NewAEAD(keys.AEADKey)
	if err != nil {
		return nil, err
	}
	if cfg.Window > MaxWindow {
		cfg.Window = MaxWindow
	}
	return &Channel{
		aead:          aead,
		keys:          keys,
		replay:        newReplayCache(cfg.ReplayCacheSize),
		window:        cfg.Window,
		establishedAt: time.Now(),
	}, nil
}

// Seal encrypts body under the next outbound sequence number with op bound
// as additional data, returning the wire envelope.
func (c *Channel) Seal(body []byte, op domain.Op) (domain.Envelope, error) {
	if !op.Valid() {
		return domain.Envelope{}, oops.Wrapf(ErrUnknownOp, "op %s", op)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.Envelope{}, ErrClosed
	}

	next := c.outSeq + 1
	nonce, err := noncer.FromSequence(c.keys.BaseIV, next)
	if err != nil {
		// Sequence 2^32-1 was already spent; the session must renegotiate.
		return domain.Envelope{}, err
	}

	plaintext, err := msgpack.Marshal(domain.Payload{Seq: next, Body: body})
	if err != nil {
		return domain.Envelope{}, oops.Wrapf(err, "marshal payload")
	}

	ciphertext := c.aead.Seal(nil, nonce[:], plaintext, op.AAD())
	memzero.Zero(plaintext)

	// Commit the sequence only now that the envelope exists.
	c.outSeq = next
	c.stats.sealed.Add(1)

	return domain.Envelope{Nonce: nonce[:], Ciphertext: ciphertext}, nil
}

// Open verifies and decrypts an inbound envelope sealed under op, returning
// the body. Every rejection drops that single message only; the caller
// decides whether a run of rejections should tear the session down.
func (c *Channel) Open(env domain.Envelope, op domain.Op) ([]byte, error) {
	if !op.Valid() {
		return nil, oops.Wrapf(ErrUnknownOp, "op %s", op)
	}
	if len(env.Nonce) != domain.BaseIVSize {
		return nil, oops.Wrapf(ErrAuthentication, "nonce length %d", len(env.Nonce))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}

	// Replay check comes before any decryption attempt.
	var nonce [domain.BaseIVSize]byte
	copy(nonce[:], env.Nonce)
	if c.replay.checkAndAdd(nonce) {
		c.stats.replayRejects.Add(1)
		log.WithField("op", op.String()).Warn("replayed nonce rejected")
		return nil, oops.Wrapf(ErrReplayDetected, "op %s", op)
	}

	plaintext, err := c.aead.Open(nil, nonce[:], env.Ciphertext, op.AAD())
	if err != nil {
		c.stats.authFailures.Add(1)
		log.WithField("op", op.String()).Warn("authentication failure")
		return nil, oops.Wrapf(ErrAuthentication, "op %s", op)
	}

	var payload domain.Payload
	if err := msgpack.Unmarshal(plaintext, &payload); err != nil {
		memzero.Zero(plaintext)
		c.stats.authFailures.Add(1)
		return nil, oops.Wrapf(ErrAuthentication, "malformed payload: %v", err)
	}
	memzero.Zero(plaintext)

	if err := c.checkSequence(payload.Seq); err != nil {
		if errors.Is(err, ErrReplayDetected) {
			c.stats.replayRejects.Add(1)
			log.WithFields(logrus.Fields{
				"op":  op.String(),
				"seq": payload.Seq,
			}).Warn("replayed sequence rejected")
		} else {
			c.stats.seqViolations.Add(1)
			log.WithFields(logrus.Fields{
				"op":       op.String(),
				"got":      payload.Seq,
				"expected": c.lastIn + 1,
			}).Warn("sequence violation")
		}
		return nil, err
	}

	c.recordSequence(payload.Seq)
	c.stats.opened.Add(1)
	return payload.Body, nil
}

// checkSequence enforces the ordering policy. Called with the mutex held,
// before any state is updated.
func (c *Channel) checkSequence(seq uint64) error {
	if seq == 0 || seq > noncer.MaxSequence {
		return oops.Wrapf(ErrSequenceViolation, "sequence %d out of range", seq)
	}
	if c.window == 0 {
		if seq != c.lastIn+1 {
			return oops.Wrapf(ErrSequenceViolation, "got %d, want %d", seq, c.lastIn+1)
		}
		return nil
	}
	// Window policy: anything newer than the highest accepted value is fine
	// (loss tolerated). Older values must sit inside the window and must not
	// have been accepted before. Duplicate detection cannot rely on the
	// replay cache: its entries are evictable, accepted bits are not.
	if seq > c.lastIn {
		return nil
	}
	offset := c.lastIn - seq
	if offset >= c.window {
		return oops.Wrapf(ErrSequenceViolation, "sequence %d outside window (last %d, window %d)", seq, c.lastIn, c.window)
	}
	if c.seen&(1<<offset) != 0 {
		return oops.Wrapf(ErrReplayDetected, "sequence %d already accepted", seq)
	}
	return nil
}

// recordSequence marks seq accepted. Called with the mutex held, only after
// checkSequence passed.
func (c *Channel) recordSequence(seq uint64) {
	if seq > c.lastIn {
		if shift := seq - c.lastIn; shift < 64 {
			c.seen = c.seen<<shift | 1
		} else {
			c.seen = 1
		}
		c.lastIn = seq
		return
	}
	c.seen |= 1 << (c.lastIn - seq)
}

// NearingExhaustion reports whether the outbound counter is close enough to
// the 32-bit limit that the session should renegotiate proactively.
func (c *Channel) NearingExhaustion() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outSeq >= noncer.MaxSequence-exhaustionMargin
}

// OutboundSequence returns the last sequence number used for a seal.
func (c *Channel) OutboundSequence() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outSeq
}

// Close wipes the session material and rejects all further use.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.keys.Wipe()
}

var _ domain.SecureChannel = (*Channel)(nil)
