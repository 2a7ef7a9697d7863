package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"
	"github.com/sirupsen/logrus"

	"palisade/internal/domain"
	"palisade/internal/protocol/channel"
	"palisade/internal/protocol/handshake"
)

var log = logrus.WithField("component", "session")

var (
	// ErrNotEstablished means no handshake has completed yet.
	ErrNotEstablished = errors.New("session: not established; run Establish first")
)

// DefaultViolationThreshold is how many consecutive rejections trigger the
// desynchronization warning when the config leaves it zero.
const DefaultViolationThreshold = 8

// Config parameterizes the sessions a Service establishes.
type Config struct {
	Role         handshake.Role
	EndpointID   string
	CodeIdentity string

	// HandshakeTimeout bounds each wait for the peer announce.
	HandshakeTimeout time.Duration

	// Channel is handed to every channel this service creates.
	Channel channel.Config

	// ViolationThreshold is the consecutive-rejection count past which the
	// service logs that the session looks desynchronized or under attack.
	ViolationThreshold uint64
}

// Service owns one transport and at most one live channel over it. All
// methods are safe for concurrent use.
type Service struct {
	cfg       Config
	transport domain.Transport

	mu         sync.Mutex
	ch         *channel.Channel
	id         string
	violations uint64
}

func New(cfg Config, t domain.Transport) *Service {
	if cfg.ViolationThreshold == 0 {
		cfg.ViolationThreshold = DefaultViolationThreshold
	}
	return &Service{cfg: cfg, transport: t}
}

// Establish runs a fresh handshake and replaces any previous channel. Each
// attempt uses fresh ephemeral keys; a failed attempt leaves the previous
// channel (if any) untouched.
func (s *Service) Establish(ctx context.Context) error {
	h := handshake.New(handshake.Config{
		Role:         s.cfg.Role,
		EndpointID:   s.cfg.EndpointID,
		CodeIdentity: s.cfg.CodeIdentity,
		Timeout:      s.cfg.HandshakeTimeout,
		Channel:      s.cfg.Channel,
	})
	ch, err := h.Run(ctx, s.transport)
	if err != nil {
		return err
	}

	s.mu.Lock()
	old := s.ch
	s.ch = ch
	s.id = uuid.NewString()
	s.violations = 0
	id := s.id
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}
	log.WithFields(logrus.Fields{
		"session": id,
		"role":    s.cfg.Role.String(),
	}).Info("session established")
	return nil
}

// ID returns the current session's identifier, for log correlation.
func (s *Service) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// NeedsRenegotiation reports whether the outbound counter is near the nonce
// derivation limit and a fresh handshake should be arranged with the peer.
func (s *Service) NeedsRenegotiation() bool {
	s.mu.Lock()
	ch := s.ch
	s.mu.Unlock()
	return ch != nil && ch.NearingExhaustion()
}

// Seal encrypts body for the peer. When the sequence space is spent the
// error unwraps to noncer.ErrSequenceExhausted and the caller must arrange a
// renegotiation on both sides before sending anything further.
func (s *Service) Seal(body []byte, op domain.Op) (domain.Envelope, error) {
	ch, err := s.current()
	if err != nil {
		return domain.Envelope{}, err
	}
	if ch.NearingExhaustion() {
		log.WithField("session", s.ID()).Warn("sequence space nearly exhausted; renegotiate soon")
	}
	return ch.Seal(body, op)
}

// Open verifies and decrypts an inbound envelope. Protocol rejections
// (replay, authentication, sequence) feed the consecutive-violation counter;
// a successful open resets it. Caller errors such as an unknown operation
// tag say nothing about the peer and leave the counter alone.
func (s *Service) Open(env domain.Envelope, op domain.Op) ([]byte, error) {
	ch, err := s.current()
	if err != nil {
		return nil, err
	}

	body, err := ch.Open(env, op)
	if err != nil {
		if isProtocolRejection(err) {
			s.noteViolation(err)
		}
		return nil, err
	}

	s.mu.Lock()
	s.violations = 0
	s.mu.Unlock()
	return body, nil
}

// Violations returns the current consecutive-rejection count.
func (s *Service) Violations() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.violations
}

// Metrics returns the live channel's counters.
func (s *Service) Metrics() (channel.MetricsSnapshot, error) {
	ch, err := s.current()
	if err != nil {
		return channel.MetricsSnapshot{}, err
	}
	return ch.Metrics(), nil
}

// Close tears down the live session and wipes its material.
func (s *Service) Close() {
	s.mu.Lock()
	ch := s.ch
	s.ch = nil
	s.mu.Unlock()
	if ch != nil {
		ch.Close()
	}
}

func (s *Service) current() (*channel.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch == nil {
		return nil, oops.Wrapf(ErrNotEstablished, "endpoint %s", s.cfg.EndpointID)
	}
	return s.ch, nil
}

func isProtocolRejection(err error) bool {
	return errors.Is(err, channel.ErrReplayDetected) ||
		errors.Is(err, channel.ErrAuthentication) ||
		errors.Is(err, channel.ErrSequenceViolation)
}

func (s *Service) noteViolation(cause error) {
	s.mu.Lock()
	s.violations++
	count := s.violations
	id := s.id
	s.mu.Unlock()

	if count >= s.cfg.ViolationThreshold {
		log.WithFields(logrus.Fields{
			"session":     id,
			"consecutive": count,
		}).WithError(cause).Warn("sustained rejections; session desynchronized or under attack")
	}
}
