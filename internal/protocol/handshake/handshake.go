package handshake

import (
	"context"
	"errors"
	"time"

	"github.com/samber/oops"
	"github.com/sirupsen/logrus"

	"palisade/internal/crypto"
	"palisade/internal/domain"
	"palisade/internal/protocol/channel"
	"palisade/internal/protocol/derive"
)

var log = logrus.WithField("component", "handshake")

var (
	// ErrTimeout means the transport did not deliver the peer announce
	// within the caller's deadline. The attempt is dead; restart from
	// scratch with fresh keys.
	ErrTimeout = errors.New("handshake: timed out waiting for peer")

	// ErrSpent means Run was called again on a machine that already ran.
	// One Handshaker serves exactly one attempt.
	ErrSpent = errors.New("handshake: already run")
)

// Role decides which slot of the canonical session context this side's
// endpoint ID occupies.
type Role int

const (
	Initiator Role = iota
	Responder
)

func (r Role) String() string {
	if r == Initiator {
		return "initiator"
	}
	return "responder"
}

// State is the observable position of the machine.
type State int

const (
	StateIdle State = iota
	StateKeysGenerated
	StateLocalAnnounced
	StatePeerKeyReceived
	StateSessionDerived
	StateReady
	StateFailed
)

var stateNames = [...]string{
	"Idle", "KeysGenerated", "LocalAnnounced", "PeerKeyReceived",
	"SessionDerived", "Ready", "Failed",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}

// Config parameterizes one handshake attempt.
type Config struct {
	Role       Role
	EndpointID string

	// CodeIdentity is folded into the derivation context. On the enclave
	// side it identifies the code actually running; on the host side it is
	// the identity the host expects. A mismatch is not detected here — it
	// surfaces as authentication failures on every message.
	CodeIdentity string

	// Timeout bounds the wait for the peer announce. Zero means the
	// caller's context is the only deadline.
	Timeout time.Duration

	// Channel configures the resulting channel (replay cache size, window).
	Channel channel.Config
}

// Handshaker drives one handshake attempt. Not safe for concurrent use and
// not reusable: a failed or completed machine is discarded.
type Handshaker struct {
	cfg     Config
	state   State
	failure error
}

func New(cfg Config) *Handshaker {
	return &Handshaker{cfg: cfg, state: StateIdle}
}

// State returns the machine's current position.
func (h *Handshaker) State() State { return h.state }

// Failure returns the reason a Failed machine failed.
func (h *Handshaker) Failure() error { return h.failure }

// Run executes the exchange over t and returns the initialized channel.
func (h *Handshaker) Run(ctx context.Context, t domain.Transport) (*channel.Channel, error) {
	if h.state != StateIdle {
		return nil, oops.Wrapf(ErrSpent, "state %s", h.state)
	}

	kp, err := crypto.GenerateX25519()
	if err != nil {
		return nil, h.fail(err)
	}
	defer kp.Wipe()
	h.state = StateKeysGenerated

	local := Announce{
		PublicKey:    kp.Public.Slice(),
		EndpointID:   h.cfg.EndpointID,
		CodeIdentity: h.cfg.CodeIdentity,
	}
	wire, err := local.Marshal()
	if err != nil {
		return nil, h.fail(err)
	}
	if err := t.Send(ctx, wire); err != nil {
		return nil, h.fail(oops.Wrapf(err, "send announce"))
	}
	h.state = StateLocalAnnounced
	log.WithFields(logrus.Fields{
		"role":     h.cfg.Role.String(),
		"endpoint": h.cfg.EndpointID,
		"key":      crypto.Fingerprint(kp.Public),
	}).Debug("announced ephemeral key")

	peer, err := h.receivePeer(ctx, t)
	if err != nil {
		return nil, h.fail(err)
	}
	h.state = StatePeerKeyReceived

	sessionCtx := h.sessionContext(peer)
	keys, err := derive.Session(kp.Private, kp.Public, peer.PeerPublic(), sessionCtx)
	if err != nil {
		return nil, h.fail(err)
	}
	h.state = StateSessionDerived

	ch, err := channel.New(keys, h.cfg.Channel)
	if err != nil {
		keys.Wipe()
		return nil, h.fail(err)
	}
	h.state = StateReady
	log.WithFields(logrus.Fields{
		"role":      h.cfg.Role.String(),
		"peer":      peer.EndpointID,
		"peer_key":  crypto.Fingerprint(peer.PeerPublic()),
		"initiator": sessionCtx.InitiatorID,
		"responder": sessionCtx.ResponderID,
	}).Info("secure channel established")
	return ch, nil
}

// receivePeer waits for the peer announce, bounded by the configured
// timeout on top of the caller's context.
func (h *Handshaker) receivePeer(ctx context.Context, t domain.Transport) (Announce, error) {
	if h.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cfg.Timeout)
		defer cancel()
	}
	wire, err := t.Receive(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Announce{}, oops.Wrapf(ErrTimeout, "%v", err)
		}
		return Announce{}, oops.Wrapf(err, "receive announce")
	}
	return ParseAnnounce(wire)
}

// sessionContext builds the canonical context: initiator ID first on both
// sides, local code identity regardless of what the peer claimed.
func (h *Handshaker) sessionContext(peer Announce) domain.SessionContext {
	if h.cfg.Role == Initiator {
		return domain.SessionContext{
			InitiatorID:  h.cfg.EndpointID,
			ResponderID:  peer.EndpointID,
			CodeIdentity: h.cfg.CodeIdentity,
		}
	}
	return domain.SessionContext{
		InitiatorID:  peer.EndpointID,
		ResponderID:  h.cfg.EndpointID,
		CodeIdentity: h.cfg.CodeIdentity,
	}
}

func (h *Handshaker) fail(err error) error {
	h.state = StateFailed
	h.failure = err
	log.WithError(err).WithField("role", h.cfg.Role.String()).Error("handshake failed")
	return err
}
