package channel

import (
	"sync/atomic"
	"time"
)

// metrics holds the channel's observability counters. Counters are atomic so
// snapshots never require the channel mutex.
type metrics struct {
	sealed        atomic.Uint64
	opened        atomic.Uint64
	replayRejects atomic.Uint64
	seqViolations atomic.Uint64
	authFailures  atomic.Uint64
}

// MetricsSnapshot is a read-only view of a channel's counters. It is an
// observability output only and plays no part in the protocol.
type MetricsSnapshot struct {
	Sealed             uint64
	Opened             uint64
	ReplayRejections   uint64
	SequenceViolations uint64
	AuthFailures       uint64

	// KeyAge is how long the session's derived material has been live in
	// usable form.
	KeyAge time.Duration
}

// Metrics returns the channel's counters at this instant.
func (c *Channel) Metrics() MetricsSnapshot {
	return MetricsSnapshot{
		Sealed:             c.stats.sealed.Load(),
		Opened:             c.stats.opened.Load(),
		ReplayRejections:   c.stats.replayRejects.Load(),
		SequenceViolations: c.stats.seqViolations.Load(),
		AuthFailures:       c.stats.authFailures.Load(),
		KeyAge:             time.Since(c.establishedAt),
	}
}
