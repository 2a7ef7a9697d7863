package channel

import "palisade/internal/domain"

// DefaultReplayCacheSize bounds the replay cache when no size is configured.
const DefaultReplayCacheSize = 4096

// replayCache is a bounded set of recently seen nonces with FIFO eviction.
// It is not safe for concurrent use on its own; the channel mutates it under
// the channel mutex.
type replayCache struct {
	seen  map[[domain.BaseIVSize]byte]struct{}
	order [][domain.BaseIVSize]byte
	head  int
	cap   int
}

func newReplayCache(capacity int) *replayCache {
	if capacity <= 0 {
		capacity = DefaultReplayCacheSize
	}
	return &replayCache{
		seen: make(map[[domain.BaseIVSize]byte]struct{}, capacity),
		cap:  capacity,
	}
}

// checkAndAdd reports whether nonce was already present, inserting it if
// not. When the cache is full the oldest entry is evicted first.
func (rc *replayCache) checkAndAdd(nonce [domain.BaseIVSize]byte) bool {
	if _, dup := rc.seen[nonce]; dup {
		return true
	}
	if len(rc.order) < rc.cap {
		rc.order = append(rc.order, nonce)
	} else {
		oldest := rc.order[rc.head]
		delete(rc.seen, oldest)
		rc.order[rc.head] = nonce
		rc.head = (rc.head + 1) % rc.cap
	}
	rc.seen[nonce] = struct{}{}
	return false
}

func (rc *replayCache) size() int { return len(rc.seen) }
