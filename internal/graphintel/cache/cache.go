// Package cache is the snapshot cache collaborator: the calibration core
// stays cache-free, callers do cache-aside around it. Keys are deterministic
// hashes of kind + address/route + mode, entries carry insertion time and a
// TTL. 源实现是散在各 service 里的 Map+TTL；这里收敛成一个显式抽象。
package cache

import (
	"errors"

	"github.com/chenzhangda16/web3-graphintel/pkg/hash"
)

var ErrClosed = errors.New("cache closed")

// Cache stores opaque payloads under deterministic keys with TTL semantics.
// nowTs is passed in (unix seconds) so behavior is testable without clocks.
type Cache interface {
	// Get returns the payload if present and not expired at nowTs.
	Get(key []byte, nowTs int64) ([]byte, bool, error)
	// Put stores the payload with expiry nowTs+ttlSec.
	Put(key []byte, payload []byte, nowTs int64, ttlSec int64) error
	// Evict drops expired entries; cheap to call often.
	Evict(nowTs int64) error
	Close() error
}

// SnapshotKey derives the canonical cache key for a calibrated snapshot:
// hash of kind + address/route + mode + pipeline version. A version bump
// silently invalidates every previously cached snapshot.
func SnapshotKey(kind, addressOrRoute, mode, version string) []byte {
	h := hash.NewBuilder().
		PutString(kind).
		PutString(addressOrRoute).
		PutString(mode).
		PutString(version).
		Sum32()
	return h[:]
}
