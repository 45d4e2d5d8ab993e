package ids

import (
	"hash/fnv"
	"strings"
	"sync"
	"sync/atomic"
)

// Interner maps node id strings to dense uint32 ids.
// - Thread-safe
// - Low GC: values are integers, sharded map reduces lock contention
// Used for corridor pair keys and anywhere a string node id is too heavy.
type Interner struct {
	next  atomic.Uint32
	parts []shard

	// reverse lookup: id -> original string
	revMu sync.Mutex
	rev   []string
}

type shard struct {
	mu sync.RWMutex
	m  map[string]uint32
}

func NewInterner(shards int, initialPerShard int) *Interner {
	if shards <= 0 {
		shards = 32
	}
	if initialPerShard < 0 {
		initialPerShard = 0
	}
	in := &Interner{
		parts: make([]shard, shards),
		rev:   make([]string, 0, shards*max(1, initialPerShard/2)),
	}
	for i := range in.parts {
		in.parts[i].m = make(map[string]uint32, initialPerShard)
	}
	return in
}

// ID returns a stable dense id for s. Empty strings map to 0.
func (in *Interner) ID(s string) uint32 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	sh := &in.parts[in.pick(s)]

	// fast path: read lock
	sh.mu.RLock()
	if id, ok := sh.m[s]; ok {
		sh.mu.RUnlock()
		return id
	}
	sh.mu.RUnlock()

	// slow path: write lock + double check
	sh.mu.Lock()
	if id, ok := sh.m[s]; ok {
		sh.mu.Unlock()
		return id
	}
	id := in.next.Add(1) // ids start from 1
	sh.m[s] = id
	sh.mu.Unlock()

	in.revMu.Lock()
	in.rev = append(in.rev, s)
	in.revMu.Unlock()

	return id
}

// Lookup returns the original string, ok=false when id is out of range.
func (in *Interner) Lookup(id uint32) (string, bool) {
	if id == 0 {
		return "", false
	}
	in.revMu.Lock()
	defer in.revMu.Unlock()
	idx := int(id - 1)
	if idx < 0 || idx >= len(in.rev) {
		return "", false
	}
	return in.rev[idx], true
}

// PairKey packs an unordered id pair into one uint64 grouping key.
func PairKey(a, b uint32) uint64 {
	if a > b {
		a, b = b, a
	}
	return (uint64(a) << 32) | uint64(b)
}

func (in *Interner) pick(s string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum32() % uint32(len(in.parts)))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
