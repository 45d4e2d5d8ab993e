package cache

import "sync"

type memEntry struct {
	payload  []byte
	expireTs int64
}

type memItem struct {
	key      string
	expireTs int64
}

// Memory is an in-process cache: map + insertion-order queue for eviction.
// 过期队列按插入序弹出；被覆盖的 key 通过 expireTs 比对跳过。
type Memory struct {
	mu     sync.Mutex
	m      map[string]memEntry
	q      []memItem
	head   int
	closed bool
}

func NewMemory(capHint int) *Memory {
	if capHint < 0 {
		capHint = 0
	}
	return &Memory{
		m: make(map[string]memEntry, capHint),
		q: make([]memItem, 0, capHint),
	}
}

func (c *Memory) Get(key []byte, nowTs int64) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, false, ErrClosed
	}
	e, ok := c.m[string(key)]
	if !ok || e.expireTs < nowTs {
		return nil, false, nil
	}
	out := append([]byte(nil), e.payload...)
	return out, true, nil
}

func (c *Memory) Put(key []byte, payload []byte, nowTs int64, ttlSec int64) error {
	if ttlSec <= 0 {
		ttlSec = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	k := string(key)
	expire := nowTs + ttlSec
	c.m[k] = memEntry{payload: append([]byte(nil), payload...), expireTs: expire}
	c.q = append(c.q, memItem{key: k, expireTs: expire})
	return nil
}

func (c *Memory) Evict(nowTs int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	for c.head < len(c.q) {
		it := c.q[c.head]
		if it.expireTs >= nowTs {
			break
		}
		// only delete if the map still points at this generation
		if e, ok := c.m[it.key]; ok && e.expireTs == it.expireTs {
			delete(c.m, it.key)
		}
		c.head++
	}

	// compact so the queue does not grow forever
	if c.head > 4096 && c.head*2 > len(c.q) {
		newQ := make([]memItem, 0, len(c.q)-c.head)
		newQ = append(newQ, c.q[c.head:]...)
		c.q = newQ
		c.head = 0
	}
	return nil
}

func (c *Memory) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.m = nil
	c.q = nil
	c.head = 0
	return nil
}
