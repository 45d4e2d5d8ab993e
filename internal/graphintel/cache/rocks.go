package cache

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/tecbot/gorocksdb"
)

// Rocks is the durable snapshot cache backend. Layout:
//   - main key:  "sc:"  + key(32)            -> expireTs(8) + payload
//   - idx key:   "scx:" + bucket(8) + ":" + key(32) -> expireTs(8)
//
// Eviction walks expiry buckets strictly older than now, so TTL cleanup is
// bounded work per call instead of a full scan.
type Rocks struct {
	db *gorocksdb.DB
	ro *gorocksdb.ReadOptions
	wo *gorocksdb.WriteOptions

	bucketSec int64

	// eviction progress (bucket index)
	lastCleanedBucket int64
}

func OpenRocks(path string, bucketSec int64) (*Rocks, error) {
	if bucketSec <= 0 {
		return nil, errors.New("bucketSec must be > 0")
	}
	opts := gorocksdb.NewDefaultOptions()
	opts.SetCreateIfMissing(true)
	opts.IncreaseParallelism(2)

	db, err := gorocksdb.OpenDb(opts, path)
	if err != nil {
		return nil, err
	}

	c := &Rocks{
		db:        db,
		ro:        gorocksdb.NewDefaultReadOptions(),
		wo:        gorocksdb.NewDefaultWriteOptions(),
		bucketSec: bucketSec,
	}
	if err := c.loadLastCleanedBucket(); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Rocks) Close() error {
	if c.ro != nil {
		c.ro.Destroy()
	}
	if c.wo != nil {
		c.wo.Destroy()
	}
	if c.db != nil {
		c.db.Close()
	}
	return nil
}

func (c *Rocks) Get(key []byte, nowTs int64) ([]byte, bool, error) {
	if len(key) != 32 {
		return nil, false, fmt.Errorf("cache key must be 32 bytes, got=%d", len(key))
	}
	val, err := c.db.Get(c.ro, mainKey(key))
	if err != nil {
		return nil, false, err
	}
	defer val.Free()

	if !val.Exists() || len(val.Data()) < 8 {
		return nil, false, nil
	}
	exp := decodeI64(val.Data()[:8])
	if exp < nowTs {
		return nil, false, nil
	}
	// RocksDB 管理的内存，Free 后失效，必须 copy
	payload := append([]byte(nil), val.Data()[8:]...)
	return payload, true, nil
}

func (c *Rocks) Put(key []byte, payload []byte, nowTs int64, ttlSec int64) error {
	if len(key) != 32 {
		return fmt.Errorf("cache key must be 32 bytes, got=%d", len(key))
	}
	if ttlSec <= 0 {
		ttlSec = 1
	}
	expireTs := nowTs + ttlSec
	bucket := expireTs / c.bucketSec

	val := make([]byte, 0, 8+len(payload))
	val = append(val, encodeI64(expireTs)...)
	val = append(val, payload...)

	wb := gorocksdb.NewWriteBatch()
	defer wb.Destroy()

	wb.Put(mainKey(key), val)
	wb.Put(idxKey(bucket, key), encodeI64(expireTs))

	return c.db.Write(c.wo, wb)
}

// Evict cleans buckets strictly older than nowBucket, bucket by bucket.
func (c *Rocks) Evict(nowTs int64) error {
	nowBucket := nowTs / c.bucketSec
	target := nowBucket - 1
	if target <= c.lastCleanedBucket {
		return nil
	}
	for b := c.lastCleanedBucket + 1; b <= target; b++ {
		if err := c.cleanBucket(b); err != nil {
			return err
		}
		c.lastCleanedBucket = b
		if err := c.saveLastCleanedBucket(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Rocks) cleanBucket(bucket int64) error {
	prefix := idxPrefix(bucket)
	it := c.db.NewIterator(c.ro)
	defer it.Close()

	it.Seek(prefix)

	wb := gorocksdb.NewWriteBatch()
	defer wb.Destroy()

	for it.Valid() {
		k := it.Key()
		if !hasPrefix(k.Data(), prefix) {
			k.Free()
			break
		}
		v := it.Value()

		key, ok := parseIdxKey(k.Data())
		expIdx := decodeI64(v.Data())

		// always drop the idx entry itself
		wb.Delete(k.Data())

		if ok {
			mk := mainKey(key)
			mv, err := c.db.Get(c.ro, mk)
			if err != nil {
				k.Free()
				v.Free()
				return err
			}
			if mv.Exists() && len(mv.Data()) >= 8 {
				// delete main only if it still matches this expiry
				// (a newer Put may have overwritten the entry)
				if decodeI64(mv.Data()[:8]) == expIdx {
					wb.Delete(mk)
				}
			}
			mv.Free()
		}
		k.Free()
		v.Free()

		if wb.Count() >= 5000 {
			if err := c.db.Write(c.wo, wb); err != nil {
				return err
			}
			wb.Clear()
		}
		it.Next()
	}

	if err := it.Err(); err != nil {
		return err
	}
	if wb.Count() > 0 {
		if err := c.db.Write(c.wo, wb); err != nil {
			return err
		}
	}
	return nil
}

// ---- meta: last cleaned bucket ----

var metaLastCleanKey = []byte("meta:sc_last_clean_bucket")

func (c *Rocks) loadLastCleanedBucket() error {
	val, err := c.db.Get(c.ro, metaLastCleanKey)
	if err != nil {
		return err
	}
	defer val.Free()
	if !val.Exists() {
		c.lastCleanedBucket = -1
		return nil
	}
	c.lastCleanedBucket = decodeI64(val.Data())
	return nil
}

func (c *Rocks) saveLastCleanedBucket() error {
	wb := gorocksdb.NewWriteBatch()
	defer wb.Destroy()
	wb.Put(metaLastCleanKey, encodeI64(c.lastCleanedBucket))
	return c.db.Write(c.wo, wb)
}

// ---- key helpers ----

func mainKey(key32 []byte) []byte {
	k := make([]byte, 0, 3+32)
	k = append(k, 's', 'c', ':')
	k = append(k, key32...)
	return k
}

func idxPrefix(bucket int64) []byte {
	k := make([]byte, 0, 4+8+1)
	k = append(k, 's', 'c', 'x', ':')
	var b8 [8]byte
	binary.BigEndian.PutUint64(b8[:], uint64(bucket))
	k = append(k, b8[:]...)
	k = append(k, ':')
	return k
}

func idxKey(bucket int64, key32 []byte) []byte {
	p := idxPrefix(bucket)
	k := make([]byte, 0, len(p)+32)
	k = append(k, p...)
	k = append(k, key32...)
	return k
}

func parseIdxKey(k []byte) ([]byte, bool) {
	if len(k) < 4+8+1+32 {
		return nil, false
	}
	h := make([]byte, 32)
	copy(h, k[len(k)-32:])
	return h, true
}

func hasPrefix(b, p []byte) bool {
	if len(b) < len(p) {
		return false
	}
	for i := range p {
		if b[i] != p[i] {
			return false
		}
	}
	return true
}

func encodeI64(x int64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(x))
	return b[:]
}

func decodeI64(b []byte) int64 {
	if len(b) < 8 {
		return 0
	}
	return int64(binary.BigEndian.Uint64(b[:8]))
}
