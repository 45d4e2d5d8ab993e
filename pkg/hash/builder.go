package hash

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
)

type Hash32 = [32]byte

// Hex renders a Hash32 lowercase, no prefix.
func Hex(h Hash32) string { return hex.EncodeToString(h[:]) }

// Builder builds a canonical byte sequence then hashes it to Hash32 (sha256).
//
// Encoding rules:
//   - Fixed-width integers: big-endian
//   - Floats: IEEE-754 bits, big-endian
//   - Bytes/string: u32(len) big-endian + bytes
//   - Hex strings (addresses): normalize (trim 0x, lowercase), decode, length-prefix
//
// Used for deterministic snapshot cache keys (kind + address/route + mode).
type Builder struct {
	b []byte
}

func NewBuilder() *Builder { return &Builder{b: make([]byte, 0, 128)} }

func (d *Builder) Reset() { d.b = d.b[:0] }

func (d *Builder) PutU64(v uint64) *Builder {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	d.b = append(d.b, buf[:]...)
	return d
}

func (d *Builder) PutI64(v int64) *Builder { return d.PutU64(uint64(v)) }

func (d *Builder) PutF64(v float64) *Builder { return d.PutU64(math.Float64bits(v)) }

func (d *Builder) PutBool(v bool) *Builder {
	if v {
		d.b = append(d.b, 1)
	} else {
		d.b = append(d.b, 0)
	}
	return d
}

// PutBytes appends: u32(len) + bytes
func (d *Builder) PutBytes(p []byte) *Builder {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(len(p)))
	d.b = append(d.b, buf[:]...)
	d.b = append(d.b, p...)
	return d
}

func (d *Builder) PutString(s string) *Builder { return d.PutBytes([]byte(s)) }

// PutHexBytes normalizes "0x..." hex string -> raw bytes, length-prefixed.
func (d *Builder) PutHexBytes(hexStr string) (*Builder, error) {
	s := strings.TrimSpace(hexStr)
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	s = strings.ToLower(s)
	if s == "" {
		// empty allowed; still deterministic
		return d.PutBytes(nil), nil
	}
	if len(s)%2 != 0 {
		// canonical: left-pad one nibble
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("hash: decode hex: %w", err)
	}
	d.PutBytes(b)
	return d, nil
}

func (d *Builder) Sum32() Hash32 {
	return sha256.Sum256(d.b)
}

// SumStrings is a convenience for simple composite keys.
func SumStrings(parts ...string) Hash32 {
	b := NewBuilder()
	for _, p := range parts {
		b.PutString(p)
	}
	return b.Sum32()
}
