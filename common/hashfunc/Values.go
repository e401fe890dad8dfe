package hashfunc

import "encoding/binary"

import "github.com/cespare/xxhash/v2"


//============================================= Value Adapters


// Bytes is a raw byte key, as produced by an upstream encoder.
type Bytes []byte

// String is hashed by its UTF-8 bytes, so it agrees with Bytes holding the same content.
type String string

// Int is a 32 bit integer encoded as 4 big endian bytes.
type Int int32

// Long is a 64 bit integer encoded as 8 big endian bytes.
type Long int64

// Bool is encoded as a single 0 or 1 byte.
type Bool bool


func (b Bytes) Bytes() []byte { return b }

func (b Bytes) IdentityHash() int32 { return foldHash64(xxhash.Sum64(b)) }

func (s String) Bytes() []byte { return []byte(s) }

func (s String) IdentityHash() int32 { return foldHash64(xxhash.Sum64String(string(s))) }

func (i Int) Bytes() []byte {
	encoded := make([]byte, 4)
	binary.BigEndian.PutUint32(encoded, uint32(i))
	return encoded
}

func (i Int) IdentityHash() int32 { return int32(i) }

func (l Long) Bytes() []byte {
	encoded := make([]byte, 8)
	binary.BigEndian.PutUint64(encoded, uint64(l))
	return encoded
}

func (l Long) IdentityHash() int32 { return foldHash64(uint64(l)) }

func (b Bool) Bytes() []byte {
	if b { return []byte{ 1 } }
	return []byte{ 0 }
}

func (b Bool) IdentityHash() int32 {
	if b { return 1231 }
	return 1237
}

// foldHash64
//	Xors the high and low halves of a 64 bit hash.
func foldHash64(h uint64) int32 {
	return int32(uint32(h ^ (h >> 32)))
}


var (
	_ Value = Bytes(nil)
	_ Value = String("")
	_ Value = Int(0)
	_ Value = Long(0)
	_ Value = Bool(false)
)
