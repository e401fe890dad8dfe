package hashfunc


// Value is anything the hash family can hash.
//	Bytes is the canonical byte encoding used by the seeded passes.
//	IdentityHash is the fast hash used by pass 1 and must agree with the value's notion of equality.
type Value interface {
	Bytes() []byte
	IdentityHash() int32
}

// HashFunction maps a value to a signed 32 bit digest. Digests can be negative.
type HashFunction func(value Value) int32

type register uint8

// tailStep adds a single byte shifted left by shift, or the big endian word starting at index when word is set.
type tailStep struct {
	reg register
	index int
	shift uint
	word bool
}


const (
	// FastPass is the pass that uses the value's identity hash instead of the seeded mixer
	FastPass = 1
	// BlockSize is the number of bytes consumed per mix round
	BlockSize = 12
	// goldenRatio seeds all three accumulators
	goldenRatio uint32 = 0x9e3779b9
	// salt is folded into the initial state alongside the key length
	salt uint32 = 3923095
)

const (
	regA register = iota
	regB
	regC
)

// tailTable lists, for every possible tail length, the exact additions applied to the state.
//	Each row already contains the rows beneath it up to the next full word, so no row depends on another.
var tailTable = [BlockSize][]tailStep{
	0: nil,
	1: {
		{ reg: regA, index: 0, shift: 24 },
	},
	2: {
		{ reg: regA, index: 1, shift: 16 },
		{ reg: regA, index: 0, shift: 24 },
	},
	3: {
		{ reg: regA, index: 2, shift: 8 },
		{ reg: regA, index: 1, shift: 16 },
		{ reg: regA, index: 0, shift: 24 },
	},
	4: {
		{ reg: regA, index: 0, word: true },
	},
	5: {
		{ reg: regB, index: 4, shift: 24 },
		{ reg: regA, index: 0, word: true },
	},
	6: {
		{ reg: regB, index: 5, shift: 16 },
		{ reg: regB, index: 4, shift: 24 },
		{ reg: regA, index: 0, word: true },
	},
	7: {
		{ reg: regB, index: 6, shift: 8 },
		{ reg: regB, index: 5, shift: 16 },
		{ reg: regB, index: 4, shift: 24 },
		{ reg: regA, index: 0, word: true },
	},
	8: {
		{ reg: regB, index: 4, word: true },
		{ reg: regA, index: 0, word: true },
	},
	9: {
		{ reg: regC, index: 8, shift: 24 },
		{ reg: regB, index: 4, word: true },
		{ reg: regA, index: 0, word: true },
	},
	10: {
		{ reg: regC, index: 9, shift: 16 },
		{ reg: regC, index: 8, shift: 24 },
		{ reg: regB, index: 4, word: true },
		{ reg: regA, index: 0, word: true },
	},
	11: {
		{ reg: regC, index: 10, shift: 8 },
		{ reg: regC, index: 9, shift: 16 },
		{ reg: regC, index: 8, shift: 24 },
		{ reg: regB, index: 4, word: true },
		{ reg: regA, index: 0, word: true },
	},
}
