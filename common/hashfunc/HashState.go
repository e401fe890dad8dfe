package hashfunc

import "encoding/binary"
import "math/bits"


//============================================= Hash State


// hashState is the (a, b, c) triple mutated by a single hash computation. It never outlives the call.
type hashState struct {
	a, b, c uint32
}

// newHashState
//	All three accumulators start at the golden ratio plus the key length plus the salt.
func newHashState(length int) hashState {
	initial := goldenRatio + uint32(length) + salt
	return hashState{ a: initial, b: initial, c: initial }
}

// seed
//	Folds the high half of the seed into a and the low half into b, then mixes.
//	A zero seed leaves the state untouched.
func (state *hashState) seed(seed int64) {
	if seed == 0 { return }

	state.a += uint32(uint64(seed) >> 32)
	state.b += uint32(seed)
	state.mix()
}

// addBlock
//	Consumes one 12 byte block. Every word is added twice: first in big endian order, then mirrored in little endian order.
//	Both additions change the result, so neither can be dropped.
//
// Parameters:
//	block: at least BlockSize bytes, only the first BlockSize are read
func (state *hashState) addBlock(block []byte) {
	_ = block[BlockSize - 1]

	state.a += binary.BigEndian.Uint32(block[0:4])
	state.b += binary.BigEndian.Uint32(block[4:8])
	state.c += binary.BigEndian.Uint32(block[8:12])

	state.a += binary.LittleEndian.Uint32(block[0:4])
	state.b += binary.LittleEndian.Uint32(block[4:8])
	state.c += binary.LittleEndian.Uint32(block[8:12])

	state.mix()
}

// addTail
//	Folds the final 0 to 11 bytes into the state using the steps listed in tailTable for that exact length.
func (state *hashState) addTail(tail []byte) {
	for _, step := range tailTable[len(tail)] {
		var delta uint32
		if step.word {
			delta = binary.BigEndian.Uint32(tail[step.index:step.index + 4])
		} else { delta = uint32(tail[step.index]) << step.shift }

		switch step.reg {
			case regA:
				state.a += delta
			case regB:
				state.b += delta
			case regC:
				state.c += delta
		}
	}
}

// mix
//	Reversible mixing of the three accumulators, run after the seed and after every block.
func (state *hashState) mix() {
	a, b, c := state.a, state.b, state.c

	a -= c; a ^= rot(c, 4); c += b
	b -= a; b ^= rot(a, 6); a += c
	c -= b; c ^= rot(b, 8); b += a
	a -= c; a ^= rot(c, 16); c += b
	b -= a; b ^= rot(a, 19); a += c
	c -= b; c ^= rot(b, 4); b += a

	state.a, state.b, state.c = a, b, c
}

// finalMix
//	Final avalanche, run exactly once. c carries the result.
func (state *hashState) finalMix() {
	a, b, c := state.a, state.b, state.c

	c ^= b; c -= rot(b, 14)
	a ^= c; a -= rot(c, 11)
	b ^= a; b -= rot(a, 25)
	c ^= b; c -= rot(b, 16)
	a ^= c; a -= rot(c, 4)
	b ^= a; b -= rot(a, 14)
	c ^= b; c -= rot(b, 24)

	state.a, state.b, state.c = a, b, c
}

// rot
//	32 bit circular left rotation.
func rot(i uint32, offset int) uint32 {
	return bits.RotateLeft32(i, offset)
}
