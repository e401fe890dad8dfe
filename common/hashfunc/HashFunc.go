// Package hashfunc implements a family of seeded 32 bit hash functions indexed by pass.
//
// Pass 1 uses the value's own identity hash. Every other pass runs the seeded Jenkins style mixer
// over the value's byte encoding with the pass as the seed, so keys that collide on one pass are
// spread independently on the next.
package hashfunc


//============================================= Hash Function Family


// GetHashFunction
//	Returns the hash function for the given pass.
//	Pass 1 delegates to the value's identity hash and never encodes the value.
//	Any other pass hashes the value's bytes with the pass as the seed.
//
// Parameters:
//	pass: the partitioning round the function belongs to
//
// Returns:
//	A pure function from value to a signed 32 bit hash, which can be negative
func GetHashFunction(pass int) HashFunction {
	if pass == FastPass {
		return func(value Value) int32 { return value.IdentityHash() }
	}

	seed := int64(pass)
	return func(value Value) int32 { return HashBytes(value.Bytes(), seed) }
}

// HashBytes
//	The seeded mixer. Based on the extended byte hash of Postgres, itself derived from Bob Jenkins' lookup3.
//	A nil slice hashes the same as an empty one.
//
// Parameters:
//	k: the key bytes
//	seed: zero skips the seeding round entirely
//
// Returns:
//	The final value of c as a signed 32 bit integer
func HashBytes(k []byte, seed int64) int32 {
	state := newHashState(len(k))
	state.seed(seed)

	for len(k) >= BlockSize {
		state.addBlock(k[:BlockSize])
		k = k[BlockSize:]
	}

	state.addTail(k)
	state.finalMix()

	return int32(state.c)
}

// BucketIndex
//	Reduces a possibly negative hash into [0, buckets) by reinterpreting it as unsigned.
//
// Parameters:
//	hash: the output of a HashFunction
//	buckets: the number of partitions, must be positive
//
// Returns:
//	The partition the hash belongs to
func BucketIndex(hash int32, buckets int) int {
	return int(uint32(hash) % uint32(buckets))
}
