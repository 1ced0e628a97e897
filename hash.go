package openhash

import "github.com/cespare/xxhash/v2"

const (
	// DefaultSeed seeds the hash that picks a key's home slot.
	DefaultSeed uint32 = 0x12345678
	// DefaultStepSeed seeds the hash that derives the double hashing step.
	DefaultStepSeed uint32 = 0x87654321
	// DefaultStepModulus bounds double hashing steps to [1, DefaultStepModulus].
	DefaultStepModulus uint32 = 7

	hashMultiplier uint32 = 0x5bd1e995
)

// HashFunc hashes a key with the given seed. The table calls it with two
// different seeds: one for the home slot and one for the step size.
type HashFunc func(key string, seed uint32) uint32

// Hash32 is the default key hash. Every byte of the key is xor-ed into the
// accumulator, which is then multiplied and folded with a right shift.
func Hash32(key string, seed uint32) uint32 {
	h := seed
	for i := 0; i < len(key); i++ {
		h ^= uint32(key[i])
		h *= hashMultiplier
		h ^= h >> 15
	}

	return h
}

// Returns the double hashing step for the key using the default hash,
// seed and modulus. The result always lies in [1, DefaultStepModulus].
func StepHash(key string) uint32 {
	return stepFromHash(Hash32(key, DefaultStepSeed), DefaultStepModulus)
}

func stepFromHash(h, modulus uint32) uint32 {
	return h%modulus + 1
}

// XXHash32 is an alternative HashFunc backed by xxhash. The seed is mixed
// into the 64-bit digest before folding it down to 32 bits.
func XXHash32(key string, seed uint32) uint32 {
	h := xxhash.Sum64String(key) ^ (uint64(seed) * 0x9e3779b97f4a7c15)

	return uint32(h ^ (h >> 32))
}
