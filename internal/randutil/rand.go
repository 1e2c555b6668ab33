package randutil

import (
	crand "crypto/rand"
	"encoding/binary"
	rand "math/rand/v2"

	"github.com/dchest/siphash"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15

	// Fixed SipHash key so every peer derives the same seed from the same string.
	seedKey0 = 0x6372696262616765
	seedKey1 = 0x73687566666c6521
)

// New returns a PCG-backed generator whose sequence depends only on seed.
// Equal seeds shuffle identically on every peer.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// SeedFromString maps dealer supplied shuffle entropy to a seed for New.
func SeedFromString(s string) int64 {
	return int64(siphash.Hash(seedKey0, seedKey1, []byte(s)))
}

// RandomSeed returns a fresh seed from the system's secure source.
func RandomSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic("randutil: failed to read random bytes: " + err.Error())
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
