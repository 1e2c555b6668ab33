package randutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsReproducible(t *testing.T) {
	a, b := New(99), New(99)
	for range 10 {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
}

func TestSeedFromString(t *testing.T) {
	assert.Equal(t, SeedFromString("dealer entropy"), SeedFromString("dealer entropy"))
	assert.NotEqual(t, SeedFromString("alice"), SeedFromString("bob"))
}

func TestRandomSeedVaries(t *testing.T) {
	assert.NotEqual(t, RandomSeed(), RandomSeed())
}
