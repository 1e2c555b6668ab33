package deck

import (
	"testing"

	"github.com/lox/cribbage/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeckIsComplete(t *testing.T) {
	d := NewDeck()
	assert.Equal(t, Size, d.CardsRemaining())
	assert.True(t, d.IsComplete())
}

func TestShuffleIsDeterministicForSeed(t *testing.T) {
	a := NewDeck()
	b := NewDeck()
	a.Shuffle(randutil.New(42))
	b.Shuffle(randutil.New(42))
	assert.Equal(t, a.Cards(), b.Cards())
	assert.True(t, a.IsComplete())
	assert.NotEqual(t, NewDeck().Cards(), a.Cards())
}

func TestShufflePanicsOnPartialDeck(t *testing.T) {
	d := NewDeck()
	_, err := d.Deal(6)
	require.NoError(t, err)
	assert.Panics(t, func() { d.Shuffle(randutil.New(1)) })
}

func TestDealTakesFromTop(t *testing.T) {
	d := NewDeckFromCards(MustParseCards("AS2S3S4S"))
	dealt, err := d.Deal(2)
	require.NoError(t, err)
	assert.Equal(t, MustParseCards("3S4S"), dealt)
	assert.Equal(t, 2, d.CardsRemaining())

	magic, ok := d.Magic()
	require.True(t, ok)
	assert.Equal(t, MustParseCard("2S"), magic)
	assert.Equal(t, 2, d.CardsRemaining(), "magic is not removed")
}

func TestDealTooMany(t *testing.T) {
	d := NewDeckFromCards(MustParseCards("ASKS"))
	_, err := d.Deal(3)
	assert.ErrorIs(t, err, ErrNotEnoughCards)
	assert.Equal(t, 2, d.CardsRemaining())
}

func TestDealRejoinRestoresDeck(t *testing.T) {
	rng := randutil.New(7)
	for n := 0; n <= Size; n++ {
		d := NewDeck()
		d.Shuffle(rng)
		before := NewHand(d.Cards()...)

		dealt, err := d.Deal(n)
		require.NoError(t, err)
		require.Len(t, dealt, n)
		d.Rejoin(dealt)

		assert.True(t, d.IsComplete(), "n=%d", n)
		assert.True(t, before.Equal(NewHand(d.Cards()...)), "n=%d", n)
	}
}

func TestMagicOnEmptyDeck(t *testing.T) {
	d := NewDeckFromCards(nil)
	_, ok := d.Magic()
	assert.False(t, ok)
}
