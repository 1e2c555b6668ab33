package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCards(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Card
		wantErr  bool
	}{
		{
			name:  "run",
			input: "4S5H6D",
			expected: []Card{
				{Suit: Spades, Rank: Four},
				{Suit: Hearts, Rank: Five},
				{Suit: Diamonds, Rank: Six},
			},
		},
		{
			name:  "faces and ten",
			input: "TCJDQHKSAS",
			expected: []Card{
				{Suit: Clubs, Rank: Ten},
				{Suit: Diamonds, Rank: Jack},
				{Suit: Hearts, Rank: Queen},
				{Suit: Spades, Rank: King},
				{Suit: Spades, Rank: Ace},
			},
		},
		{
			name:  "case insensitive",
			input: "asKhqDjc",
			expected: []Card{
				{Suit: Spades, Rank: Ace},
				{Suit: Hearts, Rank: King},
				{Suit: Diamonds, Rank: Queen},
				{Suit: Clubs, Rank: Jack},
			},
		},
		{name: "invalid rank", input: "XSKS", wantErr: true},
		{name: "invalid suit", input: "ASKX", wantErr: true},
		{name: "odd length", input: "ASK", wantErr: true},
		{name: "empty string", input: "", expected: []Card{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCards(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidCard)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMustParseCards(t *testing.T) {
	assert.Equal(t, []Card{{Suit: Spades, Rank: Ace}, {Suit: Spades, Rank: King}}, MustParseCards("ASKS"))
	assert.Panics(t, func() { MustParseCards("invalid") })
}

func TestCardValues(t *testing.T) {
	tests := []struct {
		code  string
		score int
		order int
	}{
		{"AS", 1, 1},
		{"5H", 5, 5},
		{"9D", 9, 9},
		{"TC", 10, 10},
		{"JS", 10, 11},
		{"QH", 10, 12},
		{"KD", 10, 13},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			c := MustParseCard(tt.code)
			assert.Equal(t, tt.score, c.ScoreValue())
			assert.Equal(t, tt.order, c.Order())
			assert.Equal(t, tt.code, c.Code())
		})
	}
}

func TestCardString(t *testing.T) {
	assert.Equal(t, "5♠", MustParseCard("5S").String())
	assert.Equal(t, "T♦", MustParseCard("TD").String())
	assert.True(t, MustParseCard("QH").IsRed())
	assert.False(t, MustParseCard("QC").IsRed())
}

func TestEveryCardCodeRoundTrips(t *testing.T) {
	for _, c := range NewDeck().Cards() {
		parsed, err := ParseCard(c.Code())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
}

func TestParseCodeIsStrict(t *testing.T) {
	for _, c := range NewDeck().Cards() {
		parsed, err := ParseCode(c.Code())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}

	for _, code := range []string{"5s", "tH", "jd", "ZZ", "5", "5SS", ""} {
		_, err := ParseCode(code)
		assert.ErrorIs(t, err, ErrInvalidCard, code)
	}

	lenient, err := ParseCard("5s")
	require.NoError(t, err)
	assert.Equal(t, MustParseCard("5S"), lenient)
}
