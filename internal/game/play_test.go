package game

import (
	"testing"

	"github.com/lox/cribbage/internal/deck"
	"github.com/lox/cribbage/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func card(code string) *deck.Card {
	c := deck.MustParseCard(code)
	return &c
}

func awardKinds(awards []PlayAward) map[int][]scoring.Kind {
	out := map[int][]scoring.Kind{}
	for _, a := range awards {
		for _, item := range a.Tally.Items {
			out[a.Seat] = append(out[a.Seat], item.Kind)
		}
	}
	return out
}

func TestPlayStateGoPointGoesToLastPlayer(t *testing.T) {
	s := NewPlayState(3)

	_, err := s.Apply(1, card("TS"), false)
	require.NoError(t, err)
	_, err = s.Apply(2, card("KH"), false)
	require.NoError(t, err)
	_, err = s.Apply(0, card("9D"), false)
	require.NoError(t, err)
	assert.Equal(t, 29, s.Count())

	out, err := s.Apply(1, nil, false)
	require.NoError(t, err)
	assert.Empty(t, out.Awards)
	assert.Equal(t, 1, s.Gos())

	out, err = s.Apply(2, nil, false)
	require.NoError(t, err)
	assert.Empty(t, out.Awards)
	assert.Equal(t, 2, s.Gos())

	out, err = s.Apply(0, nil, false)
	require.NoError(t, err)
	assert.True(t, out.SegmentReset)
	assert.Equal(t, map[int][]scoring.Kind{0: {scoring.KindGo}}, awardKinds(out.Awards))
	assert.Equal(t, 0, s.Count())
	assert.Equal(t, 0, s.Gos())
	assert.Empty(t, s.History())
}

func TestPlayStateGoCounterResetsOnPlay(t *testing.T) {
	s := NewPlayState(2)
	_, err := s.Apply(1, card("TS"), false)
	require.NoError(t, err)
	_, err = s.Apply(0, card("KS"), false)
	require.NoError(t, err)
	_, err = s.Apply(1, nil, false)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Gos())

	_, err = s.Apply(0, card("9H"), false)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Gos())
	assert.Equal(t, 29, s.Count())
}

func TestPlayStateThirtyOneResetsSegment(t *testing.T) {
	s := NewPlayState(2)
	for i, code := range []string{"TS", "KH", "JD"} {
		_, err := s.Apply((i+1)%2, card(code), false)
		require.NoError(t, err)
	}

	out, err := s.Apply(0, card("AC"), false)
	require.NoError(t, err)
	assert.Equal(t, 31, out.Count)
	assert.True(t, out.SegmentReset)
	assert.Equal(t, map[int][]scoring.Kind{0: {scoring.KindThirtyOne}}, awardKinds(out.Awards))
	assert.Equal(t, 0, s.Count())
}

func TestPlayStateRejectsOverThirtyOne(t *testing.T) {
	s := NewPlayState(2)
	for i, code := range []string{"TS", "KH", "JD"} {
		_, err := s.Apply(i%2, card(code), false)
		require.NoError(t, err)
	}
	_, err := s.Apply(1, card("2C"), false)
	assert.ErrorIs(t, err, ErrIllegalPlay)
	assert.Equal(t, 30, s.Count(), "rejected move leaves state untouched")
}

func TestPlayStateLastCard(t *testing.T) {
	s := NewPlayState(2)
	out, err := s.Apply(1, card("5S"), true)
	require.NoError(t, err)
	assert.False(t, out.Done)
	assert.True(t, s.Finished(1))

	_, err = s.Apply(1, card("6S"), false)
	assert.ErrorIs(t, err, ErrIllegalPlay, "finished seat cannot lay a card")

	out, err = s.Apply(0, card("4H"), true)
	require.NoError(t, err)
	assert.True(t, out.Done)
	assert.Equal(t, map[int][]scoring.Kind{0: {scoring.KindLastCard}}, awardKinds(out.Awards))

	_, err = s.Apply(1, nil, true)
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestPlayStateNoLastCardAfterThirtyOne(t *testing.T) {
	s := NewPlayState(2)
	_, err := s.Apply(1, card("TS"), false)
	require.NoError(t, err)
	_, err = s.Apply(0, card("KH"), false)
	require.NoError(t, err)
	_, err = s.Apply(1, card("JD"), true)
	require.NoError(t, err)

	out, err := s.Apply(0, card("AC"), true)
	require.NoError(t, err)
	assert.True(t, out.Done)
	assert.Equal(t, map[int][]scoring.Kind{0: {scoring.KindThirtyOne}}, awardKinds(out.Awards))
}

func TestPlayStateFinishedSeatsStillCountAsGo(t *testing.T) {
	s := NewPlayState(3)
	_, err := s.Apply(1, card("TS"), true) // seat 1 finished
	require.NoError(t, err)
	_, err = s.Apply(2, card("TH"), false)
	require.NoError(t, err)
	_, err = s.Apply(0, card("TD"), false)
	require.NoError(t, err)

	_, err = s.Apply(1, nil, true) // automatic pass
	require.NoError(t, err)
	_, err = s.Apply(2, nil, false)
	require.NoError(t, err)
	out, err := s.Apply(0, nil, false)
	require.NoError(t, err)

	assert.True(t, out.SegmentReset)
	assert.Equal(t, map[int][]scoring.Kind{0: {scoring.KindGo}}, awardKinds(out.Awards))
}
