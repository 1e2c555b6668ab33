// Package game implements the cribbage round state machine shared by the
// coordinator and every participant.
//
// The main type is Table, which sequences each round through explicit
// phases:
//
//	Dealing -> Discarding -> Playing -> Showing -> RoundEnd -> Dealing ...
//
// The coordinator drives a Table with full knowledge of every hand and
// validates each move against it. Participants drive their own Table from
// relayed frames, knowing only their own cards until hands are revealed.
// Both sides apply the same transitions in the same order, so scores,
// cursors and the running count never drift apart.
//
// # Play phase
//
// PlayState is the pure step function for the play phase. It owns the
// running count, the segment history and the consecutive go counter, and
// reports every award it makes so the Table can record it:
//
//	s := game.NewPlayState(2)
//	out, err := s.Apply(1, &card, false)
//
// # Scoring
//
// Points are recorded in a per-round Ledger and only applied to players
// when the round ends, so a round aborted by a protocol error leaves the
// scores untouched.
package game
