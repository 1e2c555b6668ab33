package display

import (
	"bytes"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lox/cribbage/internal/deck"
	"github.com/lox/cribbage/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startPrompt runs a prompt program with no keyboard; keys are sent to it
func startPrompt(t *testing.T) (*PromptAgent, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	p := NewPromptAgent(nil, &out)
	p.Start()
	t.Cleanup(func() { _ = p.Close() })
	return p, &out
}

// typeLines submits each line as if typed and followed by enter
func typeLines(p *PromptAgent, lines ...string) {
	for _, line := range lines {
		if line != "" {
			p.program.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(line)})
		}
		p.program.Send(tea.KeyMsg{Type: tea.KeyEnter})
	}
}

func TestPromptModel(t *testing.T) {
	m := newPromptModel()

	m.Update(askMsg{prompt: "Play a card: "})
	assert.Contains(t, m.View(), "Play a card: ")

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(" 2,5 ")})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, "2,5", <-m.answers)
	assert.Empty(t, m.input.Value())

	// a bare line feed submits too, for piped input
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("3")})
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlJ})
	assert.Equal(t, "3", <-m.answers)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestPromptAgentDiscard(t *testing.T) {
	hand := deck.MustParseCards("AS2S3S4S5S6S")

	t.Run("valid answer", func(t *testing.T) {
		p, out := startPrompt(t)
		typeLines(p, "2,5")

		idx, err := p.ChooseDiscard(hand, 2, true)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 4}, idx)

		require.NoError(t, p.Close())
		assert.Contains(t, out.String(), "your crib")
	})

	t.Run("reprompts on bad input", func(t *testing.T) {
		p, out := startPrompt(t)
		typeLines(p, "9", "1 1", "1", "3 6")

		idx, err := p.ChooseDiscard(hand, 2, false)
		require.NoError(t, err)
		assert.Equal(t, []int{2, 5}, idx)

		require.NoError(t, p.Close())
		assert.Contains(t, out.String(), "opponent's crib")
		assert.Contains(t, out.String(), "chosen twice")
		assert.Contains(t, out.String(), "pick exactly 2")
	})

	t.Run("player quits", func(t *testing.T) {
		p, _ := startPrompt(t)
		p.program.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

		_, err := p.ChooseDiscard(hand, 2, false)
		assert.ErrorIs(t, err, ErrInputClosed)
	})
}

func TestPromptAgentPlay(t *testing.T) {
	playable := deck.MustParseCards("4D6H")
	p, out := startPrompt(t)
	typeLines(p, "0", "2")

	card, err := p.ChoosePlay(playable, game.PlayView{Count: 21, History: deck.MustParseCards("KSAC")})
	require.NoError(t, err)
	require.NotNil(t, card)
	assert.Equal(t, deck.MustParseCard("6H"), *card)

	require.NoError(t, p.Close())
	assert.Contains(t, out.String(), "Count is 21")
	assert.Contains(t, out.String(), "pick one card by number")
}

func TestPromptAgentAskAndWrite(t *testing.T) {
	p, out := startPrompt(t)
	typeLines(p, "  zoë  ")

	name, err := p.Ask("Enter your player name: ")
	require.NoError(t, err)
	assert.Equal(t, "zoë", name)

	_, err = p.Write([]byte("fifteen "))
	require.NoError(t, err)
	_, err = p.Write([]byte("two\nstill typing"))
	require.NoError(t, err)

	require.NoError(t, p.Close())
	assert.Contains(t, out.String(), "fifteen two")
	assert.NotContains(t, out.String(), "still typing")
}
