package display

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lox/cribbage/internal/deck"
	"github.com/lox/cribbage/internal/game"
)

// ErrInputClosed is returned when the player quits the prompt before answering
var ErrInputClosed = errors.New("input closed")

// askMsg replaces the prompt shown before the input line
type askMsg struct {
	prompt string
}

// promptModel is the Bubble Tea model behind PromptAgent. Every submitted
// line is queued on answers, so typing ahead of a question is kept.
type promptModel struct {
	input   textinput.Model
	answers chan string
	closed  bool
}

func newPromptModel() *promptModel {
	ti := textinput.New()
	ti.Placeholder = "card numbers, e.g. 1 4"
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 40
	ti.PromptStyle = PromptStyle
	ti.Prompt = "> "

	return &promptModel{
		input:   ti,
		answers: make(chan string, 16),
	}
}

func (m *promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case askMsg:
		m.input.Prompt = msg.prompt
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+d", "esc":
			m.closed = true
			return m, tea.Quit
		case "enter", "ctrl+j":
			answer := strings.TrimSpace(m.input.Value())
			echo := PromptStyle.Render(m.input.Prompt) + answer
			m.input.SetValue("")
			select {
			case m.answers <- answer:
			default:
				// a full queue drops the line
			}
			return m, tea.Println(echo)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *promptModel) View() string {
	if m.closed {
		return ""
	}
	return m.input.View() + "\n"
}

// PromptAgent asks a person at the console for discards and plays. Cards
// are chosen by their 1-based position in the displayed hand. The Bubble
// Tea program owns the terminal while it runs: anything else meant for the
// console goes through Write, which prints above the input line.
type PromptAgent struct {
	model   *promptModel
	program *tea.Program
	done    chan struct{}
	err     error

	mu      sync.Mutex
	started bool
	pending []byte
}

var (
	_ game.Agent = (*PromptAgent)(nil)
	_ io.Writer  = (*PromptAgent)(nil)
)

// NewPromptAgent reads keys from in and renders to out. A nil in reads no
// input. Call Start before asking anything.
func NewPromptAgent(in io.Reader, out io.Writer) *PromptAgent {
	model := newPromptModel()
	return &PromptAgent{
		model:   model,
		program: tea.NewProgram(model, tea.WithInput(in), tea.WithOutput(out)),
		done:    make(chan struct{}),
	}
}

// Start runs the prompt program until Close or the player quits
func (p *PromptAgent) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	go func() {
		defer close(p.done)
		_, p.err = p.program.Run()
	}()
}

// Close stops the program and restores the terminal
func (p *PromptAgent) Close() error {
	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if !started {
		return nil
	}

	p.program.Quit()
	<-p.done
	if p.err != nil && !errors.Is(p.err, tea.ErrProgramKilled) {
		return p.err
	}
	return nil
}

// Write prints each complete line above the input. A trailing partial line
// waits for its newline.
func (p *PromptAgent) Write(b []byte) (int, error) {
	p.mu.Lock()
	p.pending = append(p.pending, b...)
	var lines []string
	for {
		i := bytes.IndexByte(p.pending, '\n')
		if i < 0 {
			break
		}
		lines = append(lines, string(p.pending[:i]))
		p.pending = p.pending[i+1:]
	}
	p.mu.Unlock()

	for _, line := range lines {
		p.program.Println(line)
	}
	return len(b), nil
}

// Ask shows question and returns the next line the player submits, trimmed
func (p *PromptAgent) Ask(question string) (string, error) {
	p.program.Send(askMsg{prompt: question})
	select {
	case answer := <-p.model.answers:
		return answer, nil
	case <-p.done:
		if p.err != nil {
			return "", fmt.Errorf("%w: %w", ErrInputClosed, p.err)
		}
		return "", ErrInputClosed
	}
}

// ChooseDiscard asks for count distinct cards to put in the crib
func (p *PromptAgent) ChooseDiscard(hand []deck.Card, count int, dealer bool) ([]int, error) {
	whose := "your opponent's"
	if dealer {
		whose = "your"
	}
	p.program.Println("\n" + RenderHand(deck.NewHand(hand...), true))

	for {
		line, err := p.Ask(fmt.Sprintf("Choose %d card(s) for %s crib: ", count, whose))
		if err != nil {
			return nil, err
		}
		indices, err := parseIndices(line, len(hand))
		if err != nil {
			p.notice(err.Error())
			continue
		}
		if len(indices) != count {
			p.notice(fmt.Sprintf("pick exactly %d", count))
			continue
		}
		return indices, nil
	}
}

// ChoosePlay asks for one of the playable cards
func (p *PromptAgent) ChoosePlay(playable []deck.Card, view game.PlayView) (*deck.Card, error) {
	header := fmt.Sprintf("\nCount is %d", view.Count)
	if len(view.History) > 0 {
		header += " after " + FormatCards(view.History)
	}
	p.program.Println(header + "\n" + RenderHand(deck.NewHand(playable...), true))

	for {
		line, err := p.Ask("Play a card: ")
		if err != nil {
			return nil, err
		}
		indices, err := parseIndices(line, len(playable))
		if err != nil || len(indices) != 1 {
			p.notice("pick one card by number")
			continue
		}
		card := playable[indices[0]]
		return &card, nil
	}
}

func (p *PromptAgent) notice(msg string) {
	p.program.Println(InfoStyle.Render(msg))
}

// parseIndices turns "1 3" or "1,3" into distinct zero-based indices below n
func parseIndices(line string, n int) ([]int, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' })
	if len(fields) == 0 {
		return nil, errors.New("no cards chosen")
	}

	var out []int
	for _, f := range fields {
		i, err := strconv.Atoi(f)
		if err != nil || i < 1 || i > n {
			return nil, fmt.Errorf("%q is not a card number between 1 and %d", f, n)
		}
		if slices.Contains(out, i-1) {
			return nil, fmt.Errorf("card %d chosen twice", i)
		}
		out = append(out, i-1)
	}
	return out, nil
}
