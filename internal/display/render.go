package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/cribbage/internal/deck"
	"github.com/lox/cribbage/internal/scoring"
)

// FormatCard renders a card in its suit colour
func FormatCard(c deck.Card) string {
	if c.IsRed() {
		return RedCardStyle.Render(c.String())
	}
	return BlackCardStyle.Render(c.String())
}

// FormatCards renders cards separated by spaces
func FormatCards(cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = FormatCard(c)
	}
	return strings.Join(parts, " ")
}

// RenderHand draws each card in a box, numbering them from 1 when
// numbered is set. The magic card, if any, is drawn last in a gold box.
func RenderHand(h *deck.Hand, numbered bool) string {
	var boxes []string
	for i, c := range h.Cards() {
		label := FormatCard(c)
		if numbered {
			label = fmt.Sprintf("%s\n%s", label, InfoStyle.Render(fmt.Sprint(i+1)))
		}
		boxes = append(boxes, CardBoxStyle.Render(label))
	}
	if m, ok := h.Magic(); ok {
		boxes = append(boxes, MagicBoxStyle.Render(FormatCard(m)))
	}
	if len(boxes) == 0 {
		return InfoStyle.Render("(empty)")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

// FormatTally renders each scored item on its own line followed by the total
func FormatTally(t scoring.Tally) string {
	var b strings.Builder
	for _, item := range t.Items {
		fmt.Fprintf(&b, "  %-18s %s", item.Kind, ScoreStyle.Render(fmt.Sprint(item.Points)))
		if len(item.Cards) > 0 {
			fmt.Fprintf(&b, "  %s", FormatCards(item.Cards))
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "  %-18s %s", "total", ScoreStyle.Render(fmt.Sprint(t.Total())))
	return b.String()
}

// FormatScores renders a one line scoreboard
func FormatScores(names []string, scores []int) string {
	parts := make([]string, len(names))
	for i, name := range names {
		s := 0
		if i < len(scores) {
			s = scores[i]
		}
		parts[i] = fmt.Sprintf("%s %s", name, ScoreStyle.Render(fmt.Sprint(s)))
	}
	return strings.Join(parts, InfoStyle.Render(" · "))
}
