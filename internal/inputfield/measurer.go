package inputfield

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Position is a caret location in display cells.
type Position struct {
	Line   int
	Column int
}

// Measurer lays out display text.
type Measurer interface {
	// Measure returns where the caret at rune index caret is drawn.
	Measure(text string, caret int) Position
	// LineCount returns the number of lines text occupies.
	LineCount(text string) int
}

// TerminalMeasurer lays text out in a terminal: wide runes take two cells
// and lines wrap at Width. Width <= 0 disables wrapping.
type TerminalMeasurer struct {
	Width int
}

// Measure implements Measurer.
func (m TerminalMeasurer) Measure(text string, caret int) Position {
	pos, _ := m.layout(text, caret)
	return pos
}

// LineCount implements Measurer.
func (m TerminalMeasurer) LineCount(text string) int {
	_, lines := m.layout(text, -1)
	return lines
}

// layout walks grapheme clusters and returns the position of caret along
// with the total line count.
func (m TerminalMeasurer) layout(text string, caret int) (Position, int) {
	var pos, found Position
	hit := false
	idx := 0

	g := uniseg.NewGraphemes(text)
	for g.Next() {
		if idx == caret {
			found, hit = pos, true
		}
		cluster := g.Str()
		idx += len(g.Runes())

		if cluster == "\n" || cluster == "\r\n" {
			pos = Position{Line: pos.Line + 1}
			continue
		}
		w := runewidth.StringWidth(cluster)
		if m.Width > 0 && pos.Column+w > m.Width && pos.Column > 0 {
			pos = Position{Line: pos.Line + 1}
			if idx-len(g.Runes()) == caret {
				found = pos
			}
		}
		pos.Column += w
	}
	if !hit {
		found = pos
	}
	return found, pos.Line + 1
}
