package testutil

import (
	"strings"

	"github.com/zjrosen/richinput/internal/textedit"
)

// Frame builds a frame from a marked string. "|" marks a caret. A selection
// is written with "[" at its anchor and "]" at the caret, so "h[el]lo"
// selects forwards and "h]el[lo" backwards. Without marks the caret is at
// the end.
func Frame(marked string) textedit.Frame {
	var b strings.Builder
	caret, anchor, end := -1, -1, -1
	n := 0
	for _, r := range marked {
		switch r {
		case '|':
			caret = n
		case '[':
			anchor = n
		case ']':
			end = n
		default:
			b.WriteRune(r)
			n++
		}
	}
	switch {
	case anchor >= 0 && end >= 0:
		return textedit.Frame{Text: b.String(), SelectionStart: anchor, SelectionEnd: end}
	case caret >= 0:
		return textedit.NewFrame(b.String(), caret)
	}
	return textedit.NewFrame(b.String(), n)
}

// Mark renders f in the notation Frame reads.
func Mark(f textedit.Frame) string {
	rs := []rune(f.Text)
	var b strings.Builder
	for i := 0; i <= len(rs); i++ {
		switch {
		case !f.HasSelection():
			if i == f.SelectionEnd {
				b.WriteRune('|')
			}
		case i == f.SelectionStart:
			b.WriteRune('[')
		case i == f.SelectionEnd:
			b.WriteRune(']')
		}
		if i < len(rs) {
			b.WriteRune(rs[i])
		}
	}
	return b.String()
}
