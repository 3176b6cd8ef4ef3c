// Package textedit provides the edit frame exchanged between keyboards, filters
// and the rich text processor, plus rune-indexed string helpers.
//
// Every position in this module is a rune index. Byte offsets never cross a
// package boundary.
package textedit

import "fmt"

// Frame is a snapshot of an input: the text and its selection.
// SelectionStart == SelectionEnd means a collapsed caret.
type Frame struct {
	Text           string
	SelectionStart int
	SelectionEnd   int
}

// NewFrame creates a frame with a collapsed caret at pos.
func NewFrame(text string, pos int) Frame {
	return Frame{Text: text, SelectionStart: pos, SelectionEnd: pos}
}

// Len returns the text length in runes.
func (f Frame) Len() int {
	return RuneLen(f.Text)
}

// Caret returns the position the caret is drawn at (the selection end).
func (f Frame) Caret() int {
	return f.SelectionEnd
}

// HasSelection reports whether the frame selects at least one rune.
func (f Frame) HasSelection() bool {
	return f.SelectionStart != f.SelectionEnd
}

// SelectionLen returns the number of selected runes.
func (f Frame) SelectionLen() int {
	n := f.Normalized()
	return n.SelectionEnd - n.SelectionStart
}

// Normalized returns the frame with SelectionStart <= SelectionEnd.
func (f Frame) Normalized() Frame {
	if f.SelectionStart > f.SelectionEnd {
		f.SelectionStart, f.SelectionEnd = f.SelectionEnd, f.SelectionStart
	}
	return f
}

// Clamp returns the frame with both selection positions inside [0, Len()].
func (f Frame) Clamp() Frame {
	n := f.Len()
	f.SelectionStart = clamp(f.SelectionStart, 0, n)
	f.SelectionEnd = clamp(f.SelectionEnd, 0, n)
	return f
}

// SelectedText returns the selected runes.
func (f Frame) SelectedText() string {
	n := f.Normalized()
	return Slice(f.Text, n.SelectionStart, n.SelectionEnd)
}

func (f Frame) String() string {
	return fmt.Sprintf("%q [%d,%d]", f.Text, f.SelectionStart, f.SelectionEnd)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
