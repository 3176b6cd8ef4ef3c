package inputfield

import (
	"strings"
	"unicode"

	"github.com/rivo/uniseg"

	"github.com/zjrosen/richinput/internal/log"
	"github.com/zjrosen/richinput/internal/textedit"
)

// Insert replaces the selection with input as if it were typed. Input is
// validated unless emojis are allowed and it contains one, since validating
// rune by rune could break the emoji sequence.
func (e *Engine) Insert(input string) {
	e.insert(input, false)
}

// Paste inserts clip. Control characters other than tab and newlines are
// dropped and every remaining rune is validated.
func (e *Engine) Paste(clip string) {
	clip = strings.Map(func(r rune) rune {
		if r < ' ' && r != '\t' && r != '\r' && r != '\n' {
			return -1
		}
		return r
	}, clip)
	clip = strings.ReplaceAll(clip, "\r\n", "\n")
	e.insert(clip, true)
}

func (e *Engine) insert(input string, validateAll bool) {
	if e.readOnly || input == "" {
		return
	}
	sel := e.frame.Normalized()
	start := sel.SelectionStart
	base := textedit.NewFrame(textedit.Remove(sel.Text, start, sel.SelectionLen()), start)

	var frame textedit.Frame
	if e.validator != nil && (validateAll || !e.containsEmoji(input)) {
		res := e.validator.Validate(base.Text, input, start, start)
		frame = textedit.NewFrame(res.Text, res.Caret)
	} else {
		frame = textedit.NewFrame(textedit.Insert(base.Text, start, input), start+textedit.RuneLen(input))
	}
	e.ApplyTextEditFrame(e.applyCharacterLimit(frame, base))
}

func (e *Engine) containsEmoji(s string) bool {
	if e.emojis == nil {
		return false
	}
	rs := []rune(s)
	for i := range rs {
		if _, ok := e.emojis.FindNext(rs, i); ok {
			return true
		}
	}
	return false
}

// applyCharacterLimit removes what frame added over last beyond the limit,
// taking whole editing units from in front of the caret.
func (e *Engine) applyCharacterLimit(frame, last textedit.Frame) textedit.Frame {
	if e.characterLimit <= 0 {
		return frame
	}
	n := frame.Len()
	grown := n - last.Len()
	if n <= e.characterLimit || grown <= 0 {
		return frame
	}
	excess := min(n-e.characterLimit, grown)
	text, caret := frame.Text, frame.Caret()
	for removed := 0; removed < excess; {
		if caret > 0 {
			p := e.prevStop(text, caret)
			text = textedit.Remove(text, p, caret-p)
			removed += caret - p
			caret = p
			continue
		}
		end := textedit.RuneLen(text)
		p := e.prevStop(text, end)
		text = textedit.Remove(text, p, end-p)
		removed += end - p
	}
	log.Debug(log.CatEngine, "Character limit applied", "limit", e.characterLimit, "excess", excess)
	return textedit.NewFrame(text, caret)
}

// applyLineLimit removes units in front of the caret until the text fits in
// the line limit.
func (e *Engine) applyLineLimit(frame textedit.Frame) textedit.Frame {
	if e.lineLimit <= 0 {
		return frame
	}
	text, caret := frame.Text, frame.Caret()
	trimmed := false
	for caret > 0 && e.measurer.LineCount(text) > e.lineLimit {
		p := e.prevStop(text, caret)
		text = textedit.Remove(text, p, caret-p)
		caret = p
		trimmed = true
	}
	if !trimmed {
		return frame
	}
	log.Debug(log.CatEngine, "Line limit applied", "limit", e.lineLimit)
	return textedit.NewFrame(text, caret)
}

// prevStop returns the start of the editing unit that ends at pos: an emoji
// token or a grapheme cluster.
func (e *Engine) prevStop(text string, pos int) int {
	if pos <= 0 {
		return 0
	}
	rs := []rune(text)
	pos = min(pos, len(rs))
	if e.emojis != nil {
		if em, ok := e.emojis.FindPrevious(rs, pos); ok {
			return pos - textedit.RuneLen(em.Text)
		}
	}
	last := 1
	g := uniseg.NewGraphemes(string(rs[:pos]))
	for g.Next() {
		last = len(g.Runes())
	}
	return pos - last
}

// nextStop returns the end of the editing unit that starts at pos.
func (e *Engine) nextStop(text string, pos int) int {
	rs := []rune(text)
	if pos >= len(rs) {
		return len(rs)
	}
	pos = max(pos, 0)
	if e.emojis != nil {
		if em, ok := e.emojis.FindNext(rs, pos); ok {
			return pos + textedit.RuneLen(em.Text)
		}
	}
	g := uniseg.NewGraphemes(string(rs[pos:]))
	if g.Next() {
		return pos + len(g.Runes())
	}
	return pos + 1
}

// Backspace deletes the selection, or the unit in front of the caret.
func (e *Engine) Backspace() {
	if e.readOnly {
		return
	}
	if e.frame.HasSelection() {
		e.DeleteSelection()
		return
	}
	caret := e.frame.Caret()
	if caret == 0 {
		return
	}
	p := e.prevStop(e.frame.Text, caret)
	e.ApplyTextEditFrame(textedit.NewFrame(textedit.Remove(e.frame.Text, p, caret-p), p))
}

// DeleteForward deletes the selection, or the unit behind the caret.
func (e *Engine) DeleteForward() {
	if e.readOnly {
		return
	}
	if e.frame.HasSelection() {
		e.DeleteSelection()
		return
	}
	caret := e.frame.Caret()
	n := e.nextStop(e.frame.Text, caret)
	if n == caret {
		return
	}
	e.ApplyTextEditFrame(textedit.NewFrame(textedit.Remove(e.frame.Text, caret, n-caret), caret))
}

// DeleteSelection removes the selected text.
func (e *Engine) DeleteSelection() {
	sel := e.frame.Normalized()
	if e.readOnly || !sel.HasSelection() {
		return
	}
	start := sel.SelectionStart
	e.ApplyTextEditFrame(textedit.NewFrame(textedit.Remove(sel.Text, start, sel.SelectionLen()), start))
}

// ReplaceRange replaces the runes in [start, end) with text and puts the
// caret after it.
func (e *Engine) ReplaceRange(start, end int, text string) {
	if e.readOnly {
		return
	}
	n := e.frame.Len()
	start = min(max(start, 0), n)
	end = min(max(end, start), n)
	e.ApplyTextEditFrame(textedit.NewFrame(textedit.Replace(e.frame.Text, start, end, text), start+textedit.RuneLen(text)))
}

// Select sets the selection. The caret is drawn at end.
func (e *Engine) Select(start, end int) {
	e.ApplyTextEditFrame(textedit.Frame{Text: e.frame.Text, SelectionStart: start, SelectionEnd: end})
}

// SelectAll selects the whole text.
func (e *Engine) SelectAll() {
	e.Select(0, e.frame.Len())
}

// Copy returns the selected text. Secure fields copy nothing.
func (e *Engine) Copy() string {
	if e.secure {
		return ""
	}
	return e.frame.SelectedText()
}

// Cut returns Copy and deletes the selection.
func (e *Engine) Cut() string {
	clip := e.Copy()
	e.DeleteSelection()
	return clip
}

// MoveCaret moves the caret delta editing units, never stopping inside an
// emoji or a grapheme cluster. With extend the selection anchor stays put;
// without it a selection collapses to the side of the movement first.
func (e *Engine) MoveCaret(delta int, extend bool) {
	if delta == 0 {
		return
	}
	if !extend && e.frame.HasSelection() {
		sel := e.frame.Normalized()
		pos := sel.SelectionEnd
		if delta < 0 {
			pos = sel.SelectionStart
		}
		e.Select(pos, pos)
		return
	}

	caret := e.frame.Caret()
	for ; delta < 0; delta++ {
		caret = e.prevStop(e.frame.Text, caret)
	}
	for ; delta > 0; delta-- {
		caret = e.nextStop(e.frame.Text, caret)
	}
	e.moveTo(caret, extend)
}

// MoveWord moves the caret to the previous word start or the next word end.
func (e *Engine) MoveWord(forward, extend bool) {
	rs := []rune(e.frame.Text)
	caret := e.frame.Caret()
	if forward {
		for caret < len(rs) && !isWordRune(rs[caret]) {
			caret++
		}
		for caret < len(rs) && isWordRune(rs[caret]) {
			caret++
		}
	} else {
		for caret > 0 && !isWordRune(rs[caret-1]) {
			caret--
		}
		for caret > 0 && isWordRune(rs[caret-1]) {
			caret--
		}
	}
	e.moveTo(caret, extend)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// MoveLine moves the caret to the same column on the previous or next line.
// On the first line it moves to the start, on the last line to the end.
func (e *Engine) MoveLine(down, extend bool) {
	rs := []rune(e.frame.Text)
	caret := e.frame.Caret()
	lineStart := caret
	for lineStart > 0 && rs[lineStart-1] != '\n' {
		lineStart--
	}
	col := caret - lineStart

	target := 0
	if down {
		next := caret
		for next < len(rs) && rs[next] != '\n' {
			next++
		}
		if next == len(rs) {
			target = len(rs)
		} else {
			start := next + 1
			end := start
			for end < len(rs) && rs[end] != '\n' {
				end++
			}
			target = min(start+col, end)
		}
	} else if lineStart > 0 {
		end := lineStart - 1
		start := end
		for start > 0 && rs[start-1] != '\n' {
			start--
		}
		target = min(start+col, end)
	}
	e.moveTo(e.snap(e.frame.Text, target), extend)
}

// snap moves pos to the start of the unit of text that contains it.
func (e *Engine) snap(text string, pos int) int {
	stop := 0
	for stop < pos {
		next := e.nextStop(text, stop)
		if next > pos {
			break
		}
		stop = next
	}
	return stop
}

// snapFrame keeps both selection ends off the inside of an emoji token or
// grapheme cluster.
func (e *Engine) snapFrame(frame textedit.Frame) textedit.Frame {
	frame.SelectionStart = e.snap(frame.Text, frame.SelectionStart)
	frame.SelectionEnd = e.snap(frame.Text, frame.SelectionEnd)
	return frame
}

func (e *Engine) moveTo(caret int, extend bool) {
	anchor := caret
	if extend {
		anchor = e.frame.SelectionStart
	}
	e.Select(anchor, caret)
}
