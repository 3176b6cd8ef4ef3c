package filter

import (
	"github.com/zjrosen/richinput/internal/log"
	"github.com/zjrosen/richinput/internal/symbol"
	"github.com/zjrosen/richinput/internal/textedit"
)

// MentionRune starts a user mention.
const MentionRune = '@'

// BindingSearcher finds bindings by name.
type BindingSearcher interface {
	Search(prefix string, limit int) []symbol.BindingData
	TryGetByName(name string) (symbol.BindingData, bool)
}

// Mention is the "@query" word being typed. Start is the index of the '@'
// and End is the index after the last rune of the word.
type Mention struct {
	Query string
	Start int
	End   int
}

// TagUser tracks an "@name" word at the caret so a caller can offer
// matching bindings and replace the word with the chosen one.
type TagUser struct {
	Bindings BindingSearcher

	last    textedit.Frame
	mention Mention
	active  bool
}

// NewTagUser creates the filter.
func NewTagUser(bindings BindingSearcher) *TagUser {
	return &TagUser{Bindings: bindings}
}

// ProcessTextEditUpdate implements LiveFilter. It never changes the frame.
func (f *TagUser) ProcessTextEditUpdate(frame, last textedit.Frame) textedit.Frame {
	f.last = frame
	if frame.Text == last.Text || frame.HasSelection() {
		f.clear()
		return frame
	}
	f.detect(frame)
	return frame
}

// OnRichTextEditUpdate implements RichTextObserver. Moving the caret or the
// selection ends the mention.
func (f *TagUser) OnRichTextEditUpdate(frame, last textedit.Frame) {
	if frame.SelectionStart != last.SelectionStart || frame.SelectionEnd != last.SelectionEnd {
		f.clear()
	}
}

func (f *TagUser) clear() {
	f.active = false
	f.mention = Mention{}
}

func (f *TagUser) detect(frame textedit.Frame) {
	rs := []rune(frame.Text)
	caret := min(max(frame.SelectionStart, 0), len(rs))

	start := -1
	for i := caret - 1; i >= 0; i-- {
		c := rs[i]
		if c == MentionRune {
			// An '@' inside a word is an email address, not a mention.
			if i == 0 || rs[i-1] == ' ' || rs[i-1] == '\n' {
				start = i
			}
			break
		}
		if c == ' ' || c == '\n' {
			break
		}
	}
	if start == -1 {
		f.clear()
		return
	}

	end := start + 1
	for end < len(rs) && rs[end] != ' ' && rs[end] != '\n' {
		end++
	}
	f.mention = Mention{Query: string(rs[start+1 : end]), Start: start, End: end}
	f.active = f.mention.Query != ""
	if f.active {
		log.Debug(log.CatFilter, "Mention detected", "query", f.mention.Query, "start", start)
	}
}

// Mention returns the mention being typed, if any.
func (f *TagUser) Mention() (Mention, bool) {
	return f.mention, f.active
}

// Suggestions returns up to n bindings matching the active mention.
func (f *TagUser) Suggestions(n int) []symbol.BindingData {
	if !f.active || f.Bindings == nil {
		return nil
	}
	return f.Bindings.Search(f.mention.Query, n)
}

// Complete replaces the active mention with the binding called name and
// returns the resulting frame with the caret after the binding.
func (f *TagUser) Complete(name string) (textedit.Frame, bool) {
	if !f.active || f.Bindings == nil {
		return f.last, false
	}
	b, ok := f.Bindings.TryGetByName(name)
	if !ok {
		log.Warn(log.CatFilter, "No binding found for mention", "name", name)
		return f.last, false
	}
	text := textedit.Replace(f.last.Text, f.mention.Start, f.mention.End, b.Text())
	frame := textedit.NewFrame(text, f.mention.Start+1)
	f.clear()
	f.last = frame
	return frame, true
}
