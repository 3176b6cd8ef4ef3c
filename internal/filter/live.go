package filter

import (
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/zjrosen/richinput/internal/log"
	"github.com/zjrosen/richinput/internal/symbol"
	"github.com/zjrosen/richinput/internal/textedit"
)

// BulletRune is inserted after every newline by BulletPoint.
const BulletRune = '•'

// BlockDuplicateCharacter rejects any edit that leaves a rune in the text twice.
type BlockDuplicateCharacter struct{}

// ProcessTextEditUpdate implements LiveFilter.
func (BlockDuplicateCharacter) ProcessTextEditUpdate(frame, last textedit.Frame) textedit.Frame {
	if frame.Text == last.Text {
		return frame
	}
	seen := make(map[rune]struct{}, len(frame.Text))
	for _, r := range frame.Text {
		if _, dup := seen[r]; dup {
			log.Debug(log.CatFilter, "Blocked duplicate character", "rune", string(r))
			return last
		}
		seen[r] = struct{}{}
	}
	return frame
}

// TagFinder locates markup tags in text.
type TagFinder interface {
	FindTag(text []rune, from int) (start, length int, ok bool)
}

// BlockRichTextTags strips markup that the grammar would interpret from typed
// text. One tag is removed per edit and the caret moves back by its length.
type BlockRichTextTags struct {
	Tags TagFinder
}

// NewBlockRichTextTags creates the filter for the given grammar.
func NewBlockRichTextTags(tags TagFinder) *BlockRichTextTags {
	return &BlockRichTextTags{Tags: tags}
}

// ProcessTextEditUpdate implements LiveFilter.
func (f *BlockRichTextTags) ProcessTextEditUpdate(frame, last textedit.Frame) textedit.Frame {
	if frame.Text == last.Text || f.Tags == nil {
		return frame
	}
	start, length, ok := f.Tags.FindTag([]rune(frame.Text), 0)
	if !ok {
		return frame
	}
	log.Debug(log.CatFilter, "Blocked rich text tag", "tag", textedit.Slice(frame.Text, start, start+length))
	caret := max(frame.SelectionStart-length, 0)
	return textedit.NewFrame(textedit.Remove(frame.Text, start, length), caret)
}

// BulletPoint starts every line after the first with a bullet.
type BulletPoint struct{}

// ProcessTextEditUpdate implements LiveFilter.
func (BulletPoint) ProcessTextEditUpdate(frame, last textedit.Frame) textedit.Frame {
	if frame.Text == last.Text || !addsText(frame, last) {
		return frame
	}
	return applyBulletPoints(frame)
}

func applyBulletPoints(frame textedit.Frame) textedit.Frame {
	rs := []rune(frame.Text)
	var b strings.Builder
	b.Grow(len(frame.Text))
	caretShift := 0
	for i, r := range rs {
		b.WriteRune(r)
		if r != '\n' {
			continue
		}
		if i+1 < len(rs) && rs[i+1] == BulletRune {
			continue
		}
		b.WriteRune(BulletRune)
		if i+1 <= frame.SelectionStart {
			caretShift++
		}
	}
	if caretShift == 0 {
		return frame
	}
	return textedit.NewFrame(b.String(), frame.SelectionStart+caretShift)
}

// EmojiFinder finds emoji tokens around a rune position.
type EmojiFinder interface {
	FindNext(text []rune, pos int) (symbol.EmojiData, bool)
	FindPrevious(text []rune, pos int) (symbol.EmojiData, bool)
}

// EmojiCharacterLimit caps the text length, counting every emoji as one
// character. Excess characters are removed backwards from the caret.
type EmojiCharacterLimit struct {
	Emojis EmojiFinder
	Limit  int
}

// NewEmojiCharacterLimit creates the filter. Without an emoji finder every
// grapheme cluster counts as one character.
func NewEmojiCharacterLimit(emojis EmojiFinder, limit int) *EmojiCharacterLimit {
	return &EmojiCharacterLimit{Emojis: emojis, Limit: limit}
}

// ProcessTextEditUpdate implements LiveFilter.
func (f *EmojiCharacterLimit) ProcessTextEditUpdate(frame, last textedit.Frame) textedit.Frame {
	if frame.Text == last.Text || !addsText(frame, last) {
		return frame
	}
	return f.applyLimit(frame)
}

func (f *EmojiCharacterLimit) applyLimit(frame textedit.Frame) textedit.Frame {
	if f.Limit <= 0 || f.Count(frame.Text) <= f.Limit {
		return frame
	}

	rs := []rune(frame.Text)
	pos := min(frame.SelectionStart, len(rs))
	removed := 0
	// Counted again each pass: removing one emoji can leave a shorter emoji behind.
	for f.Count(string(rs)) > f.Limit && len(rs) > 0 {
		n := f.previousLength(rs, pos)
		if pos == 0 {
			rs = rs[:len(rs)-n]
		} else {
			rs = append(rs[:pos-n], rs[pos:]...)
			pos -= n
		}
		removed++
	}
	log.Debug(log.CatFilter, "Applied emoji character limit", "limit", f.Limit, "removed", removed)
	return textedit.NewFrame(string(rs), pos)
}

// previousLength returns how many runes the character before pos spans. At
// pos 0 it measures the last character of the text instead.
func (f *EmojiCharacterLimit) previousLength(rs []rune, pos int) int {
	if pos == 0 {
		pos = len(rs)
	}
	if f.Emojis != nil {
		if e, ok := f.Emojis.FindPrevious(rs, pos); ok {
			return utf8.RuneCountInString(e.Text)
		}
		return 1
	}
	last := 1
	g := uniseg.NewGraphemes(string(rs[:pos]))
	for g.Next() {
		last = len(g.Runes())
	}
	return last
}

// Count returns the character count of text with emoji counted once.
func (f *EmojiCharacterLimit) Count(text string) int {
	if f.Emojis == nil {
		return uniseg.GraphemeClusterCount(text)
	}
	rs := []rune(text)
	count := 0
	for i := 0; i < len(rs); {
		if e, ok := f.Emojis.FindNext(rs, i); ok {
			i += utf8.RuneCountInString(e.Text)
		} else {
			i++
		}
		count++
	}
	return count
}
