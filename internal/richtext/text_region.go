package richtext

import (
	"fmt"
	"strings"

	"github.com/zjrosen/richinput/internal/log"
	"github.com/zjrosen/richinput/internal/symbol"
	"github.com/zjrosen/richinput/internal/textedit"
)

// TextRegion is a contiguous slice of plain text and the RichTextRegions that
// decorate it. A symbol TextRegion holds exactly one emoji or binding.
//
// Methods that take a textOffset expect the plain-text position at which this
// region starts in the whole document.
type TextRegion struct {
	content string

	// StartPosition and EndPosition bound the content: 0 and len-1.
	StartPosition int
	EndPosition   int

	IsSymbol        bool
	RichTextContent string
	RichTextRegions []*RichTextRegion
}

// NewTextRegion creates a plain region without rich text runs.
func NewTextRegion(content string) *TextRegion {
	r := &TextRegion{RichTextContent: content}
	r.SetContent(content)
	return r
}

func newEmojiRegion(e symbol.EmojiData) *TextRegion {
	r := &TextRegion{IsSymbol: true, RichTextContent: e.RichText}
	r.SetContent(e.Text)
	return r
}

func newBindingRegion(b symbol.BindingData) *TextRegion {
	r := &TextRegion{IsSymbol: true, RichTextContent: b.RichText}
	r.SetContent(b.Text())
	return r
}

// Content returns the plain text of the region.
func (r *TextRegion) Content() string {
	return r.content
}

// SetContent replaces the plain text and resets the bounds.
func (r *TextRegion) SetContent(content string) {
	r.content = content
	r.StartPosition = 0
	r.EndPosition = textedit.RuneLen(content) - 1
}

// Len returns the plain text length in runes.
func (r *TextRegion) Len() int {
	return textedit.RuneLen(r.content)
}

// RichLen returns the rune length of the rebuilt markup of all runs.
func (r *TextRegion) RichLen() int {
	n := 0
	for _, rr := range r.RichTextRegions {
		n += rr.RichLen()
	}
	return n
}

// ConfigureRichTextRegion replaces the runs with one run holding the whole
// content and the tags of src.
func (r *TextRegion) ConfigureRichTextRegion(src *RichTextRegion) {
	r.RichTextRegions = []*RichTextRegion{NewRichTextRegion(r.content, src.StartTags, src.EndTags)}
}

// configureSymbol marks the single run as a symbol. Bindings are frozen.
func (r *TextRegion) configureSymbol(emojis EmojiLookup, bindings BindingLookup) {
	if len(r.RichTextRegions) == 0 {
		return
	}
	run := r.RichTextRegions[0]

	if bindings != nil {
		if cp, ok := singleRune(r.content); ok {
			if b, found := bindings.TryGetByCodePoint(cp); found {
				run.IsSymbol = true
				run.SymbolText = b.RichText
				run.IsModifiable = false
				return
			}
		}
	}
	if emojis != nil {
		if e, found := emojis.TryGetEmoji(r.content); found {
			run.IsSymbol = true
			run.SymbolText = e.RichText
			return
		}
	}
	log.Warn(log.CatRichText, "Symbol region without registry entry", "content", r.content)
}

func singleRune(s string) (rune, bool) {
	rs := []rune(s)
	if len(rs) != 1 {
		return 0, false
	}
	return rs[0], true
}

// buildRichText rebuilds every run and appends the markup to b.
func (r *TextRegion) buildRichText(b *strings.Builder) {
	for _, rr := range r.RichTextRegions {
		b.WriteString(rr.Rebuild())
	}
}

// positionInText maps a rich text position that falls inside this region to
// a plain text position. Positions inside start tags snap to the run's first
// character. Positions inside end tags or symbol markup snap past the run.
func (r *TextRegion) positionInText(richPos, richOffset, textOffset int) (int, bool) {
	for _, rr := range r.RichTextRegions {
		runEnd := richOffset + rr.RichLen()
		if richPos >= richOffset && richPos < runEnd {
			start := richOffset + rr.StartRichTextContentPosition
			end := richOffset + rr.EndRichTextContentPosition
			switch {
			case richPos <= start:
				return textOffset, true
			case richPos >= end || rr.IsSymbol:
				return textOffset + rr.Len(), true
			default:
				return textOffset + (richPos - start), true
			}
		}

		richOffset = runEnd
		textOffset += rr.Len()
	}
	return 0, false
}

// positionInRichText maps a plain text position inside this region to a rich
// text position. A position inside a multi-rune symbol snaps past its markup.
func (r *TextRegion) positionInRichText(textPos, richOffset, textOffset int) (int, bool) {
	for _, rr := range r.RichTextRegions {
		start := textOffset + rr.StartContentPosition
		end := textOffset + rr.EndContentPosition

		if textPos >= start && textPos <= end {
			richStart := richOffset + rr.StartRichTextContentPosition
			if rr.IsSymbol {
				if textPos == start {
					return richStart, true
				}
				return richOffset + rr.EndRichTextContentPosition, true
			}
			return richStart + (textPos - start), true
		}

		richOffset += rr.RichLen()
		textOffset += rr.Len()
	}
	return 0, false
}

// PositionWithinRegion reports whether textPos falls on one of the region's
// characters and whether it is the first one.
func (r *TextRegion) PositionWithinRegion(textOffset, textPos int) (within, startOfRegion bool) {
	start := textOffset + r.StartPosition
	end := textOffset + r.EndPosition
	if textPos >= start && textPos <= end {
		return true, textPos == start
	}
	return false, false
}

// tryInsert inserts plain text into the run that contains textPos, or into
// the run that ends right before it so that typing continues the style.
func (r *TextRegion) tryInsert(ins string, textOffset, textPos int) bool {
	regionStart := textOffset
	for _, rr := range r.RichTextRegions {
		start := textOffset + rr.StartContentPosition
		end := textOffset + rr.EndContentPosition

		switch {
		case textPos == end+1:
			rr.SetText(rr.Text() + ins)
		case textPos >= start && textPos <= end:
			rr.SetText(textedit.Insert(rr.Text(), textPos-start, ins))
		default:
			textOffset += rr.Len()
			continue
		}
		r.SetContent(textedit.Insert(r.content, textPos-regionStart, ins))
		return true
	}

	log.Warn(log.CatRichText, "Could not insert into region", "text", ins, "pos", textPos)
	return false
}

// tryDelete deletes up to amount runes starting at textPos from the run that
// contains it and returns how many runes of amount were consumed. A symbol
// run is always removed whole. Emptied runs are dropped.
func (r *TextRegion) tryDelete(textOffset, textPos, amount int) (int, bool) {
	regionStart := textOffset
	for i, rr := range r.RichTextRegions {
		start := textOffset + rr.StartContentPosition
		end := textOffset + rr.EndContentPosition

		if textPos < start || textPos > end {
			textOffset += rr.Len()
			continue
		}

		consumed := min(end-textPos+1, amount)
		if rr.IsSymbol {
			r.SetContent(textedit.Remove(r.content, start-regionStart, rr.Len()))
			rr.SetText("")
		} else {
			rr.SetText(textedit.Remove(rr.Text(), textPos-start, consumed))
			r.SetContent(textedit.Remove(r.content, textPos-regionStart, consumed))
		}

		if rr.Len() == 0 {
			r.RichTextRegions = append(r.RichTextRegions[:i], r.RichTextRegions[i+1:]...)
		}
		return consumed, true
	}
	return 0, false
}

// splitAt splits the region in two at textPos, splitting the straddling run
// when needed. Both halves keep the runs' tags.
func (r *TextRegion) splitAt(textOffset, textPos int) (*TextRegion, *TextRegion, bool) {
	if within, _ := r.PositionWithinRegion(textOffset, textPos); !within {
		log.Warn(log.CatRichText, "Could not split region", "pos", textPos)
		return nil, nil, false
	}

	splitIndex := textPos - textOffset
	left := NewTextRegion(textedit.Slice(r.content, 0, splitIndex))
	right := NewTextRegion(textedit.From(r.content, splitIndex))

	runOffset := textOffset
	for _, rr := range r.RichTextRegions {
		start := runOffset + rr.StartContentPosition
		end := runOffset + rr.EndContentPosition

		switch {
		case textPos > end:
			left.RichTextRegions = append(left.RichTextRegions, rr)
		case textPos > start:
			a, b := rr.Split(textPos - start)
			left.RichTextRegions = append(left.RichTextRegions, a)
			right.RichTextRegions = append(right.RichTextRegions, b)
		default:
			right.RichTextRegions = append(right.RichTextRegions, rr)
		}
		runOffset += rr.Len()
	}
	return left, right, true
}

// toggleState carries the decision made on the first run a toggle touches.
type toggleState struct {
	foundStart bool
	toggleOn   bool
}

// toggleTagPair applies a tag pair to the runs overlapping [start, end).
// It returns true once the run containing the selection end is processed.
func (r *TextRegion) toggleTagPair(start, end, textOffset int, startTag, endTag string, st *toggleState) bool {
	for i := 0; i < len(r.RichTextRegions); i++ {
		rr := r.RichTextRegions[i]
		runStart := textOffset + rr.StartContentPosition
		runEnd := textOffset + rr.EndContentPosition

		if st.foundStart || (start >= runStart && start <= runEnd) {
			if !st.foundStart {
				st.foundStart = true
				st.toggleOn = !(rr.FindTag(endTag) >= 0 && rr.HasStartTag(startTag))
			}

			switch {
			case start > runStart && rr.IsModifiable && !rr.IsSymbol:
				splitIndex := start - runStart
				a, b := rr.Split(splitIndex)
				r.RichTextRegions = replaceRun(r.RichTextRegions, i, a, b)
				textOffset += splitIndex
				continue
			case end <= runEnd && rr.IsModifiable && !rr.IsSymbol:
				a, b := rr.Split(end - runStart)
				r.RichTextRegions = replaceRun(r.RichTextRegions, i, a, b)
				i--
				continue
			default:
				applyToggle(rr, startTag, endTag, st.toggleOn)
			}
		}

		if st.foundStart && end <= runEnd+1 {
			return true
		}
		textOffset += rr.Len()
	}
	return false
}

// replaceRun replaces the run at i with a and b.
func replaceRun(runs []*RichTextRegion, i int, a, b *RichTextRegion) []*RichTextRegion {
	out := make([]*RichTextRegion, 0, len(runs)+1)
	out = append(out, runs[:i]...)
	out = append(out, a, b)
	return append(out, runs[i+1:]...)
}

func applyToggle(rr *RichTextRegion, startTag, endTag string, on bool) {
	hasPair := rr.FindTag(endTag) >= 0
	switch {
	case hasPair && !on:
		rr.RemoveTag(endTag)
	case hasPair && !rr.HasStartTag(startTag):
		rr.UpdateTag(startTag, endTag)
	case !hasPair && on:
		rr.AddTag(startTag, endTag)
	}
}

func (r *TextRegion) String() string {
	return fmt.Sprintf("TextRegion{content=%q len=%d symbol=%t runs=%d}", r.content, r.Len(), r.IsSymbol, len(r.RichTextRegions))
}
