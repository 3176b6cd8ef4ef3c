package richtext

import (
	"github.com/zjrosen/richinput/internal/log"
	"github.com/zjrosen/richinput/internal/textedit"
)

// ToggleTagPair applies or removes a tag pair over the current selection.
//
// The decision is made on the first run the selection touches: if that run
// already carries the exact start tag, the pair is removed everywhere in the
// selection, otherwise it is added (or its parameter updated). Runs are split
// at the selection bounds so text outside the selection keeps its tags.
// Bindings are never re-tagged. A collapsed selection is a no-op.
func (p *Processor) ToggleTagPair(startTag, endTag string) textedit.Frame {
	sel := p.lastText.Normalized()
	start, end := sel.SelectionStart, sel.SelectionEnd
	if start == end {
		return p.lastRich
	}

	st := &toggleState{}
	textOffset := 0
	for _, region := range p.regions {
		if !st.foundStart {
			if within, _ := region.PositionWithinRegion(textOffset, start); !within {
				textOffset += region.Len()
				continue
			}
		}
		if region.toggleTagPair(start, end, textOffset, startTag, endTag, st) {
			break
		}
		textOffset += region.Len()
	}

	log.Debug(log.CatRichText, "Toggled tag pair", "tag", startTag, "on", st.toggleOn, "start", start, "end", end)

	p.lastRich = textedit.Frame{Text: p.RebuildRichTextString()}
	p.lastRich.SelectionStart = p.DeterminePositionInRichText(p.lastText.SelectionStart)
	p.lastRich.SelectionEnd = p.DeterminePositionInRichText(p.lastText.SelectionEnd)
	return p.lastRich
}

// IsTagActiveAt reports whether the run containing textPos, or the run just
// before it when textPos is a run boundary, carries a pair closed by endTag.
func (p *Processor) IsTagActiveAt(textPos int, endTag string) bool {
	textOffset := 0
	var prev *RichTextRegion
	for _, region := range p.regions {
		for _, rr := range region.RichTextRegions {
			if textPos < textOffset+rr.Len() {
				if textPos == textOffset && prev != nil {
					return prev.FindTag(endTag) >= 0
				}
				return rr.FindTag(endTag) >= 0
			}
			textOffset += rr.Len()
			prev = rr
		}
	}
	return prev != nil && prev.FindTag(endTag) >= 0
}
