package richtext

import (
	"fmt"
	"slices"
	"strings"

	"github.com/zjrosen/richinput/internal/textedit"
)

// RichTextRegion is a run of plain content sharing one stack of tags.
//
// StartTags and EndTags are parallel: StartTags[i] is closed by EndTags[i],
// index 0 is the outermost tag. Offsets are only valid after Rebuild.
type RichTextRegion struct {
	text string

	StartTags []string
	EndTags   []string

	// IsSymbol marks an emoji or binding; SymbolText is its markup.
	IsSymbol   bool
	SymbolText string

	// IsModifiable is false for bindings, whose markup must not be re-tagged.
	IsModifiable bool

	// StartContentPosition and EndContentPosition bound the content relative
	// to the region itself: 0 and len-1.
	StartContentPosition int
	EndContentPosition   int

	// StartRichTextContentPosition and EndRichTextContentPosition bound the
	// content (or symbol markup) inside RichText().
	StartRichTextContentPosition int
	EndRichTextContentPosition   int

	richText string
}

// NewRichTextRegion creates a modifiable region. The tag slices are copied.
func NewRichTextRegion(text string, startTags, endTags []string) *RichTextRegion {
	r := &RichTextRegion{
		StartTags:    slices.Clone(startTags),
		EndTags:      slices.Clone(endTags),
		IsModifiable: true,
	}
	if r.StartTags == nil {
		r.StartTags = []string{}
	}
	if r.EndTags == nil {
		r.EndTags = []string{}
	}
	r.SetText(text)
	return r
}

// Text returns the plain content.
func (r *RichTextRegion) Text() string {
	return r.text
}

// Len returns the plain content length in runes.
func (r *RichTextRegion) Len() int {
	return textedit.RuneLen(r.text)
}

// SetText replaces the plain content and resets the content bounds.
func (r *RichTextRegion) SetText(text string) {
	r.text = text
	r.StartContentPosition = 0
	r.EndContentPosition = textedit.RuneLen(text) - 1
}

// RichText returns the markup produced by the last Rebuild.
func (r *RichTextRegion) RichText() string {
	return r.richText
}

// RichLen returns the rune length of RichText().
func (r *RichTextRegion) RichLen() int {
	return textedit.RuneLen(r.richText)
}

// Rebuild renders start tags, content (or symbol markup), and end tags in
// reverse, then records where the content sits in the result.
func (r *RichTextRegion) Rebuild() string {
	var b strings.Builder
	pos := 0
	for _, tag := range r.StartTags {
		b.WriteString(tag)
		pos += textedit.RuneLen(tag)
	}
	r.StartRichTextContentPosition = pos

	if r.IsSymbol {
		b.WriteString(r.SymbolText)
		pos += textedit.RuneLen(r.SymbolText)
	} else {
		b.WriteString(r.text)
		pos += textedit.RuneLen(r.text)
	}
	r.EndRichTextContentPosition = pos

	for i := len(r.EndTags) - 1; i >= 0; i-- {
		b.WriteString(r.EndTags[i])
	}
	r.richText = b.String()
	return r.richText
}

// FindTag returns the index of the tag closed by endTag, or -1.
func (r *RichTextRegion) FindTag(endTag string) int {
	return slices.Index(r.EndTags, endTag)
}

// HasStartTag reports whether startTag is applied verbatim.
func (r *RichTextRegion) HasStartTag(startTag string) bool {
	return slices.Contains(r.StartTags, startTag)
}

// AddTag pushes a tag pair as the innermost tag.
func (r *RichTextRegion) AddTag(startTag, endTag string) {
	if !r.IsModifiable {
		return
	}
	r.StartTags = append(r.StartTags, startTag)
	r.EndTags = append(r.EndTags, endTag)
}

// RemoveTag removes the tag pair closed by endTag.
func (r *RichTextRegion) RemoveTag(endTag string) {
	if !r.IsModifiable {
		return
	}
	if i := r.FindTag(endTag); i >= 0 {
		r.StartTags = slices.Delete(r.StartTags, i, i+1)
		r.EndTags = slices.Delete(r.EndTags, i, i+1)
	}
}

// UpdateTag replaces the start tag of the pair closed by endTag, keeping its
// nesting position. Used when a parameter changes, e.g. a new color.
func (r *RichTextRegion) UpdateTag(startTag, endTag string) {
	if !r.IsModifiable {
		return
	}
	if i := r.FindTag(endTag); i >= 0 {
		r.StartTags[i] = startTag
	}
}

// CopyTags replaces this region's tags with copies of other's.
func (r *RichTextRegion) CopyTags(other *RichTextRegion) {
	r.StartTags = slices.Clone(other.StartTags)
	r.EndTags = slices.Clone(other.EndTags)
}

// Split divides the content at index into two regions that carry the same tags.
func (r *RichTextRegion) Split(index int) (*RichTextRegion, *RichTextRegion) {
	left := NewRichTextRegion(textedit.Slice(r.text, 0, index), r.StartTags, r.EndTags)
	right := NewRichTextRegion(textedit.From(r.text, index), r.StartTags, r.EndTags)
	left.IsModifiable, right.IsModifiable = r.IsModifiable, r.IsModifiable
	return left, right
}

func (r *RichTextRegion) String() string {
	return fmt.Sprintf("RichTextRegion{text=%q tags=%v symbol=%t modifiable=%t rich=[%d,%d)}",
		r.text, r.StartTags, r.IsSymbol, r.IsModifiable, r.StartRichTextContentPosition, r.EndRichTextContentPosition)
}
