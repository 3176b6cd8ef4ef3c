// Package richtext keeps a plain text document and its rich text (markup)
// rendering in sync.
//
// The Processor owns an ordered list of TextRegions. Each TextRegion groups the
// RichTextRegions (tag runs) that decorate a contiguous slice of plain text.
// Emoji and bindings are atomic symbol regions. Edits arrive as plain text
// frames; the processor applies the smallest region change that explains
// the edit, rebuilds the markup, and maps selections between both spaces.
package richtext

import (
	"slices"
	"strings"

	"github.com/zjrosen/richinput/internal/flags"
	"github.com/zjrosen/richinput/internal/log"
	"github.com/zjrosen/richinput/internal/symbol"
	"github.com/zjrosen/richinput/internal/textedit"
)

// EmojiLookup resolves emoji tokens and sprite markup.
type EmojiLookup interface {
	TryGetEmoji(text string) (symbol.EmojiData, bool)
	TryGetSprite(richText string) (symbol.EmojiData, bool)
	FindNext(text []rune, pos int) (symbol.EmojiData, bool)
}

// BindingLookup resolves binding code points and markup.
type BindingLookup interface {
	TryGetByCodePoint(cp rune) (symbol.BindingData, bool)
	FindNextInRichText(richText []rune, pos int) (symbol.BindingData, bool)
}

// Option configures a Processor.
type Option func(*Processor)

// WithEmojis enables emoji symbols. A nil lookup disables them.
func WithEmojis(emojis EmojiLookup) Option {
	return func(p *Processor) {
		p.emojis = emojis
	}
}

// WithBindings enables binding symbols. A nil lookup disables them.
func WithBindings(bindings BindingLookup) Option {
	return func(p *Processor) {
		p.bindings = bindings
	}
}

// WithFlags sets the feature flags consulted while classifying edits.
func WithFlags(registry *flags.Registry) Option {
	return func(p *Processor) {
		p.flags = registry
	}
}

// Processor converts between plain text and rich text.
// It is not safe for concurrent use.
type Processor struct {
	grammar  Grammar
	emojis   EmojiLookup
	bindings BindingLookup
	flags    *flags.Registry

	regions  []*TextRegion
	lastText textedit.Frame
	lastRich textedit.Frame
}

// New creates a processor for grammar. Without WithFlags the default flag
// values apply.
func New(grammar Grammar, opts ...Option) *Processor {
	p := &Processor{grammar: grammar}
	for _, opt := range opts {
		opt(p)
	}
	if p.flags == nil {
		p.flags = flags.WithDefaults(nil)
	}
	return p
}

// Grammar returns the tag grammar the processor parses with.
func (p *Processor) Grammar() Grammar {
	return p.grammar
}

// Regions returns the current region list. Callers must not mutate it.
func (p *Processor) Regions() []*TextRegion {
	return slices.Clone(p.regions)
}

// LastTextEditFrame returns the last plain text frame.
func (p *Processor) LastTextEditFrame() textedit.Frame {
	return p.lastText
}

// LastRichTextEditFrame returns the last rich text frame.
func (p *Processor) LastRichTextEditFrame() textedit.Frame {
	return p.lastRich
}

// Text returns the current plain text.
func (p *Processor) Text() string {
	return p.lastText.Text
}

// RichText returns the current rich text.
func (p *Processor) RichText() string {
	return p.lastRich.Text
}

// SetupRichText replaces the document by parsing richText and resets both
// frames to a caret at 0. It returns the canonical rich text frame.
func (p *Processor) SetupRichText(richText string) textedit.Frame {
	var parsed []*TextRegion
	for _, run := range p.ParseRichTextRegions(richText) {
		for _, region := range p.ParseTextRegions(run.Text()) {
			region.ConfigureRichTextRegion(run)
			parsed = append(parsed, region)
		}
	}

	p.regions = make([]*TextRegion, 0, len(parsed))
	for i := 0; i < len(parsed); i++ {
		region := parsed[i]
		if region.IsSymbol {
			region.configureSymbol(p.emojis, p.bindings)
			p.regions = append(p.regions, region)
			continue
		}
		for i+1 < len(parsed) && !parsed[i+1].IsSymbol {
			next := parsed[i+1]
			region.SetContent(region.Content() + next.Content())
			region.RichTextRegions = append(region.RichTextRegions, next.RichTextRegions...)
			i++
		}
		p.regions = append(p.regions, region)
	}

	return p.reset()
}

// SetupText replaces the document with unformatted plain text. Markup-looking
// text is kept literally.
func (p *Processor) SetupText(text string) textedit.Frame {
	p.regions = nil
	p.InsertInText(text, 0)
	return p.reset()
}

func (p *Processor) reset() textedit.Frame {
	p.lastRich = textedit.NewFrame(p.RebuildRichTextString(), 0)
	p.lastText = textedit.NewFrame(p.RebuildTextString(), 0)
	log.Debug(log.CatRichText, "Document set up", "regions", len(p.regions), "text_len", p.lastText.Len())
	return p.lastRich
}

// RebuildRichTextString renders every region and refreshes rich offsets.
func (p *Processor) RebuildRichTextString() string {
	var b strings.Builder
	for _, region := range p.regions {
		region.buildRichText(&b)
	}
	return b.String()
}

// RebuildTextString concatenates the plain content of every region.
func (p *Processor) RebuildTextString() string {
	var b strings.Builder
	for _, region := range p.regions {
		b.WriteString(region.Content())
	}
	return b.String()
}

// ParseRichTextRegions tokenizes richText into tag runs.
//
// Valid start tags are pushed on a stack and closed by their end tag. An end
// tag with no open counterpart, and any angle-bracket text that is not a
// supported tag, stays literal. Tags still open at the end are closed
// implicitly.
func (p *Processor) ParseRichTextRegions(richText string) []*RichTextRegion {
	if p.emojis != nil || p.bindings != nil {
		richText = p.ConvertSpecialTags(richText)
	}
	rs := []rune(richText)

	var (
		runs       []*RichTextRegion
		startStack []string
		endStack   []string
		segStart   int
		tagStart   = -1
	)
	flush := func(end int) {
		if end > segStart {
			runs = append(runs, NewRichTextRegion(string(rs[segStart:end]), startStack, endStack))
		}
	}

	for i, c := range rs {
		switch c {
		case '<':
			tagStart = i
		case '>':
			if tagStart == -1 {
				continue
			}
			tagText := string(rs[tagStart : i+1])
			if info, ok := p.grammar.MatchStartTag(tagText); ok {
				flush(tagStart)
				startStack = append(startStack, tagText)
				endStack = append(endStack, info.EndTag)
				segStart = i + 1
			} else if idx := lastIndex(endStack, tagText); idx >= 0 {
				flush(tagStart)
				startStack = slices.Delete(slices.Clone(startStack), idx, idx+1)
				endStack = slices.Delete(slices.Clone(endStack), idx, idx+1)
				segStart = i + 1
			}
			tagStart = -1
		}
	}
	flush(len(rs))
	return runs
}

func lastIndex(stack []string, s string) int {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == s {
			return i
		}
	}
	return -1
}

// ConvertSpecialTags replaces registered sprite tags with their emoji text
// and registered binding markup with the binding's code point.
func (p *Processor) ConvertSpecialTags(richText string) string {
	rs := []rune(richText)
	var b strings.Builder
	tagStart := -1

	for i := 0; i < len(rs); i++ {
		c := rs[i]
		switch {
		case c == '<':
			if tagStart != -1 {
				b.WriteString(string(rs[tagStart:i]))
			}
			tagStart = i
		case c == '>' && tagStart != -1:
			tagText := string(rs[tagStart : i+1])
			if e, ok := p.spriteEmoji(tagText); ok {
				b.WriteString(e.Text)
			} else if bd, ok := p.bindingAt(rs, tagStart); ok {
				b.WriteRune(bd.CodePoint)
				i = tagStart + textedit.RuneLen(bd.RichText) - 1
			} else {
				b.WriteString(tagText)
			}
			tagStart = -1
		case tagStart == -1:
			b.WriteRune(c)
		}
	}
	if tagStart != -1 {
		b.WriteString(string(rs[tagStart:]))
	}
	return b.String()
}

func (p *Processor) spriteEmoji(tagText string) (symbol.EmojiData, bool) {
	if p.emojis == nil || !p.grammar.IsValidSingleTag(tagText) {
		return symbol.EmojiData{}, false
	}
	return p.emojis.TryGetSprite(tagText)
}

func (p *Processor) bindingAt(rs []rune, pos int) (symbol.BindingData, bool) {
	if p.bindings == nil {
		return symbol.BindingData{}, false
	}
	return p.bindings.FindNextInRichText(rs, pos)
}

// ParseTextRegions splits plain text into ordinary regions and one region per
// emoji or binding symbol. The returned regions have no rich text runs yet.
func (p *Processor) ParseTextRegions(text string) []*TextRegion {
	rs := []rune(text)
	var (
		regions []*TextRegion
		pending []rune
	)
	flush := func() {
		if len(pending) > 0 {
			regions = append(regions, NewTextRegion(string(pending)))
			pending = pending[:0]
		}
	}

	for i := 0; i < len(rs); i++ {
		if p.bindings != nil {
			if b, ok := p.bindings.TryGetByCodePoint(rs[i]); ok {
				flush()
				regions = append(regions, newBindingRegion(b))
				continue
			}
		}
		if p.emojis != nil {
			if e, ok := p.emojis.FindNext(rs, i); ok {
				flush()
				regions = append(regions, newEmojiRegion(e))
				i += textedit.RuneLen(e.Text) - 1
				continue
			}
		}
		pending = append(pending, rs[i])
	}
	flush()
	return regions
}

// DeterminePositionInText maps a rich text position to plain text. Positions
// past every region map to the plain text length.
func (p *Processor) DeterminePositionInText(richPos int) int {
	richOffset, textOffset := 0, 0
	for _, region := range p.regions {
		if pos, ok := region.positionInText(richPos, richOffset, textOffset); ok {
			return pos
		}
		richOffset += region.RichLen()
		textOffset += region.Len()
	}
	return textOffset
}

// DeterminePositionInRichText maps a plain text position to rich text.
// Positions past every region map to the rich text length.
func (p *Processor) DeterminePositionInRichText(textPos int) int {
	richOffset, textOffset := 0, 0
	for _, region := range p.regions {
		if pos, ok := region.positionInRichText(textPos, richOffset, textOffset); ok {
			return pos
		}
		richOffset += region.RichLen()
		textOffset += region.Len()
	}
	return richOffset
}

// ProcessRichTextEditFrame maps a selection change made in rich text space
// back to plain text. The rich text itself must not have changed; content
// changes go through SetupRichText.
func (p *Processor) ProcessRichTextEditFrame(richFrame textedit.Frame) textedit.Frame {
	richFrame = richFrame.Clamp()
	frame := p.lastText

	if richFrame.Text != p.lastRich.Text {
		log.Warn(log.CatRichText, "Rich text changed outside SetupRichText, selection left as is",
			"expected_len", p.lastRich.Len(), "got_len", richFrame.Len())
		return frame
	}

	if richFrame.SelectionStart != p.lastRich.SelectionStart {
		frame.SelectionStart = p.DeterminePositionInText(richFrame.SelectionStart)
	}
	if richFrame.SelectionEnd != p.lastRich.SelectionEnd {
		if richFrame.HasSelection() {
			frame.SelectionEnd = p.DeterminePositionInText(richFrame.SelectionEnd)
		} else {
			frame.SelectionEnd = frame.SelectionStart
		}
	}

	p.lastText = frame
	p.lastRich = richFrame
	return frame
}

// ToggleTag toggles tag with param over the current selection.
func (p *Processor) ToggleTag(tag TagInfo, param string) textedit.Frame {
	return p.ToggleTagPair(tag.Start(param), tag.EndTag)
}
