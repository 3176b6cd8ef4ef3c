package testutil

import (
	"testing"

	"github.com/zjrosen/richinput/internal/inputfield"
	"github.com/zjrosen/richinput/internal/richtext"
	"github.com/zjrosen/richinput/internal/symbol"
)

// FieldBuilder assembles an input field engine for a test.
type FieldBuilder struct {
	t        *testing.T
	emojis   []symbol.EmojiData
	bindings []symbol.BindingData
	richText bool
	grammar  richtext.Grammar
	clock    *Clock
	opts     []inputfield.Option
}

// NewFieldBuilder creates a builder for a plain text field.
func NewFieldBuilder(t *testing.T) *FieldBuilder {
	t.Helper()
	return &FieldBuilder{t: t}
}

// WithRichText enables markup with every built-in tag.
func (b *FieldBuilder) WithRichText() *FieldBuilder {
	b.richText = true
	b.grammar = richtext.DefaultGrammar()
	return b
}

// WithGrammar enables markup with the given tags only.
func (b *FieldBuilder) WithGrammar(g richtext.Grammar) *FieldBuilder {
	b.richText = true
	b.grammar = g
	return b
}

// WithEmoji adds an emoji to the field's registry.
func (b *FieldBuilder) WithEmoji(name, text string) *FieldBuilder {
	b.emojis = append(b.emojis, symbol.EmojiData{Name: name, Text: text, RichText: symbol.SpriteRichText(name)})
	return b
}

// WithBinding adds a binding to the field's registry.
func (b *FieldBuilder) WithBinding(binding symbol.BindingData) *FieldBuilder {
	b.bindings = append(b.bindings, binding)
	return b
}

// WithStandardSymbols adds StandardEmojis and StandardBindings.
func (b *FieldBuilder) WithStandardSymbols() *FieldBuilder {
	b.emojis = append(b.emojis, StandardEmojis()...)
	b.bindings = append(b.bindings, StandardBindings()...)
	return b
}

// WithClock drives the engine and its filters from c.
func (b *FieldBuilder) WithClock(c *Clock) *FieldBuilder {
	b.clock = c
	return b
}

// WithOptions appends engine options. They are applied last.
func (b *FieldBuilder) WithOptions(opts ...inputfield.Option) *FieldBuilder {
	b.opts = append(b.opts, opts...)
	return b
}

// Build creates the engine. It is closed when the test ends.
func (b *FieldBuilder) Build() *inputfield.Engine {
	b.t.Helper()
	var opts []inputfield.Option
	if b.richText {
		opts = append(opts, inputfield.WithRichText(b.grammar))
	}
	if len(b.emojis) > 0 {
		opts = append(opts, inputfield.WithEmojis(symbol.NewEmojiRegistry(b.emojis...)))
	}
	if len(b.bindings) > 0 {
		opts = append(opts, inputfield.WithBindings(Bindings(b.t, b.bindings...)))
	}
	if b.clock != nil {
		opts = append(opts, inputfield.WithClock(b.clock.Now))
	}
	e := inputfield.New(append(opts, b.opts...)...)
	b.t.Cleanup(e.Close)
	return e
}
