package inputfield

import (
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/richinput/internal/filter"
	"github.com/zjrosen/richinput/internal/flags"
	"github.com/zjrosen/richinput/internal/richtext"
	"github.com/zjrosen/richinput/internal/symbol"
	"github.com/zjrosen/richinput/internal/textedit"
	"github.com/zjrosen/richinput/internal/validator"
)

// Option configures an Engine.
type Option func(*Engine)

// KeyboardSync receives frames the engine changed after a keyboard update,
// so the keyboard's own copy of the text stays in step. *keyboard.Bridge
// implements it.
type KeyboardSync interface {
	UpdateTextEdit(frame textedit.Frame)
}

// WithValidator validates typed and pasted text.
func WithValidator(v validator.TextValidator) Option {
	return func(e *Engine) {
		e.validator = &v
	}
}

// WithLiveFilters runs p on every applied frame.
func WithLiveFilters(p *filter.Pipeline) Option {
	return func(e *Engine) {
		e.live = p
	}
}

// WithDecoration sets the live decoration filter that produces display text.
func WithDecoration(f filter.DecorationFilter) Option {
	return func(e *Engine) {
		e.decoration = f
	}
}

// WithPostFilter sets the filter applied by EndEdit.
func WithPostFilter(f filter.PostFilter) Option {
	return func(e *Engine) {
		e.post = f
	}
}

// WithCharacterLimit caps the text at n runes. Zero means no limit.
func WithCharacterLimit(n int) Option {
	return func(e *Engine) {
		e.characterLimit = max(n, 0)
	}
}

// WithLineLimit caps the measured line count. It requires WithMeasurer.
func WithLineLimit(n int) Option {
	return func(e *Engine) {
		e.lineLimit = max(n, 0)
	}
}

// WithReadOnly rejects edits. Selection still moves.
func WithReadOnly(readOnly bool) Option {
	return func(e *Engine) {
		e.readOnly = readOnly
	}
}

// WithRichText enables rich text editing with grammar.
func WithRichText(grammar richtext.Grammar) Option {
	return func(e *Engine) {
		e.richText = true
		e.grammar = grammar
	}
}

// WithEmojis allows emoji symbols from registry.
func WithEmojis(registry *symbol.EmojiRegistry) Option {
	return func(e *Engine) {
		e.emojis = registry
	}
}

// WithBindings allows binding symbols from registry. Bindings only render
// when rich text is enabled.
func WithBindings(registry *symbol.BindingRegistry) Option {
	return func(e *Engine) {
		e.bindings = registry
	}
}

// WithSecure hides the text from Copy and Cut.
func WithSecure(secure bool) Option {
	return func(e *Engine) {
		e.secure = secure
	}
}

// WithTracer records edits as spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = tracer
	}
}

// WithFlags sets the feature flags handed to the rich text processor.
func WithFlags(registry *flags.Registry) Option {
	return func(e *Engine) {
		e.flags = registry
	}
}

// WithMeasurer sets the layout measurer used by CaretPosition and the line limit.
func WithMeasurer(m Measurer) Option {
	return func(e *Engine) {
		e.measurer = m
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithKeyboard pushes frames changed by filters back to k.
func WithKeyboard(k KeyboardSync) Option {
	return func(e *Engine) {
		e.keyboard = k
	}
}
