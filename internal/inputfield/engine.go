// Package inputfield implements the editing engine behind a text input.
//
// An Engine owns the plain text and selection of one field. Every change
// flows through the same pipeline: character validation and the character
// limit (for typed input), the live filters, then the engine state, the live
// decoration filter (display text) and finally the rich text processor, which
// keeps the markup in step with the plain text. EndEdit runs the post filter.
//
// Observers follow changes through Subscribe.
package inputfield

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/richinput/internal/filter"
	"github.com/zjrosen/richinput/internal/flags"
	"github.com/zjrosen/richinput/internal/log"
	"github.com/zjrosen/richinput/internal/pubsub"
	"github.com/zjrosen/richinput/internal/richtext"
	"github.com/zjrosen/richinput/internal/symbol"
	"github.com/zjrosen/richinput/internal/textedit"
	"github.com/zjrosen/richinput/internal/tracing"
	"github.com/zjrosen/richinput/internal/validator"
)

// ErrNoMeasurer is the panic value when layout is needed without a Measurer.
var ErrNoMeasurer = errors.New("inputfield: no measurer configured")

// Change is the payload of every event published by an Engine.
type Change struct {
	SessionID uuid.UUID
	Frame     textedit.Frame
	RichFrame textedit.Frame
	Display   string
	Editing   bool
}

var _ pubsub.Subscriber[Change] = (*Engine)(nil)

// Engine edits one input field. It is not safe for concurrent use; keyboard
// events from other goroutines go through keyboard.Bridge and are handled on
// the owner's goroutine.
type Engine struct {
	id uuid.UUID

	validator      *validator.TextValidator
	live           *filter.Pipeline
	decoration     filter.DecorationFilter
	post           filter.PostFilter
	characterLimit int
	lineLimit      int
	readOnly       bool
	secure         bool
	richText       bool
	grammar        richtext.Grammar
	emojis         *symbol.EmojiRegistry
	bindings       *symbol.BindingRegistry
	tracer         trace.Tracer
	flags          *flags.Registry
	measurer       Measurer
	now            func() time.Time
	keyboard       KeyboardSync

	processor *richtext.Processor
	broker    *pubsub.Broker[Change]

	frame     textedit.Frame
	richFrame textedit.Frame
	display   textedit.Frame
	decorated bool
	processed string
	editing   bool
	original  string
}

// New creates an engine with empty text. It panics with ErrNoMeasurer when
// a line limit is set without a measurer.
func New(opts ...Option) *Engine {
	e := &Engine{id: uuid.New(), now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	if e.lineLimit > 0 && e.measurer == nil {
		panic(ErrNoMeasurer)
	}
	if e.flags == nil {
		e.flags = flags.WithDefaults(nil)
	}
	e.broker = pubsub.NewBroker[Change]().WithClock(e.now)

	popts := []richtext.Option{richtext.WithFlags(e.flags)}
	if e.emojis != nil {
		popts = append(popts, richtext.WithEmojis(e.emojis))
	}
	if e.bindings != nil && e.richText {
		popts = append(popts, richtext.WithBindings(e.bindings))
	}
	grammar := richtext.Grammar{}
	if e.richText {
		grammar = e.grammar
	}
	e.processor = richtext.New(grammar, popts...)
	e.richFrame = e.processor.SetupText("")

	if e.validator != nil && e.validator.Validation == validator.Custom && e.validator.Custom == nil {
		log.Warn(log.CatValidator, "Custom validation without a character validator, all input is allowed",
			"session", e.id.String())
	}
	log.Debug(log.CatEngine, "Engine created", "session", e.id.String(),
		"rich_text", e.richText, "limit", e.characterLimit, "read_only", e.readOnly)
	return e
}

// SessionID identifies the engine in events and spans.
func (e *Engine) SessionID() uuid.UUID {
	return e.id
}

// Processor exposes the rich text processor for inspection.
func (e *Engine) Processor() *richtext.Processor {
	return e.processor
}

// Text returns the plain text.
func (e *Engine) Text() string {
	return e.frame.Text
}

// RichText returns the rich text. Without rich text editing it equals the
// plain text apart from emoji sprites.
func (e *Engine) RichText() string {
	return e.richFrame.Text
}

// Selection returns the plain text frame.
func (e *Engine) Selection() textedit.Frame {
	return e.frame
}

// RichSelection returns the rich text frame.
func (e *Engine) RichSelection() textedit.Frame {
	return e.richFrame
}

// DisplayText returns the decorated text, or the plain text when there is no
// decoration filter or it rejected the text.
func (e *Engine) DisplayText() string {
	return e.display.Text
}

// DisplaySelection returns the selection mapped into DisplayText.
func (e *Engine) DisplaySelection() textedit.Frame {
	return e.display
}

// ProcessedText returns the text produced by the last EndEdit.
func (e *Engine) ProcessedText() string {
	return e.processed
}

// Editing reports whether the field is between BeginEdit and EndEdit.
func (e *Engine) Editing() bool {
	return e.editing
}

// ReadOnly reports whether edits are rejected.
func (e *Engine) ReadOnly() bool {
	return e.readOnly
}

// RichTextEnabled reports whether markup is parsed and tags can be toggled.
func (e *Engine) RichTextEnabled() bool {
	return e.richText
}

// Subscribe returns a channel of changes that closes when ctx is done.
func (e *Engine) Subscribe(ctx context.Context) <-chan pubsub.Event[Change] {
	return e.broker.Subscribe(ctx)
}

// Close closes every subscription.
func (e *Engine) Close() {
	e.broker.Close()
}

// SetText replaces the document with plain text and puts the caret at the
// end. Text beyond the character limit is dropped.
func (e *Engine) SetText(text string) {
	text = e.truncate(text)
	e.processor.SetupText(text)
	e.resetDecoration()
	e.setState(context.Background(), textedit.NewFrame(text, textedit.RuneLen(text)))
	e.settleDecoration()
	e.publish(pubsub.TextChangedEvent)
}

// SetRichText replaces the document by parsing richText. Without rich text
// editing the markup is kept as plain text.
func (e *Engine) SetRichText(richText string) {
	if !e.richText {
		e.SetText(richText)
		return
	}
	e.processor.SetupRichText(richText)
	text := e.truncate(e.processor.Text())
	e.resetDecoration()
	e.setState(context.Background(), textedit.NewFrame(text, textedit.RuneLen(text)))
	e.settleDecoration()
	e.publish(pubsub.TextChangedEvent)
}

func (e *Engine) truncate(text string) string {
	if e.characterLimit > 0 && textedit.RuneLen(text) > e.characterLimit {
		log.Debug(log.CatEngine, "Text truncated to character limit", "limit", e.characterLimit)
		return textedit.Slice(text, 0, e.characterLimit)
	}
	return text
}

// resetDecoration forgets decoration state so a programmatic text change is
// never revealed as typed input.
func (e *Engine) resetDecoration() {
	e.decorated = false
	if e.decoration != nil {
		e.decoration.ProcessText("", 0)
	}
}

// settleDecoration ends any timed decoration, e.g. a revealed password rune.
func (e *Engine) settleDecoration() {
	if e.decoration == nil || !e.decorated {
		return
	}
	if out, changed := e.decoration.UpdateFilter(e.now(), true); changed {
		e.display.Text = out
	}
}

// ApplyTextEditFrame applies frame as the next state of the field and
// returns the frame that was actually applied. Live filters may rewrite or
// reject it. In read-only mode only selection changes are applied.
func (e *Engine) ApplyTextEditFrame(frame textedit.Frame) textedit.Frame {
	return e.applyTextEditFrame(context.Background(), frame)
}

func (e *Engine) applyTextEditFrame(ctx context.Context, frame textedit.Frame) textedit.Frame {
	frame = frame.Clamp()
	last := e.frame

	ctx, span := tracing.Start(ctx, e.tracer, tracing.SpanApplyTextEdit,
		attribute.String(tracing.AttrSessionID, e.id.String()),
		attribute.Int(tracing.AttrTextLength, frame.Len()),
		attribute.Int(tracing.AttrCaret, frame.Caret()),
	)
	defer tracing.End(span, nil)

	if e.readOnly && frame.Text != last.Text {
		log.Debug(log.CatEngine, "Edit ignored in read-only field", "session", e.id.String())
		span.AddEvent(tracing.EventRejected)
		frame = textedit.Frame{Text: last.Text, SelectionStart: frame.SelectionStart, SelectionEnd: frame.SelectionEnd}.Clamp()
	}

	if !e.readOnly {
		if filtered := e.live.ProcessTextEditUpdate(frame, last); filtered != frame {
			span.AddEvent(tracing.EventLiveFiltered)
			log.Debug(log.CatEngine, "Live filters changed frame", "in", frame.String(), "out", filtered.String())
			frame = filtered.Clamp()
		}
		frame = e.applyCharacterLimit(frame, last)
		frame = e.applyLineLimit(frame)
	}
	if snapped := e.snapFrame(frame); snapped != frame {
		log.Debug(log.CatEngine, "Selection snapped to unit boundary", "in", frame.String(), "out", snapped.String())
		frame = snapped
	}

	if frame == last {
		return frame
	}
	e.setState(ctx, frame)

	if frame.Text != last.Text {
		e.publish(pubsub.TextChangedEvent)
	} else {
		e.publish(pubsub.SelectionChangedEvent)
	}
	return frame
}

// setState stores frame, decorates it and hands it to the processor.
func (e *Engine) setState(ctx context.Context, frame textedit.Frame) {
	textChanged := frame.Text != e.frame.Text
	e.frame = frame
	e.decorate(frame, textChanged)
	if e.decoration != nil {
		trace.SpanFromContext(ctx).AddEvent(tracing.EventDecorated)
	}
	e.richFrame = e.processor.ProcessTextEditFrame(frame)

	if got := e.processor.Text(); got != frame.Text {
		log.Error(log.CatEngine, "Processor text out of sync", "session", e.id.String(),
			"want_len", frame.Len(), "got_len", textedit.RuneLen(got))
	}
}

func (e *Engine) decorate(frame textedit.Frame, textChanged bool) {
	if e.decoration == nil {
		e.display = frame
		return
	}
	if textChanged || !e.decorated {
		out, ok := e.decoration.ProcessText(frame.Text, frame.SelectionStart)
		if !ok {
			e.display = frame
			e.decorated = false
			return
		}
		e.display.Text = out
		e.decorated = true
	}
	e.display.SelectionStart = e.decoration.DetermineProcessedCaret(frame.Text, frame.SelectionStart, e.display.Text)
	e.display.SelectionEnd = e.decoration.DetermineProcessedCaret(frame.Text, frame.SelectionEnd, e.display.Text)
}

// Update advances decoration timers and reports whether the display text
// changed.
func (e *Engine) Update(now time.Time) bool {
	if e.decoration == nil || !e.decorated {
		return false
	}
	out, changed := e.decoration.UpdateFilter(now, false)
	if !changed {
		return false
	}
	e.display.Text = out
	e.publish(pubsub.StateChangedEvent)
	return true
}

// ApplyRichTextEditFrame applies a selection made in rich text space.
func (e *Engine) ApplyRichTextEditFrame(richFrame textedit.Frame) textedit.Frame {
	_, span := tracing.Start(context.Background(), e.tracer, tracing.SpanApplyRichTextEdit,
		attribute.String(tracing.AttrSessionID, e.id.String()),
		attribute.Int(tracing.AttrRichLength, richFrame.Len()),
	)
	defer tracing.End(span, nil)

	last := e.frame
	frame := e.processor.ProcessRichTextEditFrame(richFrame)
	e.live.OnRichTextEditUpdate(frame, last)

	e.frame = frame
	e.richFrame = e.processor.LastRichTextEditFrame()
	e.decorate(frame, false)
	if frame != last {
		e.publish(pubsub.SelectionChangedEvent)
	}
	return frame
}

// ToggleTagPair toggles the pair tag named tagName over the selection and
// reports whether the rich text changed.
func (e *Engine) ToggleTagPair(tagName, param string) bool {
	if !e.richText {
		log.Warn(log.CatEngine, "Rich text editing is not enabled", "tag", tagName)
		return false
	}
	if e.readOnly || !e.frame.HasSelection() {
		return false
	}
	tag, ok := e.grammar.Lookup(tagName)
	if !ok || !tag.IsPair() {
		log.Warn(log.CatEngine, "Tag cannot be toggled", "tag", tagName, "known", ok)
		return false
	}

	_, span := tracing.Start(context.Background(), e.tracer, tracing.SpanToggleTag,
		attribute.String(tracing.AttrSessionID, e.id.String()),
		attribute.String(tracing.AttrTag, tagName),
	)
	defer tracing.End(span, nil)

	rich := e.processor.ToggleTag(tag, param)
	changed := rich.Text != e.richFrame.Text
	e.richFrame = rich
	if changed {
		e.publish(pubsub.TextChangedEvent)
	}
	return changed
}

// ToggleBold toggles <b> over the selection.
func (e *Engine) ToggleBold() bool { return e.ToggleTagPair("b", "") }

// ToggleItalic toggles <i> over the selection.
func (e *Engine) ToggleItalic() bool { return e.ToggleTagPair("i", "") }

// ToggleUnderline toggles <u> over the selection.
func (e *Engine) ToggleUnderline() bool { return e.ToggleTagPair("u", "") }

// IsTagActive reports whether the run at the caret carries tagName.
func (e *Engine) IsTagActive(tagName string) bool {
	tag, ok := e.grammar.Lookup(tagName)
	if !e.richText || !ok || !tag.IsPair() {
		return false
	}
	return e.processor.IsTagActiveAt(e.frame.Normalized().SelectionStart, tag.EndTag)
}

// BeginEdit starts an edit session and remembers the text for Cancel.
func (e *Engine) BeginEdit() {
	if e.editing {
		return
	}
	e.editing = true
	e.original = e.frame.Text
	log.Debug(log.CatEngine, "Begin edit", "session", e.id.String())
	e.publish(pubsub.StateChangedEvent)
}

// EndEdit ends the edit session, settles the decoration and runs the post
// filter. It returns the processed text and whether the post filter accepted
// the text; rejected text is stored unprocessed.
func (e *Engine) EndEdit() (string, bool) {
	_, span := tracing.Start(context.Background(), e.tracer, tracing.SpanEndEdit,
		attribute.String(tracing.AttrSessionID, e.id.String()),
		attribute.Int(tracing.AttrTextLength, e.frame.Len()),
	)

	e.editing = false
	e.settleDecoration()

	ok := true
	e.processed = e.frame.Text
	if e.post != nil {
		var out string
		if out, ok = e.post.ProcessText(e.frame.Text); ok {
			e.processed = out
		}
		span.AddEvent(tracing.EventPostFiltered, trace.WithAttributes(attribute.Bool("accepted", ok)))
	}

	var err error
	if !ok {
		err = errors.New("post filter rejected text")
	}
	tracing.End(span, err)

	log.Debug(log.CatEngine, "End edit", "session", e.id.String(), "accepted", ok)
	e.publish(pubsub.SubmittedEvent)
	return e.processed, ok
}

// Cancel ends the edit session and restores the text from BeginEdit.
func (e *Engine) Cancel() {
	if !e.editing {
		return
	}
	e.editing = false
	if e.frame.Text != e.original {
		e.SetText(e.original)
	}
	log.Debug(log.CatEngine, "Edit cancelled", "session", e.id.String())
	e.publish(pubsub.StateChangedEvent)
}

// CaretPosition returns where the caret is drawn in the display text.
// It panics with ErrNoMeasurer when no Measurer is configured.
func (e *Engine) CaretPosition() Position {
	if e.measurer == nil {
		panic(ErrNoMeasurer)
	}
	return e.measurer.Measure(e.display.Text, e.display.Caret())
}

func (e *Engine) publish(t pubsub.EventType) {
	e.broker.Publish(t, Change{
		SessionID: e.id,
		Frame:     e.frame,
		RichFrame: e.richFrame,
		Display:   e.display.Text,
		Editing:   e.editing,
	})
}
