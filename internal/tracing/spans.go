package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span names.
const (
	SpanApplyTextEdit     = "engine.apply_text_edit"
	SpanApplyRichTextEdit = "engine.apply_rich_text_edit"
	SpanToggleTag         = "engine.toggle_tag"
	SpanEndEdit           = "engine.end_edit"
	SpanKeyboardEvent     = "keyboard.event"
)

// Attribute keys.
const (
	AttrSessionID     = "engine.session_id"
	AttrTextLength    = "text.length"
	AttrRichLength    = "rich_text.length"
	AttrCaret         = "text.caret"
	AttrTag           = "rich_text.tag"
	AttrFilter        = "filter.name"
	AttrKeyboardEvent = "keyboard.event_type"
	AttrEventID       = "keyboard.event_id"
)

// Event names.
const (
	EventLiveFiltered = "live_filters.applied"
	EventDecorated    = "decoration.applied"
	EventRejected     = "edit.rejected"
	EventPostFiltered = "post_filter.applied"
)

// Start opens an internal span. A nil tracer uses the no-op tracer from ctx.
func Start(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if tracer == nil {
		span := trace.SpanFromContext(ctx)
		return ctx, span
	}
	return tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// End records err on span, sets its status and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
