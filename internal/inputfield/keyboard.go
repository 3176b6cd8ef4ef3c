package inputfield

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/zjrosen/richinput/internal/keyboard"
	"github.com/zjrosen/richinput/internal/log"
	"github.com/zjrosen/richinput/internal/tracing"
)

// HandleKeyboardEvent applies an event drained from a keyboard.Bridge.
// A text edit that the live filters changed is pushed back to the keyboard.
func (e *Engine) HandleKeyboardEvent(ev keyboard.Event) {
	ctx, span := tracing.Start(context.Background(), e.tracer, tracing.SpanKeyboardEvent,
		attribute.String(tracing.AttrSessionID, e.id.String()),
		attribute.String(tracing.AttrKeyboardEvent, ev.Type.String()),
		attribute.String(tracing.AttrEventID, ev.ID.String()),
	)
	defer tracing.End(span, nil)

	log.Debug(log.CatEngine, "Keyboard event", "event", ev.String())

	switch ev.Type {
	case keyboard.EventTextEditUpdate:
		applied := e.applyTextEditFrame(ctx, ev.Frame)
		if applied != ev.Frame.Clamp() && e.keyboard != nil {
			e.keyboard.UpdateTextEdit(applied)
		}
	case keyboard.EventShow:
		e.BeginEdit()
	case keyboard.EventHide:
		if e.editing {
			e.EndEdit()
		}
	case keyboard.EventDone, keyboard.EventNext:
		e.EndEdit()
	case keyboard.EventCancel:
		e.Cancel()
	case keyboard.EventSpecialKeyPressed:
		switch ev.Key {
		case keyboard.KeyBackspace:
			e.Backspace()
		case keyboard.KeyBack, keyboard.KeyEscape:
			e.Cancel()
		}
	case keyboard.EventMoveLeft, keyboard.EventMoveRight:
		forward := ev.Type == keyboard.EventMoveRight
		if ev.Ctrl {
			e.MoveWord(forward, ev.Shift)
		} else if forward {
			e.MoveCaret(1, ev.Shift)
		} else {
			e.MoveCaret(-1, ev.Shift)
		}
	case keyboard.EventMoveUp, keyboard.EventMoveDown:
		e.MoveLine(ev.Type == keyboard.EventMoveDown, ev.Shift)
	}
}
