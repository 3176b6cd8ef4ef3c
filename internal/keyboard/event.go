package keyboard

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/zjrosen/richinput/internal/textedit"
)

// EventType is what happened on the platform keyboard.
type EventType int

const (
	EventTextEditUpdate EventType = iota
	EventShow
	EventHide
	EventDone
	EventNext
	EventCancel
	EventSpecialKeyPressed
	EventMoveLeft
	EventMoveRight
	EventMoveUp
	EventMoveDown
)

var eventTypeNames = []string{
	"text_edit_update", "show", "hide", "done", "next", "cancel",
	"special_key_pressed", "move_left", "move_right", "move_up", "move_down",
}

func (t EventType) String() string { return enumName(eventTypeNames, int(t), "EventType") }

// SpecialKey is a key the platform reports outside of text edits.
type SpecialKey int

const (
	KeyBack SpecialKey = iota
	KeyBackspace
	KeyEscape
)

var specialKeyNames = []string{"back", "backspace", "escape"}

func (k SpecialKey) String() string { return enumName(specialKeyNames, int(k), "SpecialKey") }

// Event is one platform keyboard event. Frame is set for text edit updates,
// Key for special keys, and Shift and Ctrl for moves.
type Event struct {
	ID    uuid.UUID
	Type  EventType
	Frame textedit.Frame
	Key   SpecialKey
	Shift bool
	Ctrl  bool
}

// NewEvent creates an event with a fresh ID.
func NewEvent(t EventType) Event {
	return Event{ID: uuid.New(), Type: t}
}

func (e Event) String() string {
	var b strings.Builder
	b.WriteString(e.Type.String())
	switch e.Type {
	case EventTextEditUpdate:
		fmt.Fprintf(&b, " %s", e.Frame)
	case EventSpecialKeyPressed:
		fmt.Fprintf(&b, " %s", e.Key)
	case EventMoveLeft, EventMoveRight, EventMoveUp, EventMoveDown:
		fmt.Fprintf(&b, " shift=%t ctrl=%t", e.Shift, e.Ctrl)
	}
	return b.String()
}

func normalize(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
}
