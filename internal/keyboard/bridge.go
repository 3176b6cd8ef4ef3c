package keyboard

import (
	"fmt"
	"sync"
	"time"

	"github.com/zjrosen/richinput/internal/log"
	"github.com/zjrosen/richinput/internal/textedit"
)

// DefaultPendingTimeout bounds how long the bridge waits for the platform to
// confirm a show or hide request.
const DefaultPendingTimeout = time.Second

const defaultQueueCapacity = 30

// State is the keyboard visibility as far as the bridge knows.
type State int

const (
	Hidden State = iota
	PendingShow
	Visible
	PendingHide
)

var stateNames = []string{"hidden", "pending_show", "visible", "pending_hide"}

func (s State) String() string { return enumName(stateNames, int(s), "State") }

// Platform is the keyboard implementation the bridge drives. Implementations
// report back through the bridge's On* methods, from any goroutine.
type Platform interface {
	Show(frame textedit.Frame, cfg Configuration) error
	Hide() error
	UpdateTextEdit(frame textedit.Frame)
}

// Bridge queues platform callbacks and hands them to the main loop in order.
type Bridge struct {
	platform Platform
	queue    *Queue[Event]
	timeout  time.Duration
	clock    func() time.Time

	mu           sync.Mutex
	state        State
	pendingSince time.Time
	height       int
	hardwareKeys bool
}

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithPendingTimeout sets how long a show or hide may stay unconfirmed.
func WithPendingTimeout(d time.Duration) BridgeOption {
	return func(b *Bridge) { b.timeout = d }
}

// WithClock sets the clock used to stamp pending states.
func WithClock(clock func() time.Time) BridgeOption {
	return func(b *Bridge) { b.clock = clock }
}

// NewBridge creates a bridge for platform.
func NewBridge(platform Platform, opts ...BridgeOption) *Bridge {
	b := &Bridge{
		platform: platform,
		queue:    NewQueue[Event](defaultQueueCapacity),
		timeout:  DefaultPendingTimeout,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// State returns the current keyboard state.
func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Height returns the last keyboard height the platform reported.
func (b *Bridge) Height() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.height
}

// HardwareKeyboardConnected reports the last hardware keyboard state.
func (b *Bridge) HardwareKeyboardConnected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hardwareKeys
}

// Pending returns the number of events waiting for Tick.
func (b *Bridge) Pending() int {
	return b.queue.Len()
}

// Show asks the platform to show the keyboard for frame.
func (b *Bridge) Show(frame textedit.Frame, cfg Configuration) error {
	b.mu.Lock()
	if b.state == Hidden || b.state == PendingHide {
		b.setStateLocked(PendingShow)
	}
	b.mu.Unlock()

	if err := b.platform.Show(frame, cfg); err != nil {
		b.mu.Lock()
		if b.state == PendingShow {
			b.setStateLocked(Hidden)
		}
		b.mu.Unlock()
		return fmt.Errorf("showing keyboard: %w", err)
	}
	return nil
}

// Hide asks the platform to hide the keyboard.
func (b *Bridge) Hide() error {
	b.mu.Lock()
	if b.state != Hidden {
		b.setStateLocked(PendingHide)
	}
	b.mu.Unlock()

	if err := b.platform.Hide(); err != nil {
		return fmt.Errorf("hiding keyboard: %w", err)
	}
	return nil
}

// UpdateTextEdit tells the platform the text changed on the engine side.
func (b *Bridge) UpdateTextEdit(frame textedit.Frame) {
	b.platform.UpdateTextEdit(frame)
}

// Tick hands every queued event to handler in arrival order, then resolves
// a pending state that the platform never confirmed. It returns the number
// of events handled.
func (b *Bridge) Tick(now time.Time, handler func(Event)) int {
	n := b.queue.Drain(handler)

	b.mu.Lock()
	defer b.mu.Unlock()
	if (b.state == PendingShow || b.state == PendingHide) && now.Sub(b.pendingSince) > b.timeout {
		log.Warn(log.CatKeyboard, "Keyboard state change not confirmed", "state", b.state.String(), "timeout", b.timeout)
		b.setStateLocked(Hidden)
	}
	return n
}

// Close stops accepting platform events. Queued events are discarded.
func (b *Bridge) Close() {
	b.queue.Close()
	if n := b.queue.Len(); n > 0 {
		log.Debug(log.CatKeyboard, "Discarded keyboard events", "count", n)
	}
	b.queue.Clear()
}

func (b *Bridge) setStateLocked(s State) {
	if b.state == s {
		return
	}
	log.Debug(log.CatKeyboard, "Keyboard state", "from", b.state.String(), "to", s.String())
	b.state = s
	b.pendingSince = b.clock()
}

func (b *Bridge) enqueue(ev Event) {
	if err := b.queue.Enqueue(ev); err != nil {
		log.Debug(log.CatKeyboard, "Dropped keyboard event", "event", ev.String(), "error", err)
	}
}

// OnTextEditUpdate reports the platform's text and selection.
func (b *Bridge) OnTextEditUpdate(frame textedit.Frame) {
	ev := NewEvent(EventTextEditUpdate)
	ev.Frame = frame
	b.enqueue(ev)
}

// OnShow reports that the keyboard is fully shown.
func (b *Bridge) OnShow() {
	b.enqueue(NewEvent(EventShow))
	b.mu.Lock()
	b.setStateLocked(Visible)
	b.mu.Unlock()
}

// OnHide reports that the keyboard is fully hidden.
func (b *Bridge) OnHide() {
	b.enqueue(NewEvent(EventHide))
	b.mu.Lock()
	b.setStateLocked(Hidden)
	b.mu.Unlock()
}

// OnDone reports the done key.
func (b *Bridge) OnDone() { b.enqueue(NewEvent(EventDone)) }

// OnNext reports the next key.
func (b *Bridge) OnNext() { b.enqueue(NewEvent(EventNext)) }

// OnCancel reports that the platform cancelled editing.
func (b *Bridge) OnCancel() { b.enqueue(NewEvent(EventCancel)) }

// OnSpecialKeyPressed reports a special key.
func (b *Bridge) OnSpecialKeyPressed(key SpecialKey) {
	ev := NewEvent(EventSpecialKeyPressed)
	ev.Key = key
	b.enqueue(ev)
}

// OnMove reports an arrow key. t must be one of the move event types.
func (b *Bridge) OnMove(t EventType, shift, ctrl bool) {
	if t < EventMoveLeft || t > EventMoveDown {
		log.Warn(log.CatKeyboard, "Not a move event", "type", t.String())
		return
	}
	ev := NewEvent(t)
	ev.Shift, ev.Ctrl = shift, ctrl
	b.enqueue(ev)
}

// OnHeightChanged records the keyboard height. A height of zero means the
// keyboard was hidden by something outside the bridge.
func (b *Bridge) OnHeightChanged(height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.height = height
	if height == 0 {
		b.setStateLocked(Hidden)
	}
}

// OnHardwareKeyboardChanged records whether a hardware keyboard is attached.
func (b *Bridge) OnHardwareKeyboardChanged(connected bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hardwareKeys = connected
}
