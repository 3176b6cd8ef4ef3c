package keyboard

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/richinput/internal/textedit"
	"github.com/zjrosen/richinput/internal/validator"
)

// silentPlatform never confirms requests.
type silentPlatform struct {
	shows   int
	hides   int
	showErr error
	last    textedit.Frame
}

func (p *silentPlatform) Show(frame textedit.Frame, _ Configuration) error {
	p.shows++
	p.last = frame
	return p.showErr
}

func (p *silentPlatform) Hide() error {
	p.hides++
	return nil
}

func (p *silentPlatform) UpdateTextEdit(frame textedit.Frame) {
	p.last = frame
}

func newSimulated(t *testing.T, now *time.Time) (*Bridge, *SimulatedPlatform) {
	t.Helper()
	platform := NewSimulatedPlatform()
	b := NewBridge(platform, WithClock(func() time.Time { return *now }))
	platform.Attach(b)
	return b, platform
}

func collect(b *Bridge, now time.Time) []Event {
	var events []Event
	b.Tick(now, func(ev Event) { events = append(events, ev) })
	return events
}

func eventTypes(events []Event) []EventType {
	types := make([]EventType, 0, len(events))
	for _, ev := range events {
		types = append(types, ev.Type)
	}
	return types
}

func TestBridge_SimulatedSession(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b, platform := newSimulated(t, &now)

	require.NoError(t, b.Show(textedit.NewFrame("ab", 2), Configuration{CharacterValidation: validator.Integer}))
	require.Equal(t, Visible, b.State())
	require.Equal(t, SimulatedHeight, b.Height())
	require.True(t, platform.Visible())

	require.NoError(t, platform.Type("1x2"))
	require.NoError(t, platform.Backspace())
	require.NoError(t, platform.Done())
	require.Equal(t, 4, b.Pending())

	events := collect(b, now)
	require.Equal(t, []EventType{EventShow, EventTextEditUpdate, EventTextEditUpdate, EventDone}, eventTypes(events))
	require.Equal(t, textedit.NewFrame("ab12", 4), events[1].Frame)
	require.Equal(t, textedit.NewFrame("ab1", 3), events[2].Frame)
	require.NotEqual(t, events[1].ID, events[2].ID)

	require.NoError(t, b.Hide())
	require.Equal(t, Hidden, b.State())
	require.Zero(t, b.Height())
	require.Equal(t, []EventType{EventHide}, eventTypes(collect(b, now)))
}

func TestBridge_EngineUpdatesReachPlatform(t *testing.T) {
	now := time.Now()
	b, platform := newSimulated(t, &now)
	require.NoError(t, b.Show(textedit.NewFrame("", 0), Configuration{}))

	b.UpdateTextEdit(textedit.Frame{Text: "hello", SelectionStart: 1, SelectionEnd: 4})
	require.NoError(t, platform.Type("a"))
	events := collect(b, now)
	require.Equal(t, textedit.NewFrame("hao", 2), events[len(events)-1].Frame)

	b.UpdateTextEdit(textedit.NewFrame("", 0))
	require.NoError(t, platform.Backspace())
	events = collect(b, now)
	require.Len(t, events, 1)
	require.Equal(t, EventSpecialKeyPressed, events[0].Type)
	require.Equal(t, KeyBackspace, events[0].Key)
}

func TestBridge_PendingTimeout(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	platform := &silentPlatform{}
	b := NewBridge(platform, WithPendingTimeout(500*time.Millisecond), WithClock(func() time.Time { return now }))

	require.NoError(t, b.Show(textedit.NewFrame("x", 1), Configuration{}))
	require.Equal(t, PendingShow, b.State())
	require.Equal(t, 1, platform.shows)

	b.Tick(now.Add(400*time.Millisecond), func(Event) {})
	require.Equal(t, PendingShow, b.State())

	b.Tick(now.Add(600*time.Millisecond), func(Event) {})
	require.Equal(t, Hidden, b.State())

	require.NoError(t, b.Hide())
	require.Equal(t, Hidden, b.State())
	require.Equal(t, 1, platform.hides)
}

func TestBridge_ShowFailureResetsState(t *testing.T) {
	platform := &silentPlatform{showErr: errors.New("no keyboard")}
	b := NewBridge(platform)

	err := b.Show(textedit.NewFrame("", 0), Configuration{})
	require.ErrorContains(t, err, "no keyboard")
	require.Equal(t, Hidden, b.State())
}

func TestBridge_Callbacks(t *testing.T) {
	b := NewBridge(&silentPlatform{})
	b.OnMove(EventMoveLeft, true, false)
	b.OnMove(EventDone, false, false)
	b.OnSpecialKeyPressed(KeyEscape)
	b.OnNext()
	b.OnCancel()
	b.OnHardwareKeyboardChanged(true)
	require.True(t, b.HardwareKeyboardConnected())

	events := collect(b, time.Now())
	require.Equal(t, []EventType{EventMoveLeft, EventSpecialKeyPressed, EventNext, EventCancel}, eventTypes(events))
	require.True(t, events[0].Shift)
	require.False(t, events[0].Ctrl)
	require.Equal(t, KeyEscape, events[1].Key)
	require.Equal(t, "move_left shift=true ctrl=false", events[0].String())

	b.OnShow()
	require.Equal(t, Visible, b.State())
	b.OnHeightChanged(0)
	require.Equal(t, Hidden, b.State())

	b.Close()
	b.OnDone()
	require.Zero(t, b.Pending())
}

func TestSimulatedPlatform_NotAttached(t *testing.T) {
	p := NewSimulatedPlatform()
	require.Error(t, p.Show(textedit.NewFrame("", 0), Configuration{}))
	require.Error(t, p.Type("a"))
	require.Error(t, p.Hide())
}
