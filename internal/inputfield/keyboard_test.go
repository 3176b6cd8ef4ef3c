package inputfield

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/richinput/internal/filter"
	"github.com/zjrosen/richinput/internal/keyboard"
	"github.com/zjrosen/richinput/internal/richtext"
	"github.com/zjrosen/richinput/internal/textedit"
)

func newKeyboardEngine(t *testing.T, opts ...Option) (*Engine, *keyboard.Bridge, *keyboard.SimulatedPlatform) {
	t.Helper()
	platform := keyboard.NewSimulatedPlatform()
	bridge := keyboard.NewBridge(platform)
	platform.Attach(bridge)
	t.Cleanup(bridge.Close)

	e := New(append(opts, WithKeyboard(bridge))...)
	t.Cleanup(e.Close)
	return e, bridge, platform
}

func TestEngine_HandleKeyboardEvent(t *testing.T) {
	e, bridge, platform := newKeyboardEngine(t,
		WithLiveFilters(filter.NewPipeline(filter.BlockDuplicateCharacter{})),
	)
	tick := func() int { return bridge.Tick(time.Now(), e.HandleKeyboardEvent) }

	require.NoError(t, bridge.Show(e.Selection(), keyboard.Configuration{}))
	require.Equal(t, 1, tick())
	require.True(t, e.Editing())
	require.Equal(t, keyboard.Visible, bridge.State())

	require.NoError(t, platform.Type("ab"))
	tick()
	require.Equal(t, "ab", e.Text())
	require.Equal(t, textedit.NewFrame("ab", 2), platform.Frame())

	// The duplicate is rejected and the keyboard is told.
	require.NoError(t, platform.Type("a"))
	require.Equal(t, "aba", platform.Frame().Text)
	tick()
	require.Equal(t, "ab", e.Text())
	require.Equal(t, textedit.NewFrame("ab", 2), platform.Frame())

	require.NoError(t, platform.Done())
	tick()
	require.False(t, e.Editing())
	require.Equal(t, "ab", e.ProcessedText())
}

func TestEngine_HandleKeyboardMoves(t *testing.T) {
	e, bridge, _ := newKeyboardEngine(t)
	e.SetText("one two")
	tick := func() { bridge.Tick(time.Now(), e.HandleKeyboardEvent) }

	bridge.OnMove(keyboard.EventMoveLeft, false, true)
	tick()
	require.Equal(t, textedit.NewFrame("one two", 4), e.Selection())

	bridge.OnMove(keyboard.EventMoveLeft, true, false)
	tick()
	require.Equal(t, textedit.Frame{Text: "one two", SelectionStart: 4, SelectionEnd: 3}, e.Selection())

	bridge.OnMove(keyboard.EventMoveRight, false, false)
	tick()
	require.Equal(t, textedit.NewFrame("one two", 4), e.Selection())

	bridge.OnSpecialKeyPressed(keyboard.KeyBackspace)
	tick()
	require.Equal(t, "onetwo", e.Text())
}

func TestEngine_HandleKeyboardCancel(t *testing.T) {
	e, bridge, platform := newKeyboardEngine(t)
	e.SetText("keep")
	tick := func() { bridge.Tick(time.Now(), e.HandleKeyboardEvent) }

	require.NoError(t, bridge.Show(e.Selection(), keyboard.Configuration{}))
	tick()
	require.NoError(t, platform.Type("!"))
	tick()
	require.Equal(t, "keep!", e.Text())

	bridge.OnSpecialKeyPressed(keyboard.KeyEscape)
	tick()
	require.Equal(t, "keep", e.Text())
	require.False(t, e.Editing())
}

func TestEngine_EditsStayInSync(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		e := New(WithRichText(richtext.DefaultGrammar()), WithEmojis(newEmojis()))
		defer e.Close()

		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 4).Draw(rt, "op") {
			case 0:
				e.Insert(rapid.SampledFrom([]string{"a", "b", " ", "😀", "👍🏽", "xy"}).Draw(rt, "input"))
			case 1:
				e.Backspace()
			case 2:
				e.DeleteForward()
			case 3:
				e.MoveCaret(rapid.IntRange(-3, 3).Draw(rt, "delta"), rapid.Bool().Draw(rt, "extend"))
			case 4:
				e.ToggleBold()
			}

			sel := e.Selection()
			require.Equal(rt, e.Text(), e.Processor().Text())
			require.GreaterOrEqual(rt, sel.SelectionStart, 0)
			require.LessOrEqual(rt, sel.SelectionEnd, sel.Len())
		}
	})
}
