package playground

import (
	"context"
	"fmt"
	"time"

	"github.com/zjrosen/richinput/internal/config"
	"github.com/zjrosen/richinput/internal/filter"
	"github.com/zjrosen/richinput/internal/inputfield"
	"github.com/zjrosen/richinput/internal/keyboard"
	"github.com/zjrosen/richinput/internal/pubsub"
)

// field is one input field wired to a simulated keyboard.
type field struct {
	comp     *config.Components
	engine   *inputfield.Engine
	bridge   *keyboard.Bridge
	platform *keyboard.SimulatedPlatform
	tagUser  *filter.TagUser
	changes  <-chan pubsub.Event[inputfield.Change]
	cancel   context.CancelFunc
}

func newField(cfg config.Config, measurer *inputfield.TerminalMeasurer, clock func() time.Time, extra []inputfield.Option) (*field, error) {
	platform := keyboard.NewSimulatedPlatform()
	bridge := keyboard.NewBridge(platform, keyboard.WithClock(clock))
	platform.Attach(bridge)

	opts := append([]inputfield.Option{
		inputfield.WithMeasurer(measurer),
		inputfield.WithKeyboard(bridge),
	}, extra...)
	engine, comp, err := cfg.NewEngine(clock, opts...)
	if err != nil {
		bridge.Close()
		return nil, fmt.Errorf("building input field: %w", err)
	}

	f := &field{comp: comp, engine: engine, bridge: bridge, platform: platform}
	for _, lf := range comp.Live.Filters() {
		if tu, ok := lf.(*filter.TagUser); ok {
			f.tagUser = tu
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	f.changes = engine.Subscribe(ctx)

	if err := f.show(); err != nil {
		f.close()
		return nil, err
	}
	return f, nil
}

// show raises the keyboard, which starts an edit session on the next tick.
func (f *field) show() error {
	if err := f.bridge.Show(f.engine.Selection(), f.comp.Keyboard); err != nil {
		return fmt.Errorf("showing keyboard: %w", err)
	}
	return nil
}

// tick hands queued keyboard events to the engine and mirrors the result
// back to the keyboard.
func (f *field) tick(now time.Time) int {
	n := f.bridge.Tick(now, f.engine.HandleKeyboardEvent)
	f.bridge.UpdateTextEdit(f.engine.Selection())
	return n
}

func (f *field) close() {
	f.cancel()
	f.bridge.Close()
	f.engine.Close()
}
