package keyboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/zjrosen/richinput/internal/textedit"
	"github.com/zjrosen/richinput/internal/validator"
)

// SimulatedHeight is the height a SimulatedPlatform reports when shown.
const SimulatedHeight = 10

var errNotAttached = errors.New("simulated keyboard is not attached to a bridge")

// SimulatedPlatform is an in-process keyboard. It confirms show and hide
// requests immediately and validates typed text with the configuration's
// validator, the way a platform keyboard would.
type SimulatedPlatform struct {
	mu        sync.Mutex
	bridge    *Bridge
	frame     textedit.Frame
	cfg       Configuration
	validator validator.TextValidator
	visible   bool
}

// NewSimulatedPlatform creates a simulated keyboard. Call Attach before use.
func NewSimulatedPlatform() *SimulatedPlatform {
	return &SimulatedPlatform{}
}

// Attach connects the keyboard to the bridge it reports to.
func (p *SimulatedPlatform) Attach(b *Bridge) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bridge = b
}

func (p *SimulatedPlatform) attached() (*Bridge, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bridge == nil {
		return nil, errNotAttached
	}
	return p.bridge, nil
}

// Show implements Platform.
func (p *SimulatedPlatform) Show(frame textedit.Frame, cfg Configuration) error {
	b, err := p.attached()
	if err != nil {
		return err
	}
	v, err := cfg.TextValidator(context.Background())
	if err != nil {
		return fmt.Errorf("simulated keyboard: %w", err)
	}

	p.mu.Lock()
	p.frame = frame.Clamp()
	p.cfg = cfg
	p.validator = v
	p.visible = true
	p.mu.Unlock()

	b.OnShow()
	b.OnHeightChanged(SimulatedHeight)
	return nil
}

// Hide implements Platform.
func (p *SimulatedPlatform) Hide() error {
	b, err := p.attached()
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.visible = false
	p.mu.Unlock()

	b.OnHide()
	b.OnHeightChanged(0)
	return nil
}

// UpdateTextEdit implements Platform.
func (p *SimulatedPlatform) UpdateTextEdit(frame textedit.Frame) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frame = frame.Clamp()
}

// Visible reports whether the keyboard is shown.
func (p *SimulatedPlatform) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

// Frame returns the keyboard's copy of the text and selection.
func (p *SimulatedPlatform) Frame() textedit.Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frame
}

// Configuration returns the configuration of the last Show.
func (p *SimulatedPlatform) Configuration() Configuration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg
}

// Type replaces the selection with text, validated, and reports the edit.
func (p *SimulatedPlatform) Type(text string) error {
	b, err := p.attached()
	if err != nil {
		return err
	}

	p.mu.Lock()
	f := p.frame.Normalized()
	remaining := textedit.Replace(f.Text, f.SelectionStart, f.SelectionEnd, "")
	res := p.validator.Validate(remaining, text, f.SelectionStart, f.SelectionStart)
	p.frame = textedit.NewFrame(res.Text, res.Caret)
	out := p.frame
	p.mu.Unlock()

	b.OnTextEditUpdate(out)
	return nil
}

// Backspace deletes the selection or the rune before the caret. On an empty
// field it reports the backspace key instead.
func (p *SimulatedPlatform) Backspace() error {
	b, err := p.attached()
	if err != nil {
		return err
	}

	p.mu.Lock()
	f := p.frame.Normalized()
	switch {
	case f.HasSelection():
		p.frame = textedit.NewFrame(textedit.Replace(f.Text, f.SelectionStart, f.SelectionEnd, ""), f.SelectionStart)
	case f.SelectionStart > 0:
		p.frame = textedit.NewFrame(textedit.Remove(f.Text, f.SelectionStart-1, 1), f.SelectionStart-1)
	default:
		p.mu.Unlock()
		b.OnSpecialKeyPressed(KeyBackspace)
		return nil
	}
	out := p.frame
	p.mu.Unlock()

	b.OnTextEditUpdate(out)
	return nil
}

// Done presses the done key.
func (p *SimulatedPlatform) Done() error {
	b, err := p.attached()
	if err != nil {
		return err
	}
	b.OnDone()
	return nil
}
