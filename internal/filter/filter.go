// Package filter holds the text filters an input field runs around an edit.
//
// Live filters see every edit frame before it is applied and may rewrite or
// reject it. Decoration filters turn the current text into display text
// without touching the stored value. Post filters run once when editing ends.
package filter

import (
	"time"

	"github.com/zjrosen/richinput/internal/textedit"
)

// LiveFilter inspects an edit and returns the frame to apply.
// Returning last rejects the edit.
type LiveFilter interface {
	ProcessTextEditUpdate(frame, last textedit.Frame) textedit.Frame
}

// RichTextObserver is implemented by live filters that also want to see
// rich text selection changes.
type RichTextObserver interface {
	OnRichTextEditUpdate(frame, last textedit.Frame)
}

// DecorationFilter produces the text shown while editing.
type DecorationFilter interface {
	// ProcessText returns the display text for text. It returns false when
	// text cannot be decorated and should be shown as is.
	ProcessText(text string, caret int) (string, bool)
	// DetermineProcessedCaret maps a caret in text to the display text.
	DetermineProcessedCaret(text string, caret int, processed string) int
	// DetermineCaret maps a caret in the display text back to text.
	DetermineCaret(text, processed string, processedCaret int) int
	// UpdateFilter is called every tick. It returns new display text when a
	// timed change happened. final forces pending changes to settle.
	UpdateFilter(now time.Time, final bool) (string, bool)
}

// PostFilter formats the text once editing ends. It returns false when the
// text is not in a form it can format.
type PostFilter interface {
	ProcessText(text string) (string, bool)
}

// Pipeline runs live filters in order, each seeing the previous one's output.
type Pipeline struct {
	filters []LiveFilter
}

// NewPipeline creates a pipeline. Nil filters are skipped.
func NewPipeline(filters ...LiveFilter) *Pipeline {
	p := &Pipeline{}
	for _, f := range filters {
		if f != nil {
			p.filters = append(p.filters, f)
		}
	}
	return p
}

// Len returns the number of filters.
func (p *Pipeline) Len() int {
	if p == nil {
		return 0
	}
	return len(p.filters)
}

// Filters returns the filters in run order.
func (p *Pipeline) Filters() []LiveFilter {
	if p == nil {
		return nil
	}
	return append([]LiveFilter(nil), p.filters...)
}

// ProcessTextEditUpdate implements LiveFilter.
func (p *Pipeline) ProcessTextEditUpdate(frame, last textedit.Frame) textedit.Frame {
	if p == nil {
		return frame
	}
	for _, f := range p.filters {
		frame = f.ProcessTextEditUpdate(frame, last)
	}
	return frame
}

// OnRichTextEditUpdate forwards to every filter that observes rich text.
func (p *Pipeline) OnRichTextEditUpdate(frame, last textedit.Frame) {
	if p == nil {
		return
	}
	for _, f := range p.filters {
		if o, ok := f.(RichTextObserver); ok {
			o.OnRichTextEditUpdate(frame, last)
		}
	}
}

// addsText reports whether the step from last to frame inserted text,
// either typed at the caret or replacing a selection.
func addsText(frame, last textedit.Frame) bool {
	if !frame.HasSelection() && last.HasSelection() {
		removed := last.SelectionLen()
		return frame.Len()-(last.Len()-removed) > 0
	}
	return frame.SelectionStart > last.SelectionStart
}
