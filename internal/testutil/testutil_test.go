package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/richinput/internal/textedit"
)

func TestFrame(t *testing.T) {
	tests := []struct {
		name   string
		marked string
		want   textedit.Frame
	}{
		{name: "caret", marked: "he|llo", want: textedit.NewFrame("hello", 2)},
		{name: "no marks", marked: "hello", want: textedit.NewFrame("hello", 5)},
		{name: "forward selection", marked: "h[el]lo", want: textedit.Frame{Text: "hello", SelectionStart: 1, SelectionEnd: 3}},
		{name: "backward selection", marked: "h]el[lo", want: textedit.Frame{Text: "hello", SelectionStart: 3, SelectionEnd: 1}},
		{name: "runes", marked: "😀|é", want: textedit.NewFrame("😀é", 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Frame(tt.marked)
			require.Equal(t, tt.want, got)
			if tt.marked != "hello" {
				require.Equal(t, tt.marked, Mark(got))
			}
		})
	}
}

func TestClock(t *testing.T) {
	c := NewClock()
	start := c.Now()
	c.Advance(1500 * time.Millisecond)
	require.Equal(t, 1500*time.Millisecond, c.Now().Sub(start))
}

func TestBindings(t *testing.T) {
	r := Bindings(t)
	require.Equal(t, 3, r.Len())
	alice, ok := r.TryGetByName("alice")
	require.True(t, ok)
	require.Equal(t, "<link=user:alice>@alice</link>", alice.RichText)
}

func TestFieldBuilder(t *testing.T) {
	e := NewFieldBuilder(t).WithRichText().WithStandardSymbols().Build()
	require.True(t, e.RichTextEnabled())

	e.Insert("hi 😀")
	require.Equal(t, "hi 😀", e.Text())
	require.Equal(t, "hi <sprite name=grinning>", e.RichText())
}
