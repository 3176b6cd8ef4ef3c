package richtext

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewGrammar_UnknownTag(t *testing.T) {
	_, err := NewGrammar("b", "blink")
	require.ErrorIs(t, err, ErrUnknownTag)
	require.Contains(t, err.Error(), "blink")
}

func TestGrammar_Validity(t *testing.T) {
	g, err := NewGrammar("b", "color", "sprite")
	require.NoError(t, err)

	tests := []struct {
		name   string
		tag    string
		start  bool
		end    bool
		single bool
	}{
		{name: "basic start", tag: "<b>", start: true},
		{name: "basic end", tag: "</b>", end: true},
		{name: "parameter start", tag: "<color=#ff0000>", start: true},
		{name: "parameter end", tag: "</color>", end: true},
		{name: "sprite", tag: "<sprite name=smile>", single: true},
		{name: "not in grammar", tag: "<i>"},
		{name: "basic tag with junk", tag: "<b >"},
		{name: "not a tag", tag: "< 2 >"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.start, g.IsValidStartTag(tt.tag))
			require.Equal(t, tt.end, g.IsValidEndTag(tt.tag))
			require.Equal(t, tt.single, g.IsValidSingleTag(tt.tag))
			require.Equal(t, tt.start || tt.end || tt.single, g.IsValidTag(tt.tag))
		})
	}
}

func TestGrammar_EndTagFor(t *testing.T) {
	g := DefaultGrammar()

	end, ok := g.EndTagFor("<size=12>")
	require.True(t, ok)
	require.Equal(t, "</size>", end)

	_, ok = g.EndTagFor("<sprite name=x>")
	require.False(t, ok, "single tags have no end tag")
}

func TestGrammar_FindTag(t *testing.T) {
	g := DefaultGrammar()
	text := []rune("1 < 2 and <b>bold</b>")

	start, length, ok := g.FindTag(text, 0)
	require.True(t, ok)
	require.Equal(t, 10, start)
	require.Equal(t, 3, length)

	start, _, ok = g.FindTag(text, 13)
	require.True(t, ok)
	require.Equal(t, 17, start)

	_, _, ok = g.FindTag([]rune("no tags <here"), 0)
	require.False(t, ok)
}

func TestTagInfo_Start(t *testing.T) {
	color, ok := LookupTag("color")
	require.True(t, ok)
	require.Equal(t, SingleParameterTagPair, color.Type)
	require.Equal(t, "<color=red>", color.Start("red"))
	require.Equal(t, "<color=", color.StartTagPrefix())

	bold, ok := LookupTag("b")
	require.True(t, ok)
	require.Equal(t, "<b>", bold.Start("ignored"))
	require.True(t, bold.IsPair())
}

func TestTagNames_Sorted(t *testing.T) {
	names := TagNames()
	require.IsIncreasing(t, names)
	require.Contains(t, names, "sprite")
	require.Len(t, DefaultGrammar().Tags(), len(names))
}
