package richtext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRichTextRegion_Rebuild(t *testing.T) {
	r := NewRichTextRegion("Hi", []string{"<b>", "<i>"}, []string{"</b>", "</i>"})

	require.Equal(t, "<b><i>Hi</i></b>", r.Rebuild())
	require.Equal(t, 6, r.StartRichTextContentPosition)
	require.Equal(t, 8, r.EndRichTextContentPosition)
	require.Equal(t, 16, r.RichLen())
}

func TestRichTextRegion_SymbolRebuild(t *testing.T) {
	r := NewRichTextRegion("😀", []string{"<b>"}, []string{"</b>"})
	r.IsSymbol = true
	r.SymbolText = "<sprite name=grinning>"

	require.Equal(t, "<b><sprite name=grinning></b>", r.Rebuild())
	require.Equal(t, 1, r.Len())
	require.Equal(t, 3, r.StartRichTextContentPosition)
	require.Equal(t, 25, r.EndRichTextContentPosition)
}

func TestRichTextRegion_TagEditing(t *testing.T) {
	r := NewRichTextRegion("x", nil, nil)

	r.AddTag("<color=red>", "</color>")
	r.AddTag("<b>", "</b>")
	require.Equal(t, "<color=red><b>x</b></color>", r.Rebuild())
	require.True(t, r.HasStartTag("<b>"))
	require.Equal(t, 0, r.FindTag("</color>"))

	r.UpdateTag("<color=blue>", "</color>")
	require.Equal(t, "<color=blue><b>x</b></color>", r.Rebuild())

	r.RemoveTag("</color>")
	require.Equal(t, "<b>x</b>", r.Rebuild())
	require.Equal(t, -1, r.FindTag("</color>"))
}

func TestRichTextRegion_NotModifiable(t *testing.T) {
	r := NewRichTextRegion("x", []string{"<b>"}, []string{"</b>"})
	r.IsModifiable = false

	r.AddTag("<i>", "</i>")
	r.RemoveTag("</b>")
	r.UpdateTag("<u>", "</b>")
	require.Equal(t, "<b>x</b>", r.Rebuild())
}

func TestRichTextRegion_Split(t *testing.T) {
	r := NewRichTextRegion("hello", []string{"<b>"}, []string{"</b>"})

	left, right := r.Split(2)
	require.Equal(t, "he", left.Text())
	require.Equal(t, "llo", right.Text())
	require.Equal(t, "<b>he</b>", left.Rebuild())
	require.Equal(t, "<b>llo</b>", right.Rebuild())

	left.AddTag("<i>", "</i>")
	require.Len(t, right.StartTags, 1, "halves do not share tag slices")
}

func TestNewRichTextRegion_CopiesTags(t *testing.T) {
	start := []string{"<b>"}
	end := []string{"</b>"}
	r := NewRichTextRegion("x", start, end)
	start[0] = "<i>"
	require.Equal(t, "<b>", r.StartTags[0])
}

func TestTextRegion_PositionWithinRegion(t *testing.T) {
	r := NewTextRegion("abc")

	tests := []struct {
		name    string
		pos     int
		within  bool
		atStart bool
	}{
		{name: "before", pos: 9},
		{name: "first", pos: 10, within: true, atStart: true},
		{name: "last", pos: 12, within: true},
		{name: "after", pos: 13},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			within, atStart := r.PositionWithinRegion(10, tt.pos)
			require.Equal(t, tt.within, within)
			require.Equal(t, tt.atStart, atStart)
		})
	}
}

func TestTextRegion_SplitAt(t *testing.T) {
	r := NewTextRegion("Hi there")
	r.RichTextRegions = []*RichTextRegion{
		NewRichTextRegion("Hi", []string{"<b>"}, []string{"</b>"}),
		NewRichTextRegion(" there", nil, nil),
	}

	left, right, ok := r.splitAt(0, 5)
	require.True(t, ok)
	require.Equal(t, "Hi th", left.Content())
	require.Equal(t, "ere", right.Content())
	require.Len(t, left.RichTextRegions, 2)
	require.Len(t, right.RichTextRegions, 1)

	var b1, b2 strings.Builder
	left.buildRichText(&b1)
	right.buildRichText(&b2)
	require.Equal(t, "<b>Hi</b> th", b1.String())
	require.Equal(t, "ere", b2.String())

	_, _, ok = r.splitAt(0, 8)
	require.False(t, ok)
}

func TestTextRegion_TryDeleteSymbol(t *testing.T) {
	r := NewTextRegion("❤️")
	r.IsSymbol = true
	run := NewRichTextRegion("❤️", nil, nil)
	run.IsSymbol = true
	run.SymbolText = "<sprite name=heart>"
	r.RichTextRegions = []*RichTextRegion{run}

	consumed, ok := r.tryDelete(4, 5, 1)
	require.True(t, ok)
	require.Equal(t, 1, consumed)
	require.Equal(t, 0, r.Len(), "deleting any part removes the whole symbol")
	require.Empty(t, r.RichTextRegions)
}
