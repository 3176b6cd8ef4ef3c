package inputfield

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTerminalMeasurer(t *testing.T) {
	tests := []struct {
		name  string
		width int
		text  string
		caret int
		want  Position
		lines int
	}{
		{name: "empty", width: 4, text: "", caret: 0, want: Position{}, lines: 1},
		{name: "no wrap", width: 0, text: "abcdef", caret: 6, want: Position{Column: 6}, lines: 1},
		{name: "wraps at width", width: 4, text: "abcdef", caret: 6, want: Position{Line: 1, Column: 2}, lines: 2},
		{name: "newline", width: 10, text: "ab\ncd", caret: 4, want: Position{Line: 1, Column: 1}, lines: 2},
		{name: "wide rune wraps whole", width: 3, text: "世界", caret: 1, want: Position{Line: 1}, lines: 2},
		{name: "caret before wrap", width: 4, text: "abcdef", caret: 2, want: Position{Column: 2}, lines: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := TerminalMeasurer{Width: tt.width}
			require.Equal(t, tt.want, m.Measure(tt.text, tt.caret))
			require.Equal(t, tt.lines, m.LineCount(tt.text))
		})
	}
}
