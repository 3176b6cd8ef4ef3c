package keys

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap_KeyAssignments(t *testing.T) {
	km := DefaultKeyMap()
	tests := []struct {
		name     string
		binding  key.Binding
		expected []string
	}{
		{name: "Bold uses ctrl+b", binding: km.Bold, expected: []string{"ctrl+b"}},
		{name: "Italic avoids ctrl+i which terminals send as tab", binding: km.Italic, expected: []string{"alt+i"}},
		{name: "Underline uses ctrl+u", binding: km.Underline, expected: []string{"ctrl+u"}},
		{name: "Submit uses enter", binding: km.Submit, expected: []string{"enter"}},
		{name: "Cancel uses esc", binding: km.Cancel, expected: []string{"esc"}},
		{name: "Quit uses ctrl+c only", binding: km.Quit, expected: []string{"ctrl+c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.binding.Keys())
		})
	}
}

// Printable keys must reach the field as text.
func TestDefaultKeyMap_NoPrintableKeys(t *testing.T) {
	for _, group := range DefaultKeyMap().FullHelp() {
		for _, b := range group {
			for _, k := range b.Keys() {
				require.Greater(t, len([]rune(k)), 1, "binding %q would swallow typed text", b.Help().Desc)
			}
		}
	}
}

func TestDefaultKeyMap_NoConflicts(t *testing.T) {
	owner := make(map[string]string)
	for _, group := range DefaultKeyMap().FullHelp() {
		for _, b := range group {
			for _, k := range b.Keys() {
				prev, taken := owner[k]
				require.False(t, taken, "key %q bound to both %q and %q", k, prev, b.Help().Desc)
				owner[k] = b.Help().Desc
			}
		}
	}
}

func TestHelp(t *testing.T) {
	km := DefaultKeyMap()
	require.Len(t, km.ShortHelp(), 5)
	for _, group := range km.FullHelp() {
		for _, b := range group {
			require.NotEmpty(t, b.Help().Key)
			require.NotEmpty(t, b.Help().Desc)
		}
	}

	picker := DefaultPickerKeyMap()
	require.Equal(t, [][]key.Binding{picker.ShortHelp()}, picker.FullHelp())
	require.Contains(t, picker.Accept.Keys(), "tab")
}
