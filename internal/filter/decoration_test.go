package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCreditCard_ProcessText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{name: "empty", input: "", expected: "", ok: true},
		{name: "one group", input: "1234", expected: "1234", ok: true},
		{name: "second group starts", input: "12345", expected: "1234 5", ok: true},
		{name: "full number", input: "1234567890123456", expected: "1234 5678 9012 3456", ok: true},
		{name: "at most three separators", input: "1234567890123456789", expected: "1234 5678 9012 3456789", ok: true},
		{name: "non digit", input: "12a4", expected: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, ok := NewCreditCard().ProcessText(tt.input, 0)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.expected, out)
		})
	}
}

func TestCreditCard_Carets(t *testing.T) {
	f := NewCreditCard()
	text := "12345678"
	processed, ok := f.ProcessText(text, 0)
	require.True(t, ok)
	require.Equal(t, "1234 5678", processed)

	tests := []struct {
		name      string
		caret     int
		processed int
	}{
		{name: "start", caret: 0, processed: 0},
		{name: "inside first group", caret: 2, processed: 2},
		{name: "group boundary jumps the separator", caret: 4, processed: 5},
		{name: "inside second group", caret: 5, processed: 6},
		{name: "end", caret: 8, processed: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.processed, f.DetermineProcessedCaret(text, tt.caret, processed))
			require.Equal(t, tt.caret, f.DetermineCaret(text, processed, tt.processed))
		})
	}

	require.Equal(t, 4, f.DetermineCaret(text, processed, 4))
}

func TestDate(t *testing.T) {
	f := NewDate()

	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{name: "day", input: "12", expected: "12", ok: true},
		{name: "month starts", input: "122", expected: "12/2", ok: true},
		{name: "full date", input: "12252024", expected: "12/25/2024", ok: true},
		{name: "too many digits", input: "122520245", expected: "", ok: false},
		{name: "separator typed", input: "12/", expected: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, ok := f.ProcessText(tt.input, 0)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.expected, out)
		})
	}

	require.Equal(t, 2, f.DetermineCaret("12252024", "12/25/2024", 3))
	require.Equal(t, 3, f.DetermineProcessedCaret("12252024", 2, "12/25/2024"))
	_, changed := f.UpdateFilter(time.Now(), true)
	require.False(t, changed)
}

func TestPasswordCharacter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f := NewPasswordCharacter(time.Second, func() time.Time { return now })

	out, ok := f.ProcessText("a", 1)
	require.True(t, ok)
	require.Equal(t, "a", out)
	require.True(t, f.Revealing())

	out, _ = f.ProcessText("ab", 2)
	require.Equal(t, "*b", out)

	_, changed := f.UpdateFilter(now.Add(500*time.Millisecond), false)
	require.False(t, changed)

	out, changed = f.UpdateFilter(now.Add(1500*time.Millisecond), false)
	require.True(t, changed)
	require.Equal(t, "**", out)
	require.False(t, f.Revealing())

	_, changed = f.UpdateFilter(now.Add(3*time.Second), false)
	require.False(t, changed)

	// Deleting never reveals.
	out, _ = f.ProcessText("a", 1)
	require.Equal(t, "*", out)
	require.False(t, f.Revealing())

	// Inserting in the middle reveals the rune before the caret.
	out, _ = f.ProcessText("aéb", 2)
	require.Equal(t, "*é*", out)

	out, changed = f.UpdateFilter(now, true)
	require.True(t, changed)
	require.Equal(t, "***", out)

	out, _ = f.ProcessText("", 0)
	require.Empty(t, out)
	require.Equal(t, 3, f.DetermineProcessedCaret("abc", 3, "***"))
	require.Equal(t, 1, f.DetermineCaret("abc", "***", 1))
}
