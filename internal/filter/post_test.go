package filter

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/zjrosen/richinput/internal/log"
	"github.com/zjrosen/richinput/internal/richtext"
)

func TestDollarAmount(t *testing.T) {
	tests := []struct {
		name     string
		lang     language.Tag
		input    string
		expected string
		ok       bool
	}{
		{name: "grouped", input: "1234", expected: "$1,234", ok: true},
		{name: "millions", input: "1234567", expected: "$1,234,567", ok: true},
		{name: "small", input: "7", expected: "$7", ok: true},
		{name: "negative", input: "-5", expected: "$-5", ok: true},
		{name: "surrounding space", input: " 42 ", expected: "$42", ok: true},
		{name: "empty", input: "", expected: "", ok: false},
		{name: "letters", input: "abc", expected: "", ok: false},
		{name: "decimal", input: "1.5", expected: "", ok: false},
		{name: "too big", input: "99999999999999999999", expected: "", ok: false},
		{name: "dutch grouping", lang: language.Dutch, input: "1234", expected: "$1.234", ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, ok := NewDollarAmount(tt.lang).ProcessText(tt.input)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.expected, out)
		})
	}
}

func TestDollarDecimal(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{name: "point", input: "1.5", expected: "$1.50", ok: true},
		{name: "comma", input: "1,5", expected: "$1,50", ok: true},
		{name: "whole number", input: "3", expected: "$3.00", ok: true},
		{name: "no grouping", input: "1234.5", expected: "$1234.50", ok: true},
		{name: "both separators", input: "1,234.5", expected: "", ok: false},
		{name: "letters", input: "abc", expected: "", ok: false},
		{name: "not a number", input: "NaN", expected: "", ok: false},
		{name: "empty", input: "", expected: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, ok := NewDollarDecimal().ProcessText(tt.input)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.expected, out)
		})
	}
}

func TestDollarFilters_EmptyRejectedQuietly(t *testing.T) {
	var buf bytes.Buffer
	log.InitWriter(&buf)
	t.Cleanup(log.Reset)

	for _, f := range []PostFilter{NewDollarAmount(language.Und), NewDollarDecimal()} {
		out, ok := f.ProcessText("")
		require.False(t, ok)
		require.Empty(t, out)
	}
	require.NotContains(t, buf.String(), "[WARN]")

	_, ok := NewDollarAmount(language.Und).ProcessText("abc")
	require.False(t, ok)
	require.Contains(t, buf.String(), "[WARN] [filter] Not a valid whole number")
}

func TestPassword(t *testing.T) {
	out, ok := Password{}.ProcessText("héllo😀")
	require.True(t, ok)
	require.Equal(t, "******", out)
}

func TestRegistry(t *testing.T) {
	deps := Deps{Grammar: richtext.DefaultGrammar(), Emojis: newTestEmojis(), Bindings: newTestBindings(t)}

	for _, name := range LiveNames() {
		f, err := NewLive(name, deps)
		require.NoError(t, err, name)
		require.NotNil(t, f, name)
	}
	for _, name := range DecorationNames() {
		_, err := NewDecoration(name, deps)
		require.NoError(t, err, name)
	}
	for _, name := range PostNames() {
		_, err := NewPost(name, deps)
		require.NoError(t, err, name)
	}

	require.Equal(t, []string{"block_duplicate_character", "block_rich_text_tags", "bullet_point", "emoji_character_limit", "tag_user"}, LiveNames())
	require.Equal(t, []string{"credit_card", "date", "password_character"}, DecorationNames())
	require.Equal(t, []string{"dollar_amount", "dollar_decimal", "password"}, PostNames())

	f, err := NewLive("Bullet-Point", deps)
	require.NoError(t, err)
	require.IsType(t, BulletPoint{}, f)

	limit, err := NewLive(NameEmojiCharacterLimit, Deps{})
	require.NoError(t, err)
	require.Equal(t, DefaultEmojiCharacterLimit, limit.(*EmojiCharacterLimit).Limit)
	require.Nil(t, limit.(*EmojiCharacterLimit).Emojis)

	reveal, err := NewDecoration(NamePasswordCharacter, Deps{})
	require.NoError(t, err)
	require.Equal(t, time.Second, reveal.(*PasswordCharacter).Reveal)

	_, err = NewLive("spellcheck", deps)
	require.ErrorIs(t, err, ErrUnknownFilter)
	_, err = NewDecoration("phone", deps)
	require.ErrorIs(t, err, ErrUnknownFilter)
	_, err = NewPost("euro", deps)
	require.ErrorIs(t, err, ErrUnknownFilter)

	p, err := NewLivePipeline([]string{NameBulletPoint, NameTagUser}, deps)
	require.NoError(t, err)
	require.Equal(t, 2, p.Len())

	_, err = NewLivePipeline([]string{"a", NameBulletPoint, "b"}, deps)
	require.ErrorIs(t, err, ErrUnknownFilter)
	require.ErrorContains(t, err, `"a"`)
	require.ErrorContains(t, err, `"b"`)
}
