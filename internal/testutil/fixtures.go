// Package testutil provides fixtures for tests that drive input fields.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/richinput/internal/symbol"
)

// StandardEmojis is a small emoji set including a modifier sequence and a
// variation selector base.
func StandardEmojis() []symbol.EmojiData {
	return []symbol.EmojiData{
		{Name: "grinning", Text: "😀", RichText: symbol.SpriteRichText("grinning")},
		{Name: "thumbs_up_medium", Text: "👍🏽", RichText: symbol.SpriteRichText("thumbs_up_medium")},
		{Name: "heart", Text: "❤", RichText: symbol.SpriteRichText("heart")},
	}
}

// StandardBindings are user mentions for alice, albert and bob.
func StandardBindings() []symbol.BindingData {
	return []symbol.BindingData{
		Mention("alice"),
		Mention("albert"),
		Mention("bob"),
	}
}

// Mention returns the binding for a user mention.
func Mention(name string) symbol.BindingData {
	return symbol.BindingData{Name: name, RichText: "<link=user:" + name + ">@" + name + "</link>"}
}

// Emojis returns a registry holding StandardEmojis.
func Emojis() *symbol.EmojiRegistry {
	return symbol.NewEmojiRegistry(StandardEmojis()...)
}

// Bindings returns a registry holding bindings, or StandardBindings when
// none are given.
func Bindings(t testing.TB, bindings ...symbol.BindingData) *symbol.BindingRegistry {
	t.Helper()
	if len(bindings) == 0 {
		bindings = StandardBindings()
	}
	r := symbol.NewBindingRegistry()
	require.NoError(t, r.Initialize(bindings))
	return r
}
