package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/richinput/internal/keyboard"
	"github.com/zjrosen/richinput/internal/symbol"
	"github.com/zjrosen/richinput/internal/validator"
)

func bindingNamed(name string) symbol.BindingData {
	return symbol.BindingData{Name: name, RichText: "<link=user:" + name + ">@" + name + "</link>"}
}

func TestBuild_Defaults(t *testing.T) {
	comp, err := Defaults().Build(nil)
	require.NoError(t, err)

	require.Equal(t, len(symbol.DefaultEmojis()), comp.Emojis.Len())
	require.NotNil(t, comp.Bindings)
	require.Zero(t, comp.Bindings.Len())
	require.Equal(t, validator.None, comp.Validator.Validation)
	require.Zero(t, comp.Live.Len())
	require.Nil(t, comp.Decoration)
	require.Nil(t, comp.Post)
	require.True(t, comp.Keyboard.RichTextEditing)
	require.True(t, comp.Keyboard.EmojisAllowed)
}

func TestBuild_Invalid(t *testing.T) {
	cfg := Defaults()
	cfg.Filters.Live = []string{"shout"}
	_, err := cfg.Build(nil)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestBuild_SymbolTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "symbols.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
emojis:
  - name: wave
    text: "👋"
bindings:
  - name: alice
    rich_text: "<link=user:alice>@alice</link>"
`), 0o600))

	cfg := Defaults()
	cfg.Emoji.File = path
	cfg.Emoji.Entries = []symbol.EmojiData{{Name: "fire", Text: "🔥"}}
	cfg.Bindings = []symbol.BindingData{bindingNamed("bob")}

	emojis, bindings, err := cfg.Symbols()
	require.NoError(t, err)
	require.Equal(t, 2, emojis.Len())
	_, ok := emojis.TryGetEmoji("👋")
	require.True(t, ok)
	require.Equal(t, 2, bindings.Len())
	alice, ok := bindings.TryGetByName("alice")
	require.True(t, ok)
	require.Equal(t, symbol.StartCodePoint, alice.CodePoint)
}

func TestBuild_SymbolsNotAllowed(t *testing.T) {
	cfg := Defaults()
	cfg.RichText.EmojisAllowed = false
	cfg.RichText.BindingsAllowed = false

	emojis, bindings, err := cfg.Symbols()
	require.NoError(t, err)
	require.Nil(t, emojis)
	require.Nil(t, bindings)
}

func TestBuild_MissingSymbolTable(t *testing.T) {
	cfg := Defaults()
	cfg.Emoji.File = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := cfg.Build(nil)
	require.ErrorContains(t, err, "emoji.file")
}

func TestKeyboardConfiguration(t *testing.T) {
	cfg := Defaults()
	cfg.Input.Validation = "custom"
	cfg.Input.LineType = "multi_line_newline"
	cfg.Input.KeyboardType = "number_pad"
	cfg.Input.ReturnKey = "send"
	cfg.Input.CharacterLimit = 8
	cfg.Input.CustomValidator = &validator.CharacterValidator{
		Rules: []validator.CharacterRule{{
			Conditions: []validator.CharacterCondition{{Operator: validator.ValueInString, StringValue: "x"}},
			Action:     validator.Block,
		}},
	}

	kc, err := cfg.KeyboardConfiguration()
	require.NoError(t, err)
	require.Equal(t, keyboard.KeyboardNumberPad, kc.KeyboardType)
	require.Equal(t, keyboard.ReturnSend, kc.ReturnKeyType)
	require.Equal(t, validator.Custom, kc.CharacterValidation)
	require.Equal(t, validator.MultiLineNewline, kc.LineType)
	require.Equal(t, 8, kc.CharacterLimit)
	require.NotEmpty(t, kc.CharacterValidatorJSON)

	decoded, err := kc.DecodeValidator(t.Context())
	require.NoError(t, err)
	require.Equal(t, cfg.Input.CustomValidator.Rules, decoded.Rules)
}

func TestNewEngine(t *testing.T) {
	cfg := Defaults()
	cfg.Input.Validation = "integer"
	cfg.Input.CharacterLimit = 3

	e, comp, err := cfg.NewEngine(nil)
	require.NoError(t, err)
	t.Cleanup(e.Close)

	for _, s := range []string{"1", "a", "2", "3", "4"} {
		e.Insert(s)
	}
	require.Equal(t, "123", e.Text())
	require.True(t, e.RichTextEnabled())
	require.Equal(t, validator.Integer, comp.Validator.Validation)
}

func TestNewEngine_PlainText(t *testing.T) {
	cfg := Defaults()
	cfg.RichText.Enabled = false
	cfg.Filters.Post = "dollar_decimal"

	e, comp, err := cfg.NewEngine(nil)
	require.NoError(t, err)
	t.Cleanup(e.Close)

	require.False(t, e.RichTextEnabled())
	require.Nil(t, comp.Bindings)
	e.Insert("<b>")
	require.Equal(t, "<b>", e.Text())
	require.NotNil(t, comp.Post)
}
