package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/richinput/internal/flags"
	"github.com/zjrosen/richinput/internal/symbol"
	"github.com/zjrosen/richinput/internal/validator"
)

func loadYAML(t *testing.T, content string) Config {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(content)))
	cfg, err := Load(v)
	require.NoError(t, err)
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, Validate(cfg))
	require.True(t, cfg.RichText.Enabled)
	require.Equal(t, "none", cfg.Input.Validation)
	require.Equal(t, "single_line", cfg.Input.LineType)
	require.Equal(t, "1s", cfg.Filters.PasswordReveal)
	require.True(t, cfg.Flags[flags.FlagDiffRepair])
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		key    string
	}{
		{name: "unknown tag", modify: func(c *Config) { c.RichText.Tags = []string{"b", "blink"} }, key: "rich_text.tags"},
		{name: "unknown validation", modify: func(c *Config) { c.Input.Validation = "roman" }, key: "input.validation"},
		{name: "unknown line type", modify: func(c *Config) { c.Input.LineType = "zigzag" }, key: "input.line_type"},
		{name: "unknown keyboard type", modify: func(c *Config) { c.Input.KeyboardType = "piano" }, key: "input.keyboard_type"},
		{name: "unknown return key", modify: func(c *Config) { c.Input.ReturnKey = "launch" }, key: "input.return_key"},
		{name: "negative limit", modify: func(c *Config) { c.Input.CharacterLimit = -1 }, key: "input.character_limit"},
		{name: "unknown live filter", modify: func(c *Config) { c.Filters.Live = []string{"bullet_point", "shout"} }, key: "filters.live"},
		{name: "unknown decoration", modify: func(c *Config) { c.Filters.LiveDecoration = "sparkle" }, key: "filters.live_decoration"},
		{name: "unknown post filter", modify: func(c *Config) { c.Filters.Post = "euro" }, key: "filters.post"},
		{name: "bad reveal", modify: func(c *Config) { c.Filters.PasswordReveal = "soon" }, key: "filters.password_reveal"},
		{name: "bad language", modify: func(c *Config) { c.Filters.Language = "not a tag!" }, key: "filters.language"},
		{name: "sample rate", modify: func(c *Config) { c.Tracing.SampleRate = 1.5 }, key: "tracing.sample_rate"},
		{name: "exporter", modify: func(c *Config) { c.Tracing.Exporter = "carrier_pigeon" }, key: "tracing.exporter"},
		{
			name: "duplicate binding",
			modify: func(c *Config) {
				c.Bindings = []symbol.BindingData{bindingNamed("alice"), bindingNamed("alice")}
			},
			key: "duplicate name",
		},
		{
			name: "custom validator action",
			modify: func(c *Config) {
				c.Input.Validation = "custom"
				c.Input.CustomValidator = &validator.CharacterValidator{OtherCharacterAction: validator.CharacterAction(42)}
			},
			key: "input.custom_validator",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(&cfg)
			err := Validate(cfg)
			require.ErrorIs(t, err, ErrInvalidConfig)
			require.ErrorContains(t, err, tt.key)
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Defaults()
	cfg.Input.Validation = "roman"
	cfg.Filters.Post = "euro"

	err := Validate(cfg)
	require.ErrorIs(t, err, ErrInvalidConfig)
	require.ErrorContains(t, err, "input.validation")
	require.ErrorContains(t, err, "filters.post")
}

func TestLoad(t *testing.T) {
	cfg := loadYAML(t, `
input:
  validation: custom
  character_limit: 12
  custom_validator:
    rules:
      - conditions:
          - operator: value_in_string
            string_value: "aeiou"
        action: to_uppercase
    other_character_action: allow
filters:
  live: [bullet_point, tag_user]
flags:
  diff-repair: false
`)

	require.Equal(t, "custom", cfg.Input.Validation)
	require.Equal(t, 12, cfg.Input.CharacterLimit)
	require.Equal(t, []string{"bullet_point", "tag_user"}, cfg.Filters.Live)
	require.False(t, cfg.Flags[flags.FlagDiffRepair])

	// Keys missing from the file keep their defaults.
	require.True(t, cfg.RichText.Enabled)
	require.Equal(t, "en-US", cfg.Filters.Language)
	require.Equal(t, "single_line", cfg.Input.LineType)

	require.NotNil(t, cfg.Input.CustomValidator)
	rule := cfg.Input.CustomValidator.Rules[0]
	require.Equal(t, validator.ValueInString, rule.Conditions[0].Operator)
	require.Equal(t, validator.ToUppercase, rule.Action)
	require.NoError(t, Validate(cfg))
}

func TestLoad_UnknownOperator(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
input:
  custom_validator:
    rules:
      - conditions:
          - operator: value_is_shiny
`)))
	_, err := Load(v)
	require.Error(t, err)
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".richinput", "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	cfg := loadYAML(t, string(data))

	d := Defaults()
	require.Equal(t, d.RichText, cfg.RichText)
	require.Equal(t, d.Input, cfg.Input)
	require.Equal(t, d.Filters, cfg.Filters)
	require.NoError(t, Validate(cfg))
}

func TestSave_PreservesComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	cfg := Defaults()
	cfg.Input.CharacterLimit = 42
	cfg.Filters.Live = []string{"tag_user"}
	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "# Markup support")

	loaded := loadYAML(t, string(data))
	require.Equal(t, 42, loaded.Input.CharacterLimit)
	require.Equal(t, []string{"tag_user"}, loaded.Filters.Live)
}

func TestSave_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Defaults()
	cfg.Bindings = append(cfg.Bindings, bindingNamed("bob"))
	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	loaded := loadYAML(t, string(data))
	require.Len(t, loaded.Bindings, 1)
	require.Equal(t, "bob", loaded.Bindings[0].Name)
	require.Equal(t, "<link=user:bob>@bob</link>", loaded.Bindings[0].RichText)
}
