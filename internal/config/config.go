// Package config provides configuration types, defaults and persistence for
// richinput.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/zjrosen/richinput/internal/filter"
	"github.com/zjrosen/richinput/internal/flags"
	"github.com/zjrosen/richinput/internal/keyboard"
	"github.com/zjrosen/richinput/internal/log"
	"github.com/zjrosen/richinput/internal/richtext"
	"github.com/zjrosen/richinput/internal/symbol"
	"github.com/zjrosen/richinput/internal/tracing"
	"github.com/zjrosen/richinput/internal/validator"
)

// ErrInvalidConfig wraps every problem Validate reports.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all configuration options for richinput.
type Config struct {
	RichText RichTextConfig       `mapstructure:"rich_text" yaml:"rich_text"`
	Emoji    EmojiConfig          `mapstructure:"emoji" yaml:"emoji"`
	Bindings []symbol.BindingData `mapstructure:"bindings" yaml:"bindings"`
	Input    InputConfig          `mapstructure:"input" yaml:"input"`
	Filters  FiltersConfig        `mapstructure:"filters" yaml:"filters"`
	Tracing  tracing.Config       `mapstructure:"tracing" yaml:"tracing"`
	Flags    map[string]bool      `mapstructure:"flags" yaml:"flags"`
	Debug    bool                 `mapstructure:"debug" yaml:"debug"`
}

// RichTextConfig controls markup support.
type RichTextConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Tags limits the grammar to these tag names. Empty means every built-in tag.
	Tags            []string `mapstructure:"tags" yaml:"tags,omitempty"`
	EmojisAllowed   bool     `mapstructure:"emojis_allowed" yaml:"emojis_allowed"`
	BindingsAllowed bool     `mapstructure:"bindings_allowed" yaml:"bindings_allowed"`
}

// EmojiConfig lists the emoji the field recognizes. With neither a file nor
// entries the built-in set is used.
type EmojiConfig struct {
	File    string             `mapstructure:"file" yaml:"file,omitempty"`
	Entries []symbol.EmojiData `mapstructure:"entries" yaml:"entries,omitempty"`
}

// InputConfig describes the field and the keyboard shown for it.
type InputConfig struct {
	Validation         string `mapstructure:"validation" yaml:"validation"`
	LineType           string `mapstructure:"line_type" yaml:"line_type"`
	CharacterLimit     int    `mapstructure:"character_limit" yaml:"character_limit"`
	ReadOnly           bool   `mapstructure:"read_only" yaml:"read_only"`
	KeyboardType       string `mapstructure:"keyboard_type" yaml:"keyboard_type"`
	Autocapitalization string `mapstructure:"autocapitalization" yaml:"autocapitalization"`
	Autofill           string `mapstructure:"autofill" yaml:"autofill,omitempty"`
	ReturnKey          string `mapstructure:"return_key" yaml:"return_key"`
	Autocorrection     bool   `mapstructure:"autocorrection" yaml:"autocorrection"`
	Secure             bool   `mapstructure:"secure" yaml:"secure"`
	// CustomValidator is used when Validation is "custom".
	CustomValidator *validator.CharacterValidator `mapstructure:"custom_validator" yaml:"custom_validator,omitempty"`
}

// FiltersConfig names the filters applied to the field.
type FiltersConfig struct {
	Live                []string `mapstructure:"live" yaml:"live,omitempty"`
	LiveDecoration      string   `mapstructure:"live_decoration" yaml:"live_decoration,omitempty"`
	Post                string   `mapstructure:"post" yaml:"post,omitempty"`
	EmojiCharacterLimit int      `mapstructure:"emoji_character_limit" yaml:"emoji_character_limit"`
	// PasswordReveal is a duration such as "1s".
	PasswordReveal string `mapstructure:"password_reveal" yaml:"password_reveal"`
	// Language is the BCP 47 tag used to format amounts.
	Language string `mapstructure:"language" yaml:"language"`
}

// DefaultConfigDir returns ~/.config/richinput or an empty string if the
// home directory is unavailable.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "richinput")
}

// DefaultTracesFilePath returns the default path for trace file export.
func DefaultTracesFilePath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		RichText: RichTextConfig{
			Enabled:         true,
			EmojisAllowed:   true,
			BindingsAllowed: true,
		},
		Input: InputConfig{
			Validation:         validator.None.String(),
			LineType:           validator.SingleLine.String(),
			KeyboardType:       keyboard.KeyboardDefault.String(),
			Autocapitalization: keyboard.AutocapitalizeNone.String(),
			ReturnKey:          keyboard.ReturnDefault.String(),
		},
		Filters: FiltersConfig{
			EmojiCharacterLimit: filter.DefaultEmojiCharacterLimit,
			PasswordReveal:      filter.DefaultRevealDuration.String(),
			Language:            "en-US",
		},
		Tracing: tracing.DefaultConfig(),
		Flags:   flags.Defaults(),
	}
}

// SetDefaults registers Defaults with v so that keys missing from the config
// file still unmarshal to their default values.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("rich_text.enabled", d.RichText.Enabled)
	v.SetDefault("rich_text.emojis_allowed", d.RichText.EmojisAllowed)
	v.SetDefault("rich_text.bindings_allowed", d.RichText.BindingsAllowed)
	v.SetDefault("input.validation", d.Input.Validation)
	v.SetDefault("input.line_type", d.Input.LineType)
	v.SetDefault("input.keyboard_type", d.Input.KeyboardType)
	v.SetDefault("input.autocapitalization", d.Input.Autocapitalization)
	v.SetDefault("input.return_key", d.Input.ReturnKey)
	v.SetDefault("filters.emoji_character_limit", d.Filters.EmojiCharacterLimit)
	v.SetDefault("filters.password_reveal", d.Filters.PasswordReveal)
	v.SetDefault("filters.language", d.Filters.Language)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", DefaultTracesFilePath())
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	for name, enabled := range d.Flags {
		v.SetDefault("flags."+name, enabled)
	}
}

// Load unmarshals the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(DecodeHook())); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	log.Debug(log.CatConfig, "Loaded config", "file", v.ConfigFileUsed())
	return cfg, nil
}

// DecodeHook converts config scalars into typed values. Validator operators
// and actions may be written by name, e.g. "value_in_string".
func DecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		stringToRuleEnumHook,
	)
}

var (
	operatorType = reflect.TypeOf(validator.ConditionOperator(0))
	actionType   = reflect.TypeOf(validator.CharacterAction(0))
)

func stringToRuleEnumHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	s, _ := data.(string)
	switch to {
	case operatorType:
		op, err := validator.ParseConditionOperator(s)
		return op, err
	case actionType:
		a, err := validator.ParseCharacterAction(s)
		return a, err
	}
	return data, nil
}

// Validate checks names and ranges. Every problem is reported, each one
// wrapping ErrInvalidConfig.
func Validate(cfg Config) error {
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidConfig, err))
		}
	}

	if len(cfg.RichText.Tags) > 0 {
		_, err := richtext.NewGrammar(cfg.RichText.Tags...)
		add(wrap("rich_text.tags", err))
	}
	for i, e := range cfg.Emoji.Entries {
		if e.Name == "" || e.Text == "" {
			add(fmt.Errorf("emoji.entries[%d]: name and text are required", i))
		}
	}
	seen := make(map[string]bool, len(cfg.Bindings))
	for i, b := range cfg.Bindings {
		switch {
		case b.Name == "":
			add(fmt.Errorf("bindings[%d]: name is required", i))
		case seen[b.Name]:
			add(fmt.Errorf("bindings[%d]: duplicate name %q", i, b.Name))
		}
		seen[b.Name] = true
	}

	in := cfg.Input
	validation, err := parseValidation(in.Validation)
	add(wrap("input.validation", err))
	_, err = parseLineType(in.LineType)
	add(wrap("input.line_type", err))
	if _, err := parseOptional(in.KeyboardType, keyboard.ParseKeyboardType); err != nil {
		add(wrap("input.keyboard_type", err))
	}
	if _, err := parseOptional(in.Autocapitalization, keyboard.ParseAutocapitalizationType); err != nil {
		add(wrap("input.autocapitalization", err))
	}
	if _, err := parseOptional(in.Autofill, keyboard.ParseAutofillType); err != nil {
		add(wrap("input.autofill", err))
	}
	if _, err := parseOptional(in.ReturnKey, keyboard.ParseReturnKeyType); err != nil {
		add(wrap("input.return_key", err))
	}
	if in.CharacterLimit < 0 {
		add(fmt.Errorf("input.character_limit must not be negative, got %d", in.CharacterLimit))
	}
	if validation == validator.Custom && in.CustomValidator != nil {
		add(wrap("input.custom_validator", in.CustomValidator.Check()))
	}

	f := cfg.Filters
	for _, name := range f.Live {
		_, err := filter.NewLive(name, filter.Deps{})
		add(wrap("filters.live", err))
	}
	if f.LiveDecoration != "" {
		_, err := filter.NewDecoration(f.LiveDecoration, filter.Deps{})
		add(wrap("filters.live_decoration", err))
	}
	if f.Post != "" {
		_, err := filter.NewPost(f.Post, filter.Deps{})
		add(wrap("filters.post", err))
	}
	if f.EmojiCharacterLimit < 0 {
		add(fmt.Errorf("filters.emoji_character_limit must not be negative, got %d", f.EmojiCharacterLimit))
	}
	if f.PasswordReveal != "" {
		_, err := time.ParseDuration(f.PasswordReveal)
		add(wrap("filters.password_reveal", err))
	}
	if _, err := parseLanguage(f.Language); err != nil {
		add(wrap("filters.language", err))
	}

	add(validateTracing(cfg.Tracing))

	return errors.Join(errs...)
}

func validateTracing(t tracing.Config) error {
	if t.SampleRate < 0.0 || t.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", t.SampleRate)
	}
	if !tracing.ValidExporter(t.Exporter) {
		return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", t.Exporter)
	}
	if t.Enabled && t.Exporter == tracing.ExporterFile && t.FilePath == "" {
		return errors.New("tracing.file_path is required when exporter is \"file\"")
	}
	if t.Enabled && t.Exporter == tracing.ExporterOTLP && t.OTLPEndpoint == "" {
		return errors.New("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}
	return nil
}

func wrap(key string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", key, err)
}

func parseValidation(s string) (validator.Validation, error) {
	if s == "" {
		return validator.None, nil
	}
	return validator.ParseValidation(s)
}

func parseLineType(s string) (validator.LineType, error) {
	if s == "" {
		return validator.SingleLine, nil
	}
	return validator.ParseLineType(s)
}

// parseOptional parses s with parse, mapping an empty string to the zero value.
func parseOptional[T any](s string, parse func(string) (T, error)) (T, error) {
	if s == "" {
		var zero T
		return zero, nil
	}
	return parse(s)
}
