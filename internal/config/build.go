package config

import (
	"fmt"
	"time"

	"golang.org/x/text/language"

	"github.com/zjrosen/richinput/internal/filter"
	"github.com/zjrosen/richinput/internal/flags"
	"github.com/zjrosen/richinput/internal/inputfield"
	"github.com/zjrosen/richinput/internal/keyboard"
	"github.com/zjrosen/richinput/internal/log"
	"github.com/zjrosen/richinput/internal/richtext"
	"github.com/zjrosen/richinput/internal/symbol"
	"github.com/zjrosen/richinput/internal/validator"
)

// Components is everything an input field is assembled from.
type Components struct {
	Grammar    richtext.Grammar
	Flags      *flags.Registry
	Emojis     *symbol.EmojiRegistry
	Bindings   *symbol.BindingRegistry
	Validator  validator.TextValidator
	Keyboard   keyboard.Configuration
	Live       *filter.Pipeline
	Decoration filter.DecorationFilter
	Post       filter.PostFilter

	cfg Config
}

// Build resolves names in cfg into registries, filters and the keyboard
// configuration. clock drives time based filters and may be nil.
func (c Config) Build(clock func() time.Time) (*Components, error) {
	if err := Validate(c); err != nil {
		return nil, err
	}
	comp := &Components{cfg: c, Flags: flags.WithDefaults(c.Flags)}

	var err error
	if comp.Grammar, err = c.Grammar(); err != nil {
		return nil, err
	}
	if comp.Emojis, comp.Bindings, err = c.symbols(comp.Flags); err != nil {
		return nil, err
	}
	if comp.Validator, err = c.TextValidator(); err != nil {
		return nil, err
	}
	if comp.Keyboard, err = c.KeyboardConfiguration(); err != nil {
		return nil, err
	}

	reveal := filter.DefaultRevealDuration
	if c.Filters.PasswordReveal != "" {
		if reveal, err = time.ParseDuration(c.Filters.PasswordReveal); err != nil {
			return nil, fmt.Errorf("filters.password_reveal: %w", err)
		}
	}
	lang, err := parseLanguage(c.Filters.Language)
	if err != nil {
		return nil, fmt.Errorf("filters.language: %w", err)
	}
	deps := filter.Deps{
		Grammar:    comp.Grammar,
		Emojis:     comp.Emojis,
		Bindings:   comp.Bindings,
		EmojiLimit: c.Filters.EmojiCharacterLimit,
		Reveal:     reveal,
		Clock:      clock,
		Language:   lang,
	}

	if comp.Live, err = filter.NewLivePipeline(c.Filters.Live, deps); err != nil {
		return nil, err
	}
	if c.Filters.LiveDecoration != "" {
		if comp.Decoration, err = filter.NewDecoration(c.Filters.LiveDecoration, deps); err != nil {
			return nil, err
		}
	}
	if c.Filters.Post != "" {
		if comp.Post, err = filter.NewPost(c.Filters.Post, deps); err != nil {
			return nil, err
		}
	}

	log.Debug(log.CatConfig, "Built input field components",
		"rich_text", c.RichText.Enabled,
		"live_filters", comp.Live.Len(),
		"validation", comp.Validator.Validation.String())
	return comp, nil
}

// EngineOptions returns the options that configure an engine from the
// components. Options passed to the engine after these take precedence.
func (p *Components) EngineOptions() []inputfield.Option {
	c := p.cfg
	opts := []inputfield.Option{
		inputfield.WithFlags(p.Flags),
		inputfield.WithValidator(p.Validator),
		inputfield.WithLiveFilters(p.Live),
		inputfield.WithCharacterLimit(c.Input.CharacterLimit),
		inputfield.WithReadOnly(c.Input.ReadOnly),
		inputfield.WithSecure(c.Input.Secure),
	}
	if c.RichText.Enabled {
		opts = append(opts, inputfield.WithRichText(p.Grammar))
	}
	if p.Emojis != nil {
		opts = append(opts, inputfield.WithEmojis(p.Emojis))
	}
	if p.Bindings != nil {
		opts = append(opts, inputfield.WithBindings(p.Bindings))
	}
	if p.Decoration != nil {
		opts = append(opts, inputfield.WithDecoration(p.Decoration))
	}
	if p.Post != nil {
		opts = append(opts, inputfield.WithPostFilter(p.Post))
	}
	return opts
}

// NewEngine builds the components and an engine from them.
func (c Config) NewEngine(clock func() time.Time, opts ...inputfield.Option) (*inputfield.Engine, *Components, error) {
	comp, err := c.Build(clock)
	if err != nil {
		return nil, nil, err
	}
	all := append(comp.EngineOptions(), opts...)
	if clock != nil {
		all = append(all, inputfield.WithClock(clock))
	}
	return inputfield.New(all...), comp, nil
}

// Grammar returns the configured tag grammar.
func (c Config) Grammar() (richtext.Grammar, error) {
	if len(c.RichText.Tags) == 0 {
		return richtext.DefaultGrammar(), nil
	}
	g, err := richtext.NewGrammar(c.RichText.Tags...)
	if err != nil {
		return richtext.Grammar{}, fmt.Errorf("rich_text.tags: %w", err)
	}
	return g, nil
}

// Symbols loads the emoji and binding registries. A registry is nil when its
// symbols are not allowed.
func (c Config) Symbols() (*symbol.EmojiRegistry, *symbol.BindingRegistry, error) {
	return c.symbols(flags.WithDefaults(c.Flags))
}

func (c Config) symbols(fl *flags.Registry) (*symbol.EmojiRegistry, *symbol.BindingRegistry, error) {
	var table symbol.Table
	if c.Emoji.File != "" {
		var err error
		if table, err = symbol.LoadTable(c.Emoji.File); err != nil {
			return nil, nil, fmt.Errorf("emoji.file: %w", err)
		}
	}

	var emojis *symbol.EmojiRegistry
	if c.RichText.EmojisAllowed {
		entries := append(table.Emojis, c.Emoji.Entries...)
		if c.Emoji.File == "" && len(entries) == 0 {
			entries = symbol.DefaultEmojis()
		}
		emojis = symbol.NewEmojiRegistry(entries...)
	}

	var bindings *symbol.BindingRegistry
	if c.RichText.Enabled && c.RichText.BindingsAllowed {
		bindings = symbol.NewBindingRegistry(symbol.WithStrictPool(fl.Enabled(flags.FlagStrictBindingPool)))
		if err := bindings.Initialize(append(table.Bindings, c.Bindings...)); err != nil {
			return nil, nil, fmt.Errorf("bindings: %w", err)
		}
	}
	return emojis, bindings, nil
}

// TextValidator returns the validator for the configured mode and line type.
func (c Config) TextValidator() (validator.TextValidator, error) {
	validation, err := parseValidation(c.Input.Validation)
	if err != nil {
		return validator.TextValidator{}, fmt.Errorf("input.validation: %w", err)
	}
	lineType, err := parseLineType(c.Input.LineType)
	if err != nil {
		return validator.TextValidator{}, fmt.Errorf("input.line_type: %w", err)
	}
	v := validator.TextValidator{Validation: validation, LineType: lineType}
	if validation == validator.Custom {
		v.Custom = c.Input.CustomValidator
	}
	return v, nil
}

// KeyboardConfiguration returns what the platform keyboard is shown with.
func (c Config) KeyboardConfiguration() (keyboard.Configuration, error) {
	v, err := c.TextValidator()
	if err != nil {
		return keyboard.Configuration{}, err
	}
	in := c.Input
	kc := keyboard.Configuration{
		CharacterValidation: v.Validation,
		LineType:            v.LineType,
		Autocorrection:      in.Autocorrection,
		Secure:              in.Secure,
		RichTextEditing:     c.RichText.Enabled,
		EmojisAllowed:       c.RichText.EmojisAllowed,
		CharacterLimit:      in.CharacterLimit,
	}
	if kc.KeyboardType, err = parseOptional(in.KeyboardType, keyboard.ParseKeyboardType); err != nil {
		return keyboard.Configuration{}, fmt.Errorf("input.keyboard_type: %w", err)
	}
	if kc.AutocapitalizationType, err = parseOptional(in.Autocapitalization, keyboard.ParseAutocapitalizationType); err != nil {
		return keyboard.Configuration{}, fmt.Errorf("input.autocapitalization: %w", err)
	}
	if kc.AutofillType, err = parseOptional(in.Autofill, keyboard.ParseAutofillType); err != nil {
		return keyboard.Configuration{}, fmt.Errorf("input.autofill: %w", err)
	}
	if kc.ReturnKeyType, err = parseOptional(in.ReturnKey, keyboard.ParseReturnKeyType); err != nil {
		return keyboard.Configuration{}, fmt.Errorf("input.return_key: %w", err)
	}
	if v.Custom != nil {
		if kc.CharacterValidatorJSON, err = v.Custom.JSON(); err != nil {
			return keyboard.Configuration{}, fmt.Errorf("input.custom_validator: %w", err)
		}
	}
	return kc, nil
}

func parseLanguage(s string) (language.Tag, error) {
	if s == "" {
		return language.AmericanEnglish, nil
	}
	return language.Parse(s)
}
