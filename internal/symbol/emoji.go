// Package symbol holds the registries for atomic symbols: emoji, which render
// as sprite markup, and bindings, which stand in for arbitrary markup (user
// mentions, links) through a private-use code point.
//
// Registries are safe for concurrent use. They are filled at configuration
// time and are read-mostly afterwards; the only later mutation is an emoji
// growing a variation-selector variant.
package symbol

import (
	"sync"
	"unicode/utf8"

	"github.com/zjrosen/richinput/internal/log"
)

// Variation selectors that may trail an emoji code point (VS1..VS16).
const (
	VariationSelectorFirst rune = 0xFE00
	VariationSelectorLast  rune = 0xFE0F
)

// IsVariationSelector reports whether r is in U+FE00..U+FE0F.
func IsVariationSelector(r rune) bool {
	return r >= VariationSelectorFirst && r <= VariationSelectorLast
}

// EmojiData maps a plain emoji token to the sprite markup that renders it.
type EmojiData struct {
	Name     string `yaml:"name" mapstructure:"name" json:"name"`
	Text     string `yaml:"text" mapstructure:"text" json:"text"`
	RichText string `yaml:"rich_text" mapstructure:"rich_text" json:"richText"`
}

// SpriteRichText renders the default sprite markup for a sprite name.
func SpriteRichText(name string) string {
	return "<sprite name=" + name + ">"
}

// EmojiRegistry looks emoji up by plain token and by sprite markup.
type EmojiRegistry struct {
	mu         sync.RWMutex
	byText     map[string]EmojiData
	byRichText map[string]EmojiData
	maxLength  int // longest token in runes
}

// NewEmojiRegistry creates a registry holding emojis.
func NewEmojiRegistry(emojis ...EmojiData) *EmojiRegistry {
	r := &EmojiRegistry{
		byText:     make(map[string]EmojiData),
		byRichText: make(map[string]EmojiData),
	}
	for _, e := range emojis {
		r.Register(e)
	}
	return r
}

// Register adds an emoji. Entries without text are ignored.
// A missing RichText defaults to sprite markup named after the emoji.
func (r *EmojiRegistry) Register(e EmojiData) {
	if e.Text == "" {
		log.Warn(log.CatSymbol, "Ignoring emoji without text", "name", e.Name)
		return
	}
	if e.RichText == "" {
		e.RichText = SpriteRichText(e.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.registerLocked(e)
	if _, exists := r.byRichText[e.RichText]; !exists {
		r.byRichText[e.RichText] = e
	}
}

func (r *EmojiRegistry) registerLocked(e EmojiData) {
	r.byText[e.Text] = e
	if n := utf8.RuneCountInString(e.Text); n > r.maxLength {
		r.maxLength = n
	}
}

// Len returns the number of registered tokens, variants included.
func (r *EmojiRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byText)
}

// MaxLength returns the rune length of the longest registered token.
func (r *EmojiRegistry) MaxLength() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.maxLength
}

// TryGetEmoji returns the emoji whose plain token is exactly text.
func (r *EmojiRegistry) TryGetEmoji(text string) (EmojiData, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byText[text]
	return e, ok
}

// TryGetSprite returns the emoji whose sprite markup is exactly richText.
func (r *EmojiRegistry) TryGetSprite(richText string) (EmojiData, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byRichText[richText]
	return e, ok
}

// FindNext returns the longest emoji token starting at text[pos].
// When the token is followed by a variation selector that it does not already
// include, the selector is absorbed and the extended token is registered.
func (r *EmojiRegistry) FindNext(text []rune, pos int) (EmojiData, bool) {
	if pos < 0 || pos >= len(text) {
		return EmojiData{}, false
	}

	r.mu.RLock()
	limit := min(r.maxLength, len(text)-pos)
	var (
		found EmojiData
		ok    bool
	)
	for n := limit; n > 0; n-- {
		if e, hit := r.byText[string(text[pos:pos+n])]; hit {
			found, ok = e, true
			break
		}
	}
	r.mu.RUnlock()
	if !ok {
		return EmojiData{}, false
	}

	end := pos + utf8.RuneCountInString(found.Text)
	if end < len(text) && IsVariationSelector(text[end]) {
		last, _ := utf8.DecodeLastRuneInString(found.Text)
		if !IsVariationSelector(last) {
			found = r.extend(found, text[end])
		}
	}
	return found, true
}

// FindPrevious returns the emoji token that ends exactly at text[pos-1].
// A trailing variation selector after a known token is absorbed the same way
// FindNext does.
func (r *EmojiRegistry) FindPrevious(text []rune, pos int) (EmojiData, bool) {
	if pos <= 0 || pos > len(text) {
		return EmojiData{}, false
	}

	r.mu.RLock()
	limit := min(r.maxLength, pos)
	for n := limit; n > 0; n-- {
		if e, hit := r.byText[string(text[pos-n:pos])]; hit {
			r.mu.RUnlock()
			return e, true
		}
	}
	r.mu.RUnlock()

	if vs := text[pos-1]; IsVariationSelector(vs) && pos > 1 {
		if base, ok := r.FindPrevious(text, pos-1); ok {
			if last, _ := utf8.DecodeLastRuneInString(base.Text); !IsVariationSelector(last) {
				return r.extend(base, vs), true
			}
		}
	}
	return EmojiData{}, false
}

// extend registers base followed by selector as a token of its own.
func (r *EmojiRegistry) extend(base EmojiData, selector rune) EmojiData {
	variant := EmojiData{
		Name:     base.Name,
		Text:     base.Text + string(selector),
		RichText: base.RichText,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byText[variant.Text]; ok {
		return existing
	}
	r.registerLocked(variant)
	log.Debug(log.CatSymbol, "Registered emoji variant", "name", base.Name, "selector", selector)
	return variant
}

// CountCharacters counts text where every emoji token counts as one.
func (r *EmojiRegistry) CountCharacters(text string) int {
	rs := []rune(text)
	count := 0
	for i := 0; i < len(rs); {
		if e, ok := r.FindNext(rs, i); ok {
			i += utf8.RuneCountInString(e.Text)
		} else {
			i++
		}
		count++
	}
	return count
}
