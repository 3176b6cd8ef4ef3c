package filter

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/zjrosen/richinput/internal/richtext"
	"github.com/zjrosen/richinput/internal/symbol"
)

// ErrUnknownFilter is returned for a filter name that is not registered.
var ErrUnknownFilter = errors.New("unknown filter")

// Filter names as used in configuration.
const (
	NameBlockDuplicateCharacter = "block_duplicate_character"
	NameBlockRichTextTags       = "block_rich_text_tags"
	NameBulletPoint             = "bullet_point"
	NameEmojiCharacterLimit     = "emoji_character_limit"
	NameTagUser                 = "tag_user"

	NameCreditCard        = "credit_card"
	NameDate              = "date"
	NamePasswordCharacter = "password_character"

	NameDollarAmount  = "dollar_amount"
	NameDollarDecimal = "dollar_decimal"
	NamePassword      = "password"
)

// DefaultEmojiCharacterLimit is used when Deps.EmojiLimit is not set.
const DefaultEmojiCharacterLimit = 20

// Deps carries what the named filters are built from.
type Deps struct {
	Grammar    richtext.Grammar
	Emojis     *symbol.EmojiRegistry
	Bindings   *symbol.BindingRegistry
	EmojiLimit int
	Reveal     time.Duration
	Clock      func() time.Time
	Language   language.Tag
}

var liveFactories = map[string]func(Deps) LiveFilter{
	NameBlockDuplicateCharacter: func(Deps) LiveFilter { return BlockDuplicateCharacter{} },
	NameBlockRichTextTags: func(d Deps) LiveFilter {
		return NewBlockRichTextTags(d.Grammar)
	},
	NameBulletPoint: func(Deps) LiveFilter { return BulletPoint{} },
	NameEmojiCharacterLimit: func(d Deps) LiveFilter {
		limit := d.EmojiLimit
		if limit <= 0 {
			limit = DefaultEmojiCharacterLimit
		}
		if d.Emojis == nil {
			return NewEmojiCharacterLimit(nil, limit)
		}
		return NewEmojiCharacterLimit(d.Emojis, limit)
	},
	NameTagUser: func(d Deps) LiveFilter {
		if d.Bindings == nil {
			return NewTagUser(nil)
		}
		return NewTagUser(d.Bindings)
	},
}

var decorationFactories = map[string]func(Deps) DecorationFilter{
	NameCreditCard: func(Deps) DecorationFilter { return NewCreditCard() },
	NameDate:       func(Deps) DecorationFilter { return NewDate() },
	NamePasswordCharacter: func(d Deps) DecorationFilter {
		reveal := d.Reveal
		if reveal <= 0 {
			reveal = DefaultRevealDuration
		}
		return NewPasswordCharacter(reveal, d.Clock)
	},
}

var postFactories = map[string]func(Deps) PostFilter{
	NameDollarAmount:  func(d Deps) PostFilter { return NewDollarAmount(d.Language) },
	NameDollarDecimal: func(Deps) PostFilter { return NewDollarDecimal() },
	NamePassword:      func(Deps) PostFilter { return Password{} },
}

// NewLive builds the live filter called name.
func NewLive(name string, deps Deps) (LiveFilter, error) {
	f, ok := liveFactories[normalizeName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: live filter %q", ErrUnknownFilter, name)
	}
	return f(deps), nil
}

// NewLivePipeline builds a pipeline from filter names in order.
func NewLivePipeline(names []string, deps Deps) (*Pipeline, error) {
	filters := make([]LiveFilter, 0, len(names))
	var errs []error
	for _, name := range names {
		f, err := NewLive(name, deps)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		filters = append(filters, f)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return NewPipeline(filters...), nil
}

// NewDecoration builds the live decoration filter called name.
func NewDecoration(name string, deps Deps) (DecorationFilter, error) {
	f, ok := decorationFactories[normalizeName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: decoration filter %q", ErrUnknownFilter, name)
	}
	return f(deps), nil
}

// NewPost builds the post filter called name.
func NewPost(name string, deps Deps) (PostFilter, error) {
	f, ok := postFactories[normalizeName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: post filter %q", ErrUnknownFilter, name)
	}
	return f(deps), nil
}

// LiveNames returns the registered live filter names, sorted.
func LiveNames() []string { return sortedKeys(liveFactories) }

// DecorationNames returns the registered decoration filter names, sorted.
func DecorationNames() []string { return sortedKeys(decorationFactories) }

// PostNames returns the registered post filter names, sorted.
func PostNames() []string { return sortedKeys(postFactories) }

func normalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
