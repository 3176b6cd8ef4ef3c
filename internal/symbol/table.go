package symbol

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Table is the on-disk form of symbol definitions.
//
//	emojis:
//	  - name: grinning
//	    text: "😀"
//	    rich_text: "<sprite name=grinning>"
//	bindings:
//	  - name: alice
//	    rich_text: "<link=user:alice><color=#3b82f6>@alice</color></link>"
type Table struct {
	Emojis   []EmojiData   `yaml:"emojis"`
	Bindings []BindingData `yaml:"bindings"`
}

// LoadTable reads a YAML symbol table from path.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from user config
	if err != nil {
		return Table{}, fmt.Errorf("reading symbol table: %w", err)
	}
	return ParseTable(data)
}

// ParseTable decodes a YAML symbol table.
func ParseTable(data []byte) (Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Table{}, fmt.Errorf("parsing symbol table: %w", err)
	}
	return t, nil
}

// DefaultEmojis is the built-in emoji set used when no table is configured.
func DefaultEmojis() []EmojiData {
	return []EmojiData{
		{Name: "grinning", Text: "😀", RichText: SpriteRichText("grinning")},
		{Name: "joy", Text: "😂", RichText: SpriteRichText("joy")},
		{Name: "heart_eyes", Text: "😍", RichText: SpriteRichText("heart_eyes")},
		{Name: "thumbsup", Text: "👍", RichText: SpriteRichText("thumbsup")},
		{Name: "heart", Text: "❤", RichText: SpriteRichText("heart")},
		{Name: "fire", Text: "🔥", RichText: SpriteRichText("fire")},
		{Name: "tada", Text: "🎉", RichText: SpriteRichText("tada")},
	}
}
