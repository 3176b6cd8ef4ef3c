package richtext

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownTag is returned when a grammar is built from a tag name that is not
// part of the built-in tag table.
var ErrUnknownTag = errors.New("unknown rich text tag")

// TagType describes the shape of a markup tag.
type TagType int

const (
	// BasicTagPair is an open/close pair without a parameter, e.g. <b></b>.
	BasicTagPair TagType = iota
	// SingleParameterTagPair is an open/close pair whose start tag carries a value, e.g. <color=#f00></color>.
	SingleParameterTagPair
	// BasicSingleTag is a standalone tag without a parameter.
	BasicSingleTag
	// SingleParameterSingleTag is a standalone tag with a value, e.g. <sprite name=smile>.
	SingleParameterSingleTag
)

func (t TagType) String() string {
	switch t {
	case BasicTagPair:
		return "basic_pair"
	case SingleParameterTagPair:
		return "parameter_pair"
	case BasicSingleTag:
		return "basic_single"
	case SingleParameterSingleTag:
		return "parameter_single"
	default:
		return "unknown"
	}
}

// paramPlaceholder marks where the parameter goes in a start tag template.
const paramPlaceholder = "{0}"

// TagInfo describes one supported tag. StartTag is a template for parameter
// tags, e.g. "<color={0}>".
type TagInfo struct {
	Name     string
	Type     TagType
	StartTag string
	EndTag   string
}

// StartTagPrefix returns the literal text before the parameter placeholder.
// For parameterless tags it is the whole start tag.
func (t TagInfo) StartTagPrefix() string {
	if i := strings.Index(t.StartTag, paramPlaceholder); i >= 0 {
		return t.StartTag[:i]
	}
	return t.StartTag
}

// IsPair reports whether the tag has a closing counterpart.
func (t TagInfo) IsPair() bool {
	return t.Type == BasicTagPair || t.Type == SingleParameterTagPair
}

// Start renders the start tag, substituting param for the placeholder.
func (t TagInfo) Start(param string) string {
	return strings.Replace(t.StartTag, paramPlaceholder, param, 1)
}

func basicPair(name string) TagInfo {
	return TagInfo{Name: name, Type: BasicTagPair, StartTag: "<" + name + ">", EndTag: "</" + name + ">"}
}

func parameterPair(name string) TagInfo {
	return TagInfo{Name: name, Type: SingleParameterTagPair, StartTag: "<" + name + "=" + paramPlaceholder + ">", EndTag: "</" + name + ">"}
}

// builtinTags is the full table of tags the renderer understands, keyed by name.
var builtinTags = func() map[string]TagInfo {
	tags := make(map[string]TagInfo)
	for _, name := range []string{"b", "i", "lowercase", "nobr", "noparse", "s", "smallcaps", "sub", "sup", "u", "uppercase"} {
		tags[name] = basicPair(name)
	}
	for _, name := range []string{
		"align", "alpha", "color", "cspace", "font", "indent", "line-height", "line-indent", "link",
		"margin", "mark", "material", "mspace", "pos", "size", "style", "voffset", "width",
	} {
		tags[name] = parameterPair(name)
	}
	tags["sprite"] = TagInfo{Name: "sprite", Type: SingleParameterSingleTag, StartTag: "<sprite name=" + paramPlaceholder + ">"}
	return tags
}()

// TagNames returns the names of every built-in tag, sorted.
func TagNames() []string {
	names := make([]string, 0, len(builtinTags))
	for name := range builtinTags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupTag returns the built-in tag with the given name.
func LookupTag(name string) (TagInfo, bool) {
	t, ok := builtinTags[name]
	return t, ok
}

// Grammar is the ordered set of tags recognized while parsing rich text.
type Grammar struct {
	tags []TagInfo
}

// NewGrammar builds a grammar from built-in tag names, preserving order.
func NewGrammar(names ...string) (Grammar, error) {
	g := Grammar{tags: make([]TagInfo, 0, len(names))}
	for _, name := range names {
		t, ok := builtinTags[name]
		if !ok {
			return Grammar{}, fmt.Errorf("%w: %q", ErrUnknownTag, name)
		}
		g.tags = append(g.tags, t)
	}
	return g, nil
}

// DefaultGrammar supports every built-in tag.
func DefaultGrammar() Grammar {
	g, _ := NewGrammar(TagNames()...)
	return g
}

// Tags returns a copy of the grammar's tags.
func (g Grammar) Tags() []TagInfo {
	return append([]TagInfo(nil), g.tags...)
}

// Lookup returns the tag with the given name if the grammar supports it.
func (g Grammar) Lookup(name string) (TagInfo, bool) {
	for _, t := range g.tags {
		if t.Name == name {
			return t, true
		}
	}
	return TagInfo{}, false
}

// MatchStartTag returns the pair tag that tagText opens.
// Parameterless tags match exactly, parameter tags match by prefix.
func (g Grammar) MatchStartTag(tagText string) (TagInfo, bool) {
	for _, t := range g.tags {
		switch t.Type {
		case BasicTagPair:
			if t.StartTag == tagText {
				return t, true
			}
		case SingleParameterTagPair:
			if strings.HasPrefix(tagText, t.StartTagPrefix()) {
				return t, true
			}
		}
	}
	return TagInfo{}, false
}

// MatchEndTag returns the tag whose end tag is exactly tagText.
func (g Grammar) MatchEndTag(tagText string) (TagInfo, bool) {
	for _, t := range g.tags {
		if t.IsPair() && t.EndTag == tagText {
			return t, true
		}
	}
	return TagInfo{}, false
}

// IsValidStartTag reports whether tagText opens a supported tag pair.
func (g Grammar) IsValidStartTag(tagText string) bool {
	_, ok := g.MatchStartTag(tagText)
	return ok
}

// IsValidEndTag reports whether tagText closes a supported tag pair.
func (g Grammar) IsValidEndTag(tagText string) bool {
	_, ok := g.MatchEndTag(tagText)
	return ok
}

// IsValidSingleTag reports whether tagText is a supported standalone tag.
func (g Grammar) IsValidSingleTag(tagText string) bool {
	for _, t := range g.tags {
		switch t.Type {
		case BasicSingleTag:
			if t.StartTag == tagText {
				return true
			}
		case SingleParameterSingleTag:
			if strings.HasPrefix(tagText, t.StartTagPrefix()) {
				return true
			}
		}
	}
	return false
}

// IsValidTag reports whether tagText is any supported start, end or single tag.
func (g Grammar) IsValidTag(tagText string) bool {
	return g.IsValidStartTag(tagText) || g.IsValidEndTag(tagText) || g.IsValidSingleTag(tagText)
}

// EndTagFor returns the end tag matching a start tag.
func (g Grammar) EndTagFor(startTag string) (string, bool) {
	t, ok := g.MatchStartTag(startTag)
	if !ok {
		return "", false
	}
	return t.EndTag, true
}

// FindTag locates the first valid tag in text at or after from.
// It returns the rune index of '<' and the tag's rune length.
func (g Grammar) FindTag(text []rune, from int) (start, length int, ok bool) {
	tagStart := -1
	for i := max(from, 0); i < len(text); i++ {
		switch text[i] {
		case '<':
			tagStart = i
		case '>':
			if tagStart == -1 {
				continue
			}
			if g.IsValidTag(string(text[tagStart : i+1])) {
				return tagStart, i + 1 - tagStart, true
			}
			tagStart = -1
		}
	}
	return 0, 0, false
}
