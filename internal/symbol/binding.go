package symbol

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/zjrosen/richinput/internal/log"
)

// The binding pool is the Unicode private use area U+E000..U+F8FF.
const (
	StartCodePoint rune = 0xE000
	PoolSize            = 6400
)

// ErrBindingPoolExhausted is returned in strict mode when every code point in
// the pool is taken.
var ErrBindingPoolExhausted = errors.New("binding code point pool exhausted")

// ErrDuplicateBinding is returned when a binding name is registered twice.
var ErrDuplicateBinding = errors.New("duplicate binding")

// BindingData maps a private-use code point to the markup it stands for.
type BindingData struct {
	Name      string `yaml:"name" mapstructure:"name" json:"name"`
	RichText  string `yaml:"rich_text" mapstructure:"rich_text" json:"richText"`
	CodePoint rune   `yaml:"-" mapstructure:"-" json:"codePoint"`
}

// Text returns the single-rune plain text that represents the binding.
func (b BindingData) Text() string {
	return string(b.CodePoint)
}

// BindingOption configures a BindingRegistry.
type BindingOption func(*BindingRegistry)

// WithStrictPool makes Add fail with ErrBindingPoolExhausted on overflow
// instead of skipping the binding with a warning.
func WithStrictPool(strict bool) BindingOption {
	return func(r *BindingRegistry) {
		r.strict = strict
	}
}

// BindingRegistry assigns code points to bindings and resolves them.
// Code points released by Remove are reused before the pool advances.
type BindingRegistry struct {
	mu          sync.RWMutex
	byCodePoint map[rune]BindingData
	byRichText  map[string]BindingData
	byName      map[string]BindingData
	next        rune
	free        []rune
	maxRichLen  int // longest markup in runes
	strict      bool
}

// NewBindingRegistry creates an empty registry.
func NewBindingRegistry(opts ...BindingOption) *BindingRegistry {
	r := &BindingRegistry{}
	for _, opt := range opts {
		opt(r)
	}
	r.reset()
	return r
}

func (r *BindingRegistry) reset() {
	r.byCodePoint = make(map[rune]BindingData)
	r.byRichText = make(map[string]BindingData)
	r.byName = make(map[string]BindingData)
	r.next = StartCodePoint
	r.free = nil
	r.maxRichLen = 0
}

// Initialize replaces every binding with bindings, assigning code points in order.
func (r *BindingRegistry) Initialize(bindings []BindingData) error {
	r.mu.Lock()
	r.reset()
	r.mu.Unlock()

	var errs []error
	for _, b := range bindings {
		if _, err := r.Add(b); err != nil {
			errs = append(errs, err)
			if errors.Is(err, ErrBindingPoolExhausted) {
				break
			}
		}
	}
	if len(bindings) > PoolSize {
		log.Warn(log.CatSymbol, "Binding count exceeds code point pool", "count", len(bindings), "pool", PoolSize)
	}
	return errors.Join(errs...)
}

// Add registers a binding and returns it with its assigned code point.
// Overflowing the pool returns ErrBindingPoolExhausted in strict mode. Otherwise
// it logs a warning and returns the binding with a zero code point, unregistered.
func (r *BindingRegistry) Add(b BindingData) (BindingData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[b.Name]; exists {
		return BindingData{}, fmt.Errorf("%w: %q", ErrDuplicateBinding, b.Name)
	}

	cp, ok := r.allocate()
	if !ok {
		if r.strict {
			return BindingData{}, fmt.Errorf("%w: cannot register %q", ErrBindingPoolExhausted, b.Name)
		}
		log.Warn(log.CatSymbol, "Binding pool exhausted, binding skipped", "name", b.Name, "pool", PoolSize)
		return b, nil
	}

	b.CodePoint = cp
	r.byCodePoint[cp] = b
	r.byRichText[b.RichText] = b
	r.byName[b.Name] = b
	if n := utf8.RuneCountInString(b.RichText); n > r.maxRichLen {
		r.maxRichLen = n
	}
	return b, nil
}

func (r *BindingRegistry) allocate() (rune, bool) {
	if n := len(r.free); n > 0 {
		cp := r.free[n-1]
		r.free = r.free[:n-1]
		return cp, true
	}
	if r.next >= StartCodePoint+PoolSize {
		return 0, false
	}
	cp := r.next
	r.next++
	return cp, true
}

// Remove unregisters the named binding and recycles its code point.
func (r *BindingRegistry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.byName[name]
	if !ok {
		return false
	}
	delete(r.byName, name)
	delete(r.byCodePoint, b.CodePoint)
	delete(r.byRichText, b.RichText)
	r.free = append(r.free, b.CodePoint)
	return true
}

// Len returns the number of registered bindings.
func (r *BindingRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// IsBindingCodePoint reports whether cp is a registered binding.
func (r *BindingRegistry) IsBindingCodePoint(cp rune) bool {
	_, ok := r.TryGetByCodePoint(cp)
	return ok
}

// TryGetByCodePoint resolves a plain-text code point.
func (r *BindingRegistry) TryGetByCodePoint(cp rune) (BindingData, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.byCodePoint[cp]
	return b, ok
}

// TryGetByRichText resolves exact markup.
func (r *BindingRegistry) TryGetByRichText(richText string) (BindingData, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.byRichText[richText]
	return b, ok
}

// TryGetByName resolves a binding name.
func (r *BindingRegistry) TryGetByName(name string) (BindingData, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.byName[name]
	return b, ok
}

// FindNextInRichText returns the binding with the longest markup that starts at richText[pos].
func (r *BindingRegistry) FindNextInRichText(richText []rune, pos int) (BindingData, bool) {
	if pos < 0 || pos >= len(richText) {
		return BindingData{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for n := min(r.maxRichLen, len(richText)-pos); n > 0; n-- {
		if b, ok := r.byRichText[string(richText[pos:pos+n])]; ok {
			return b, true
		}
	}
	return BindingData{}, false
}

// Search returns up to limit bindings whose name starts with prefix,
// case-insensitively, sorted by name. A limit <= 0 returns every match.
func (r *BindingRegistry) Search(prefix string, limit int) []BindingData {
	prefix = strings.ToLower(prefix)

	r.mu.RLock()
	matches := make([]BindingData, 0)
	for name, b := range r.byName {
		if strings.HasPrefix(strings.ToLower(name), prefix) {
			matches = append(matches, b)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool { return matches[i].Name < matches[j].Name })
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
