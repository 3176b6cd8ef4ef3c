package filter

import (
	"strings"
	"time"

	"github.com/zjrosen/richinput/internal/log"
	"github.com/zjrosen/richinput/internal/textedit"
)

const (
	creditCardGroupSize     = 4
	creditCardMaxSeparators = 3
	dateMaxDigits           = 8
)

// DefaultRevealDuration is how long PasswordCharacter shows the last typed rune.
const DefaultRevealDuration = time.Second

// digitGrouping inserts a separator in front of selected digits. The digits
// themselves are the stored text; separators exist only for display.
type digitGrouping struct {
	name      string
	separator rune
	// before reports whether a separator goes in front of the n-th digit (1-based).
	before    func(n int) bool
	maxDigits int
}

func (g digitGrouping) ProcessText(text string, _ int) (string, bool) {
	if text == "" {
		return "", true
	}
	var b strings.Builder
	n := 0
	for _, r := range text {
		if r < '0' || r > '9' {
			log.Warn(log.CatFilter, "Unexpected character", "filter", g.name, "rune", string(r))
			return "", false
		}
		n++
		if g.maxDigits > 0 && n > g.maxDigits {
			log.Warn(log.CatFilter, "Too many digits", "filter", g.name, "max", g.maxDigits)
			return "", false
		}
		if g.before(n) {
			b.WriteRune(g.separator)
		}
		b.WriteRune(r)
	}
	return b.String(), true
}

// DetermineProcessedCaret places the caret in front of digit caret+1.
func (g digitGrouping) DetermineProcessedCaret(_ string, caret int, processed string) int {
	if caret == 0 || processed == "" {
		return 0
	}
	n := 0
	i := 0
	for _, r := range processed {
		if r >= '0' && r <= '9' {
			n++
			if n == caret+1 {
				return i
			}
		}
		i++
	}
	return i
}

// DetermineCaret counts the digits in front of the processed caret.
func (g digitGrouping) DetermineCaret(text, processed string, processedCaret int) int {
	if processedCaret == 0 || processed == "" {
		return 0
	}
	if processedCaret >= textedit.RuneLen(processed) {
		return textedit.RuneLen(text)
	}
	n := 0
	for _, r := range []rune(processed)[:processedCaret] {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

func (digitGrouping) UpdateFilter(time.Time, bool) (string, bool) {
	return "", false
}

// CreditCard shows digits in groups of four: "1234 5678 9012 3456".
type CreditCard struct {
	digitGrouping
}

// NewCreditCard creates the filter with a space separator.
func NewCreditCard() *CreditCard {
	return &CreditCard{digitGrouping{
		name:      "credit_card",
		separator: ' ',
		before: func(n int) bool {
			return n > 1 && (n-1)%creditCardGroupSize == 0 && (n-1)/creditCardGroupSize <= creditCardMaxSeparators
		},
	}}
}

// Date shows up to eight digits as "00/00/0000".
type Date struct {
	digitGrouping
}

// NewDate creates the filter with a slash separator.
func NewDate() *Date {
	return &Date{digitGrouping{
		name:      "date",
		separator: '/',
		before:    func(n int) bool { return n == 3 || n == 5 },
		maxDigits: dateMaxDigits,
	}}
}

// PasswordCharacter masks the text with '*' but shows the rune just typed
// until the reveal duration passes.
type PasswordCharacter struct {
	Reveal time.Duration

	now      func() time.Time
	lastText string
	visible  bool
	editedAt time.Time
}

// NewPasswordCharacter creates the filter. A nil clock uses time.Now.
func NewPasswordCharacter(reveal time.Duration, clock func() time.Time) *PasswordCharacter {
	if clock == nil {
		clock = time.Now
	}
	return &PasswordCharacter{Reveal: reveal, now: clock}
}

// ProcessText implements DecorationFilter.
func (f *PasswordCharacter) ProcessText(text string, caret int) (string, bool) {
	added := textedit.RuneLen(text) > textedit.RuneLen(f.lastText)
	f.lastText = text
	f.visible = false
	if text == "" {
		return "", true
	}

	var b strings.Builder
	i := 0
	for _, r := range text {
		if added && i == caret-1 {
			b.WriteRune(r)
			f.visible = true
			f.editedAt = f.now()
		} else {
			b.WriteByte('*')
		}
		i++
	}
	return b.String(), true
}

// DetermineProcessedCaret implements DecorationFilter. Masking keeps positions.
func (f *PasswordCharacter) DetermineProcessedCaret(_ string, caret int, _ string) int {
	return caret
}

// DetermineCaret implements DecorationFilter.
func (f *PasswordCharacter) DetermineCaret(_, _ string, processedCaret int) int {
	return processedCaret
}

// UpdateFilter hides the revealed rune once the reveal duration has passed.
func (f *PasswordCharacter) UpdateFilter(now time.Time, final bool) (string, bool) {
	if !f.visible || (!final && now.Sub(f.editedAt) <= f.Reveal) {
		return "", false
	}
	f.visible = false
	return strings.Repeat("*", textedit.RuneLen(f.lastText)), true
}

// Revealing reports whether a typed rune is currently shown.
func (f *PasswordCharacter) Revealing() bool {
	return f.visible
}
