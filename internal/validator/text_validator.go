package validator

import (
	"strings"
	"unicode"

	"github.com/zjrosen/richinput/internal/log"
)

const emailSpecialCharacters = "!#$%&'*+-/=?^_`{|}~"

// TextValidator validates typed text for one input field.
type TextValidator struct {
	Validation Validation
	LineType   LineType
	// Custom is consulted when Validation is Custom. Nil allows everything.
	Custom *CharacterValidator
}

// Result is the outcome of Validate.
type Result struct {
	Text  string
	Caret int
}

// Validate inserts toAppend at caret, validating each appended rune against
// the text written before it, then re-validates the text that followed the
// caret. Blocked runes are dropped. The caret ends after the last accepted
// appended rune.
func (v TextValidator) Validate(text, toAppend string, caret, selectionStart int) Result {
	src := []rune(text)
	add := []rune(toAppend)
	caret = min(max(caret, 0), len(src))
	startCaret := caret

	buf := make([]rune, len(src)+len(add))
	copy(buf, src)

	// A collapsed selection follows the caret while typing.
	collapsed := selectionStart == caret
	selection := func() int {
		if collapsed {
			return caret
		}
		return selectionStart
	}

	pos := caret
	blocked := 0
	for _, ch := range add {
		if r := v.ValidateChar(ch, buf, pos, pos, caret, selection()); r != 0 {
			buf[pos] = r
			pos++
			caret++
		} else {
			blocked++
		}
	}
	for _, ch := range src[startCaret:] {
		if r := v.ValidateChar(ch, buf, pos, pos, caret, selection()); r != 0 {
			buf[pos] = r
			pos++
		} else {
			blocked++
		}
	}

	if blocked > 0 {
		log.Debug(log.CatValidator, "Blocked characters", "validation", v.Validation.String(), "blocked", blocked)
	}
	return Result{Text: string(buf[:pos]), Caret: caret}
}

// ValidateString validates s as if it were typed into an empty field.
func (v TextValidator) ValidateString(s string) string {
	return v.Validate("", s, 0, 0).Text
}

// ValidateChar returns the rune to write at pos, or 0 to block ch.
// text[:textLen] is the text written so far.
func (v TextValidator) ValidateChar(ch rune, text []rune, textLen, pos, caret, selectionStart int) rune {
	if v.LineType != MultiLineNewline && (ch == '\r' || ch == '\n') {
		return 0
	}

	switch v.Validation {
	case None:
		return ch
	case Custom:
		if v.Custom == nil {
			return ch
		}
		return v.Custom.Validate(ch, text, textLen, pos)
	case Integer, Decimal, DecimalForcePoint:
		return v.validateNumber(ch, text, textLen, pos, caret, selectionStart)
	case Alphanumeric:
		if isASCIILetter(ch) || isDigit(ch) {
			return ch
		}
	case Name:
		return validateName(ch, text, textLen, pos)
	case EmailAddress:
		return validateEmail(ch, text, textLen, pos)
	case IPAddress:
		return validateIP(ch, text, textLen)
	case Sentence:
		if unicode.IsLetter(ch) && unicode.IsLower(ch) {
			if pos == 0 || (pos > 1 && text[pos-1] == ' ' && text[pos-2] == '.') {
				return unicode.ToUpper(ch)
			}
		}
		return ch
	}
	return 0
}

func (v TextValidator) validateNumber(ch rune, text []rune, textLen, pos, caret, selectionStart int) rune {
	leadingDash := textLen > 0 && text[0] == '-'
	caretBeforeDash := pos == 0 && leadingDash
	dashInSelection := leadingDash && ((caret == 0 && selectionStart > 0) || (selectionStart == 0 && caret > 0))
	selectionAtStart := caret == 0 || selectionStart == 0

	if caretBeforeDash && !dashInSelection {
		return 0
	}
	if isDigit(ch) {
		return ch
	}
	if ch == '-' && (pos == 0 || selectionAtStart) {
		return ch
	}

	switch v.Validation {
	case Decimal:
		if (ch == '.' || ch == ',') && !containsRune('.', text, textLen) && !containsRune(',', text, textLen) {
			return ch
		}
	case DecimalForcePoint:
		if !containsRune('.', text, textLen) {
			if ch == '.' {
				return ch
			}
			if ch == ',' {
				return '.'
			}
		}
	}
	return 0
}

// validateName capitalizes the first letter of each word, lowercases the
// rest, and allows single spaces and at most one apostrophe between letters.
func validateName(ch rune, text []rune, textLen, pos int) rune {
	var prev rune
	if pos > 0 {
		prev = text[pos-1]
	}

	if unicode.IsLetter(ch) {
		if unicode.IsLower(ch) && (pos == 0 || prev == ' ') {
			return unicode.ToUpper(ch)
		}
		if unicode.IsUpper(ch) && pos > 0 && prev != ' ' && prev != '\'' {
			return unicode.ToLower(ch)
		}
		return ch
	}

	if ch != '\'' && ch != ' ' {
		return 0
	}
	if ch == '\'' && containsRune('\'', text, textLen) {
		return 0
	}

	prevBlocks := pos > 0 && (prev == ' ' || prev == '\'')
	nextBlocks := pos < textLen && (text[pos] == ' ' || text[pos] == '\'')
	if prevBlocks || nextBlocks {
		return 0
	}
	return ch
}

func validateEmail(ch rune, text []rune, textLen, pos int) rune {
	switch {
	case unicode.IsLetter(ch) || unicode.IsDigit(ch):
		return ch
	case ch == '@':
		if indexRune('@', text, textLen) == -1 {
			return ch
		}
	case strings.ContainsRune(emailSpecialCharacters, ch):
		return ch
	case ch == '.':
		lastChar, nextChar := ' ', '\n'
		if textLen > 0 {
			lastChar = text[min(max(pos, 0), textLen-1)]
			nextChar = text[min(max(pos+1, 0), textLen-1)]
		}
		if lastChar != '.' && nextChar != '.' {
			return ch
		}
	}
	return 0
}

// validateIP accepts up to four dot-separated sections of at most three digits.
func validateIP(ch rune, text []rune, textLen int) rune {
	lastDot := lastIndexRune('.', text, textLen)
	if lastDot == -1 {
		if textLen < 3 && isDigit(ch) {
			return ch
		}
		if ch == '.' && textLen > 0 {
			return ch
		}
		return 0
	}

	if isDigit(ch) && (textLen-1)-lastDot < 3 {
		return ch
	}
	if ch == '.' && lastDot != textLen-1 && countRune('.', text, textLen) < 3 {
		return ch
	}
	return 0
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isASCIILetter(ch rune) bool {
	return (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z')
}
