// Package validator decides, character by character, what may be typed into
// an input field.
//
// A TextValidator applies one of the built-in Validation modes, or a
// CharacterValidator made of user rules when the mode is Custom. A blocked
// character is reported as rune 0.
package validator

import (
	"fmt"
	"strings"
)

// Validation selects the character rules of an input field.
// The integer values are part of the keyboard wire format.
type Validation int

const (
	None Validation = iota
	Integer
	Decimal
	Alphanumeric
	Name
	EmailAddress
	IPAddress
	Sentence
	Custom
	DecimalForcePoint
)

var validationNames = []string{
	"none", "integer", "decimal", "alphanumeric", "name",
	"email_address", "ip_address", "sentence", "custom", "decimal_force_point",
}

func (v Validation) String() string {
	if v >= 0 && int(v) < len(validationNames) {
		return validationNames[v]
	}
	return fmt.Sprintf("Validation(%d)", int(v))
}

// ParseValidation parses a validation name such as "email_address".
// Matching ignores case and accepts dashes for underscores.
func ParseValidation(s string) (Validation, error) {
	i, err := parseName(s, validationNames)
	if err != nil {
		return None, fmt.Errorf("validation: %w", err)
	}
	return Validation(i), nil
}

// ValidationNames returns every validation name in wire order.
func ValidationNames() []string {
	return append([]string(nil), validationNames...)
}

// LineType controls how newlines are handled.
type LineType int

const (
	SingleLine LineType = iota
	MultiLineSubmit
	MultiLineNewline
)

var lineTypeNames = []string{"single_line", "multi_line_submit", "multi_line_newline"}

func (l LineType) String() string {
	if l >= 0 && int(l) < len(lineTypeNames) {
		return lineTypeNames[l]
	}
	return fmt.Sprintf("LineType(%d)", int(l))
}

// ParseLineType parses a line type name such as "multi_line_newline".
func ParseLineType(s string) (LineType, error) {
	i, err := parseName(s, lineTypeNames)
	if err != nil {
		return SingleLine, fmt.Errorf("line type: %w", err)
	}
	return LineType(i), nil
}

// LineTypeNames returns every line type name in wire order.
func LineTypeNames() []string {
	return append([]string(nil), lineTypeNames...)
}

func parseName(s string, names []string) (int, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for i, name := range names {
		if name == key {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown name %q (want one of %s)", s, strings.Join(names, ", "))
}
