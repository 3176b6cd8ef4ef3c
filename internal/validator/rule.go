package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalidRules is returned when a custom validator definition cannot be used.
var ErrInvalidRules = errors.New("invalid character validator rules")

// ConditionOperator is the comparison a CharacterCondition performs.
type ConditionOperator int

const (
	ValueEquals ConditionOperator = iota
	ValueSmallerThan
	ValueSmallerThanOrEquals
	ValueGreaterThan
	ValueGreaterThanOrEquals
	ValueBetweenInclusive
	ValueBetweenExclusive
	ValueInString
	IndexEquals
	IndexSmallerThan
	IndexSmallerThanOrEquals
	IndexGreaterThan
	IndexGreaterThanOrEquals
	IndexBetweenInclusive
	IndexBetweenExclusive
	OccurrencesSmallerThan
	OccurrencesSmallerThanOrEquals
	OccurrencesGreaterThan
	OccurrencesGreaterThanOrEquals
	ValueSameAsPrevious
)

var operatorNames = []string{
	"value_equals", "value_smaller_than", "value_smaller_than_or_equals", "value_greater_than",
	"value_greater_than_or_equals", "value_between_inclusive", "value_between_exclusive", "value_in_string",
	"index_equals", "index_smaller_than", "index_smaller_than_or_equals", "index_greater_than",
	"index_greater_than_or_equals", "index_between_inclusive", "index_between_exclusive",
	"occurrences_smaller_than", "occurrences_smaller_than_or_equals", "occurrences_greater_than",
	"occurrences_greater_than_or_equals", "value_same_as_previous",
}

func (o ConditionOperator) String() string {
	if o >= 0 && int(o) < len(operatorNames) {
		return operatorNames[o]
	}
	return fmt.Sprintf("ConditionOperator(%d)", int(o))
}

// ParseConditionOperator parses an operator name such as "index_equals".
func ParseConditionOperator(s string) (ConditionOperator, error) {
	i, err := parseName(s, operatorNames)
	if err != nil {
		return ValueEquals, fmt.Errorf("condition operator: %w", err)
	}
	return ConditionOperator(i), nil
}

// CharacterAction is what a matching rule does with the candidate character.
type CharacterAction int

const (
	Allow CharacterAction = iota
	Block
	ToUppercase
	ToLowercase
	Replace
)

var actionNames = []string{"allow", "block", "to_uppercase", "to_lowercase", "replace"}

func (a CharacterAction) String() string {
	if a >= 0 && int(a) < len(actionNames) {
		return actionNames[a]
	}
	return fmt.Sprintf("CharacterAction(%d)", int(a))
}

// ParseCharacterAction parses an action name such as "to_uppercase".
func ParseCharacterAction(s string) (CharacterAction, error) {
	i, err := parseName(s, actionNames)
	if err != nil {
		return Allow, fmt.Errorf("character action: %w", err)
	}
	return CharacterAction(i), nil
}

// CharacterCondition tests the candidate character, its position, or how
// often it already occurs in the text written so far.
type CharacterCondition struct {
	Operator    ConditionOperator `json:"conditionOperator" yaml:"operator" mapstructure:"operator"`
	IntValue1   int               `json:"conditionIntValue1" yaml:"int_value1" mapstructure:"int_value1"`
	IntValue2   int               `json:"conditionIntValue2" yaml:"int_value2" mapstructure:"int_value2"`
	StringValue string            `json:"conditionStringValue" yaml:"string_value" mapstructure:"string_value"`
}

// IsConditionMet evaluates the condition. text[:textLen] is the text written
// so far and pos is where ch would go.
func (c CharacterCondition) IsConditionMet(ch rune, text []rune, textLen, pos int) bool {
	v := int(ch)
	switch c.Operator {
	case ValueEquals:
		return v == c.IntValue1
	case ValueSmallerThan:
		return v < c.IntValue1
	case ValueSmallerThanOrEquals:
		return v <= c.IntValue1
	case ValueGreaterThan:
		return v > c.IntValue1
	case ValueGreaterThanOrEquals:
		return v >= c.IntValue1
	case ValueBetweenInclusive:
		return v >= c.IntValue1 && v <= c.IntValue2
	case ValueBetweenExclusive:
		return v > c.IntValue1 && v < c.IntValue2
	case ValueInString:
		return strings.ContainsRune(c.StringValue, ch)
	case IndexEquals:
		return pos == c.IntValue1
	case IndexSmallerThan:
		return pos < c.IntValue1
	case IndexSmallerThanOrEquals:
		return pos <= c.IntValue1
	case IndexGreaterThan:
		return pos > c.IntValue1
	case IndexGreaterThanOrEquals:
		return pos >= c.IntValue1
	case IndexBetweenInclusive:
		return pos >= c.IntValue1 && pos <= c.IntValue2
	case IndexBetweenExclusive:
		return pos > c.IntValue1 && pos < c.IntValue2
	case OccurrencesSmallerThan:
		return countRune(ch, text, textLen) < c.IntValue2
	case OccurrencesSmallerThanOrEquals:
		return countRune(ch, text, textLen) <= c.IntValue2
	case OccurrencesGreaterThan:
		return countRune(ch, text, textLen) > c.IntValue2
	case OccurrencesGreaterThanOrEquals:
		return countRune(ch, text, textLen) >= c.IntValue2
	case ValueSameAsPrevious:
		return pos > 0 && pos <= textLen && text[pos-1] == ch
	}
	return false
}

// CharacterRule applies Action when all of its conditions hold.
type CharacterRule struct {
	Conditions     []CharacterCondition `json:"conditions" yaml:"conditions" mapstructure:"conditions"`
	Action         CharacterAction      `json:"action" yaml:"action" mapstructure:"action"`
	ActionIntValue int                  `json:"actionIntValue" yaml:"action_int_value" mapstructure:"action_int_value"`
}

// AreConditionsMet reports whether every condition holds. A rule without
// conditions never matches.
func (r CharacterRule) AreConditionsMet(ch rune, text []rune, textLen, pos int) bool {
	for _, c := range r.Conditions {
		if !c.IsConditionMet(ch, text, textLen, pos) {
			return false
		}
	}
	return len(r.Conditions) > 0
}

// CharacterValidator is an ordered list of rules plus a fallback action.
type CharacterValidator struct {
	Rules                        []CharacterRule `json:"rules" yaml:"rules" mapstructure:"rules"`
	OtherCharacterAction         CharacterAction `json:"otherCharacterAction" yaml:"other_character_action" mapstructure:"other_character_action"`
	OtherCharacterActionIntValue int             `json:"otherCharacterActionIntValue" yaml:"other_character_action_int_value" mapstructure:"other_character_action_int_value"`
}

// Validate returns the character to write, or 0 to block it. The first rule
// whose conditions hold decides.
func (v *CharacterValidator) Validate(ch rune, text []rune, textLen, pos int) rune {
	for _, rule := range v.Rules {
		if rule.AreConditionsMet(ch, text, textLen, pos) {
			return executeAction(ch, rule.Action, rule.ActionIntValue)
		}
	}
	return executeAction(ch, v.OtherCharacterAction, v.OtherCharacterActionIntValue)
}

func executeAction(ch rune, action CharacterAction, value int) rune {
	switch action {
	case Allow:
		return ch
	case Block:
		return 0
	case ToUppercase:
		return unicode.ToUpper(ch)
	case ToLowercase:
		return unicode.ToLower(ch)
	case Replace:
		return rune(value)
	}
	return ch
}

// Check reports rules that reference unknown operators or actions.
func (v *CharacterValidator) Check() error {
	var errs []error
	checkAction := func(where string, a CharacterAction) {
		if a < Allow || a > Replace {
			errs = append(errs, fmt.Errorf("%s: unknown action %d", where, int(a)))
		}
	}
	for i, rule := range v.Rules {
		checkAction(fmt.Sprintf("rule %d", i), rule.Action)
		for j, c := range rule.Conditions {
			if c.Operator < ValueEquals || c.Operator > ValueSameAsPrevious {
				errs = append(errs, fmt.Errorf("rule %d condition %d: unknown operator %d", i, j, int(c.Operator)))
			}
		}
	}
	checkAction("other character", v.OtherCharacterAction)
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRules, errors.Join(errs...))
	}
	return nil
}

// ParseCharacterValidatorJSON decodes the camelCase wire form and checks it.
func ParseCharacterValidatorJSON(data []byte) (*CharacterValidator, error) {
	var v CharacterValidator
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRules, err)
	}
	if err := v.Check(); err != nil {
		return nil, err
	}
	return &v, nil
}

// JSON encodes the validator in its camelCase wire form.
func (v *CharacterValidator) JSON() (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding character validator: %w", err)
	}
	return string(data), nil
}

func countRune(ch rune, text []rune, textLen int) int {
	n := 0
	for _, r := range text[:min(textLen, len(text))] {
		if r == ch {
			n++
		}
	}
	return n
}

func containsRune(ch rune, text []rune, textLen int) bool {
	return indexRune(ch, text, textLen) >= 0
}

func indexRune(ch rune, text []rune, textLen int) int {
	for i, r := range text[:min(textLen, len(text))] {
		if r == ch {
			return i
		}
	}
	return -1
}

func lastIndexRune(ch rune, text []rune, textLen int) int {
	for i := min(textLen, len(text)) - 1; i >= 0; i-- {
		if text[i] == ch {
			return i
		}
	}
	return -1
}
