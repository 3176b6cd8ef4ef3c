// Package keyboard connects an input field to a platform keyboard.
//
// The platform side runs on its own goroutine and only enqueues events. The
// owner of the input field drains them on its own loop through Bridge.Tick,
// so the engine is never touched concurrently.
package keyboard

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zjrosen/richinput/internal/cachemanager"
	"github.com/zjrosen/richinput/internal/log"
	"github.com/zjrosen/richinput/internal/validator"
)

// KeyboardType selects the key layout the platform shows.
type KeyboardType int

const (
	KeyboardDefault KeyboardType = iota
	KeyboardASCIICapable
	KeyboardDecimalPad
	KeyboardURL
	KeyboardNumberPad
	KeyboardPhonePad
	KeyboardEmailAddress
	KeyboardNumbersAndPunctuation
)

var keyboardTypeNames = []string{
	"default", "ascii_capable", "decimal_pad", "url", "number_pad", "phone_pad", "email_address", "numbers_and_punctuation",
}

func (k KeyboardType) String() string { return enumName(keyboardTypeNames, int(k), "KeyboardType") }

// ParseKeyboardType parses a name such as "number_pad".
func ParseKeyboardType(s string) (KeyboardType, error) {
	i, err := parseEnum(keyboardTypeNames, s, "keyboard type")
	return KeyboardType(i), err
}

// AutocapitalizationType controls automatic capitals on the platform keyboard.
type AutocapitalizationType int

const (
	AutocapitalizeNone AutocapitalizationType = iota
	AutocapitalizeCharacters
	AutocapitalizeWords
	AutocapitalizeSentences
)

var autocapitalizationNames = []string{"none", "characters", "words", "sentences"}

func (a AutocapitalizationType) String() string {
	return enumName(autocapitalizationNames, int(a), "AutocapitalizationType")
}

// ParseAutocapitalizationType parses a name such as "sentences".
func ParseAutocapitalizationType(s string) (AutocapitalizationType, error) {
	i, err := parseEnum(autocapitalizationNames, s, "autocapitalization")
	return AutocapitalizationType(i), err
}

// AutofillType hints what the platform may offer to fill in.
type AutofillType int

const (
	AutofillNone AutofillType = iota
	AutofillUsername
	AutofillPassword
	AutofillNewPassword
	AutofillOneTimeCode
	AutofillName
	AutofillGivenName
	AutofillMiddleName
	AutofillFamilyName
	AutofillLocation
	AutofillFullStreetAddress
	AutofillStreetAddressLine1
	AutofillStreetAddressLine2
	AutofillAddressCity
	AutofillAddressState
	AutofillAddressCityAndState
	AutofillCountryName
	AutofillPostalCode
	AutofillTelephoneNumber
)

var autofillNames = []string{
	"none", "username", "password", "new_password", "one_time_code", "name", "given_name", "middle_name",
	"family_name", "location", "full_street_address", "street_address_line_1", "street_address_line_2",
	"address_city", "address_state", "address_city_and_state", "country_name", "postal_code", "telephone_number",
}

func (a AutofillType) String() string { return enumName(autofillNames, int(a), "AutofillType") }

// ParseAutofillType parses a name such as "one_time_code".
func ParseAutofillType(s string) (AutofillType, error) {
	i, err := parseEnum(autofillNames, s, "autofill type")
	return AutofillType(i), err
}

// ReturnKeyType labels the platform's return key.
type ReturnKeyType int

const (
	ReturnDefault ReturnKeyType = iota
	ReturnGo
	ReturnSend
	ReturnSearch
)

var returnKeyNames = []string{"default", "go", "send", "search"}

func (r ReturnKeyType) String() string { return enumName(returnKeyNames, int(r), "ReturnKeyType") }

// ParseReturnKeyType parses a name such as "send".
func ParseReturnKeyType(s string) (ReturnKeyType, error) {
	i, err := parseEnum(returnKeyNames, s, "return key type")
	return ReturnKeyType(i), err
}

// Configuration is sent to the platform when the keyboard is shown.
// Enums travel as integers and the custom validator as a nested JSON string.
type Configuration struct {
	KeyboardType           KeyboardType           `json:"keyboardType"`
	CharacterValidation    validator.Validation   `json:"characterValidation"`
	LineType               validator.LineType     `json:"lineType"`
	AutocapitalizationType AutocapitalizationType `json:"autocapitalizationType"`
	AutofillType           AutofillType           `json:"autofillType"`
	ReturnKeyType          ReturnKeyType          `json:"returnKeyType"`
	Autocorrection         bool                   `json:"autocorrection"`
	Secure                 bool                   `json:"secure"`
	RichTextEditing        bool                   `json:"richTextEditing"`
	EmojisAllowed          bool                   `json:"emojisAllowed"`
	HasNext                bool                   `json:"hasNext"`
	CharacterLimit         int                    `json:"characterLimit"`
	CharacterValidatorJSON string                 `json:"characterValidatorJSON"`
}

// Encode returns the JSON wire form.
func (c Configuration) Encode() (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encoding keyboard configuration: %w", err)
	}
	return string(data), nil
}

// Decode parses the JSON wire form. Missing fields keep their zero values.
func Decode(data string) (Configuration, error) {
	var c Configuration
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return Configuration{}, fmt.Errorf("decoding keyboard configuration: %w", err)
	}
	return c, nil
}

const validatorCacheTTL = cachemanager.DefaultExpiration

var validatorCache = cachemanager.NewReadThroughCache[string, *validator.CharacterValidator, string](
	cachemanager.NewMemory[*validator.CharacterValidator]("character-validators", validatorCacheTTL, cachemanager.DefaultCleanupInterval),
	func(_ context.Context, data string) (*validator.CharacterValidator, error) {
		log.Debug(log.CatKeyboard, "Decoding character validator", "bytes", len(data))
		return validator.ParseCharacterValidatorJSON([]byte(data))
	},
	false,
)

// DecodeValidator returns the custom character validator, or nil when none
// is configured. Decoded validators are cached by their JSON and shared, so
// callers must not modify the result.
func (c Configuration) DecodeValidator(ctx context.Context) (*validator.CharacterValidator, error) {
	if c.CharacterValidatorJSON == "" {
		return nil, nil
	}
	v, err := validatorCache.GetWithRefresh(ctx, c.CharacterValidatorJSON, c.CharacterValidatorJSON, validatorCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("keyboard configuration: %w", err)
	}
	return v, nil
}

// TextValidator builds the validator the configuration describes.
func (c Configuration) TextValidator(ctx context.Context) (validator.TextValidator, error) {
	custom, err := c.DecodeValidator(ctx)
	if err != nil {
		return validator.TextValidator{}, err
	}
	return validator.TextValidator{Validation: c.CharacterValidation, LineType: c.LineType, Custom: custom}, nil
}

func enumName(names []string, i int, typeName string) string {
	if i >= 0 && i < len(names) {
		return names[i]
	}
	return fmt.Sprintf("%s(%d)", typeName, i)
}

func parseEnum(names []string, s, what string) (int, error) {
	for i, name := range names {
		if name == normalize(s) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", what, s)
}
