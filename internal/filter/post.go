package filter

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/zjrosen/richinput/internal/log"
	"github.com/zjrosen/richinput/internal/textedit"
)

// DollarAmount formats a whole number as a dollar amount with digit grouping
// for its language: "1234" becomes "$1,234".
type DollarAmount struct {
	printer *message.Printer
}

// NewDollarAmount creates the filter for tag. An undetermined tag uses
// American English.
func NewDollarAmount(tag language.Tag) *DollarAmount {
	if tag == language.Und {
		tag = language.AmericanEnglish
	}
	return &DollarAmount{printer: message.NewPrinter(tag)}
}

// ProcessText implements PostFilter.
func (f *DollarAmount) ProcessText(text string) (string, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		if text != "" {
			log.Warn(log.CatFilter, "Not a valid whole number", "text", text, "error", err)
		}
		return "", false
	}
	return "$" + f.printer.Sprintf("%d", n), true
}

// DollarDecimal formats a decimal number as a dollar amount with two
// fraction digits. Text with a decimal point is printed with a point and
// text with a decimal comma is printed with a comma.
type DollarDecimal struct {
	point *message.Printer
	comma *message.Printer
}

// NewDollarDecimal creates the filter.
func NewDollarDecimal() *DollarDecimal {
	return &DollarDecimal{
		point: message.NewPrinter(language.AmericanEnglish),
		comma: message.NewPrinter(language.Dutch),
	}
}

// ProcessText implements PostFilter.
func (f *DollarDecimal) ProcessText(text string) (string, bool) {
	s := strings.TrimSpace(text)
	if v, ok := parseDecimal(s); ok {
		return "$" + f.format(f.point, v), true
	}
	if !strings.Contains(s, ".") {
		if v, ok := parseDecimal(strings.Replace(s, ",", ".", 1)); ok {
			return "$" + f.format(f.comma, v), true
		}
	}
	if text != "" {
		log.Warn(log.CatFilter, "Not a valid decimal number", "text", text)
	}
	return "", false
}

func (f *DollarDecimal) format(p *message.Printer, v float64) string {
	return p.Sprintf("%v", number.Decimal(v, number.Scale(2), number.NoSeparator()))
}

func parseDecimal(s string) (float64, bool) {
	if s == "" || strings.ContainsAny(s, "xX_") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Password replaces every rune with '*'.
type Password struct{}

// ProcessText implements PostFilter.
func (Password) ProcessText(text string) (string, bool) {
	return strings.Repeat("*", textedit.RuneLen(text)), true
}
