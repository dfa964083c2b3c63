package parser

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Finanzguru exports use German formatting throughout: DD.MM.YYYY dates,
// comma decimal separator with dot thousands grouping, and Ja/Nein booleans.

const germanDateLayout = "02.01.2006"

var truthyValues = map[string]bool{
	"ja":   true,
	"yes":  true,
	"true": true,
	"1":    true,
	"wahr": true,
}

// ParseGermanDate parses a DD.MM.YYYY date string into a pure calendar date
// (midnight UTC). Blank input and structurally invalid dates such as
// "32.01.2024" fail with a FormatError.
func ParseGermanDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, &FormatError{Field: "date", Value: s, Reason: "empty"}
	}
	t, err := time.Parse(germanDateLayout, s)
	if err != nil {
		return time.Time{}, &FormatError{Field: "date", Value: s, Reason: "expected DD.MM.YYYY"}
	}
	return t, nil
}

// ParseGermanAmount parses an amount in German locale format, e.g.
// "2.500,00" or "-45,67". The dot is a thousands separator and is stripped;
// the comma becomes the decimal point.
func ParseGermanAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, &FormatError{Field: "amount", Value: s, Reason: "empty"}
	}
	cleaned := strings.ReplaceAll(s, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, &FormatError{Field: "amount", Value: s, Reason: "not a number"}
	}
	return d, nil
}

// ParseGermanBoolean interprets Ja/Yes/True/1/Wahr (case-insensitive) as
// true. Blank input and anything else is false; it never fails.
func ParseGermanBoolean(s string) bool {
	return truthyValues[strings.ToLower(strings.TrimSpace(s))]
}
