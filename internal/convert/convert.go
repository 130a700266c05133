// =============================================================================
// X9 Check Image Validator - Field Conversion Utilities
// =============================================================================
//
// X9 records carry every value as fixed-width text. This package is the single
// place where that raw text becomes typed values:
//   - counts            -> int
//   - currency amounts  -> decimal.Decimal (minor units, implied decimal point)
//   - dates             -> time.Time (YYYYMMDD)
//   - times of day      -> TimeOfDay (HHMM, 24-hour clock)
//
// All functions are pure. Any text that cannot be interpreted returns a
// *ConversionError; values are never silently defaulted.
//
// =============================================================================

package convert

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DateLayout is the X9 date layout (YYYYMMDD).
const DateLayout = "20060102"

// CurrencySymbol is prefixed to formatted money values.
var CurrencySymbol = "$"

// moneyPrinter groups the integer part of formatted amounts.
var moneyPrinter = message.NewPrinter(language.AmericanEnglish)

// =============================================================================
// CONVERSION ERROR
// =============================================================================

// ConversionError reports field text that could not be interpreted as the
// expected type.
type ConversionError struct {
	// Kind is the target type: "integer", "amount", "date" or "time".
	Kind string

	// Text is the raw field text as received.
	Text string

	// Reason describes what was wrong with the text.
	Reason string

	// Err is the underlying parse error, if any.
	Err error
}

// Error implements the error interface.
func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %q to %s: %s", e.Text, e.Kind, e.Reason)
}

// Unwrap returns the underlying parse error.
func (e *ConversionError) Unwrap() error {
	return e.Err
}

// =============================================================================
// INTEGERS AND AMOUNTS
// =============================================================================

// ParseInt converts a numeric field to an int. The trimmed text must consist
// of digits only and fit in 32 bits.
func ParseInt(text string) (int, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, &ConversionError{Kind: "integer", Text: text, Reason: "field is blank"}
	}
	if !isDigits(s) {
		return 0, &ConversionError{Kind: "integer", Text: text, Reason: "field is not numeric"}
	}

	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, &ConversionError{Kind: "integer", Text: text, Reason: "value overflows a 32-bit integer", Err: err}
	}
	return int(n), nil
}

// ParseAmount converts a currency field to a fixed-point decimal. The last two
// characters of the trimmed text are the cents; the rest is the whole part.
//
//	"123456" -> 1234.56
//	"05"     -> 0.05
//	"5"      -> error
func ParseAmount(text string) (decimal.Decimal, error) {
	s := strings.TrimSpace(text)
	if len(s) < 2 {
		return decimal.Zero, &ConversionError{Kind: "amount", Text: text, Reason: "fewer than 2 digits"}
	}

	whole, cents := s[:len(s)-2], s[len(s)-2:]
	if (whole != "" && !isDigits(whole)) || !isDigits(cents) {
		return decimal.Zero, &ConversionError{Kind: "amount", Text: text, Reason: "field is not numeric"}
	}
	if whole == "" {
		whole = "0"
	}

	amount, err := decimal.NewFromString(whole + "." + cents)
	if err != nil {
		return decimal.Zero, &ConversionError{Kind: "amount", Text: text, Reason: "field is not numeric", Err: err}
	}
	return amount, nil
}

// =============================================================================
// DATES AND TIMES
// =============================================================================

// ParseDate converts a YYYYMMDD field to a date (UTC midnight).
func ParseDate(text string) (time.Time, error) {
	s := strings.TrimSpace(text)
	if len(s) != len(DateLayout) || !isDigits(s) {
		return time.Time{}, &ConversionError{Kind: "date", Text: text, Reason: "expected 8 digits (YYYYMMDD)"}
	}

	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, &ConversionError{Kind: "date", Text: text, Reason: "not a calendar date", Err: err}
	}
	return d, nil
}

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// String formats the time as HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ParseTime24h converts an HHMM field to a TimeOfDay. Hour must be 0-23 and
// minute 0-59.
func ParseTime24h(text string) (TimeOfDay, error) {
	s := strings.TrimSpace(text)
	if len(s) < 4 || !isDigits(s[:4]) {
		return TimeOfDay{}, &ConversionError{Kind: "time", Text: text, Reason: "expected 4 digits (HHMM)"}
	}

	hour, _ := strconv.Atoi(s[:2])
	minute, _ := strconv.Atoi(s[2:4])
	if hour > 23 {
		return TimeOfDay{}, &ConversionError{Kind: "time", Text: text, Reason: fmt.Sprintf("hour %d out of range", hour)}
	}
	if minute > 59 {
		return TimeOfDay{}, &ConversionError{Kind: "time", Text: text, Reason: fmt.Sprintf("minute %d out of range", minute)}
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// =============================================================================
// FORMATTING
// =============================================================================

// FormatMoney rounds to cents (half away from zero) and formats the amount
// with the currency symbol and thousands separators, e.g. "$1,234.56".
func FormatMoney(amount decimal.Decimal) string {
	rounded := amount.Round(2)

	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}

	whole := rounded.Truncate(0)
	cents := rounded.Sub(whole).Shift(2).IntPart()

	return fmt.Sprintf("%s%s%s.%02d", sign, CurrencySymbol, moneyPrinter.Sprintf("%d", whole.IntPart()), cents)
}

// FormatAmount renders an amount with exactly two fractional digits and no
// grouping, e.g. "1234.56".
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// isDigits reports whether s is made only of ASCII digits.
func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
