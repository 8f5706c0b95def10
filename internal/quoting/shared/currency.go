package shared

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders monetary figures with two decimal places and a fixed currency symbol.
type Formatter struct {
	symbol  string
	printer *message.Printer
}

// NewFormatter builds a Formatter. An unparseable locale falls back to English grouping.
func NewFormatter(symbol, locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Formatter{symbol: strings.TrimSpace(symbol), printer: message.NewPrinter(tag)}
}

// Format renders amount rounded half-away-from-zero to cents.
func (f *Formatter) Format(amount decimal.Decimal) string {
	if f == nil {
		return amount.StringFixed(2)
	}
	// Display only: the value is already rounded to cents so float conversion is exact enough.
	rounded := amount.Round(2).InexactFloat64()
	body := f.printer.Sprintf("%.2f", rounded)
	if f.symbol == "" {
		return body
	}
	return f.symbol + " " + body
}

// Symbol returns the configured currency symbol.
func (f *Formatter) Symbol() string {
	if f == nil {
		return ""
	}
	return f.symbol
}
