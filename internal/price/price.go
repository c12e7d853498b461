// Package price converts locale-formatted currency text from the listing
// page into decimal amounts.
package price

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	thousandsSep = "."
	decimalSep   = ","
	// wholeSuffix is the Dutch notation for an amount without cents ("€ 899,-")
	wholeSuffix = ",-"
)

var (
	currencySymbols = []string{"€", "EUR"}
	canonicalAmount = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

// MalformedPriceError reports a fragment that could not be read as an amount.
// Callers skip the candidate; it is never fatal.
type MalformedPriceError struct {
	Raw    string
	Reason string
}

func (e *MalformedPriceError) Error() string {
	return fmt.Sprintf("malformed price %q: %s", e.Raw, e.Reason)
}

// Parse normalizes a fragment such as "€ 1.099,50" into 1099.50
func Parse(raw string) (decimal.Decimal, error) {
	s := strings.NewReplacer("\u00a0", " ", "\u202f", " ").Replace(raw)
	for _, sym := range currencySymbols {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, &MalformedPriceError{Raw: raw, Reason: "empty after stripping currency"}
	}

	s = strings.TrimSuffix(s, wholeSuffix)
	s = strings.ReplaceAll(s, thousandsSep, "")
	s = strings.Replace(s, decimalSep, ".", 1)

	if !canonicalAmount.MatchString(s) {
		return decimal.Zero, &MalformedPriceError{Raw: raw, Reason: "not a number"}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &MalformedPriceError{Raw: raw, Reason: err.Error()}
	}
	return d, nil
}

// Total derives the booking total for a party of the given size
func Total(perPerson decimal.Decimal, partySize int) decimal.Decimal {
	return perPerson.Mul(decimal.NewFromInt(int64(partySize)))
}

// Format renders an amount rounded to cents in the source locale, e.g. "€ 1.099,50"
func Format(d decimal.Decimal) string {
	fixed := d.StringFixed(2)
	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	whole, cents, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteString(thousandsSep)
		}
		b.WriteRune(r)
	}

	sign := ""
	if neg {
		sign = "-"
	}
	return "€ " + sign + b.String() + decimalSep + cents
}
