package extract

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount turns a matched amount substring into a non-negative decimal,
// honoring the sender locale's thousands and decimal separators. Direction is
// carried by the transaction type, never by sign.
func parseAmount(raw, thousandsSep, decimalSep string) (decimal.Decimal, error) {
	s := foldDigits(strings.TrimSpace(raw))

	// Currency symbols occasionally leak into the capture group.
	s = strings.Map(func(r rune) rune {
		switch r {
		case '$', '₹', '€', '£', '¥', ' ':
			return -1
		}
		return r
	}, s)

	if thousandsSep != "" {
		s = strings.ReplaceAll(s, thousandsSep, "")
	}
	if decimalSep != "" && decimalSep != "." {
		s = strings.ReplaceAll(s, decimalSep, ".")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a number: %w", err)
	}
	if d.IsNegative() {
		d = d.Abs()
	}
	if d.IsZero() {
		return decimal.Zero, fmt.Errorf("zero amount")
	}
	return d, nil
}

// currencyTokens maps currency tokens as they appear in message bodies to
// ISO-style codes.
var currencyTokens = map[string]string{
	"SAR": "SAR", "SR": "SAR", "ريال": "SAR",
	"USD": "USD", "$": "USD",
	"EUR": "EUR", "€": "EUR",
	"GBP": "GBP", "£": "GBP",
	"AED": "AED", "KWD": "KWD", "BHD": "BHD", "QAR": "QAR",
	"INR": "INR", "RS": "INR", "RS.": "INR", "₹": "INR",
}

// resolveCurrency maps a matched currency token to its code. Unrecognized
// tokens resolve to the empty string so the template default applies.
func resolveCurrency(token string) string {
	t := strings.ToUpper(strings.TrimSpace(token))
	if code, ok := currencyTokens[t]; ok {
		return code
	}
	return ""
}
