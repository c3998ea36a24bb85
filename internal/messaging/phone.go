package messaging

import (
	"fmt"
	"strings"
	"unicode"
)

// DefaultCountryCode is applied to bare local numbers. Bahrain subscriber
// numbers are 8 digits.
const DefaultCountryCode = "973"

const localNumberLength = 8

// NormalizePhone converts a phone number into E.164 form (+<cc><number>).
// Accepted inputs: already-normalized E.164, 00-prefixed international
// numbers, and bare 8-digit local numbers which get the default country
// code. Spaces, dashes and parentheses are stripped first.
func NormalizePhone(raw string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsDigit(r):
			return r
		case r == '+':
			return r
		case r == ' ' || r == '-' || r == '(' || r == ')':
			return -1
		default:
			return r
		}
	}, strings.TrimSpace(raw))

	if cleaned == "" {
		return "", fmt.Errorf("empty phone number")
	}

	switch {
	case strings.HasPrefix(cleaned, "+"):
		digits := cleaned[1:]
		if !allDigits(digits) || len(digits) < 8 || len(digits) > 15 {
			return "", fmt.Errorf("invalid international number %q", raw)
		}
		return "+" + digits, nil

	case strings.HasPrefix(cleaned, "00"):
		digits := cleaned[2:]
		if !allDigits(digits) || len(digits) < 8 || len(digits) > 15 {
			return "", fmt.Errorf("invalid international number %q", raw)
		}
		return "+" + digits, nil

	default:
		if !allDigits(cleaned) {
			return "", fmt.Errorf("invalid phone number %q", raw)
		}
		if len(cleaned) == localNumberLength {
			return "+" + DefaultCountryCode + cleaned, nil
		}
		if strings.HasPrefix(cleaned, DefaultCountryCode) && len(cleaned) == len(DefaultCountryCode)+localNumberLength {
			return "+" + cleaned, nil
		}
		return "", fmt.Errorf("cannot normalize phone number %q", raw)
	}
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(s) > 0
}
