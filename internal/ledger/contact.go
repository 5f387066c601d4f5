package ledger

import (
	"strings"
)

// ContactPolicy validates and normalizes recipient phone numbers to E.164.
type ContactPolicy struct {
	CountryCode    string // Dialing code without the plus, e.g. 27.
	NationalDigits int    // Subscriber digits after the trunk or country prefix.
}

// DefaultContactPolicy accepts South African mobile numbers.
var DefaultContactPolicy = ContactPolicy{CountryCode: "27", NationalDigits: 9}

// Normalize returns contact as +<country><national>. Accepted inputs are
// +27XXXXXXXXX, 27XXXXXXXXX and 0XXXXXXXXX with optional spaces, dashes and parentheses.
func (p ContactPolicy) Normalize(contact string) (string, error) {
	if p.CountryCode == "" || p.NationalDigits <= 0 {
		p = DefaultContactPolicy
	}
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.', '\t':
			return -1
		}
		return r
	}, strings.TrimSpace(contact))

	var national string
	switch {
	case strings.HasPrefix(cleaned, "+"+p.CountryCode):
		national = cleaned[len(p.CountryCode)+1:]
	case strings.HasPrefix(cleaned, "00"+p.CountryCode):
		national = cleaned[len(p.CountryCode)+2:]
	case strings.HasPrefix(cleaned, p.CountryCode) && len(cleaned) == len(p.CountryCode)+p.NationalDigits:
		national = cleaned[len(p.CountryCode):]
	case strings.HasPrefix(cleaned, "0") && len(cleaned) == p.NationalDigits+1:
		national = cleaned[1:]
	default:
		return "", ErrInvalidRecipient
	}
	if len(national) != p.NationalDigits || !allDigits(national) || national[0] == '0' {
		return "", ErrInvalidRecipient
	}
	return "+" + p.CountryCode + national, nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
