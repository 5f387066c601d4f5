package ledger

import (
	"errors"
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
)

func TestContactPolicyNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
		err  error
	}{
		{"+27821234567", "+27821234567", nil},
		{"27821234567", "+27821234567", nil},
		{"0821234567", "+27821234567", nil},
		{"082 123 4567", "+27821234567", nil},
		{"(082) 123-4567", "+27821234567", nil},
		{"0027821234567", "+27821234567", nil},
		{"+2782123456", "", ErrInvalidRecipient},
		{"+278212345678", "", ErrInvalidRecipient},
		{"+27021234567", "", ErrInvalidRecipient},
		{"+1555123456", "", ErrInvalidRecipient},
		{"08212345ab", "", ErrInvalidRecipient},
		{"", "", ErrInvalidRecipient},
	}
	for _, tc := range cases {
		got, errNormalize := DefaultContactPolicy.Normalize(tc.in)
		if tc.err != nil {
			if !errors.Is(errNormalize, tc.err) {
				t.Fatalf("Normalize(%q) error = %v, want %v", tc.in, errNormalize, tc.err)
			}
			continue
		}
		if errNormalize != nil || got != tc.want {
			t.Fatalf("Normalize(%q) = %q, %v; want %q", tc.in, got, errNormalize, tc.want)
		}
	}
}

func TestContactPolicyCustomCountry(t *testing.T) {
	policy := ContactPolicy{CountryCode: "263", NationalDigits: 9}
	got, errNormalize := policy.Normalize("0771234567")
	if errNormalize != nil || got != "+263771234567" {
		t.Fatalf("Normalize = %q, %v", got, errNormalize)
	}
}

func TestAmountToCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		err  bool
	}{
		{"50", 5000, false},
		{"0.01", 1, false},
		{"12.30", 1230, false},
		{"0", 0, true},
		{"-1", 0, true},
		{"0.001", 0, true},
		{"10000001", 0, true},
	}
	for _, tc := range cases {
		got, errCents := AmountToCents(decimal.RequireFromString(tc.in))
		if tc.err {
			if !errors.Is(errCents, ErrInvalidAmount) {
				t.Fatalf("AmountToCents(%s) error = %v", tc.in, errCents)
			}
			continue
		}
		if errCents != nil || got != tc.want {
			t.Fatalf("AmountToCents(%s) = %d, %v; want %d", tc.in, got, errCents, tc.want)
		}
	}
	if !CentsToAmount(1230).Equal(decimal.RequireFromString("12.3")) {
		t.Fatalf("CentsToAmount mismatch")
	}
}

func TestCodeGenerators(t *testing.T) {
	phone, errPhone := NewCodeGenerator(CodeStylePhone).Generate("PIP", "+27821234567")
	if errPhone != nil {
		t.Fatalf("phone code: %v", errPhone)
	}
	if !regexp.MustCompile(`^PIP-4567-[0-9]{4}$`).MatchString(phone) {
		t.Fatalf("phone code = %q", phone)
	}
	random, errRandom := NewCodeGenerator("RANDOM").Generate("PIP", "+27821234567")
	if errRandom != nil {
		t.Fatalf("random code: %v", errRandom)
	}
	if !regexp.MustCompile(`^PIP-[A-Z2-9]{8}$`).MatchString(random) {
		t.Fatalf("random code = %q", random)
	}
	if got := NormalizeCode("  pip-4567-0001 "); got != "PIP-4567-0001" {
		t.Fatalf("NormalizeCode = %q", got)
	}
}
