package ledger

import (
	"fmt"
	"strings"

	"github.com/cashclear/cashclear-pro/internal/security"
)

// Code styles.
const (
	CodeStylePhone  = "phone"
	CodeStyleRandom = "random"
)

// maxCodeAttempts bounds retries after a generated code collides.
const maxCodeAttempts = 8

// CodeGenerator produces candidate voucher codes.
type CodeGenerator interface {
	Generate(prefix, recipient string) (string, error)
}

// CodeGeneratorFunc adapts a function to CodeGenerator.
type CodeGeneratorFunc func(prefix, recipient string) (string, error)

// Generate implements CodeGenerator.
func (f CodeGeneratorFunc) Generate(prefix, recipient string) (string, error) {
	return f(prefix, recipient)
}

// NewCodeGenerator returns the generator for style. Unknown styles fall back to phone.
func NewCodeGenerator(style string) CodeGenerator {
	if strings.EqualFold(strings.TrimSpace(style), CodeStyleRandom) {
		return CodeGeneratorFunc(randomCode)
	}
	return CodeGeneratorFunc(phoneCode)
}

// phoneCode builds PREFIX-<last four recipient digits>-<four random digits>.
func phoneCode(prefix, recipient string) (string, error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, recipient)
	if len(digits) < 4 {
		digits = strings.Repeat("0", 4-len(digits)) + digits
	}
	suffix, errRandom := security.RandomDigits(4)
	if errRandom != nil {
		return "", errRandom
	}
	return fmt.Sprintf("%s-%s-%s", prefix, digits[len(digits)-4:], suffix), nil
}

// randomCode builds PREFIX-<eight random characters>.
func randomCode(prefix, _ string) (string, error) {
	suffix, errRandom := security.RandomCode(8)
	if errRandom != nil {
		return "", errRandom
	}
	return prefix + "-" + suffix, nil
}

// NormalizeCode trims and upper-cases a code entered by an agent.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizeOperatorID trims and upper-cases an operator identifier.
func NormalizeOperatorID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
