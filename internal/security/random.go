package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// codeAlphabet omits characters that are easy to confuse when read aloud.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// RandomDigits returns n uniformly random decimal digits.
func RandomDigits(n int) (string, error) {
	return randomFrom("0123456789", n)
}

// RandomCode returns n uniformly random characters from an unambiguous upper-case alphabet.
func RandomCode(n int) (string, error) {
	return randomFrom(codeAlphabet, n)
}

func randomFrom(alphabet string, n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("random: invalid length %d", n)
	}
	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("random: %w", err)
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out), nil
}
