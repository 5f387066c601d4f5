package security

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// breakGlassAccount labels the TOTP enrolment for authenticator apps.
const breakGlassAccount = "break-glass"

// BreakGlassKey is a freshly generated break-glass secret.
type BreakGlassKey struct {
	Secret string // Base32 secret stored in settings.
	URL    string // otpauth:// enrolment URL.
}

// GenerateBreakGlassKey creates a new TOTP secret for the break-glass procedure.
func GenerateBreakGlassKey(issuer string) (BreakGlassKey, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: breakGlassAccount,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return BreakGlassKey{}, err
	}
	return BreakGlassKey{Secret: key.Secret(), URL: key.URL()}, nil
}

// breakGlassPeriod is the TOTP step length in seconds.
const breakGlassPeriod = 30

// BreakGlassStep returns the TOTP time step that code belongs to, accepting one step of
// clock skew either way. Callers persist the step to reject reuse.
func BreakGlassStep(secret, code string, t time.Time) (int64, bool) {
	secret = strings.TrimSpace(secret)
	code = strings.TrimSpace(code)
	if secret == "" || len(code) != int(otp.DigitsSix) {
		return 0, false
	}
	current := t.UTC().Unix() / breakGlassPeriod
	for _, step := range []int64{current - 1, current, current + 1} {
		want, err := totp.GenerateCodeCustom(secret, time.Unix(step*breakGlassPeriod, 0).UTC(), totp.ValidateOpts{
			Period:    breakGlassPeriod,
			Digits:    otp.DigitsSix,
			Algorithm: otp.AlgorithmSHA1,
		})
		if err != nil {
			return 0, false
		}
		if subtle.ConstantTimeCompare([]byte(want), []byte(code)) == 1 {
			return step, true
		}
	}
	return 0, false
}
