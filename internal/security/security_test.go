package security

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	checker := PasswordChecker{}
	if ok, upgrade := checker.Check(hash, "correct horse"); !ok || upgrade {
		t.Fatalf("check = %v upgrade = %v, want true false", ok, upgrade)
	}
	if ok, _ := checker.Check(hash, "wrong horse"); ok {
		t.Fatalf("wrong password accepted")
	}
}

func TestHashPasswordRejectsShortPasswords(t *testing.T) {
	if _, err := HashPassword("short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

func TestLegacyHashRequiresSaltAndRequestsUpgrade(t *testing.T) {
	const salt = "PIP_SECURE_SALT_2026"
	sum := sha256.Sum256([]byte("admin123" + salt))
	legacy := hex.EncodeToString(sum[:])

	if !IsLegacyHash(legacy) {
		t.Fatalf("expected legacy hash detection")
	}
	if ok, _ := (PasswordChecker{}).Check(legacy, "admin123"); ok {
		t.Fatalf("legacy hash accepted without salt")
	}
	ok, upgrade := PasswordChecker{LegacySalt: salt}.Check(strings.ToUpper(legacy), "admin123")
	if !ok || !upgrade {
		t.Fatalf("check = %v upgrade = %v, want true true", ok, upgrade)
	}
	if ok, _ := (PasswordChecker{LegacySalt: salt}).Check(legacy, "admin124"); ok {
		t.Fatalf("wrong legacy password accepted")
	}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	expires := time.Now().Add(time.Hour)
	token, err := GenerateSessionToken("secret", "sess-1", "OP1", "Operator", false, expires)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := ParseSessionToken("secret", token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.ID != "sess-1" || claims.OperatorID != "OP1" || claims.Role != "Operator" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if _, err := ParseSessionToken("other", token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestSessionTokenExpired(t *testing.T) {
	token, err := GenerateSessionToken("secret", "sess-1", "OP1", "Operator", false, time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseSessionToken("secret", token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestBreakGlassCodeValidation(t *testing.T) {
	key, err := GenerateBreakGlassKey("CASHCLEAR")
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	if !strings.HasPrefix(key.URL, "otpauth://totp/") {
		t.Fatalf("unexpected enrolment url: %s", key.URL)
	}
	now := time.Now()
	code, err := totp.GenerateCode(key.Secret, now)
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	step, ok := BreakGlassStep(key.Secret, code, now)
	if !ok {
		t.Fatalf("valid code rejected")
	}
	if want := now.Unix() / 30; step != want {
		t.Fatalf("step = %d, want %d", step, want)
	}
	if skewed, ok := BreakGlassStep(key.Secret, code, now.Add(30*time.Second)); !ok || skewed != step {
		t.Fatalf("code one step old rejected: ok=%v step=%d", ok, skewed)
	}
	if _, ok := BreakGlassStep(key.Secret, code, now.Add(10*time.Minute)); ok {
		t.Fatalf("stale code accepted")
	}
	if _, ok := BreakGlassStep("", code, now); ok {
		t.Fatalf("code accepted without secret")
	}
}

func TestRandomCodeAlphabet(t *testing.T) {
	code, err := RandomCode(64)
	if err != nil {
		t.Fatalf("random code: %v", err)
	}
	for _, r := range code {
		if !strings.ContainsRune(codeAlphabet, r) {
			t.Fatalf("unexpected rune %q in %s", r, code)
		}
	}
	digits, err := RandomDigits(4)
	if err != nil || len(digits) != 4 {
		t.Fatalf("random digits = %q, %v", digits, err)
	}
	if _, err := RandomDigits(0); err == nil {
		t.Fatalf("expected error for zero length")
	}
}
