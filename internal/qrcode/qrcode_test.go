package qrcode

import (
	"bytes"
	"errors"
	"image/png"
	"testing"
)

func TestPNG(t *testing.T) {
	raw, errPNG := PNG("PIP-4567-1234", 0)
	if errPNG != nil {
		t.Fatalf("png: %v", errPNG)
	}
	img, errDecode := png.Decode(bytes.NewReader(raw))
	if errDecode != nil {
		t.Fatalf("decode: %v", errDecode)
	}
	if b := img.Bounds(); b.Dx() != DefaultSize || b.Dy() != DefaultSize {
		t.Fatalf("bounds = %v", b)
	}
	if _, errEmpty := PNG("  ", 128); !errors.Is(errEmpty, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", errEmpty)
	}
}
