// Package qrcode renders voucher codes as QR images.
package qrcode

import (
	"bytes"
	"errors"
	"image/png"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

// DefaultSize is the rendered edge length in pixels.
const DefaultSize = 256

// ErrEmptyContent is returned when there is nothing to encode.
var ErrEmptyContent = errors.New("qrcode: empty content")

// PNG encodes content as a square QR code PNG of size pixels.
func PNG(content string, size int) ([]byte, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = DefaultSize
	}
	code, errEncode := qr.Encode(content, qr.M, qr.Auto)
	if errEncode != nil {
		return nil, errEncode
	}
	scaled, errScale := barcode.Scale(code, size, size)
	if errScale != nil {
		return nil, errScale
	}
	var buf bytes.Buffer
	if errPNG := png.Encode(&buf, scaled); errPNG != nil {
		return nil, errPNG
	}
	return buf.Bytes(), nil
}
