// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package upload

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
)

func pngBytes() []byte {
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	png.Encode(&buf, img)
	return buf.Bytes()
}

func jpegBytes() []byte {
	var buf bytes.Buffer
	jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2)), nil)
	return buf.Bytes()
}

func gifBytes() []byte {
	var buf bytes.Buffer
	gif.Encode(&buf, image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.Black, color.White}), nil)
	return buf.Bytes()
}

func TestSniffer_Sniff(t *testing.T) {
	s := NewSniffer(nil)

	tests := []struct {
		name     string
		data     []byte
		wantMIME string
		wantFile bool
	}{
		{"png", pngBytes(), "image/png", true},
		{"jpeg", jpegBytes(), "image/jpeg", true},
		{"gif", gifBytes(), "image/gif", true},
		{"plain text", []byte("hello there"), "", false},
		{"digit", []byte("7"), "", false},
		{"json looking text", []byte(`{"a": 1}`), "", false},
		{"html looking text", []byte("<html><body>hi</body></html>"), "", false},
		{"pdf is not allowed", []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n"), "", false},
		{"empty", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.Sniff(tt.data)
			assert.Equal(t, tt.wantFile, ok)
			assert.Equal(t, tt.wantMIME, got)
		})
	}
}

func TestSniffer_CustomAllowList(t *testing.T) {
	s := NewSniffer([]string{"image/png"})

	_, ok := s.Sniff(jpegBytes())
	assert.False(t, ok, "jpeg is not in the allow list")

	got, ok := s.Sniff(pngBytes())
	assert.True(t, ok)
	assert.Equal(t, "image/png", got)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "png", Extension("image/png"))
	assert.Equal(t, "jpeg", Extension("image/jpeg"))
	assert.Equal(t, "plain", Extension("text/plain; charset=utf-8"))
	assert.Equal(t, "bin", Extension("bin"))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/png", ContentType(Name([]byte("x"), "png")))
	assert.Equal(t, "image/jpeg", ContentType(Name([]byte("x"), "jpeg")))
	assert.Equal(t, "application/octet-stream", ContentType("noext"))
}
