// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package captcha

import (
	"bytes"
	"fmt"
	"math/rand/v2"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/gomonobold"
)

// ImageRenderer draws secrets as noisy PNG images of a fixed size.
type ImageRenderer struct {
	Width, Height int
	font          *truetype.Font
}

// NewImageRenderer loads the embedded font. An error here means the
// captcha service cannot start.
func NewImageRenderer(width, height int) (*ImageRenderer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid captcha size %dx%d", width, height)
	}
	f, err := truetype.Parse(gomonobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse captcha font: %w", err)
	}
	return &ImageRenderer{Width: width, Height: height, font: f}, nil
}

func (r *ImageRenderer) Render(secret string) ([]byte, error) {
	w, h := float64(r.Width), float64(r.Height)
	dc := gg.NewContext(r.Width, r.Height)

	dc.SetRGB(0.94, 0.94, 0.92)
	dc.Clear()

	// background strokes
	for i := 0; i < 4; i++ {
		dc.SetRGBA(rand.Float64(), rand.Float64(), rand.Float64(), 0.6)
		dc.SetLineWidth(1 + rand.Float64())
		dc.DrawLine(rand.Float64()*w, rand.Float64()*h, rand.Float64()*w, rand.Float64()*h)
		dc.Stroke()
	}

	// faces are not safe for concurrent use, so each render gets its own
	dc.SetFontFace(truetype.NewFace(r.font, &truetype.Options{Size: h * 0.6}))

	cell := w / float64(len(secret)+1)
	for i, c := range secret {
		x := cell * (float64(i) + 1)
		y := h/2 + (rand.Float64()-0.5)*h*0.2

		dc.Push()
		dc.RotateAbout(gg.Radians((rand.Float64()-0.5)*40), x, y)
		dc.SetRGB(rand.Float64()*0.4, rand.Float64()*0.4, rand.Float64()*0.4)
		dc.DrawStringAnchored(string(c), x, y, 0.5, 0.5)
		dc.Pop()
	}

	// speckle
	for i := 0; i < r.Width*r.Height/40; i++ {
		dc.SetRGBA(rand.Float64(), rand.Float64(), rand.Float64(), 0.5)
		dc.SetPixel(rand.IntN(r.Width), rand.IntN(r.Height))
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode captcha: %w", err)
	}
	return buf.Bytes(), nil
}
