// Package acquire loads card images from the network or the local disk and
// hands them over as an ordered slice of Cards.
package acquire

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// Card is one loaded card image. Data is always PNG or JPEG so it can be
// embedded in a PDF as is. Cards are never mutated after Normalize.
type Card struct {
	Name   string // file name used when saving
	Source string // URL or path the card came from
	Data   []byte
	Format string // "png" or "jpeg"
	Width  int    // pixels
	Height int
}

// Normalize inspects raw image bytes and returns a Card. JPEG and 8-bit,
// non-interlaced PNG input is kept byte for byte; everything else (GIF, WebP,
// 16-bit or interlaced PNG) is re-encoded as 8-bit PNG. When maxPixels is
// positive, images whose longer side exceeds it are scaled down.
func Normalize(name, source string, data []byte, maxPixels int) (Card, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Card{}, fmt.Errorf("decode %s: %w", name, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Card{}, fmt.Errorf("decode %s: empty image", name)
	}

	card := Card{Name: name, Source: source, Data: data, Format: format, Width: cfg.Width, Height: cfg.Height}
	tooBig := maxPixels > 0 && max(cfg.Width, cfg.Height) > maxPixels
	keep := format == "jpeg" || (format == "png" && embeddablePNG(data))
	if keep && !tooBig {
		return card, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Card{}, fmt.Errorf("decode %s: %w", name, err)
	}
	if tooBig {
		img = scaleDown(img, maxPixels)
	}

	var buf bytes.Buffer
	if format == "jpeg" {
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 92})
	} else {
		format = "png"
		err = png.Encode(&buf, eightBit(img))
	}
	if err != nil {
		return Card{}, fmt.Errorf("encode %s: %w", name, err)
	}
	b := img.Bounds()
	card.Data = buf.Bytes()
	card.Format = format
	card.Width, card.Height = b.Dx(), b.Dy()
	return card, nil
}

// embeddablePNG reports whether a PNG has 8-bit or smaller samples and no
// interlacing. The IHDR chunk follows the 8-byte signature; bit depth is at
// offset 24 and the interlace method at offset 28.
func embeddablePNG(data []byte) bool {
	if len(data) < 29 {
		return false
	}
	return data[24] <= 8 && data[28] == 0
}

// eightBit converts images with 16-bit samples, which the PNG encoder would
// write as 16-bit, to NRGBA.
func eightBit(img image.Image) image.Image {
	switch img.(type) {
	case *image.Gray16, *image.RGBA64, *image.NRGBA64:
		b := img.Bounds()
		dst := image.NewNRGBA(b)
		draw.Draw(dst, b, img, b.Min, draw.Src)
		return dst
	}
	return img
}

// scaleDown resizes img so its longer side is limit pixels.
func scaleDown(img image.Image, limit int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w >= h {
		h = max(1, h*limit/w)
		w = limit
	} else {
		w = max(1, w*limit/h)
		h = limit
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// PNG returns the card encoded as PNG, converting JPEG data if needed.
func (c Card) PNG() ([]byte, error) {
	if c.Format == "png" {
		return c.Data, nil
	}
	img, _, err := image.Decode(bytes.NewReader(c.Data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.Name, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode %s: %w", c.Name, err)
	}
	return buf.Bytes(), nil
}
