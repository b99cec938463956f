package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const PNGContentType = "image/png"

// DefaultMaxPixels is the decode budget used when callers pass maxPixels <= 0.
const DefaultMaxPixels int64 = 40_000_000

var ErrUnsupportedImage = errors.New("unsupported or corrupt image payload")

// Decode turns a binary payload into an image. The returned format is the
// registered decoder name (png, jpeg, gif, webp, bmp, tiff).
// Payloads whose header declares more than maxPixels pixels are rejected
// before any pixel data is allocated.
func Decode(raw []byte, maxPixels int64) (image.Image, string, error) {
	if len(raw) == 0 {
		return nil, "", fmt.Errorf("%w: empty payload", ErrUnsupportedImage)
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "", fmt.Errorf("%w: empty bounds %dx%d", ErrUnsupportedImage, cfg.Width, cfg.Height)
	}
	if int64(cfg.Width) > maxPixels/int64(cfg.Height) {
		return nil, "", fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrUnsupportedImage, cfg.Width, cfg.Height, maxPixels)
	}
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return img, format, nil
}

// Thumbnail scales img so its longest side is at most maxSide, keeping aspect.
// Images already within bounds are returned unchanged.
func Thumbnail(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) || w == 0 || h == 0 {
		return img
	}
	tw, th := maxSide, maxSide
	if w >= h {
		th = h * maxSide / w
	} else {
		tw = w * maxSide / h
	}
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func EncodePNG(img image.Image) ([]byte, error) {
	dc := gg.NewContextForImage(img)
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Normalize decodes a payload, bounds it to maxSide and re-encodes it as PNG.
func Normalize(raw []byte, maxSide int, maxPixels int64) ([]byte, error) {
	img, _, err := Decode(raw, maxPixels)
	if err != nil {
		return nil, err
	}
	return EncodePNG(Thumbnail(img, maxSide))
}

var (
	fontOnce sync.Once
	fontTTF  *truetype.Font
	fontErr  error
)

func regularFace(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		fontTTF, fontErr = truetype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", fontErr)
	}
	return truetype.NewFace(fontTTF, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}

// Placeholder draws the fallback image shown for line items without a resolved image.
func Placeholder(size int, label string) ([]byte, error) {
	if size <= 0 {
		size = 160
	}
	dc := gg.NewContext(size, size)

	dc.SetColor(color.NRGBA{R: 0xEC, G: 0xEC, B: 0xEC, A: 0xFF})
	dc.DrawRectangle(0, 0, float64(size), float64(size))
	dc.Fill()

	inset := float64(size) / 8
	dc.SetColor(color.NRGBA{R: 0xB8, G: 0xB8, B: 0xB8, A: 0xFF})
	dc.SetLineWidth(float64(size) / 64)
	dc.DrawRectangle(inset, inset, float64(size)-2*inset, float64(size)-2*inset)
	dc.Stroke()

	if label != "" {
		face, err := regularFace(float64(size) / 10)
		if err != nil {
			return nil, err
		}
		dc.SetFontFace(face)
		dc.SetColor(color.NRGBA{R: 0x70, G: 0x70, B: 0x70, A: 0xFF})
		dc.DrawStringAnchored(label, float64(size)/2, float64(size)/2, 0.5, 0.5)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
