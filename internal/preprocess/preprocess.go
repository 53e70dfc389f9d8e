// Package preprocess shrinks input images client-side before upload, so
// oversized source material does not have to travel to storage at full
// resolution.
package preprocess

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// Downscale decodes imageData, resizes it to at most maxWidth pixels wide
// (preserving aspect ratio), and re-encodes it as format ("jpeg", "png" or
// "webp"; anything else falls back to jpeg). Images already narrower than
// maxWidth are re-encoded without resizing.
func Downscale(imageData []byte, maxWidth, quality int, format string) ([]byte, error) {
	if maxWidth <= 0 {
		return nil, fmt.Errorf("preprocess: max width must be positive, got %d", maxWidth)
	}

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("preprocess: decode image: %w", err)
	}

	if img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	switch {
	case strings.Contains(format, "png"):
		err = png.Encode(&buf, img)
	case strings.Contains(format, "webp"):
		err = webp.Encode(&buf, img, &webp.Options{Quality: float32(quality)})
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	}
	if err != nil {
		return nil, fmt.Errorf("preprocess: encode image: %w", err)
	}

	return buf.Bytes(), nil
}
