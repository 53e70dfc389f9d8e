package preprocess

import (
	"bytes"
	"image"
	"image/png"
	"testing"
)

func encodedPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func decodedWidth(t *testing.T, data []byte) int {
	t.Helper()
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode result: %v", err)
	}
	return img.Bounds().Dx()
}

func TestDownscale(t *testing.T) {
	tests := []struct {
		name      string
		width     int
		maxWidth  int
		format    string
		wantWidth int
	}{
		{"wide image is shrunk", 800, 200, "jpeg", 200},
		{"narrow image is untouched", 100, 200, "jpeg", 100},
		{"png output", 400, 150, "png", 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Downscale(encodedPNG(t, tt.width, tt.width/2), tt.maxWidth, 90, tt.format)
			if err != nil {
				t.Fatalf("Downscale() unexpected error: %v", err)
			}
			if got := decodedWidth(t, out); got != tt.wantWidth {
				t.Errorf("result width = %d, want %d", got, tt.wantWidth)
			}
		})
	}
}

func TestDownscale_Errors(t *testing.T) {
	if _, err := Downscale([]byte("not an image"), 100, 90, "jpeg"); err == nil {
		t.Error("expected a decode error for garbage input")
	}
	if _, err := Downscale(encodedPNG(t, 10, 10), 0, 90, "jpeg"); err == nil {
		t.Error("expected an error for non-positive max width")
	}
}
