package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/erazemk/assetpro/internal/model"
)

func solid(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{200, 40, 40, 255})
		}
	}
	return img
}

func encodeJPEG(w, h int) []byte {
	var buf bytes.Buffer
	jpeg.Encode(&buf, solid(w, h), &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func encodePNG(w, h int) []byte {
	var buf bytes.Buffer
	png.Encode(&buf, solid(w, h))
	return buf.Bytes()
}

func TestProcessPhoto(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		wantW int
		wantH int
	}{
		{"small jpeg kept", encodeJPEG(50, 50), 50, 50},
		{"png converted", encodePNG(100, 60), 100, 60},
		{"wide downscaled", encodeJPEG(2048, 1024), MaxDimension, 512},
		{"tall downscaled", encodePNG(600, 1200), 512, MaxDimension},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ProcessPhoto(bytes.NewReader(tt.data))
			if err != nil {
				t.Fatalf("ProcessPhoto: %v", err)
			}
			if p.MIME != "image/jpeg" {
				t.Errorf("expected image/jpeg, got %s", p.MIME)
			}
			img, err := jpeg.Decode(bytes.NewReader(p.Data))
			if err != nil {
				t.Fatalf("decoding result: %v", err)
			}
			if b := img.Bounds(); b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("expected %dx%d, got %dx%d", tt.wantW, tt.wantH, b.Dx(), b.Dy())
			}
		})
	}
}

func TestProcessPhotoRejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"text", []byte("not an image")},
		{"gif", []byte("GIF89a...")},
		{"truncated jpeg", encodeJPEG(20, 20)[:30]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ProcessPhoto(bytes.NewReader(tt.data))
			if !errors.Is(err, model.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}
