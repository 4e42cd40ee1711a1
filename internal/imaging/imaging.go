// Package imaging prepares asset photos for storage and renders printable
// QR labels.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"

	"github.com/erazemk/assetpro/internal/model"
)

const (
	// MaxPhotoBytes caps the size of an uploaded photo before decoding.
	MaxPhotoBytes = 10 << 20
	// MaxDimension is the maximum width or height of a stored photo.
	MaxDimension = 1024
	// JPEGQuality is the compression quality of stored photos.
	JPEGQuality = 85
)

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Photo is a processed asset photo, always JPEG.
type Photo struct {
	Data []byte
	MIME string
}

// ProcessPhoto sniffs the upload, rejects anything but JPEG and PNG,
// downscales it to MaxDimension and re-encodes it as JPEG. Rejected input
// wraps model.ErrInvalidInput.
func ProcessPhoto(r io.Reader) (*Photo, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxPhotoBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading photo: %w", err)
	}
	if len(data) > MaxPhotoBytes {
		return nil, fmt.Errorf("%w: photo larger than %d bytes", model.ErrInvalidInput, MaxPhotoBytes)
	}

	detected := http.DetectContentType(data)
	if !allowedMIME[detected] {
		return nil, fmt.Errorf("%w: unsupported image format %s", model.ErrInvalidInput, detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding photo: %v", model.ErrInvalidInput, err)
	}

	img = fit(img, MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}

	return &Photo{Data: buf.Bytes(), MIME: "image/jpeg"}, nil
}

// fit scales img down so neither side exceeds maxDim, keeping the aspect
// ratio. Smaller images are returned unchanged.
func fit(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	nw, nh := maxDim, maxDim
	if w > h {
		nh = max(1, h*maxDim/w)
	} else {
		nw = max(1, w*maxDim/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
