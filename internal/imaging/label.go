package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// LabelSize is the default edge length of the QR square in pixels.
const LabelSize = 256

const (
	captionLineHeight = 16
	captionPadding    = 8
)

// Label renders payload as a QR code with caption lines printed underneath
// and returns the PNG encoding. Lines wider than the label are truncated.
func Label(payload string, caption []string, size int) ([]byte, error) {
	if payload == "" {
		return nil, fmt.Errorf("empty label payload")
	}
	if size <= 0 {
		size = LabelSize
	}

	qr, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encoding QR code: %w", err)
	}
	code := qr.Image(size)

	height := size
	if len(caption) > 0 {
		height += len(caption)*captionLineHeight + captionPadding
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, height))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.NearestNeighbor.Scale(dst, image.Rect(0, 0, size, size), code, code.Bounds(), draw.Over, nil)

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
	}
	for i, line := range caption {
		line = fitLine(d.Face, line, size-2*captionPadding)
		width := font.MeasureString(d.Face, line).Ceil()
		x := (size - width) / 2
		y := size + (i+1)*captionLineHeight
		d.Dot = fixed.P(x, y)
		d.DrawString(line)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// fitLine trims s until it fits in maxWidth pixels.
func fitLine(face font.Face, s string, maxWidth int) string {
	r := []rune(s)
	for len(r) > 0 && font.MeasureString(face, string(r)).Ceil() > maxWidth {
		r = r[:len(r)-1]
	}
	return string(r)
}
