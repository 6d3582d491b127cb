package image

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/jmylchreest/accent/internal/colour"
)

// ToBuffer renders img into a non-premultiplied RGBA buffer at its native
// resolution. An image with empty bounds yields an empty buffer, which
// samples to nothing.
func ToBuffer(img image.Image) (colour.Buffer, error) {
	if img == nil {
		return colour.Buffer{}, fmt.Errorf("%w: image is nil", ErrCapability)
	}

	b := img.Bounds()
	if b.Empty() {
		return colour.Buffer{}, nil
	}

	// Reuse tightly packed NRGBA images without copying.
	if n, ok := img.(*image.NRGBA); ok && n.Stride == 4*b.Dx() {
		start := n.PixOffset(b.Min.X, b.Min.Y)
		return colour.Buffer{
			Width:  b.Dx(),
			Height: b.Dy(),
			Pix:    n.Pix[start : start+4*b.Dx()*b.Dy()],
		}, nil
	}

	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	return colour.Buffer{
		Width:  b.Dx(),
		Height: b.Dy(),
		Pix:    dst.Pix,
	}, nil
}

// bufferImage wraps a buffer as an NRGBA image without copying.
func bufferImage(buf colour.Buffer) *image.NRGBA {
	return &image.NRGBA{
		Pix:    buf.Pix[:4*buf.Width*buf.Height],
		Stride: 4 * buf.Width,
		Rect:   image.Rect(0, 0, buf.Width, buf.Height),
	}
}
