package image

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/transform"
	"golang.org/x/image/draw"

	"github.com/jmylchreest/accent/internal/colour"
)

// Resampler names accepted by NewResampler.
const (
	ResamplerBox            = "box"
	ResamplerNearest        = "nearest"
	ResamplerBiLinear       = "bilinear"
	ResamplerApproxBiLinear = "approx-bilinear"
	ResamplerCatmullRom     = "catmullrom"
)

// ValidResamplers returns the accepted resampler names.
func ValidResamplers() []string {
	return []string{
		ResamplerBox,
		ResamplerNearest,
		ResamplerBiLinear,
		ResamplerApproxBiLinear,
		ResamplerCatmullRom,
	}
}

// NewResampler returns the resampler registered under name.
// An empty name selects the box resampler.
func NewResampler(name string) (colour.Resampler, error) {
	switch name {
	case "", ResamplerBox:
		return BoxResampler{}, nil
	case ResamplerNearest:
		return ScaleResampler{Scaler: draw.NearestNeighbor}, nil
	case ResamplerBiLinear:
		return ScaleResampler{Scaler: draw.BiLinear}, nil
	case ResamplerApproxBiLinear:
		return ScaleResampler{Scaler: draw.ApproxBiLinear}, nil
	case ResamplerCatmullRom:
		return ScaleResampler{Scaler: draw.CatmullRom}, nil
	default:
		return nil, fmt.Errorf("unknown resampler: %s (valid resamplers: %v)", name, ValidResamplers())
	}
}

// BoxResampler downscales by area averaging. Channels are filtered
// independently, so straight alpha is preserved as stored.
type BoxResampler struct{}

// Resample implements colour.Resampler.
func (BoxResampler) Resample(buf colour.Buffer, size int) colour.Buffer {
	if !buf.Valid() || size <= 0 {
		return colour.Buffer{}
	}

	// bild filters *image.RGBA pixel bytes as they are, which keeps the
	// buffer's non-premultiplied values intact.
	src := &image.RGBA{
		Pix:    buf.Pix[:4*buf.Width*buf.Height],
		Stride: 4 * buf.Width,
		Rect:   image.Rect(0, 0, buf.Width, buf.Height),
	}

	dst := transform.Resize(src, size, size, transform.Box)
	return colour.Buffer{
		Width:  dst.Bounds().Dx(),
		Height: dst.Bounds().Dy(),
		Pix:    dst.Pix,
	}
}

// ScaleResampler downscales with an x/image/draw scaler.
type ScaleResampler struct {
	Scaler draw.Scaler
}

// Resample implements colour.Resampler.
func (r ScaleResampler) Resample(buf colour.Buffer, size int) colour.Buffer {
	if !buf.Valid() || size <= 0 || r.Scaler == nil {
		return colour.Buffer{}
	}

	src := bufferImage(buf)
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	r.Scaler.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	return colour.Buffer{
		Width:  size,
		Height: size,
		Pix:    dst.Pix,
	}
}
