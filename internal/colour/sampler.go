package colour

const (
	// DefaultSampleSize is the side length of the downscaled sampling grid.
	DefaultSampleSize = 64

	// MinAlpha is the lowest alpha value a pixel may have to be sampled.
	MinAlpha = 125

	// MinChannelSum and MaxChannelSum bound the unweighted r+g+b sum.
	// Pixels outside the range are near black or near white.
	MinChannelSum = 30
	MaxChannelSum = 750
)

// Buffer is a non-premultiplied RGBA pixel buffer, 4 bytes per pixel,
// row-major with a stride of 4*Width.
type Buffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// Valid reports whether the buffer has positive dimensions and enough
// pixel data to address every pixel.
func (b Buffer) Valid() bool {
	if b.Width <= 0 || b.Height <= 0 {
		return false
	}
	return len(b.Pix) >= 4*b.Width*b.Height
}

// Resampler downscales a buffer to a size x size grid.
type Resampler interface {
	Resample(buf Buffer, size int) Buffer
}

// Sampler reduces a pixel buffer to a filtered set of RGB samples.
type Sampler struct {
	resampler Resampler
}

// NewSampler creates a Sampler. A nil resampler samples the buffer as is.
func NewSampler(r Resampler) *Sampler {
	return &Sampler{resampler: r}
}

// Sample downscales buf to sampleSize x sampleSize and returns the pixels
// that survive filtering, in scan order. Malformed input yields no samples.
func (s *Sampler) Sample(buf Buffer, sampleSize int) []RGB {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	if !buf.Valid() {
		return []RGB{}
	}

	if s.resampler != nil {
		buf = s.resampler.Resample(buf, sampleSize)
		if !buf.Valid() {
			return []RGB{}
		}
	}

	return FilterPixels(buf)
}

// FilterPixels scans every pixel of buf in row-major order and keeps the
// opaque, non-extreme ones.
func FilterPixels(buf Buffer) []RGB {
	if !buf.Valid() {
		return []RGB{}
	}

	n := buf.Width * buf.Height
	pixels := make([]RGB, 0, n)
	for i := 0; i < n*4; i += 4 {
		r := buf.Pix[i]
		g := buf.Pix[i+1]
		b := buf.Pix[i+2]
		a := buf.Pix[i+3]

		// Skip transparent.
		if a < MinAlpha {
			continue
		}

		// Skip near black or near white.
		if isExtreme(r, g, b) {
			continue
		}

		pixels = append(pixels, RGB{R: r, G: g, B: b})
	}

	return pixels
}

// isExtreme reports whether the channel sum is near black or near white.
func isExtreme(r, g, b uint8) bool {
	sum := int(r) + int(g) + int(b)
	return sum < MinChannelSum || sum > MaxChannelSum
}
