// Package security provides safety limits for untrusted input.
package security

import (
	"errors"
	"io"
)

// ErrSizeLimit is returned once a LimitedReader has exhausted its budget.
var ErrSizeLimit = errors.New("size limit exceeded")

// LimitedReader wraps an io.Reader and limits the total bytes that can be read.
// Unlike io.LimitReader it returns ErrSizeLimit instead of truncating.
type LimitedReader struct {
	R         io.Reader
	Remaining int64
}

// Read implements io.Reader with size limits.
func (l *LimitedReader) Read(p []byte) (int, error) {
	if l.Remaining <= 0 {
		// Allow a clean EOF when the source ends exactly at the limit.
		var probe [1]byte
		n, err := l.R.Read(probe[:])
		if n == 0 && err != nil {
			return 0, err
		}
		return 0, ErrSizeLimit
	}
	if int64(len(p)) > l.Remaining {
		p = p[:l.Remaining]
	}
	n, err := l.R.Read(p)
	l.Remaining -= int64(n)
	return n, err
}

// NewLimitedReader creates a new LimitedReader with the specified size limit.
func NewLimitedReader(r io.Reader, maxBytes int64) *LimitedReader {
	return &LimitedReader{
		R:         r,
		Remaining: maxBytes,
	}
}
