package cli

import (
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// swatchWidth is the width of a colour swatch in cells.
const swatchWidth = 8

// previewer renders colour swatches. A disabled previewer renders nothing.
type previewer struct {
	out     *termenv.Output
	enabled bool
}

// newPreviewer returns a previewer for w. Swatches are only drawn when
// requested and w is a terminal.
func newPreviewer(w io.Writer, requested bool) previewer {
	if !requested || !isTerminal(w) {
		return previewer{}
	}
	return previewer{out: termenv.NewOutput(w), enabled: true}
}

// swatch returns a block of background colour hex, or "" when disabled.
func (p previewer) swatch(hex string) string {
	if !p.enabled {
		return ""
	}
	return p.out.String(strings.Repeat(" ", swatchWidth)).
		Background(p.out.Color(hex)).
		String()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) // #nosec G115 - file descriptors fit in int
}
