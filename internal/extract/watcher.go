package extract

import (
	"context"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/accent/internal/colour"
)

// ColourExtractor extracts semantic colours for a source.
// *Extractor implements it.
type ColourExtractor interface {
	Extract(ctx context.Context, source string) (colour.ExtractedColors, error)
}

// Result is the outcome of one extraction started by a Watcher.
type Result struct {
	Source  string
	Colours colour.ExtractedColors
	Err     error
}

// Watcher tracks the latest extraction for a changing source. Each call to
// Watch supersedes the previous one; results of superseded calls are
// discarded.
type Watcher struct {
	extractor ColourExtractor
	logger    hclog.Logger
	updates   chan Result

	mu         sync.Mutex
	wg         sync.WaitGroup
	generation uint64
	cancel     context.CancelFunc
	loading    bool
	colours    colour.ExtractedColors
	hasColours bool
	err        error
	closed     bool
}

// NewWatcher creates a Watcher. A nil logger discards output.
func NewWatcher(extractor ColourExtractor, logger hclog.Logger) *Watcher {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Watcher{
		extractor: extractor,
		logger:    logger.Named("watcher"),
		updates:   make(chan Result, 1),
	}
}

// Watch starts extracting source in the background, superseding any
// extraction in flight.
func (w *Watcher) Watch(ctx context.Context, source string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	if w.cancel != nil {
		w.cancel()
	}

	w.generation++
	gen := w.generation
	w.loading = true

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer cancel()

		colours, err := w.extractor.Extract(runCtx, source)
		w.finish(gen, Result{Source: source, Colours: colours, Err: err})
	}()
}

// finish records a result unless a newer Watch call superseded it.
func (w *Watcher) finish(gen uint64, res Result) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || gen != w.generation {
		w.logger.Debug("discarding superseded result", "source", res.Source, "generation", gen)
		return
	}

	w.loading = false
	w.err = res.Err
	if res.Err == nil {
		w.colours = res.Colours
		w.hasColours = true
	} else {
		w.logger.Debug("extraction failed", "source", res.Source, "error", res.Err)
	}

	// Keep only the latest undelivered result.
	select {
	case w.updates <- res:
	default:
		select {
		case <-w.updates:
		default:
		}
		w.updates <- res
	}
}

// Loading reports whether the latest extraction is still in flight.
func (w *Watcher) Loading() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loading
}

// Colours returns the colours of the latest successful extraction.
func (w *Watcher) Colours() (colour.ExtractedColors, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.colours, w.hasColours
}

// Err returns the error of the latest completed extraction, if any.
func (w *Watcher) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Updates delivers the results of extractions that were not superseded.
// The channel is closed by Close.
func (w *Watcher) Updates() <-chan Result {
	return w.updates
}

// Close cancels any extraction in flight, waits for background work to
// finish and closes the updates channel.
func (w *Watcher) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	if w.cancel != nil {
		w.cancel()
	}
	w.loading = false
	w.mu.Unlock()

	w.wg.Wait()
	close(w.updates)
}
