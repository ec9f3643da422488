package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ppiankov/argmap/internal/logging"
	"github.com/ppiankov/argmap/internal/model"
	"github.com/ppiankov/argmap/internal/worker"
)

// Evaluator evaluates one graph file
type Evaluator interface {
	EvaluateFile(ctx context.Context, path string) (*model.Report, error)
}

// Event is the outcome of one re-evaluation
type Event struct {
	Path   string
	Report *model.Report
	Err    error
	Time   time.Time
}

// Handler receives events from a single goroutine
type Handler func(Event)

// Options configure debouncing and throttling
type Options struct {
	// Debounce is the quiet period after the last change before a file is re-evaluated
	Debounce time.Duration
	// MaxPerSecond limits re-evaluations per file; zero means unlimited
	MaxPerSecond float64
	Burst        int
	// Initial evaluates every file once when Run starts
	Initial bool
}

// OptionsFromConfig converts the watch section of the configuration
func OptionsFromConfig(cfg model.WatchConfig) Options {
	return Options{
		Debounce:     cfg.Debounce,
		MaxPerSecond: cfg.MaxPerSecond,
		Burst:        cfg.Burst,
	}
}

// Watcher re-evaluates graph files when they change on disk.
// Directories are watched rather than files so editors that save by
// renaming a temp file over the original keep triggering events.
type Watcher struct {
	files     map[string]bool
	dirs      []string
	evaluator Evaluator
	handler   Handler
	limiter   *worker.Limiter
	opts      Options
	log       *logging.Logger

	fsw      *fsnotify.Watcher
	changes  chan string
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a watcher for the given graph files
func New(paths []string, evaluator Evaluator, handler Handler, opts Options, log *logging.Logger) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 250 * time.Millisecond
	}
	if log == nil {
		log = logging.Nop()
	}

	files := make(map[string]bool, len(paths))
	dirSet := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		files[abs] = true
		dirSet[filepath.Dir(abs)] = true
	}
	dirs := make([]string, 0, len(dirSet))
	for d := range dirSet {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		files:     files,
		dirs:      dirs,
		evaluator: evaluator,
		handler:   handler,
		limiter:   worker.NewLimiter(opts.MaxPerSecond, opts.Burst),
		opts:      opts,
		log:       log,
		fsw:       fsw,
		changes:   make(chan string, 256),
		done:      make(chan struct{}),
	}, nil
}

// Run watches until ctx is canceled or Stop is called
func (w *Watcher) Run(ctx context.Context) error {
	for _, d := range w.dirs {
		if err := w.fsw.Add(d); err != nil {
			w.Stop()
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}
	w.log.Debug("watching", "dirs", w.dirs, "files", len(w.files))

	if w.opts.Initial {
		for _, f := range w.Files() {
			w.evaluate(ctx, f)
		}
	}

	go w.processEvents(ctx)
	w.debounceLoop(ctx)
	return nil
}

// Stop ends Run and releases the fsnotify watcher
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.fsw.Close()
	})
}

// Files returns the watched files, sorted
func (w *Watcher) Files() []string {
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			select {
			case w.changes <- filepath.Clean(event.Name):
			case <-ctx.Done():
				return
			case <-w.done:
				return
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !w.files[filepath.Clean(event.Name)] {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove)
}

// debounceLoop collects changed paths and evaluates them once the
// debounce window passes without further changes
func (w *Watcher) debounceLoop(ctx context.Context) {
	pending := make(map[string]bool)
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		clear(pending)
		timer = nil
		timerC = nil

		for _, p := range paths {
			if err := w.limiter.Wait(ctx, p); err != nil {
				return
			}
			w.evaluate(ctx, p)
		}
	}

	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case p := <-w.changes:
			pending[p] = true
			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.opts.Debounce)
			}
		case <-timerC:
			flush()
		}
	}
}

func (w *Watcher) evaluate(ctx context.Context, path string) {
	report, err := w.evaluator.EvaluateFile(ctx, path)
	if err != nil {
		w.log.Debug("re-evaluation failed", "path", path, "error", err)
	}
	if w.handler != nil {
		w.handler(Event{Path: path, Report: report, Err: err, Time: time.Now()})
	}
}
