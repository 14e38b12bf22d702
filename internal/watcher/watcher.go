// Package watcher streams new interactions out of Claude's conversation
// directory by reacting to file system modification events.
package watcher

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/wundervaflja/rat/internal/claude"
	"github.com/wundervaflja/rat/pkg/models"
)

// DefaultDebounce is the quiet period after the last modification event
// before a file is read. Claude appends many small records per second
// during generation; debouncing collapses those bursts into one read.
const DefaultDebounce = 500 * time.Millisecond

// ErrNoConversations means no Claude log directory exists for the project.
var ErrNoConversations = errors.New("no claude conversations found for project")

// Watcher subscribes to modification events on a project's conversation
// directory and forwards each newly appended interaction to a callback.
// Each file has its own debounce timer; a new event for a file before its
// quiet period elapses discards the pending read and starts a new timer.
type Watcher struct {
	dir           string
	projectsDir   string
	onInteraction func(models.Interaction)
	debounce      time.Duration
	tailer        *claude.Tailer
	stats         *claude.Stats

	fsw    *fsnotify.Watcher
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	running bool
	timers  map[string]*time.Timer
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the per-file quiet period.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithProjectsDir overrides the Claude projects root.
func WithProjectsDir(dir string) Option {
	return func(w *Watcher) { w.projectsDir = dir }
}

// New creates a Watcher for the given project root. The onInteraction
// callback runs on the debounce timer goroutine of the file that produced
// the interaction.
func New(projectRoot string, onInteraction func(models.Interaction), opts ...Option) (*Watcher, error) {
	w := &Watcher{
		onInteraction: onInteraction,
		debounce:      DefaultDebounce,
		projectsDir:   claude.DefaultProjectsDir(),
		stats:         &claude.Stats{},
		timers:        make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}

	dir, ok := claude.ProjectDir(w.projectsDir, projectRoot)
	if !ok {
		return nil, ErrNoConversations
	}
	w.dir = dir
	w.tailer = claude.NewTailer(w.stats)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w.fsw = fsw
	w.ctx, w.cancel = context.WithCancel(context.Background())
	return w, nil
}

// Dir returns the watched conversation directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Stats returns a snapshot of the watcher's ingestion counters.
func (w *Watcher) Stats() claude.Snapshot {
	return w.stats.Snapshot()
}

// Start subscribes to the conversation directory (non-recursive) and
// begins dispatching events.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.fsw.Add(w.dir); err != nil {
		return err
	}

	go w.watchLoop()
	log.Info().Str("dir", w.dir).Msg("Watching Claude conversations")
	return nil
}

// Stop cancels all pending debounce timers and closes the event
// subscription. In-flight reads are allowed to complete.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.running = false
	w.cancel()

	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
	return w.fsw.Close()
}

// watchLoop is the event dispatch loop.
func (w *Watcher) watchLoop() {
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !claude.EligibleConversationFile(event.Name) {
				continue
			}
			w.scheduleProcess(event.Name)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("Watcher error")
		}
	}
}

// scheduleProcess (re)arms the debounce timer for path. Repeated events
// during the quiet period collapse into one read.
func (w *Watcher) scheduleProcess(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	if timer, ok := w.timers[path]; ok {
		timer.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.processFile(path)
	})
}

// processFile performs one incremental read and forwards the new
// interactions in file order. Errors are logged and contained; they never
// stop the watcher or affect other files.
func (w *Watcher) processFile(path string) {
	w.mu.Lock()
	delete(w.timers, path)
	w.mu.Unlock()

	interactions, err := w.tailer.ReadNew(path)
	if err != nil {
		log.Error().Err(err).Str("file", path).Msg("Failed to process conversation file")
		return
	}
	for _, interaction := range interactions {
		w.onInteraction(interaction)
	}
}
