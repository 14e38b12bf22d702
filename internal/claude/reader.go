package claude

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/wundervaflja/rat/pkg/models"
)

// Reader answers on-demand queries against a project's conversation logs:
// merged interaction streams, aggregated metrics, and recent-activity
// probes. All reads are read-only against append-only files, so Readers
// are safe to use from any number of processes.
type Reader struct {
	projectRoot string
	projectsDir string
	tailWindow  int
	stats       *Stats
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithProjectsDir overrides the Claude projects root (for tests and
// non-default installs).
func WithProjectsDir(dir string) ReaderOption {
	return func(r *Reader) { r.projectsDir = dir }
}

// WithTailWindow overrides the tail-read window in bytes.
func WithTailWindow(bytes int) ReaderOption {
	return func(r *Reader) {
		if bytes > 0 {
			r.tailWindow = bytes
		}
	}
}

// WithStats attaches an ingestion counter set.
func WithStats(stats *Stats) ReaderOption {
	return func(r *Reader) { r.stats = stats }
}

// NewReader creates a Reader for the given project root.
func NewReader(projectRoot string, opts ...ReaderOption) *Reader {
	r := &Reader{
		projectRoot: projectRoot,
		projectsDir: DefaultProjectsDir(),
		tailWindow:  DefaultTailWindow,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dir resolves Claude's log directory for the project. The second return
// is false when no data exists for this project, which is not an error.
func (r *Reader) Dir() (string, bool) {
	return ProjectDir(r.projectsDir, r.projectRoot)
}

// HasData reports whether any conversation directory exists for the
// project.
func (r *Reader) HasData() bool {
	_, ok := r.Dir()
	return ok
}

// ConversationFiles lists the project's conversation logs, newest
// modified first.
func (r *Reader) ConversationFiles() []string {
	dir, ok := r.Dir()
	if !ok {
		return nil
	}
	return conversationFiles(dir)
}

// ActiveConversation returns the most recently modified conversation
// file, or "" when none exist.
func (r *Reader) ActiveConversation() string {
	files := r.ConversationFiles()
	if len(files) == 0 {
		return ""
	}
	return files[0]
}

// SessionID returns the conversation id (file stem) of the active
// conversation, or "".
func (r *Reader) SessionID() string {
	active := r.ActiveConversation()
	if active == "" {
		return ""
	}
	return strings.TrimSuffix(filepath.Base(active), convExt)
}

// ReadAllInteractions merges interactions across all conversation files,
// newest first. A zero since means no time filter; otherwise only
// interactions strictly after since are included. limit <= 0 means no cap.
func (r *Reader) ReadAllInteractions(since time.Time, limit int) []models.Interaction {
	var all []models.Interaction
	for _, path := range r.ConversationFiles() {
		interactions, err := parseFile(path, r.stats)
		if err != nil {
			log.Warn().Err(err).Str("file", path).Msg("Skipping unreadable conversation file")
			continue
		}
		for _, interaction := range interactions {
			if !since.IsZero() && !interaction.Timestamp.After(since) {
				continue
			}
			all = append(all, interaction)
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp.After(all[j].Timestamp)
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}

// CalculateMetrics aggregates session metrics across conversation files.
// conversationID limits the aggregation to a single conversation when
// non-empty. Files are parsed concurrently; the fold is order-independent
// so per-file partials merge in any order. Per-file failures contribute
// empty metrics, never an error.
func (r *Reader) CalculateMetrics(since time.Time, conversationID string) models.SessionMetrics {
	files := r.metricsFiles(conversationID)

	partials := make([]models.SessionMetrics, len(files))
	var g errgroup.Group
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			interactions, err := parseFile(path, r.stats)
			if err != nil {
				log.Warn().Err(err).Str("file", path).Msg("Skipping unreadable conversation file")
				return nil
			}
			partials[i] = foldMetrics(interactions, since)
			return nil
		})
	}
	_ = g.Wait()

	var metrics models.SessionMetrics
	for _, partial := range partials {
		metrics.Merge(partial)
	}
	return metrics
}

// metricsFiles resolves which files feed a metrics aggregation.
func (r *Reader) metricsFiles(conversationID string) []string {
	if conversationID == "" {
		return r.ConversationFiles()
	}
	dir, ok := r.Dir()
	if !ok {
		return nil
	}
	path := filepath.Join(dir, conversationID+convExt)
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return []string{path}
}

// foldMetrics folds interactions into a fresh SessionMetrics. Assistant
// turns drive the counters; both roles widen the timestamp span. The
// since bound is exclusive: an interaction exactly at since is excluded.
func foldMetrics(interactions []models.Interaction, since time.Time) models.SessionMetrics {
	var m models.SessionMetrics
	for _, interaction := range interactions {
		if !since.IsZero() && !interaction.Timestamp.After(since) {
			continue
		}
		if interaction.IsAssistant() {
			m.Interactions++
			m.TokensIn += interaction.TokensIn
			m.TokensOut += interaction.TokensOut
			m.CostUSD += interaction.CostUSD
			m.AddModel(interaction.Model)
		}
		m.Observe(interaction.Timestamp)
	}
	return m
}

// RecentActivity reports whether any conversation saw an interaction
// within the window. File mtimes prefilter the candidates; the decision
// reads only the latest record of each remaining file.
func (r *Reader) RecentActivity(window time.Duration) bool {
	cutoff := time.Now().UTC().Add(-window)

	for _, path := range r.ConversationFiles() {
		info, err := os.Stat(path)
		if err != nil || info.ModTime().Before(cutoff) {
			continue
		}
		latest, err := LatestInteraction(path, r.tailWindow)
		if err != nil {
			log.Warn().Err(err).Str("file", path).Msg("Failed to read latest interaction")
			continue
		}
		if latest != nil && latest.Timestamp.After(cutoff) {
			return true
		}
	}
	return false
}

// Stats returns the reader's ingestion counters, which may be nil.
func (r *Reader) Stats() *Stats {
	return r.stats
}
