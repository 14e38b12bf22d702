package claude

import (
	"bytes"
	"io"
	"os"
	"sync"

	"github.com/wundervaflja/rat/pkg/models"
)

// DefaultTailWindow is how many trailing bytes LatestInteraction reads
// when looking for the most recent record. Large enough to contain at
// least one full record in the overwhelming common case; a single record
// bigger than the window is missed by this fast path and only found by a
// full parse.
const DefaultTailWindow = 50 * 1024

// extractLines splits data into lines and extracts each non-blank one,
// returning the interactions in file order and the count of lines that
// could not be extracted.
func extractLines(data []byte) ([]models.Interaction, int64) {
	var (
		interactions []models.Interaction
		skipped      int64
	)
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if interaction := ExtractLine(line); interaction != nil {
			interactions = append(interactions, *interaction)
		} else {
			skipped++
		}
	}
	return interactions, skipped
}

// parseFile reads an entire conversation file and extracts every valid
// interaction in file order. Malformed lines are skipped, never fatal.
func parseFile(path string, stats *Stats) ([]models.Interaction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	interactions, skipped := extractLines(data)
	stats.recordFileParsed()
	stats.recordExtracted(int64(len(interactions)))
	stats.recordSkipped(skipped)
	return interactions, nil
}

// ParseFile reads the whole conversation file and returns all extracted
// interactions in file order.
func ParseFile(path string) ([]models.Interaction, error) {
	return parseFile(path, nil)
}

// LatestInteraction returns the most recent interaction in a conversation
// file by reading only the trailing window bytes and scanning lines from
// the end backward. A partial line at the window boundary fails extraction
// and is skipped, which tolerates cut multi-byte sequences.
func LatestInteraction(path string, window int) (*models.Interaction, error) {
	if window <= 0 {
		window = DefaultTailWindow
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := info.Size()
	if size == 0 {
		return nil, nil
	}

	readSize := int64(window)
	if readSize > size {
		readSize = size
	}
	if _, err := f.Seek(size-readSize, io.SeekStart); err != nil {
		return nil, err
	}

	data := make([]byte, readSize)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, err
	}

	lines := bytes.Split(data, []byte{'\n'})
	for i := len(lines) - 1; i >= 0; i-- {
		if interaction := ExtractLine(lines[i]); interaction != nil {
			return interaction, nil
		}
	}
	return nil, nil
}

// Tailer reads only newly appended bytes from conversation files, tracked
// by an in-memory byte offset per file. Offsets only advance past complete
// newline-terminated lines; a trailing partial line is left for the next
// read, so replaying a file in arbitrary chunks yields exactly the
// full-parse extraction. Offsets are not persisted; a restart re-delivers
// already-seen lines.
type Tailer struct {
	mu      sync.Mutex
	offsets map[string]int64
	stats   *Stats
}

// NewTailer creates a Tailer. stats may be nil.
func NewTailer(stats *Stats) *Tailer {
	return &Tailer{
		offsets: make(map[string]int64),
		stats:   stats,
	}
}

// ReadNew returns the interactions appended to path since the previous
// call. A file that shrank below the stored offset is treated as rotated:
// the offset resets to 0 and the file is re-read from the start.
func (t *Tailer) ReadNew(path string) ([]models.Interaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	offset := t.offsets[path]
	size := info.Size()
	if size < offset {
		offset = 0
		t.stats.recordOffsetReset()
	}
	if size == offset {
		return nil, nil
	}

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	data := make([]byte, size-offset)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, err
	}

	// Only consume complete lines; the tail of an in-flight append is
	// re-read once its newline arrives.
	end := bytes.LastIndexByte(data, '\n')
	if end < 0 {
		return nil, nil
	}
	data = data[:end+1]
	t.offsets[path] = offset + int64(end) + 1

	interactions, skipped := extractLines(data)
	t.stats.recordIncrementalRead()
	t.stats.recordExtracted(int64(len(interactions)))
	t.stats.recordSkipped(skipped)
	return interactions, nil
}

// Forget drops the stored offset for path.
func (t *Tailer) Forget(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.offsets, path)
}
