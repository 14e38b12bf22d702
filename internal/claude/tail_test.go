package claude

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// record builds one conversation log line.
func record(role, id, ts, content string) string {
	return fmt.Sprintf(`{"type":%q,"uuid":%q,"sessionId":"s1","timestamp":%q,"message":{"role":%q,"content":%q}}`,
		role, id, ts, role, content)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestParseFile_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conv.jsonl")
	content := record("user", "u1", "2026-01-15T10:00:00Z", "question") + "\n" +
		"{not json}\n" +
		"\n" +
		record("assistant", "a1", "2026-01-15T10:00:30Z", "answer") + "\n"
	writeFile(t, path, content)

	interactions, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, interactions, 2)
	assert.Equal(t, "u1", interactions[0].ID)
	assert.Equal(t, "a1", interactions[1].ID)
}

func TestLatestInteraction_MatchesFullParse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conv.jsonl")
	var b strings.Builder
	for i := 0; i < 50; i++ {
		b.WriteString(record("assistant", fmt.Sprintf("a%d", i), "2026-01-15T10:00:00Z", strings.Repeat("x", 200)))
		b.WriteString("\n")
	}
	writeFile(t, path, b.String())

	full, err := ParseFile(path)
	require.NoError(t, err)

	latest, err := LatestInteraction(path, DefaultTailWindow)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, full[len(full)-1].ID, latest.ID)
}

func TestLatestInteraction_SmallWindowStillFindsRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conv.jsonl")
	content := record("user", "u1", "2026-01-15T10:00:00Z", strings.Repeat("a", 500)) + "\n" +
		record("assistant", "a1", "2026-01-15T10:00:30Z", "short") + "\n"
	writeFile(t, path, content)

	// A window that cuts into the first record: the partial line fails
	// extraction and is skipped, the trailing record is still found.
	latest, err := LatestInteraction(path, 200)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "a1", latest.ID)
}

func TestLatestInteraction_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conv.jsonl")
	writeFile(t, path, "")

	latest, err := LatestInteraction(path, DefaultTailWindow)
	require.NoError(t, err)
	assert.Nil(t, latest)
}

// TestTailer_ChunkReplayEqualsFullParse appends the same byte stream in
// arbitrary chunk boundaries and verifies the incremental reads deliver
// exactly the full-parse extraction, without loss or duplication.
func TestTailer_ChunkReplayEqualsFullParse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conv.jsonl")

	var full strings.Builder
	for i := 0; i < 20; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		full.WriteString(record(role, fmt.Sprintf("r%d", i), "2026-01-15T10:00:00Z", "body"))
		full.WriteString("\n")
	}
	stream := full.String()

	// Chunk sizes chosen to split lines mid-record.
	chunks := []int{1, 7, 13, 64, 200, 999}

	tailer := NewTailer(nil)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	defer f.Close()

	var ids []string
	pos := 0
	for ci := 0; pos < len(stream); ci++ {
		n := chunks[ci%len(chunks)]
		if pos+n > len(stream) {
			n = len(stream) - pos
		}
		_, err := f.WriteString(stream[pos : pos+n])
		require.NoError(t, err)
		pos += n

		interactions, err := tailer.ReadNew(path)
		require.NoError(t, err)
		for _, interaction := range interactions {
			ids = append(ids, interaction.ID)
		}
	}

	fullParse, _ := extractLines([]byte(stream))
	require.Len(t, ids, len(fullParse))
	for i, interaction := range fullParse {
		assert.Equal(t, interaction.ID, ids[i])
	}
}

func TestTailer_PartialLineNotConsumed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conv.jsonl")
	line := record("user", "u1", "2026-01-15T10:00:00Z", "hello")

	// Write the line without its newline: nothing should be delivered.
	writeFile(t, path, line)
	tailer := NewTailer(nil)

	interactions, err := tailer.ReadNew(path)
	require.NoError(t, err)
	assert.Empty(t, interactions)

	// Completing the line delivers exactly one interaction.
	writeFile(t, path, line+"\n")
	interactions, err = tailer.ReadNew(path)
	require.NoError(t, err)
	require.Len(t, interactions, 1)
	assert.Equal(t, "u1", interactions[0].ID)
}

func TestTailer_TruncationResetsOffset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conv.jsonl")
	stats := &Stats{}
	tailer := NewTailer(stats)

	writeFile(t, path, record("user", "u1", "2026-01-15T10:00:00Z", "long first message")+"\n")
	interactions, err := tailer.ReadNew(path)
	require.NoError(t, err)
	require.Len(t, interactions, 1)

	// Rotation: the file shrinks below the stored offset and is re-read
	// from the start.
	writeFile(t, path, record("user", "u2", "2026-01-15T11:00:00Z", "new")+"\n")
	interactions, err = tailer.ReadNew(path)
	require.NoError(t, err)
	require.Len(t, interactions, 1)
	assert.Equal(t, "u2", interactions[0].ID)
	assert.Equal(t, int64(1), stats.Snapshot().OffsetResets)
}

func TestTailer_NoNewData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conv.jsonl")
	writeFile(t, path, record("user", "u1", "2026-01-15T10:00:00Z", "hi")+"\n")

	tailer := NewTailer(nil)
	first, err := tailer.ReadNew(path)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := tailer.ReadNew(path)
	require.NoError(t, err)
	assert.Empty(t, second)
}
