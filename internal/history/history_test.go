package history

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/avereyes/promptdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLog(t *testing.T) *Log {
	t.Helper()
	log, err := NewLog(filepath.Join(t.TempDir(), "prompts.csv"))
	require.NoError(t, err)
	return log
}

func TestAppendAndReadRecent(t *testing.T) {
	log := newTestLog(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 1; i <= 7; i++ {
		err := log.Append(domain.HistoryEntry{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			App:       "Excel",
			Task:      fmt.Sprintf("task %d", i),
			Context:   "quarterly numbers",
			Prompt:    fmt.Sprintf("prompt %d", i),
		})
		require.NoError(t, err)
	}

	entries := log.ReadRecent(5)

	require.Len(t, entries, 5)
	// Newest first: 7, 6, 5, 4, 3.
	assert.Equal(t, "task 7", entries[0].Task)
	assert.Equal(t, "task 3", entries[4].Task)
	for i := 0; i < len(entries)-1; i++ {
		assert.True(t, entries[i].Timestamp.After(entries[i+1].Timestamp))
	}
}

func TestAppendWritesHeaderOnce(t *testing.T) {
	log := newTestLog(t)

	for i := 0; i < 2; i++ {
		require.NoError(t, log.Append(domain.HistoryEntry{Timestamp: time.Now(), App: "Word", Task: "t", Prompt: "p"}))
	}

	data, err := os.ReadFile(log.path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "timestamp,app,task,context,prompt"))
}

func TestAppendQuotesEmbeddedDelimiters(t *testing.T) {
	log := newTestLog(t)

	require.NoError(t, log.Append(domain.HistoryEntry{
		Timestamp: time.Now().UTC(),
		App:       "Outlook",
		Task:      `reply, politely, with "thanks"`,
		Context:   "line one\nline two",
		Prompt:    "draft it",
	}))

	entries := log.ReadRecent(0)
	require.Len(t, entries, 1)
	assert.Equal(t, `reply, politely, with "thanks"`, entries[0].Task)
	assert.Equal(t, "line one\nline two", entries[0].Context)
}

func TestReadRecentSkipsMalformedRows(t *testing.T) {
	log := newTestLog(t)
	require.NoError(t, log.Append(domain.HistoryEntry{Timestamp: time.Now().UTC(), App: "Teams", Task: "good", Prompt: "p"}))

	// A short row and one with a bad timestamp, as an older or
	// hand-edited file might contain.
	f, err := os.OpenFile(log.path, os.O_WRONLY|os.O_APPEND, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("short,row\nnot-a-time,Word,task,ctx,prompt\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	entries := log.ReadRecent(10)
	require.Len(t, entries, 1)
	assert.Equal(t, "good", entries[0].Task)
}

func TestReadRecentMissingFile(t *testing.T) {
	log, err := NewLog(filepath.Join(t.TempDir(), "never-written.csv"))
	require.NoError(t, err)
	assert.Empty(t, log.ReadRecent(10))
}
