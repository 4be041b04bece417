package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "decisions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournal_Record(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	entry := &Entry{Turn: 7, Action: "right", Snapshot: []byte(`{"turn":7}`)}
	require.NoError(t, j.Record(ctx, entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())

	count, err := j.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	entries, err := j.Recent(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.ID, entries[0].ID)
	assert.Equal(t, 7, entries[0].Turn)
	assert.Equal(t, "right", entries[0].Action)
	assert.False(t, entries[0].Fallback)
	assert.Equal(t, `{"turn":7}`, string(entries[0].Snapshot))
	assert.WithinDuration(t, entry.CreatedAt, entries[0].CreatedAt, time.Millisecond)
}

func TestJournal_RecordFallbackWithoutSnapshot(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.Record(ctx, &Entry{Action: "up", Fallback: true, Reason: "malformed or unexpected: missing food"}))

	entries, err := j.Recent(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Fallback)
	assert.Equal(t, "malformed or unexpected: missing food", entries[0].Reason)
	assert.Empty(t, entries[0].Snapshot)
}

func TestJournal_RecentIsNewestFirstAndPaged(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for turn := 0; turn < 5; turn++ {
		require.NoError(t, j.Record(ctx, &Entry{
			Turn:      turn,
			Action:    "up",
			CreatedAt: base.Add(time.Duration(turn) * time.Second),
		}))
	}

	page, err := j.Recent(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, 4, page[0].Turn)
	assert.Equal(t, 3, page[1].Turn)

	page, err = j.Recent(ctx, 2, 4)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, 0, page[0].Turn)

	count, err := j.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestJournal_DuplicateID(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.Record(ctx, &Entry{ID: "fixed", Action: "up"}))
	assert.Error(t, j.Record(ctx, &Entry{ID: "fixed", Action: "down"}))
}

func TestJournal_ReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decisions.db")
	ctx := context.Background()

	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Record(ctx, &Entry{Action: "left"}))
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()
	count, err := j.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
