package eventlog

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct {
	t *testing.T
}

func (w *testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))

	return len(p), nil
}

func newTestLog(t *testing.T) *Log {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(&testLogWriter{t: t}, &slog.HandlerOptions{Level: slog.LevelDebug}))

	l, err := Open(context.Background(), filepath.Join(t.TempDir(), "events.db"), logger)
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := l.Close(); err != nil {
			t.Errorf("Close(): %v", err)
		}
	})

	return l
}

func TestOpen_ReopenIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "events.db")

	l, err := Open(ctx, path, nil)
	require.NoError(t, err)
	require.NoError(t, l.Record(ctx, Event{Kind: CacheMiss, CachePath: "/c"}))
	require.NoError(t, l.Close())

	l, err = Open(ctx, path, nil)
	require.NoError(t, err)
	defer l.Close()

	events, err := l.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestRecent_NewestFirst(t *testing.T) {
	ctx := context.Background()
	l := newTestLog(t)

	base := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, l.Record(ctx, Event{OccurredAt: base, Kind: CacheMiss, CachePath: "/c"}))
	require.NoError(t, l.Record(ctx, Event{OccurredAt: base.Add(time.Minute), Kind: FetchOK, CachePath: "/c"}))
	require.NoError(t, l.Record(ctx, Event{
		OccurredAt: base.Add(2 * time.Minute), Kind: PersistFailed, CachePath: "/c", Detail: "read-only",
	}))

	events, err := l.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, PersistFailed, events[0].Kind)
	assert.Equal(t, "read-only", events[0].Detail)
	assert.True(t, events[0].OccurredAt.Equal(base.Add(2*time.Minute)))
	assert.Equal(t, FetchOK, events[1].Kind)
}

func TestRecord_DefaultsTimestamp(t *testing.T) {
	ctx := context.Background()
	l := newTestLog(t)

	fixed := time.Date(2031, 6, 1, 12, 0, 0, 0, time.UTC)
	l.nowFunc = func() time.Time { return fixed }

	require.NoError(t, l.Record(ctx, Event{Kind: CacheHit, CachePath: "/c"}))

	events, err := l.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].OccurredAt.Equal(fixed))
}

func TestCounts(t *testing.T) {
	ctx := context.Background()
	l := newTestLog(t)

	for _, k := range []Kind{CacheHit, CacheHit, CacheCorrupt} {
		require.NoError(t, l.Record(ctx, Event{Kind: k, CachePath: "/c"}))
	}

	counts, err := l.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[Kind]int{CacheHit: 2, CacheCorrupt: 1}, counts)
}

func TestRecent_Empty(t *testing.T) {
	events, err := newTestLog(t).Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestPrune_DeletesOlderThanRetention(t *testing.T) {
	ctx := context.Background()
	l := newTestLog(t)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	l.nowFunc = func() time.Time { return now }

	require.NoError(t, l.Record(ctx, Event{Kind: CacheHit, CachePath: "/c", OccurredAt: now.Add(-10 * 24 * time.Hour)}))
	require.NoError(t, l.Record(ctx, Event{Kind: CacheMiss, CachePath: "/c", OccurredAt: now.Add(-8 * 24 * time.Hour)}))
	require.NoError(t, l.Record(ctx, Event{Kind: FetchOK, CachePath: "/c", OccurredAt: now.Add(-time.Hour)}))

	deleted, err := l.Prune(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	events, err := l.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, FetchOK, events[0].Kind)
}

func TestPrune_ZeroRetentionKeepsAll(t *testing.T) {
	ctx := context.Background()
	l := newTestLog(t)

	require.NoError(t, l.Record(ctx, Event{Kind: CacheHit, CachePath: "/c", OccurredAt: time.Unix(0, 1)}))

	deleted, err := l.Prune(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, deleted)

	counts, err := l.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[CacheHit])
}
