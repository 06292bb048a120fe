package main

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/netdisk-go/internal/config"
	"github.com/tonimelisma/netdisk-go/internal/eventlog"
)

func listenLocal(t *testing.T) net.Listener {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	return ln
}

func TestServeGateway_ServesUntilCancelled(t *testing.T) {
	ln := listenLocal(t)
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "Hey there!")
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- serveGateway(ctx, ln, handler, time.Second) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/hey")
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "Hey there!", string(body))

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serveGateway did not return after cancel")
	}
}

func TestServeGateway_TaskFailureStopsServer(t *testing.T) {
	ln := listenLocal(t)
	boom := errors.New("watcher exploded")

	err := serveGateway(context.Background(), ln, http.NotFoundHandler(), time.Second,
		func(context.Context) error { return boom })

	assert.ErrorIs(t, err, boom)
}

func TestServeGateway_TasksSeeCancellation(t *testing.T) {
	ln := listenLocal(t)
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- serveGateway(ctx, ln, http.NotFoundHandler(), time.Second, func(taskCtx context.Context) error {
			<-taskCtx.Done()
			close(stopped)

			return nil
		})
	}()

	cancel()

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("task not cancelled")
	}

	require.NoError(t, <-done)
}

func TestOpenGateway_EventsDB(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.EventsDB = "default"

	deps, err := openGateway(context.Background(), cfg, dir, discardTestLogger())
	require.NoError(t, err)

	require.NotNil(t, deps.events)
	assert.Equal(t, filepath.Join(dir, "config.toml"), deps.cachePath)
	assert.NotNil(t, eventSource(deps))
	require.NoError(t, deps.Close())

	_, err = os.Stat(filepath.Join(dir, "events.db"))
	assert.NoError(t, err)
}

func TestOpenGateway_NoEventsDB(t *testing.T) {
	deps, err := openGateway(context.Background(), config.DefaultConfig(), t.TempDir(), discardTestLogger())
	require.NoError(t, err)

	assert.Nil(t, deps.events)
	assert.Nil(t, eventSource(deps))
	assert.NoError(t, deps.Close())
}

func TestOpenGateway_PrunesExpiredEvents(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.EventsDB = "default"

	deps, err := openGateway(ctx, cfg, dir, discardTestLogger())
	require.NoError(t, err)
	require.NoError(t, deps.events.Record(ctx, eventlog.Event{
		Kind: eventlog.CacheHit, CachePath: deps.cachePath, OccurredAt: time.Now().Add(-30 * 24 * time.Hour),
	}))
	require.NoError(t, deps.events.Record(ctx, eventlog.Event{Kind: eventlog.FetchOK, CachePath: deps.cachePath}))
	require.NoError(t, deps.Close())

	deps, err = openGateway(ctx, cfg, dir, discardTestLogger())
	require.NoError(t, err)
	defer deps.Close()

	counts, err := deps.events.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[eventlog.Kind]int{eventlog.FetchOK: 1}, counts)
}

func TestRunEventPruner_PrunesOnTick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.DefaultConfig()
	cfg.EventsDB = "default"

	deps, err := openGateway(ctx, cfg, t.TempDir(), discardTestLogger())
	require.NoError(t, err)
	defer deps.Close()

	require.NoError(t, deps.events.Record(ctx, eventlog.Event{
		Kind: eventlog.CacheHit, CachePath: deps.cachePath, OccurredAt: time.Now().Add(-8 * 24 * time.Hour),
	}))

	done := make(chan error, 1)
	go func() { done <- deps.runEventPruner(ctx, 10*time.Millisecond) }()

	assert.Eventually(t, func() bool {
		counts, err := deps.events.Counts(ctx)
		return err == nil && len(counts) == 0
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestRunEventPruner_DisabledReturnsImmediately(t *testing.T) {
	deps, err := openGateway(context.Background(), config.DefaultConfig(), t.TempDir(), discardTestLogger())
	require.NoError(t, err)
	defer deps.Close()

	assert.NoError(t, deps.runEventPruner(context.Background(), time.Millisecond))
}
