package mclog_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gluemc/gluemc-go/pkg/mclog"
)

func appendLines(t *testing.T, path string, lines ...string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	require.NoError(t, err)
	defer f.Close()
	for _, line := range lines {
		_, err := f.WriteString(line + "\n")
		require.NoError(t, err)
	}
	require.NoError(t, f.Sync())
}

func nextEvent(t *testing.T, events <-chan mclog.Event, errs <-chan error) mclog.Event {
	t.Helper()
	select {
	case ev, ok := <-events:
		require.True(t, ok, "events channel closed")
		return ev
	case err := <-errs:
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for event")
	}
	return mclog.Event{}
}

func startWatcher(t *testing.T, opts ...mclog.WatchOption) (<-chan mclog.Event, <-chan error) {
	t.Helper()
	opts = append([]mclog.WatchOption{
		mclog.WithPollInterval(100 * time.Millisecond),
		mclog.WithStatPolling(true),
	}, opts...)
	w, err := mclog.NewWatcherWithOptions(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	events, errs, err := w.Watch(context.Background())
	require.NoError(t, err)
	return events, errs
}

func TestWatcher_ReplayFromStart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "latest.log")
	appendLines(t, path,
		"[10:00:00] [Server thread/INFO]: Steve joined the game",
		"[10:00:01] [Server thread/INFO]: <Steve> hi",
	)

	events, errs := startWatcher(t,
		mclog.WithLogDir(dir),
		mclog.WithReplayFromStart(),
		mclog.WithIncludeRawLine(true),
	)

	ev := nextEvent(t, events, errs)
	assert.Equal(t, mclog.EventJoin, ev.Type)
	assert.Equal(t, "Steve", ev.Player)
	assert.Equal(t, "[10:00:00] [Server thread/INFO]: Steve joined the game", ev.RawLine)

	ev = nextEvent(t, events, errs)
	assert.Equal(t, mclog.EventChat, ev.Type)
	assert.Equal(t, "hi", ev.Message)
}

func TestWatcher_ReplayLastN(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "latest.log")
	appendLines(t, path,
		"[10:00:00] [Server thread/INFO]: First joined the game",
		"[10:00:01] [Server thread/INFO]: Second joined the game",
		"[10:00:02] [Server thread/INFO]: Third joined the game",
	)

	events, errs := startWatcher(t, mclog.WithLogDir(dir), mclog.WithReplayLastN(2))

	assert.Equal(t, "Second", nextEvent(t, events, errs).Player)
	assert.Equal(t, "Third", nextEvent(t, events, errs).Player)

	// Tailing continues after the replay without repeating it.
	time.Sleep(200 * time.Millisecond)
	appendLines(t, path, "[10:00:03] [Server thread/INFO]: Fourth joined the game")
	assert.Equal(t, "Fourth", nextEvent(t, events, errs).Player)
}

func TestWatcher_Filter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "latest.log")
	appendLines(t, path,
		"[10:00:00] [Server thread/INFO]: Starting minecraft server version 1.21.1",
		"[10:00:01] [Server thread/INFO]: Steve joined the game",
		"[10:00:02] [Server thread/INFO]: Steve was slain by Zombie",
	)

	events, errs := startWatcher(t,
		mclog.WithLogDir(dir),
		mclog.WithReplayFromStart(),
		mclog.WithIncludeTypes(mclog.EventDeath),
	)

	ev := nextEvent(t, events, errs)
	assert.Equal(t, mclog.EventDeath, ev.Type)
	assert.Equal(t, "Steve", ev.Victim)
	assert.Equal(t, "Zombie", ev.Attacker)
}

func TestWatcher_ServerRestart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "latest.log")
	appendLines(t, path, "[10:00:00] [Server thread/INFO]: Before joined the game")

	events, errs := startWatcher(t, mclog.WithLogDir(dir), mclog.WithReplayFromStart())
	assert.Equal(t, "Before", nextEvent(t, events, errs).Player)

	// The server archives the old log and starts a new latest.log.
	require.NoError(t, os.Rename(path, filepath.Join(dir, "2024-01-15-1.log")))
	appendLines(t, path, "[11:00:00] [Server thread/INFO]: After joined the game")

	assert.Equal(t, "After", nextEvent(t, events, errs).Player)

	appendLines(t, path, "[11:00:01] [Server thread/INFO]: After left the game")
	ev := nextEvent(t, events, errs)
	assert.Equal(t, mclog.EventLeave, ev.Type)
	assert.Equal(t, "After", ev.Player)
}

func TestWatcher_WaitForLogs(t *testing.T) {
	dir := t.TempDir()
	events, errs := startWatcher(t, mclog.WithLogDir(dir), mclog.WithWaitForLogs(true))

	time.Sleep(300 * time.Millisecond)
	appendLines(t, filepath.Join(dir, "latest.log"), "[10:00:00] [Server thread/INFO]: Late joined the game")

	// Without replay the tailer starts at the end of the new file, so the
	// first line may be skipped. Keep appending until one comes through.
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			require.True(t, ok)
			if ev.Player == "Late" || ev.Player == "Later" {
				return
			}
		case err := <-errs:
			t.Fatalf("unexpected error: %v", err)
		case <-time.After(500 * time.Millisecond):
			appendLines(t, filepath.Join(dir, "latest.log"), "[10:00:01] [Server thread/INFO]: Later joined the game")
		case <-deadline:
			t.Fatal("timeout waiting for event")
		}
	}
}

func TestWatcher_NoLogFiles(t *testing.T) {
	dir := t.TempDir()
	events, errs := startWatcher(t, mclog.WithLogDir(dir))

	// The error is buffered before either channel closes.
	select {
	case err, ok := <-errs:
		require.True(t, ok, "errors channel closed without an error")
		assert.ErrorIs(t, err, mclog.ErrNoLogFiles)
		var we *mclog.WatchError
		require.True(t, errors.As(err, &we))
		assert.Equal(t, mclog.WatchOpFindLatest, we.Op)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for error")
	}

	select {
	case _, ok := <-events:
		assert.False(t, ok, "events channel should close after a fatal error")
	case <-time.After(2 * time.Second):
		t.Fatal("events channel not closed")
	}
}

func TestWatcher_WatchTwice(t *testing.T) {
	dir := t.TempDir()
	appendLines(t, filepath.Join(dir, "latest.log"))

	w, err := mclog.NewWatcherWithOptions(mclog.WithLogDir(dir))
	require.NoError(t, err)
	defer w.Close()

	_, _, err = w.Watch(context.Background())
	require.NoError(t, err)
	_, _, err = w.Watch(context.Background())
	assert.ErrorIs(t, err, mclog.ErrAlreadyWatching)
}

func TestWatcher_WatchAfterClose(t *testing.T) {
	w, err := mclog.NewWatcherWithOptions(mclog.WithLogDir(t.TempDir()))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, _, err = w.Watch(context.Background())
	assert.ErrorIs(t, err, mclog.ErrWatcherClosed)
}

func TestWatcher_ContextCancelClosesChannels(t *testing.T) {
	dir := t.TempDir()
	appendLines(t, filepath.Join(dir, "latest.log"))

	w, err := mclog.NewWatcherWithOptions(mclog.WithLogDir(dir), mclog.WithStatPolling(true))
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	events, errs, err := w.Watch(ctx)
	require.NoError(t, err)
	cancel()

	for events != nil || errs != nil {
		select {
		case _, ok := <-events:
			if !ok {
				events = nil
			}
		case _, ok := <-errs:
			if !ok {
				errs = nil
			}
		case <-time.After(2 * time.Second):
			t.Fatal("channels not closed after cancel")
		}
	}
}

func TestNewWatcherWithOptions_Invalid(t *testing.T) {
	_, err := mclog.NewWatcherWithOptions(mclog.WithLogDir(t.TempDir()), mclog.WithPollInterval(-time.Second))
	assert.Error(t, err)

	_, err = mclog.NewWatcherWithOptions(mclog.WithLogDir("/nonexistent/path"))
	assert.ErrorIs(t, err, mclog.ErrLogDirNotFound)
}
