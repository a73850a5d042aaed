package tailer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case line, ok := <-ch:
		require.True(t, ok, "lines channel closed")
		return line
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for line")
		return ""
	}
}

func appendLine(t *testing.T, path, line string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	defer f.Close()
	_, err = f.WriteString(line + "\n")
	require.NoError(t, err)
}

func TestTailer_FromStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latest.log")
	require.NoError(t, os.WriteFile(path, []byte("one\r\ntwo\n"), 0644))

	cfg := DefaultConfig()
	cfg.FromStart = true
	cfg.Poll = true
	tl, err := New(context.Background(), path, cfg)
	require.NoError(t, err)
	defer tl.Stop()

	assert.Equal(t, "one", recv(t, tl.Lines()))
	assert.Equal(t, "two", recv(t, tl.Lines()))

	appendLine(t, path, "three")
	assert.Equal(t, "three", recv(t, tl.Lines()))
}

func TestTailer_FromEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latest.log")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0644))

	cfg := DefaultConfig()
	cfg.Poll = true
	tl, err := New(context.Background(), path, cfg)
	require.NoError(t, err)
	defer tl.Stop()

	// Give the poller a chance to record the starting offset.
	time.Sleep(100 * time.Millisecond)
	appendLine(t, path, "new")
	assert.Equal(t, "new", recv(t, tl.Lines()))
}

func TestTailer_MissingFile(t *testing.T) {
	_, err := New(context.Background(), filepath.Join(t.TempDir(), "missing.log"), DefaultConfig())
	assert.Error(t, err)
}

func TestTailer_ContextCancelClosesChannels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latest.log")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	ctx, cancel := context.WithCancel(context.Background())
	cfg := DefaultConfig()
	cfg.Poll = true
	tl, err := New(ctx, path, cfg)
	require.NoError(t, err)
	defer tl.Stop()

	cancel()
	select {
	case _, ok := <-tl.Lines():
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("lines channel not closed after cancel")
	}
}

func TestTailer_StopTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latest.log")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	cfg := DefaultConfig()
	cfg.Poll = true
	tl, err := New(context.Background(), path, cfg)
	require.NoError(t, err)

	assert.NoError(t, tl.Stop())
	assert.NoError(t, tl.Stop())
}
