package relay

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a Sink that keeps every message.
type recorder struct {
	mu   sync.Mutex
	msgs []Message
	err  error
}

func (r *recorder) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.msgs = append(r.msgs, msg)
	return nil
}

func (r *recorder) messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.msgs...)
}

func (r *recorder) contents() []string {
	var out []string
	for _, m := range r.messages() {
		out = append(out, m.Content)
	}
	return out
}

func TestChunks(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  []string
	}{
		{name: "short", in: "a\nb\n", limit: 10, want: []string{"a\nb"}},
		{name: "empty", in: "", limit: 10, want: nil},
		{name: "only newlines", in: "\n\n", limit: 10, want: nil},
		{name: "split at last newline", in: "aaa\nbbb\nccc\n", limit: 9, want: []string{"aaa\nbbb", "ccc"}},
		{name: "newline right after limit", in: "aaaa\nbbbb\n", limit: 4, want: []string{"aaaa", "bbbb"}},
		{name: "no newline hard cut", in: "abcdefghij", limit: 4, want: []string{"abcd", "efgh", "ij"}},
		{name: "counts characters not bytes", in: "ééééé", limit: 2, want: []string{"éé", "éé", "é"}},
		{name: "zero limit", in: "abc\n", limit: 0, want: []string{"abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Chunks(tt.in, tt.limit))
		})
	}
}

func TestChunks_MaxContentLength(t *testing.T) {
	line := strings.Repeat("x", 99)
	var b strings.Builder
	for range 50 {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	chunks := Chunks(b.String(), MaxContentLength)
	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), MaxContentLength)
		assert.False(t, strings.HasPrefix(c, "\n"))
	}
	assert.Equal(t, 20*100-1, len(chunks[0]), "twenty full lines fit")
}

func TestConsole_BatchesUntilQuiet(t *testing.T) {
	sink := &recorder{}
	c := NewConsole(sink, WithQuietPeriod(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.NoError(t, c.Write(ctx, "line 1"))
	require.NoError(t, c.Write(ctx, "line 2"))

	require.Eventually(t, func() bool { return len(sink.messages()) == 1 }, 2*time.Second, 10*time.Millisecond)
	msg := sink.messages()[0]
	assert.Equal(t, "line 1\nline 2", msg.Content)
	assert.Equal(t, ConsoleName, msg.Username)

	require.NoError(t, c.Write(ctx, "line 3"))
	require.Eventually(t, func() bool { return len(sink.messages()) == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"line 1\nline 2", "line 3"}, sink.contents())

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestConsole_CloseFlushes(t *testing.T) {
	sink := &recorder{}
	c := NewConsole(sink, WithQuietPeriod(time.Hour))

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	require.NoError(t, c.Write(context.Background(), "pending"))
	c.Close()
	c.Close()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Close")
	}
	assert.Equal(t, []string{"pending"}, sink.contents())
}

func TestConsole_DeliveryFailureDropsBatch(t *testing.T) {
	sink := &recorder{err: assert.AnError}
	c := NewConsole(sink, WithQuietPeriod(time.Hour))

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()
	require.NoError(t, c.Write(context.Background(), "lost"))
	c.Close()

	require.NoError(t, <-done)
	assert.Empty(t, sink.messages())
}
