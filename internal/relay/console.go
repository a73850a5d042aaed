package relay

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

const (
	// DefaultQuietPeriod is how long the console waits after the last line
	// before flushing.
	DefaultQuietPeriod = 100 * time.Millisecond

	// MaxContentLength is the longest message content a webhook accepts, in
	// characters.
	MaxContentLength = 2000

	consoleBuffer = 256
	flushTimeout  = 5 * time.Second
)

// Console batches raw log lines and posts them as plain messages once the
// log has been quiet for a while.
type Console struct {
	sink     Sink
	renderer Renderer
	quiet    time.Duration
	log      *slog.Logger

	lines     chan string
	closeOnce sync.Once
}

// ConsoleOption configures a Console.
type ConsoleOption func(*Console)

// WithQuietPeriod sets the delay after the last line before a flush.
func WithQuietPeriod(d time.Duration) ConsoleOption {
	return func(c *Console) {
		if d > 0 {
			c.quiet = d
		}
	}
}

// WithConsoleLogger sets the logger for delivery failures.
func WithConsoleLogger(l *slog.Logger) ConsoleOption {
	return func(c *Console) {
		if l != nil {
			c.log = l
		}
	}
}

// WithConsoleRenderer sets the renderer used for the console avatar.
func WithConsoleRenderer(r Renderer) ConsoleOption {
	return func(c *Console) {
		c.renderer = r
	}
}

// NewConsole returns a console mirror posting to sink. Call Run to start it.
func NewConsole(sink Sink, opts ...ConsoleOption) *Console {
	c := &Console{
		sink:  sink,
		quiet: DefaultQuietPeriod,
		log:   discardLogger,
		lines: make(chan string, consoleBuffer),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Write queues one line. It blocks only when the queue is full.
func (c *Console) Write(ctx context.Context, line string) error {
	select {
	case c.lines <- line:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting lines. Run flushes what is buffered and returns.
// Write must not be called after Close.
func (c *Console) Close() {
	c.closeOnce.Do(func() { close(c.lines) })
}

// Run batches lines until Close is called or ctx is done. After Close the
// buffer is flushed; after cancellation it is dropped.
func (c *Console) Run(ctx context.Context) error {
	var buf strings.Builder
	timer := time.NewTimer(c.quiet)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case line, ok := <-c.lines:
			if !ok {
				flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
				c.flush(flushCtx, &buf)
				cancel()
				return nil
			}
			buf.WriteString(line)
			buf.WriteByte('\n')
			timer.Reset(c.quiet)
		case <-timer.C:
			c.flush(ctx, &buf)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Console) flush(ctx context.Context, buf *strings.Builder) {
	if buf.Len() == 0 {
		return
	}
	text := buf.String()
	buf.Reset()

	for _, chunk := range Chunks(text, MaxContentLength) {
		msg := Message{
			Username:  ConsoleName,
			AvatarURL: c.renderer.Avatar(ConsoleName),
			Content:   chunk,
		}
		if err := c.sink.Send(ctx, msg); err != nil {
			// The rest of the batch would most likely fail the same way.
			c.log.Warn("console mirror delivery failed", "error", err, "dropped_bytes", len(text))
			return
		}
	}
}

// Chunks splits s into pieces of at most limit characters. A piece ends at
// the last newline that fits when there is one; the newline itself is
// dropped. Empty pieces are omitted.
func Chunks(s string, limit int) []string {
	var out []string
	if limit <= 0 {
		return appendNonEmpty(out, s)
	}
	for utf8.RuneCountInString(s) > limit {
		cut := runeOffset(s, limit)
		// A newline right after the limit still counts: the piece fits without it.
		if i := strings.LastIndexByte(s[:min(cut+1, len(s))], '\n'); i > 0 {
			out = appendNonEmpty(out, s[:i])
			s = s[i+1:]
			continue
		}
		out = appendNonEmpty(out, s[:cut])
		s = s[cut:]
	}
	return appendNonEmpty(out, s)
}

func appendNonEmpty(out []string, s string) []string {
	if s = strings.Trim(s, "\n"); s != "" {
		out = append(out, s)
	}
	return out
}

// runeOffset returns the byte offset just past the first n runes of s.
func runeOffset(s string, n int) int {
	for i := range s {
		if n == 0 {
			return i
		}
		n--
	}
	return len(s)
}
