package mclog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/gluemc/gluemc-go/internal/logfinder"
	"github.com/gluemc/gluemc-go/internal/tailer"
)

// ReplayMode says what to do with the lines latest.log already holds when
// watching starts.
type ReplayMode int

const (
	// ReplayNone skips them, like tail -f.
	ReplayNone ReplayMode = iota
	// ReplayFromStart emits the whole file first.
	ReplayFromStart
	// ReplayLastN emits the last ReplayConfig.LastN lines first.
	ReplayLastN
)

// DefaultMaxReplayLastN caps ReplayConfig.LastN unless WithMaxReplayLines
// says otherwise.
const DefaultMaxReplayLastN = 10000

const watcherErrBuffer = 16

// ReplayConfig pairs a ReplayMode with its line count.
type ReplayConfig struct {
	Mode  ReplayMode
	LastN int
}

// Watcher follows a server's latest.log.
type Watcher struct {
	cfg    watchConfig // immutable after creation
	logDir string
	log    *slog.Logger

	mu       sync.Mutex
	closed   bool
	cancel   context.CancelFunc
	doneCh   chan struct{}
	watching bool
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Watch starts following latest.log in the background. Events and
// non-fatal errors arrive on the returned channels, which are closed once
// ctx ends, Close is called or the watcher gives up.
//
// A Watcher watches once: a second call gets ErrAlreadyWatching, a call
// after Close gets ErrWatcherClosed.
func (w *Watcher) Watch(ctx context.Context) (<-chan Event, <-chan error, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, nil, ErrWatcherClosed
	}
	if w.watching {
		return nil, nil, ErrAlreadyWatching
	}
	w.watching = true

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.doneCh = make(chan struct{})

	eventCh := make(chan Event)
	errCh := make(chan error, watcherErrBuffer)

	go w.run(ctx, eventCh, errCh)

	return eventCh, errCh, nil
}

// Close stops watching and returns once the background goroutine is gone.
// Calling it again does nothing.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true

	if w.cancel != nil {
		w.cancel()
	}
	doneCh := w.doneCh
	w.mu.Unlock()

	if doneCh != nil {
		<-doneCh
	}
	return nil
}

// LogDir is the directory the watcher resolved to.
func (w *Watcher) LogDir() string { return w.logDir }

func (w *Watcher) run(ctx context.Context, eventCh chan<- Event, errCh chan<- error) {
	defer close(w.doneCh)
	defer close(eventCh)
	defer close(errCh)

	logFile, err := w.findLogFileWithWait(ctx, errCh)
	if err != nil {
		return
	}
	w.log.Debug("found log file", "path", logFile)

	cfg := w.tailerConfig()
	cfg.FromStart = w.cfg.replay.Mode == ReplayFromStart

	if w.cfg.replay.Mode == ReplayLastN && w.cfg.replay.LastN > 0 {
		w.log.Debug("replaying last N lines", "n", w.cfg.replay.LastN, "path", logFile)
		if err := w.replayLastN(ctx, logFile, eventCh, errCh); err != nil {
			sendError(ctx, errCh, &WatchError{Op: WatchOpReplay, Path: logFile, Err: err})
		}
	}

	// Stat before starting the tailer so a restart in between is noticed.
	current, err := os.Stat(logFile)
	if err != nil {
		sendError(ctx, errCh, &WatchError{Op: WatchOpTail, Path: logFile, Err: err})
		return
	}

	t, err := tailer.New(ctx, logFile, cfg)
	if err != nil {
		sendError(ctx, errCh, &WatchError{Op: WatchOpTail, Path: logFile, Err: err})
		return
	}
	w.log.Debug("started tailing", "path", logFile, "from_start", cfg.FromStart)
	defer func() { _ = t.Stop() }()

	rotationTicker := time.NewTicker(w.cfg.pollInterval)
	defer rotationTicker.Stop()

	// The tailer closes its channels when latest.log is moved away. The nil
	// channels then block until the rotation check starts a new tailer.
	lines, errs := t.Lines(), t.Errors()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			w.processLine(ctx, line, eventCh, errCh)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			sendError(ctx, errCh, &WatchError{Op: WatchOpTail, Path: logFile, Err: err})
		case <-rotationTicker.C:
			same, err := logfinder.SameFile(current, logFile)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					// Between the rename and the new file; check again next tick.
					continue
				}
				sendError(ctx, errCh, &WatchError{Op: WatchOpRotation, Path: logFile, Err: err})
				continue
			}
			if same {
				continue
			}

			// The server restarted and wrote a fresh latest.log. Read it
			// from the start so no line is lost.
			w.log.Debug("log rotation detected", "path", logFile)
			_ = t.Stop()
			next, err := os.Stat(logFile)
			if err != nil {
				sendError(ctx, errCh, &WatchError{Op: WatchOpRotation, Path: logFile, Err: err})
				continue
			}
			cfg := w.tailerConfig()
			cfg.FromStart = true
			newTailer, err := tailer.New(ctx, logFile, cfg)
			if err != nil {
				sendError(ctx, errCh, &WatchError{Op: WatchOpTail, Path: logFile, Err: err})
				return
			}
			t = newTailer
			current = next
			lines, errs = t.Lines(), t.Errors()
		}
	}
}

func (w *Watcher) tailerConfig() tailer.Config {
	cfg := tailer.DefaultConfig()
	cfg.Poll = w.cfg.statPolling
	// Rotation is handled here; the tailer must not reopen on its own or
	// the new file would be read twice.
	cfg.ReOpen = false
	return cfg
}

// findLogFileWithWait finds latest.log, optionally waiting for it.
// Any error is also sent to errCh.
func (w *Watcher) findLogFileWithWait(ctx context.Context, errCh chan<- error) (string, error) {
	logFile, err := logfinder.FindLatestLogFile(w.logDir)
	if err == nil {
		return logFile, nil
	}
	if !errors.Is(err, ErrNoLogFiles) || !w.cfg.waitForLogs {
		sendError(ctx, errCh, &WatchError{Op: WatchOpFindLatest, Err: err})
		return "", err
	}

	w.log.Debug("no log file yet, waiting for the server", "poll_interval", w.cfg.pollInterval)
	ticker := time.NewTicker(w.cfg.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			err := ctx.Err()
			select {
			case errCh <- &WatchError{Op: WatchOpFindLatest, Err: err}:
			default:
			}
			return "", err
		case <-ticker.C:
			logFile, err := logfinder.FindLatestLogFile(w.logDir)
			if err == nil {
				w.log.Debug("log file appeared", "path", logFile)
				return logFile, nil
			}
			if !errors.Is(err, ErrNoLogFiles) {
				sendError(ctx, errCh, &WatchError{Op: WatchOpFindLatest, Err: err})
				return "", err
			}
		}
	}
}

// processLine parses one line and sends whatever passes the filter. Events
// are sent even when the parser also returned an error, so a chain in
// ChainContinueOnError mode loses nothing.
func (w *Watcher) processLine(ctx context.Context, line string, eventCh chan<- Event, errCh chan<- error) {
	if line == "" {
		return
	}
	result, err := w.cfg.parser.ParseLine(ctx, line)

	for _, ev := range result.Events {
		if !w.cfg.filter.Allows(ev.Type) {
			continue
		}
		if w.cfg.includeRawLine {
			ev.RawLine = line
		}
		select {
		case eventCh <- ev:
		case <-ctx.Done():
			return
		}
	}

	if err != nil {
		var pe *ParseError
		if !errors.As(err, &pe) {
			err = &ParseError{Line: line, Err: err}
		}
		sendError(ctx, errCh, err)
	}
}

// replayLastN reads and processes the last N lines from the log file.
func (w *Watcher) replayLastN(ctx context.Context, logFile string, eventCh chan<- Event, errCh chan<- error) error {
	lines, err := readLastNLines(logFile, w.cfg.replay.LastN, w.cfg.maxReplayBytes, w.cfg.maxReplayLineBytes)
	if err != nil {
		return err
	}

	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return err
		}
		w.processLine(ctx, line, eventCh, errCh)
	}
	return nil
}

// readLastNLines reads the last n non-empty lines of a file by scanning
// backwards in fixed-size chunks. Lines are returned oldest first.
//
// maxBytes caps the total bytes read and maxLineBytes caps a single line
// (0 = unlimited); exceeding either returns ErrReplayLimitExceeded.
func readLastNLines(path string, n int, maxBytes int, maxLineBytes int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}
	size := stat.Size()
	if size == 0 || n == 0 {
		return nil, nil
	}

	const chunkSize = 4096
	var (
		lines  []string // newest first while scanning
		carry  []byte   // partial line at the front of the previous chunk
		offset = size
		read   = 0
	)

	for len(lines) < n && offset > 0 {
		readSize := min(int64(chunkSize), offset)
		offset -= readSize

		if maxBytes > 0 && read+int(readSize) > maxBytes {
			return nil, ErrReplayLimitExceeded
		}

		chunk := make([]byte, readSize, int(readSize)+len(carry))
		if _, err := file.ReadAt(chunk, offset); err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		read += int(readSize)
		buf := append(chunk, carry...)

		end := len(buf)
		for i := len(buf) - 1; i >= 0 && len(lines) < n; i-- {
			if buf[i] != '\n' {
				continue
			}
			if line, ok, err := trimLine(buf[i+1:end], maxLineBytes); err != nil {
				return nil, err
			} else if ok {
				lines = append(lines, line)
			}
			end = i
		}
		carry = buf[:end]
		if len(lines) < n && maxLineBytes > 0 && len(carry) > maxLineBytes {
			return nil, ErrReplayLimitExceeded
		}
	}

	if offset == 0 && len(lines) < n {
		line, ok, err := trimLine(carry, maxLineBytes)
		if err != nil {
			return nil, err
		}
		if ok {
			lines = append(lines, line)
		}
	}

	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return lines, nil
}

// trimLine strips a trailing CR and reports whether anything is left.
func trimLine(b []byte, maxLineBytes int) (string, bool, error) {
	if maxLineBytes > 0 && len(b) > maxLineBytes {
		return "", false, ErrReplayLimitExceeded
	}
	if len(b) > 0 && b[len(b)-1] == '\r' {
		b = b[:len(b)-1]
	}
	if len(b) == 0 {
		return "", false, nil
	}
	return string(b), true, nil
}

// sendError sends err without blocking; it is dropped if the buffer is full.
func sendError(ctx context.Context, errCh chan<- error, err error) {
	if err == nil {
		return
	}
	select {
	case errCh <- err:
	case <-ctx.Done():
	default:
	}
}

// WatchWithOptions creates a watcher and starts watching.
//
// The underlying Watcher is not returned, so the watch ends only when ctx is
// cancelled. Use NewWatcherWithOptions and Watcher.Watch for a synchronous
// Close.
//
// Example:
//
//	events, errs, err := mclog.WatchWithOptions(ctx,
//	    mclog.WithLogDir("/srv/minecraft/logs"),
//	    mclog.WithIncludeTypes(mclog.EventJoin, mclog.EventLeave),
//	)
func WatchWithOptions(ctx context.Context, opts ...WatchOption) (<-chan Event, <-chan error, error) {
	w, err := NewWatcherWithOptions(opts...)
	if err != nil {
		return nil, nil, err
	}
	return w.Watch(ctx)
}

// NewWatcherWithOptions creates a watcher. It validates the options and
// resolves the log directory but starts no goroutines.
func NewWatcherWithOptions(opts ...WatchOption) (*Watcher, error) {
	cfg := applyWatchOptions(opts)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	logDir, err := logfinder.FindLogDir(cfg.logDir)
	if err != nil {
		return nil, fmt.Errorf("finding log directory: %w", err)
	}

	log := cfg.logger
	if log == nil {
		log = discardLogger
	}

	return &Watcher{
		cfg:    *cfg,
		logDir: logDir,
		log:    log,
	}, nil
}
