package mclog

import (
	"bufio"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/gluemc/gluemc-go/internal/logfinder"
	"github.com/gluemc/gluemc-go/internal/safefile"
)

// ParseFile parses a server log file and yields its events in order.
// Files ending in .gz (the server's rotated logs) are decompressed.
//
// Parser errors are skipped unless WithParseStopOnError is set, in which case
// the first one is yielded and iteration ends. WithParseReportErrors yields
// each one as a *ParseError and continues. A line longer than the limit set
// by WithParseMaxLineBytes is always yielded as a *ParseError wrapping
// ErrLineTooLong, and parsing resumes at the next line. Failures to open or
// read the file are always yielded and end iteration.
//
// Example:
//
//	for ev, err := range mclog.ParseFile(ctx, "logs/latest.log") {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(ev.Type, ev.Text)
//	}
func ParseFile(ctx context.Context, path string, opts ...ParseOption) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		f, _, err := safefile.OpenRegular(path)
		if err != nil {
			yield(Event{}, fmt.Errorf("open %s: %w", path, err))
			return
		}
		defer f.Close()

		var r io.Reader = f
		if strings.HasSuffix(path, ".gz") {
			gz, err := gzip.NewReader(f)
			if err != nil {
				yield(Event{}, fmt.Errorf("open %s: %w", path, err))
				return
			}
			defer gz.Close()
			r = gz
		}

		for ev, err := range ParseReader(ctx, r, opts...) {
			if err != nil {
				err = fmt.Errorf("%s: %w", path, err)
			}
			if !yield(ev, err) {
				return
			}
		}
	}
}

// ParseFileAll parses a whole file and returns its events. It stops at the
// first error it sees and returns the events collected so far with it.
func ParseFileAll(ctx context.Context, path string, opts ...ParseOption) ([]Event, error) {
	var events []Event
	for ev, err := range ParseFile(ctx, path, opts...) {
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
	return events, nil
}

// ParseReader parses log lines from r. See ParseFile for error handling.
func ParseReader(ctx context.Context, r io.Reader, opts ...ParseOption) iter.Seq2[Event, error] {
	cfg := applyParseOptions(opts)

	return func(yield func(Event, error) bool) {
		lr := lineReader{br: bufio.NewReaderSize(r, readBufferSize), max: cfg.maxLineBytes}

		for {
			raw, long, err := lr.next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(Event{}, fmt.Errorf("reading log: %w", err))
				return
			}
			if err := ctx.Err(); err != nil {
				yield(Event{}, err)
				return
			}

			if long {
				err := &ParseError{Line: excerpt(raw), Err: ErrLineTooLong}
				if !yield(Event{}, err) || cfg.stopOnError {
					return
				}
				continue
			}

			line := strings.TrimSuffix(string(raw), "\r")
			if line == "" {
				continue
			}

			result, err := cfg.parser.ParseLine(ctx, line)
			for _, ev := range result.Events {
				if !cfg.filter.Allows(ev.Type) {
					continue
				}
				if cfg.includeRawLine {
					ev.RawLine = line
				}
				if !yield(ev, nil) {
					return
				}
			}
			if err != nil && (cfg.stopOnError || cfg.reportErrors) {
				var pe *ParseError
				if !errors.As(err, &pe) {
					err = &ParseError{Line: line, Err: err}
				}
				if !yield(Event{}, err) || cfg.stopOnError {
					return
				}
			}
		}
	}
}

const (
	readBufferSize = 64 << 10
	excerptBytes   = 256
)

// lineReader splits a stream into lines of at most max bytes. The part of a
// longer line past max is read and thrown away, so one bad line costs that
// line only.
type lineReader struct {
	br  *bufio.Reader
	max int
	buf []byte
}

// next returns the next line without its newline. The slice is reused by the
// following call. long reports that the line was cut at max bytes. At the end
// of the stream err is io.EOF.
func (lr *lineReader) next() (line []byte, long bool, err error) {
	lr.buf = lr.buf[:0]
	for {
		chunk, err := lr.br.ReadSlice('\n')
		frag := chunk
		if err == nil {
			frag = frag[:len(frag)-1]
		}
		if !long {
			if room := lr.max - len(lr.buf); len(frag) > room {
				lr.buf = append(lr.buf, frag[:room]...)
				long = true
			} else {
				lr.buf = append(lr.buf, frag...)
			}
		}

		switch {
		case err == nil:
			return lr.buf, long, nil
		case errors.Is(err, bufio.ErrBufferFull):
		case errors.Is(err, io.EOF):
			if len(lr.buf) > 0 || long {
				return lr.buf, long, nil
			}
			return nil, false, io.EOF
		default:
			return nil, false, err
		}
	}
}

func excerpt(b []byte) string {
	if len(b) <= excerptBytes {
		return string(b)
	}
	return string(b[:excerptBytes]) + "..."
}

// ParseDirOption configures ParseDir.
type ParseDirOption func(*parseDirConfig)

type parseDirConfig struct {
	logDir        string
	paths         []string
	includeLatest bool
	parseOpts     []ParseOption
}

// WithDirLogDir sets the log directory to read archives and latest.log from.
// If not set, the directory is found the same way as for the watcher.
func WithDirLogDir(dir string) ParseDirOption {
	return func(c *parseDirConfig) {
		c.logDir = dir
	}
}

// WithDirPaths parses exactly these files, in the given order, instead of
// scanning a directory.
func WithDirPaths(paths ...string) ParseDirOption {
	return func(c *parseDirConfig) {
		c.paths = paths
	}
}

// WithDirIncludeLatest controls whether latest.log is parsed after the
// archives. Default: true.
func WithDirIncludeLatest(include bool) ParseDirOption {
	return func(c *parseDirConfig) {
		c.includeLatest = include
	}
}

// WithDirParseOptions passes options through to every ParseFile call.
func WithDirParseOptions(opts ...ParseOption) ParseDirOption {
	return func(c *parseDirConfig) {
		c.parseOpts = append(c.parseOpts, opts...)
	}
}

// ParseDir parses the rotated archives of a server log directory oldest
// first, followed by latest.log.
func ParseDir(ctx context.Context, opts ...ParseDirOption) iter.Seq2[Event, error] {
	cfg := &parseDirConfig{includeLatest: true}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	stopOnError := applyParseOptions(cfg.parseOpts).stopOnError

	return func(yield func(Event, error) bool) {
		paths := cfg.paths
		if len(paths) == 0 {
			var err error
			paths, err = dirLogFiles(cfg.logDir, cfg.includeLatest)
			if err != nil {
				yield(Event{}, err)
				return
			}
		}

		for _, path := range paths {
			for ev, err := range ParseFile(ctx, path, cfg.parseOpts...) {
				if !yield(ev, err) {
					return
				}
				var pe *ParseError
				if err != nil && (stopOnError || !errors.As(err, &pe)) {
					return
				}
			}
		}
	}
}

func dirLogFiles(explicit string, includeLatest bool) ([]string, error) {
	dir, err := logfinder.FindLogDir(explicit)
	if err != nil {
		return nil, fmt.Errorf("finding log directory: %w", err)
	}

	paths, err := logfinder.FindArchivedLogFiles(dir)
	if err != nil {
		return nil, err
	}
	if includeLatest {
		latest, err := logfinder.FindLatestLogFile(dir)
		if err == nil {
			paths = append(paths, latest)
		} else if !errors.Is(err, ErrNoLogFiles) {
			return nil, err
		}
	}
	if len(paths) == 0 {
		return nil, ErrNoLogFiles
	}
	return paths, nil
}
