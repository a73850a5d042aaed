package mclog

import (
	"fmt"
	"log/slog"
	"time"
)

// Defaults for the watcher's replay limits.
const (
	defaultPollInterval       = 2 * time.Second
	defaultMaxReplayBytes     = 10 << 20
	defaultMaxReplayLineBytes = 512 << 10
)

// WatchOption tunes a Watcher. Nil options are ignored.
type WatchOption func(*watchConfig)

type watchConfig struct {
	logDir         string
	pollInterval   time.Duration
	includeRawLine bool
	waitForLogs    bool
	statPolling    bool

	replay             ReplayConfig
	maxReplayLines     int // -1 disables the cap
	maxReplayBytes     int // 0 disables the cap
	maxReplayLineBytes int // 0 disables the cap

	logger *slog.Logger
	filter *compiledFilter
	parser Parser
}

func applyWatchOptions(opts []WatchOption) *watchConfig {
	cfg := &watchConfig{
		pollInterval:       defaultPollInterval,
		maxReplayLines:     DefaultMaxReplayLastN,
		maxReplayBytes:     defaultMaxReplayBytes,
		maxReplayLineBytes: defaultMaxReplayLineBytes,
		parser:             DefaultParser{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

func (c *watchConfig) validate() error {
	switch c.replay.Mode {
	case ReplayNone, ReplayFromStart:
	case ReplayLastN:
		if c.replay.LastN < 0 {
			return fmt.Errorf("replay: last %d lines: count must not be negative", c.replay.LastN)
		}
		limit := c.maxReplayLines
		if limit == 0 {
			limit = DefaultMaxReplayLastN
		}
		if limit > 0 && c.replay.LastN > limit {
			return fmt.Errorf("replay: last %d lines is over the limit of %d", c.replay.LastN, limit)
		}
	default:
		return fmt.Errorf("replay: unknown mode %d", c.replay.Mode)
	}

	switch {
	case c.pollInterval <= 0:
		return fmt.Errorf("poll interval %v is not positive", c.pollInterval)
	case c.maxReplayBytes < 0:
		return fmt.Errorf("replay byte limit %d is negative", c.maxReplayBytes)
	case c.maxReplayLineBytes < 0:
		return fmt.Errorf("replay line limit %d is negative", c.maxReplayLineBytes)
	}
	return nil
}

// WithLogDir points the watcher at the directory holding latest.log.
// Without it the directory is found through GLUEMC_LOGDIR, ./logs or
// ./server/logs, in that order.
func WithLogDir(dir string) WatchOption {
	return func(c *watchConfig) { c.logDir = dir }
}

// WithPollInterval sets how often the watcher checks for a replaced
// latest.log, and for a missing one when waiting. The default is 2s.
func WithPollInterval(interval time.Duration) WatchOption {
	return func(c *watchConfig) { c.pollInterval = interval }
}

// WithWaitForLogs makes Watch wait for the server to create latest.log
// instead of failing with ErrNoLogFiles.
func WithWaitForLogs(wait bool) WatchOption {
	return func(c *watchConfig) { c.waitForLogs = wait }
}

// WithStatPolling follows the file by polling its size instead of using
// fsnotify. Some network and container mounts never deliver notifications.
func WithStatPolling(poll bool) WatchOption {
	return func(c *watchConfig) { c.statPolling = poll }
}

// WithIncludeRawLine copies each source line into Event.RawLine.
func WithIncludeRawLine(include bool) WatchOption {
	return func(c *watchConfig) { c.includeRawLine = include }
}

// WithReplay decides what happens to lines already in latest.log when
// watching starts. By default they are skipped.
func WithReplay(config ReplayConfig) WatchOption {
	return func(c *watchConfig) { c.replay = config }
}

// WithReplayFromStart is WithReplay with ReplayFromStart.
func WithReplayFromStart() WatchOption {
	return WithReplay(ReplayConfig{Mode: ReplayFromStart})
}

// WithReplayLastN replays the last n lines before following the file.
// Blank lines do not count.
func WithReplayLastN(n int) WatchOption {
	return WithReplay(ReplayConfig{Mode: ReplayLastN, LastN: n})
}

// WithMaxReplayLines caps n for WithReplayLastN. Zero keeps
// DefaultMaxReplayLastN and -1 removes the cap.
func WithMaxReplayLines(max int) WatchOption {
	return func(c *watchConfig) { c.maxReplayLines = max }
}

// WithMaxReplayBytes caps how much of the file a last-n replay may read
// (10 MiB by default, 0 for no cap). Going over fails Watch with
// ErrReplayLimitExceeded.
func WithMaxReplayBytes(max int) WatchOption {
	return func(c *watchConfig) { c.maxReplayBytes = max }
}

// WithMaxReplayLineBytes caps a single replayed line (512 KiB by default,
// 0 for no cap). A longer line fails Watch with ErrReplayLimitExceeded.
func WithMaxReplayLineBytes(max int) WatchOption {
	return func(c *watchConfig) { c.maxReplayLineBytes = max }
}

// WithLogger sends the watcher's debug output to logger. Nil keeps it quiet.
func WithLogger(logger *slog.Logger) WatchOption {
	return func(c *watchConfig) { c.logger = logger }
}

// WithParser replaces DefaultParser. A nil p is ignored.
func WithParser(p Parser) WatchOption {
	return func(c *watchConfig) {
		if p != nil {
			c.parser = p
		}
	}
}

// WithParsers runs the given parsers as a ChainAll chain. With no parsers
// the option does nothing.
func WithParsers(parsers ...Parser) WatchOption {
	return func(c *watchConfig) {
		if len(parsers) > 0 {
			c.parser = &ParserChain{Mode: ChainAll, Parsers: parsers}
		}
	}
}

// WithIncludeTypes keeps only events of the given types. A later call
// replaces the set of an earlier one.
func WithIncludeTypes(types ...EventType) WatchOption {
	return func(c *watchConfig) { c.filter = withInclude(c.filter, types) }
}

// WithExcludeTypes drops events of the given types, even ones an include
// set lets through. A later call replaces the set of an earlier one.
func WithExcludeTypes(types ...EventType) WatchOption {
	return func(c *watchConfig) { c.filter = withExclude(c.filter, types) }
}

// WithFilter sets the include and exclude sets together.
func WithFilter(include, exclude []EventType) WatchOption {
	return func(c *watchConfig) { c.filter = newCompiledFilter(include, exclude) }
}

func typeSet(types []EventType) map[EventType]struct{} {
	set := make(map[EventType]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return set
}

func withInclude(f *compiledFilter, types []EventType) *compiledFilter {
	if f == nil {
		f = &compiledFilter{}
	}
	f.include = typeSet(types)
	return f
}

func withExclude(f *compiledFilter, types []EventType) *compiledFilter {
	if f == nil {
		f = &compiledFilter{}
	}
	f.exclude = typeSet(types)
	return f
}

// ParseOption tunes ParseFile, ParseReader and friends.
type ParseOption func(*parseConfig)

type parseConfig struct {
	filter         *compiledFilter
	parser         Parser
	includeRawLine bool
	stopOnError    bool
	reportErrors   bool
	maxLineBytes   int
}

// DefaultMaxLineBytes is the longest line ParseFile accepts by default.
const DefaultMaxLineBytes = 1 << 20

func applyParseOptions(opts []ParseOption) *parseConfig {
	cfg := &parseConfig{
		maxLineBytes: DefaultMaxLineBytes,
		parser:       DefaultParser{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// WithParseIncludeTypes is WithIncludeTypes for parsing.
func WithParseIncludeTypes(types ...EventType) ParseOption {
	return func(c *parseConfig) { c.filter = withInclude(c.filter, types) }
}

// WithParseExcludeTypes is WithExcludeTypes for parsing.
func WithParseExcludeTypes(types ...EventType) ParseOption {
	return func(c *parseConfig) { c.filter = withExclude(c.filter, types) }
}

// WithParseFilter is WithFilter for parsing.
func WithParseFilter(include, exclude []EventType) ParseOption {
	return func(c *parseConfig) { c.filter = newCompiledFilter(include, exclude) }
}

// WithParseIncludeRawLine copies each source line into Event.RawLine.
func WithParseIncludeRawLine(include bool) ParseOption {
	return func(c *parseConfig) { c.includeRawLine = include }
}

// WithParseMaxLineBytes sets the longest line accepted (1 MiB by default).
// A longer line is reported as ErrLineTooLong and skipped. Values below 1
// are ignored.
func WithParseMaxLineBytes(n int) ParseOption {
	return func(c *parseConfig) {
		if n > 0 {
			c.maxLineBytes = n
		}
	}
}

// WithParseParser replaces DefaultParser. A nil p is ignored.
func WithParseParser(p Parser) ParseOption {
	return func(c *parseConfig) {
		if p != nil {
			c.parser = p
		}
	}
}

// WithParseStopOnError ends the sequence at the first parser error. By
// default lines the parser fails on are skipped.
func WithParseStopOnError(stop bool) ParseOption {
	return func(c *parseConfig) { c.stopOnError = stop }
}

// WithParseReportErrors yields parser errors as *ParseError values and keeps
// going, so callers can log the lines a strict parser rejected.
// WithParseStopOnError takes precedence.
func WithParseReportErrors(report bool) ParseOption {
	return func(c *parseConfig) { c.reportErrors = report }
}
