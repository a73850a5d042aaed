package mclog

import (
	"errors"
	"fmt"

	"github.com/gluemc/gluemc-go/internal/logfinder"
	"github.com/gluemc/gluemc-go/internal/parser"
	"github.com/gluemc/gluemc-go/pkg/mclog/event"
)

// Event is a parsed log line. See package event.
type Event = event.Event

// EventType identifies the kind of event.
type EventType = event.Type

// Built-in event types.
const (
	EventChat        = event.TypeChat
	EventJoin        = event.TypeJoin
	EventLeave       = event.TypeLeave
	EventAdvancement = event.TypeAdvancement
	EventDeath       = event.TypeDeath
	EventGeneric     = event.TypeGeneric
	EventUnknown     = event.TypeUnknown
)

// Sentinel errors.
var (
	ErrLogDirNotFound      = logfinder.ErrLogDirNotFound
	ErrNoLogFiles          = logfinder.ErrNoLogFiles
	ErrWatcherClosed       = errors.New("watcher closed")
	ErrAlreadyWatching     = errors.New("watch already started")
	ErrReplayLimitExceeded = errors.New("replay limit exceeded")
	ErrLineTooLong         = errors.New("line too long")
)

// Parser diagnostics, reported by DefaultParser in strict mode and by
// ParseLine.
var (
	// ErrPrefixMalformed means the line does not start with
	// "[HH:MM:SS] [logger/LEVEL]: ".
	ErrPrefixMalformed = parser.ErrPrefixMalformed

	// ErrPayloadGrammarFailed means the prefix was valid but nothing
	// followed it.
	ErrPayloadGrammarFailed = parser.ErrPayloadGrammarFailed

	// ErrTemplateExhausted means a Server thread line matched no specific
	// grammar and no death template.
	ErrTemplateExhausted = parser.ErrTemplateExhausted
)

// ParseError wraps a failure to parse one line.
type ParseError struct {
	Line string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// WatchOp names the watcher step that failed.
type WatchOp string

// Watcher operations.
const (
	WatchOpFindLatest WatchOp = "find_latest"
	WatchOpTail       WatchOp = "tail"
	WatchOpRotation   WatchOp = "rotation"
	WatchOpReplay     WatchOp = "replay"
)

// WatchError wraps a watcher failure with the step and file involved.
type WatchError struct {
	Op   WatchOp
	Path string
	Err  error
}

func (e *WatchError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("watch %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("watch %s: %v", e.Op, e.Err)
}

func (e *WatchError) Unwrap() error { return e.Err }
