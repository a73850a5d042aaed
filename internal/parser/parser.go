// Package parser turns Minecraft server log lines into events without copying.
//
// A line has the shape
//
//	[HH:MM:SS] [<logger>/<LEVEL>]: <payload>
//
// The logger tag picks which grammars may run on the payload; death messages
// are matched against a template table built from the game's localization
// file (see package lang).
package parser

import (
	"bytes"
	"fmt"

	"github.com/gluemc/gluemc-go/pkg/mclog/lang"
)

var payloadSeparator = []byte(": ")

// Parser parses single log lines. The zero value parses everything except
// death messages. A Parser is safe for concurrent use as long as its
// template table is not replaced.
type Parser struct {
	Templates *lang.Table
}

// New returns a Parser matching death messages against templates.
func New(templates *lang.Table) *Parser {
	return &Parser{Templates: templates}
}

// Parse parses line with the process-wide template table (lang.Installed).
func Parse(line []byte) (Event, Span, error) {
	p := Parser{Templates: lang.Installed()}
	return p.Parse(line)
}

// Parse parses one log line with its trailing newline already removed; a
// trailing carriage return is ignored.
//
// Parse always returns a usable Event and a Span within line. The error is a
// diagnostic for callers that want to log or drop the line:
//   - ErrPrefixMalformed: the event is KindUnknown covering the whole line.
//   - ErrPayloadGrammarFailed: the prefix was valid but the payload is empty;
//     the event is KindUnknown covering the (empty) rest of the line.
//   - ErrTemplateExhausted: a Server thread line matched no grammar and no
//     death template; the event is KindGeneric.
//
// Parse does not allocate when err is nil.
func (p *Parser) Parse(line []byte) (Event, Span, error) {
	if len(line) > 0 && line[len(line)-1] == '\r' {
		line = line[:len(line)-1]
	}

	prefix, n, err := SplitPrefix(line)
	if err != nil {
		return unknown(line), Span{0, len(line)}, err
	}

	ev := Event{Time: prefix.Time, Logger: prefix.Logger}
	payload := line[n:]
	if len(payload) == 0 {
		ev.Kind = KindUnknown
		ev.Raw = payload
		return ev, Span{n, n}, ErrPayloadGrammarFailed
	}

	diag := p.dispatch(prefix.Logger, payload, &ev)
	return ev, Span{n, len(line)}, diag
}

// Prefix is the "[HH:MM:SS] [logger/LEVEL]" part of a line.
type Prefix struct {
	Time   Timestamp
	Logger LoggerContext
}

// SplitPrefix parses the prefix of line, including the ": " separator, and
// returns the offset at which the payload starts. Errors wrap
// ErrPrefixMalformed.
func SplitPrefix(line []byte) (Prefix, int, error) {
	ts, n, err := parseTimestamp(line)
	if err != nil {
		return Prefix{}, 0, err
	}
	if n >= len(line) || line[n] != ' ' {
		return Prefix{}, 0, fmt.Errorf("%w: expected space after timestamp", ErrPrefixMalformed)
	}
	n++

	logger, m, err := parseLoggerContext(line[n:])
	if err != nil {
		return Prefix{}, 0, err
	}
	n += m

	if !bytes.HasPrefix(line[n:], payloadSeparator) {
		return Prefix{}, 0, fmt.Errorf("%w: expected %q after logger tag", ErrPrefixMalformed, payloadSeparator)
	}
	return Prefix{Time: ts, Logger: logger}, n + len(payloadSeparator), nil
}

func unknown(line []byte) Event {
	return Event{Kind: KindUnknown, Raw: line}
}
