package mclog

import (
	"context"
	"errors"

	"github.com/gluemc/gluemc-go/pkg/mclog/event"
)

// ParseResult is what a Parser made of one line.
type ParseResult struct {
	Events []event.Event

	// Matched reports whether the parser recognized the line. A parser may
	// match and still emit no events, e.g. to swallow a line.
	Matched bool
}

// Parser turns one log line into events.
//
// DefaultParser covers the vanilla grammars and pattern.RegexParser covers
// user patterns. Errors are for failures, or for diagnostics the caller asked
// a parser to surface as a *ParseError (see DefaultParser.Strict).
type Parser interface {
	ParseLine(ctx context.Context, line string) (ParseResult, error)
}

// ParserFunc lets a plain function act as a Parser.
type ParserFunc func(ctx context.Context, line string) (ParseResult, error)

// ParseLine calls f.
func (f ParserFunc) ParseLine(ctx context.Context, line string) (ParseResult, error) {
	return f(ctx, line)
}

// ChainMode selects how a ParserChain runs its parsers.
type ChainMode int

const (
	// ChainAll runs every parser and concatenates their events. The first
	// failing parser ends the chain. This is the zero value.
	ChainAll ChainMode = iota

	// ChainFirst returns the events of the first parser that matches.
	// DefaultParser matches every line, so it belongs last.
	ChainFirst

	// ChainContinueOnError runs every parser like ChainAll, skips the ones
	// that fail and returns their errors joined after the others ran.
	ChainContinueOnError
)

func (m ChainMode) String() string {
	switch m {
	case ChainAll:
		return "all"
	case ChainFirst:
		return "first"
	case ChainContinueOnError:
		return "continue_on_error"
	}
	return "unknown"
}

// ParserChain runs several parsers over each line. Nil entries are skipped.
//
// A *ParseError is a diagnostic, not a failure: in every mode the events
// that came with it are kept, the chain carries on and the diagnostics are
// returned joined at the end.
type ParserChain struct {
	Mode    ChainMode
	Parsers []Parser
}

// ParseLine implements Parser. If ctx is cancelled part way through, the
// events collected so far are returned with the context error.
func (c *ParserChain) ParseLine(ctx context.Context, line string) (ParseResult, error) {
	var out ParseResult
	var errs []error

	for _, p := range c.Parsers {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if p == nil {
			continue
		}

		result, err := p.ParseLine(ctx, line)
		if err != nil {
			var pe *ParseError
			switch {
			case errors.As(err, &pe):
				errs = append(errs, err)
			case c.Mode == ChainContinueOnError:
				errs = append(errs, err)
				continue
			default:
				return ParseResult{}, err
			}
		}
		if !result.Matched {
			continue
		}

		out.Matched = true
		out.Events = append(out.Events, result.Events...)
		if c.Mode == ChainFirst {
			break
		}
	}

	return out, errors.Join(errs...)
}
