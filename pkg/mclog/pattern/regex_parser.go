package pattern

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/gluemc/gluemc-go/internal/parser"
	"github.com/gluemc/gluemc-go/pkg/mclog"
	"github.com/gluemc/gluemc-go/pkg/mclog/event"
)

// RegexParser is an mclog.Parser that matches lines against user-defined
// patterns. Every pattern is tried, so one line can produce several events;
// they come back in file order.
//
// RegexParser is safe for concurrent use.
type RegexParser struct {
	patterns []*compiledPattern
}

type compiledPattern struct {
	id        string
	eventType event.Type
	logger    string
	level     parser.Level
	hasLevel  bool
	guarded   bool
	regex     *regexp.Regexp
	named     bool
}

// NewRegexParser compiles every pattern in pf.
//
// Example:
//
//	pf, err := pattern.Load("patterns.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	p, err := pattern.NewRegexParser(pf)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	chain := &mclog.ParserChain{
//	    Mode:    mclog.ChainFirst,
//	    Parsers: []mclog.Parser{p, mclog.DefaultParser{}},
//	}
func NewRegexParser(pf *PatternFile) (*RegexParser, error) {
	if pf == nil {
		return nil, errors.New("pattern file is nil")
	}

	patterns := make([]*compiledPattern, 0, len(pf.Patterns))
	for i, p := range pf.Patterns {
		re, err := regexp.Compile(p.Regex)
		if err != nil {
			return nil, &PatternError{
				Index:   i,
				ID:      p.ID,
				Field:   "regex",
				Message: fmt.Sprintf("invalid regular expression: %v", err),
				Cause:   err,
			}
		}

		cp := &compiledPattern{
			id:        p.ID,
			eventType: event.Type(p.EventType),
			logger:    p.Logger,
			guarded:   p.guarded(),
			regex:     re,
		}
		if p.Level != "" {
			level, ok := parser.ParseLevel([]byte(p.Level))
			if !ok {
				return nil, &PatternError{Index: i, ID: p.ID, Field: "level", Message: fmt.Sprintf("unknown level %q", p.Level)}
			}
			cp.level, cp.hasLevel = level, true
		}
		for _, name := range re.SubexpNames()[1:] {
			if name != "" {
				cp.named = true
				break
			}
		}
		patterns = append(patterns, cp)
	}

	return &RegexParser{patterns: patterns}, nil
}

// NewRegexParserFromFile loads a pattern file and compiles it.
func NewRegexParserFromFile(path string) (*RegexParser, error) {
	pf, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewRegexParser(pf)
}

// Len returns the number of compiled patterns.
func (p *RegexParser) Len() int { return len(p.patterns) }

// EventTypes returns the distinct event types the patterns produce, in file
// order.
func (p *RegexParser) EventTypes() []mclog.EventType {
	seen := make(map[event.Type]struct{}, len(p.patterns))
	var types []mclog.EventType
	for _, cp := range p.patterns {
		if _, ok := seen[cp.eventType]; ok {
			continue
		}
		seen[cp.eventType] = struct{}{}
		types = append(types, cp.eventType)
	}
	return types
}

// ParseLine implements mclog.Parser.
func (p *RegexParser) ParseLine(ctx context.Context, line string) (mclog.ParseResult, error) {
	if err := ctx.Err(); err != nil {
		return mclog.ParseResult{}, err
	}

	b := []byte(line)
	if len(b) > 0 && b[len(b)-1] == '\r' {
		b = b[:len(b)-1]
	}
	prefix, start, err := parser.SplitPrefix(b)
	hasPrefix := err == nil
	if !hasPrefix {
		start = 0
	}
	text := string(b[start:])

	var events []event.Event
	for _, cp := range p.patterns {
		if cp.guarded && (!hasPrefix || !cp.allows(prefix.Logger)) {
			continue
		}

		matches := cp.regex.FindStringSubmatch(text)
		if matches == nil {
			continue
		}

		ev := event.Event{
			Type: cp.eventType,
			Text: event.String([]byte(text)),
			Span: event.Span{Start: start, End: len(b)},
		}
		if hasPrefix {
			ev.Time = prefix.Time.String()
			ev.Logger = event.String(prefix.Logger.Name)
			ev.Level = prefix.Logger.Level.String()
		}
		if cp.named {
			ev.Data = make(map[string]string)
			for i, name := range cp.regex.SubexpNames() {
				if i > 0 && name != "" && i < len(matches) {
					ev.Data[name] = matches[i]
				}
			}
		}
		events = append(events, ev)
	}

	if len(events) == 0 {
		return mclog.ParseResult{Matched: false}, nil
	}
	return mclog.ParseResult{Events: events, Matched: true}, nil
}

func (cp *compiledPattern) allows(c parser.LoggerContext) bool {
	if cp.logger != "" && string(c.Name) != cp.logger {
		return false
	}
	if cp.hasLevel && c.Level != cp.level {
		return false
	}
	return true
}
