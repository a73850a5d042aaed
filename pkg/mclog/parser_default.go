package mclog

import (
	"context"
	"errors"

	"github.com/gluemc/gluemc-go/internal/parser"
	"github.com/gluemc/gluemc-go/pkg/mclog/event"
	"github.com/gluemc/gluemc-go/pkg/mclog/lang"
)

// DefaultParser parses the vanilla server log grammars: chat, join, leave,
// advancement and death, with generic and unknown events for everything
// else. It matches every line.
type DefaultParser struct {
	// Templates holds the death-message templates. When nil, the table
	// installed with lang.Install is used; without one, death lines come out
	// as generic events.
	Templates *lang.Table

	// Strict returns the parser's diagnostics (ErrPrefixMalformed,
	// ErrPayloadGrammarFailed, ErrTemplateExhausted) as a *ParseError
	// instead of dropping them. The event is returned alongside.
	Strict bool
}

// ParseLine implements the Parser interface.
func (d DefaultParser) ParseLine(_ context.Context, line string) (ParseResult, error) {
	ev, diag := d.parse(line)
	result := ParseResult{Events: []event.Event{ev}, Matched: true}
	if d.Strict && diag != nil {
		return result, &ParseError{Line: line, Err: diag}
	}
	return result, nil
}

func (d DefaultParser) parse(line string) (event.Event, error) {
	templates := d.Templates
	if templates == nil {
		templates = lang.Installed()
	}
	p := parser.Parser{Templates: templates}

	b := []byte(line)
	ev, span, diag := p.Parse(b)
	return convert(ev, span, b, !errors.Is(diag, parser.ErrPrefixMalformed)), diag
}

// convert copies a zero-copy parser event into an owned event.
func convert(ev parser.Event, span parser.Span, line []byte, hasPrefix bool) event.Event {
	out := event.Event{
		Text: event.String(span.Slice(line)),
		Span: event.Span{Start: span.Start, End: span.End},
	}
	if hasPrefix {
		out.Time = ev.Time.String()
		out.Logger = event.String(ev.Logger.Name)
		out.Level = ev.Logger.Level.String()
	}

	switch ev.Kind {
	case parser.KindChat:
		out.Type = event.TypeChat
		out.Secure = ev.Secure
		out.Sender = event.String(ev.Sender)
		out.Message = event.String(ev.Message)
	case parser.KindJoin:
		out.Type = event.TypeJoin
		out.Player = event.String(ev.Player)
	case parser.KindLeave:
		out.Type = event.TypeLeave
		out.Player = event.String(ev.Player)
	case parser.KindAdvancement:
		out.Type = event.TypeAdvancement
		out.Player = event.String(ev.Player)
		out.Advancement = event.String(ev.Advancement)
	case parser.KindDeath:
		out.Type = event.TypeDeath
		out.Victim = event.String(ev.Victim)
		out.Attacker = event.String(ev.Attacker)
		out.Weapon = event.String(ev.Weapon)
	case parser.KindGeneric:
		out.Type = event.TypeGeneric
		out.Message = event.String(ev.Message)
	default:
		out.Type = event.TypeUnknown
	}
	return out
}

// Ensure DefaultParser implements Parser.
var _ Parser = DefaultParser{}
