package parser

import "errors"

// Guard decides from the logger tag alone whether a grammar may look at a
// line's payload.
type Guard func(LoggerContext) bool

// LoggerIs returns a guard that holds for exactly one logger name and level.
func LoggerIs(name string, level Level) Guard {
	return func(c LoggerContext) bool {
		return c.Level == level && string(c.Name) == name
	}
}

const serverThread = "Server thread"

var serverThreadInfo = LoggerIs(serverThread, LevelInfo)

type candidate struct {
	kind  Kind
	guard Guard
}

// candidates is the dispatch table in priority order. The first grammar whose
// guard holds and whose payload grammar succeeds wins.
var candidates = [...]candidate{
	{KindChat, serverThreadInfo},
	{KindJoin, serverThreadInfo},
	{KindLeave, serverThreadInfo},
	{KindAdvancement, serverThreadInfo},
	{KindDeath, serverThreadInfo},
}

// attempt checks the guard before touching the payload. Grammars are called
// directly rather than through the table so that ev stays on the caller's
// stack.
func (c candidate) attempt(p *Parser, ctx LoggerContext, payload []byte, ev *Event) error {
	if !c.guard(ctx) {
		return ErrGrammarNotApplicable
	}
	switch c.kind {
	case KindChat:
		return parseChat(p, payload, ev)
	case KindJoin:
		return parseJoin(p, payload, ev)
	case KindLeave:
		return parseLeave(p, payload, ev)
	case KindAdvancement:
		return parseAdvancement(p, payload, ev)
	case KindDeath:
		return parseDeath(p, payload, ev)
	}
	return ErrGrammarNotApplicable
}

// dispatch fills ev from payload. Generic is the catch-all. The returned
// error is nil unless the death grammar ran out of templates, in which case
// ev is still a valid Generic event.
func (p *Parser) dispatch(ctx LoggerContext, payload []byte, ev *Event) error {
	var diag error
	for _, c := range candidates {
		err := c.attempt(p, ctx, payload, ev)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrTemplateExhausted) {
			diag = err
		}
	}
	if err := parseGeneric(p, payload, ev); err != nil {
		return err
	}
	return diag
}
