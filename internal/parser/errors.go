package parser

import "errors"

var (
	// ErrPrefixMalformed means the timestamp or logger tag didn't match the
	// fixed line prefix. The line is reported as KindUnknown.
	ErrPrefixMalformed = errors.New("malformed log prefix")

	// ErrGrammarNotApplicable means a grammar's logger guard rejected the line.
	// The dispatcher moves on to the next grammar.
	ErrGrammarNotApplicable = errors.New("grammar not applicable to logger")

	// ErrPayloadGrammarFailed means the guard held but the payload didn't have
	// the grammar's shape. Also returned when a valid prefix has no payload.
	ErrPayloadGrammarFailed = errors.New("payload does not match grammar")

	// ErrTemplateExhausted means no death template matched the payload.
	ErrTemplateExhausted = errors.New("no death message template matched")
)
