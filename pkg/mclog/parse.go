package mclog

// ParseLine parses a single server log line with the installed death
// templates (see lang.Install).
//
// The returned event is never nil: lines that match no grammar come back as
// generic or unknown events. The error is a *ParseError wrapping one of
// ErrPrefixMalformed, ErrPayloadGrammarFailed or ErrTemplateExhausted when
// the parser had something to report; callers that only want events can
// ignore it.
//
// Example:
//
//	ev, _ := mclog.ParseLine("[12:34:56] [Server thread/INFO]: Steve joined the game")
//	if ev.Type == mclog.EventJoin {
//	    fmt.Printf("%s joined\n", ev.Player)
//	}
func ParseLine(line string) (*Event, error) {
	ev, diag := DefaultParser{}.parse(line)
	if diag != nil {
		return &ev, &ParseError{Line: line, Err: diag}
	}
	return &ev, nil
}
