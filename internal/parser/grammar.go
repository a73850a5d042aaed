package parser

import "bytes"

// Each grammar must consume the whole payload. On failure it returns an error
// and leaves ev untouched.

var (
	notSecureMarker = []byte("[Not Secure] ")
	joinedSuffix    = []byte(" joined the game")
	leftSuffix      = []byte(" left the game")

	advancementConnectors = [...][]byte{
		[]byte(" has made the advancement "),
		[]byte(" has reached the goal "),
		[]byte(" has completed the challenge "),
	}
)

// parseChat matches "[Not Secure] <name> message" and "[name] message".
// The angle-bracket form captures the bare name; the square-bracket form
// keeps its brackets so "[Server]" stays distinguishable from a player.
func parseChat(_ *Parser, payload []byte, ev *Event) error {
	rest := payload
	secure := true
	if bytes.HasPrefix(rest, notSecureMarker) {
		secure = false
		rest = rest[len(notSecureMarker):]
	}
	if len(rest) == 0 {
		return ErrPayloadGrammarFailed
	}

	var sender []byte
	switch rest[0] {
	case '<':
		end := bytes.IndexByte(rest[1:], '>')
		if end < 1 {
			return ErrPayloadGrammarFailed
		}
		sender = rest[1 : end+1]
		rest = rest[end+2:]
	case '[':
		end := bytes.IndexByte(rest[1:], ']')
		if end < 1 {
			return ErrPayloadGrammarFailed
		}
		sender = rest[:end+2]
		rest = rest[end+2:]
	default:
		return ErrPayloadGrammarFailed
	}

	if len(rest) < 2 || rest[0] != ' ' {
		return ErrPayloadGrammarFailed
	}

	ev.Kind = KindChat
	ev.Secure = secure
	ev.Sender = sender
	ev.Message = rest[1:]
	return nil
}

func parseJoin(_ *Parser, payload []byte, ev *Event) error {
	player, ok := playerBefore(payload, joinedSuffix)
	if !ok {
		return ErrPayloadGrammarFailed
	}
	ev.Kind = KindJoin
	ev.Player = player
	return nil
}

func parseLeave(_ *Parser, payload []byte, ev *Event) error {
	player, ok := playerBefore(payload, leftSuffix)
	if !ok {
		return ErrPayloadGrammarFailed
	}
	ev.Kind = KindLeave
	ev.Player = player
	return nil
}

// playerBefore returns the non-whitespace run that makes up all of payload
// before suffix.
func playerBefore(payload, suffix []byte) ([]byte, bool) {
	player, found := bytes.CutSuffix(payload, suffix)
	if !found || len(player) == 0 || indexSpace(player) >= 0 {
		return nil, false
	}
	return player, true
}

// parseAdvancement matches "<player> has made the advancement [Title]" and
// the goal/challenge variants.
func parseAdvancement(_ *Parser, payload []byte, ev *Event) error {
	i := indexSpace(payload)
	if i < 1 {
		return ErrPayloadGrammarFailed
	}
	player, rest := payload[:i], payload[i:]

	matched := false
	for _, connector := range advancementConnectors {
		if bytes.HasPrefix(rest, connector) {
			rest = rest[len(connector):]
			matched = true
			break
		}
	}
	if !matched {
		return ErrPayloadGrammarFailed
	}

	if len(rest) < 3 || rest[0] != '[' || rest[len(rest)-1] != ']' {
		return ErrPayloadGrammarFailed
	}
	title := rest[1 : len(rest)-1]
	if bytes.IndexByte(title, ']') >= 0 {
		return ErrPayloadGrammarFailed
	}

	ev.Kind = KindAdvancement
	ev.Player = player
	ev.Advancement = title
	return nil
}

// parseGeneric accepts any non-empty payload.
func parseGeneric(_ *Parser, payload []byte, ev *Event) error {
	if len(payload) == 0 {
		return ErrPayloadGrammarFailed
	}
	ev.Kind = KindGeneric
	ev.Message = payload
	return nil
}

func indexSpace(b []byte) int {
	for i, c := range b {
		if isSpace(c) {
			return i
		}
	}
	return -1
}
