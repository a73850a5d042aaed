package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/gluemc/gluemc-go/pkg/mclog"
)

// validFormats lists the accepted --format values.
var validFormats = map[string]bool{
	"jsonl":  true,
	"pretty": true,
}

func checkFormat(format string) error {
	if !validFormats[format] {
		return fmt.Errorf("invalid --format %q (valid: jsonl, pretty)", format)
	}
	return nil
}

// OutputEvent writes an event in the specified format to the writer.
func OutputEvent(format string, ev mclog.Event, out io.Writer) error {
	switch format {
	case "jsonl":
		return OutputJSON(ev, out)
	case "pretty":
		return OutputPretty(ev, out)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// OutputJSON writes an event as one line of JSON.
func OutputJSON(ev mclog.Event, out io.Writer) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// OutputPretty writes an event in human-readable format.
func OutputPretty(ev mclog.Event, out io.Writer) error {
	ts := ev.Time
	if ts == "" {
		ts = "--:--:--"
	}

	var err error
	switch ev.Type {
	case mclog.EventChat:
		lock := ""
		if ev.Secure {
			lock = " (signed)"
		}
		_, err = fmt.Fprintf(out, "[%s] <%s>%s %s\n", ts, ev.Sender, lock, ev.Message)
	case mclog.EventJoin:
		_, err = fmt.Fprintf(out, "[%s] + %s joined\n", ts, ev.Player)
	case mclog.EventLeave:
		_, err = fmt.Fprintf(out, "[%s] - %s left\n", ts, ev.Player)
	case mclog.EventAdvancement:
		_, err = fmt.Fprintf(out, "[%s] ^ %s: %s\n", ts, ev.Player, ev.Advancement)
	case mclog.EventDeath:
		_, err = fmt.Fprintf(out, "[%s] x %s\n", ts, ev.Text)
	case mclog.EventGeneric:
		_, err = fmt.Fprintf(out, "[%s] . [%s/%s] %s\n", ts, ev.Logger, ev.Level, ev.Message)
	case mclog.EventUnknown:
		_, err = fmt.Fprintf(out, "[%s] ? %s\n", ts, ev.Text)
	default:
		// Custom events with Data field
		if len(ev.Data) > 0 {
			_, err = fmt.Fprintf(out, "[%s] * %s: %s\n", ts, ev.Type, formatData(ev.Data))
		} else {
			_, err = fmt.Fprintf(out, "[%s] * %s\n", ts, ev.Type)
		}
	}

	return err
}

// formatData formats a map as sorted key=value pairs.
func formatData(data map[string]string) string {
	if len(data) == 0 {
		return ""
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(data))
	for _, k := range keys {
		parts = append(parts, quoteIfNeeded(k)+"="+quoteIfNeeded(data[k]))
	}
	return strings.Join(parts, " ")
}

// quoteIfNeeded quotes v when it is empty or contains a space, '=', a quote,
// a backslash or a control character.
func quoteIfNeeded(v string) string {
	if v == "" {
		return `""`
	}
	if !strings.ContainsFunc(v, needsQuote) {
		return v
	}

	var sb strings.Builder
	sb.WriteByte('"')
	for _, c := range v {
		switch {
		case c == '\\':
			sb.WriteString(`\\`)
		case c == '"':
			sb.WriteString(`\"`)
		case c == '\n':
			sb.WriteString(`\n`)
		case c == '\r':
			sb.WriteString(`\r`)
		case c == '\t':
			sb.WriteString(`\t`)
		case c < 0x20 || c == 0x7F:
			fmt.Fprintf(&sb, `\x%02x`, c)
		default:
			sb.WriteRune(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func needsQuote(c rune) bool {
	return c == ' ' || c == '=' || c == '"' || c == '\\' || c < 0x20 || c == 0x7F
}
