// Package event defines the owned, serializable form of a parsed log line.
package event

import (
	"bytes"
	"unicode/utf8"
)

// Type identifies the kind of event.
type Type string

// Built-in event types. Pattern files may define their own.
const (
	TypeChat        Type = "chat"
	TypeJoin        Type = "join"
	TypeLeave       Type = "leave"
	TypeAdvancement Type = "advancement"
	TypeDeath       Type = "death"
	TypeGeneric     Type = "generic"
	TypeUnknown     Type = "unknown"
)

// Types lists the built-in event types in display order.
func Types() []Type {
	return []Type{
		TypeChat,
		TypeJoin,
		TypeLeave,
		TypeAdvancement,
		TypeDeath,
		TypeGeneric,
		TypeUnknown,
	}
}

// Span is the half-open byte range of RawLine that produced the event.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Event is a parsed log line.
//
// Which fields are set depends on Type:
//
//	chat         Secure, Sender, Message
//	join, leave  Player
//	advancement  Player, Advancement
//	death        Victim, Attacker, Weapon (attacker and weapon may be empty)
//	generic      Message
//	unknown      nothing beyond Text
//
// Custom pattern events carry their named captures in Data.
type Event struct {
	Type Type `json:"type"`

	// Time is the line's wall-clock time as HH:MM:SS. Server logs carry no
	// date. Empty when the line had no valid prefix.
	Time   string `json:"time,omitempty"`
	Logger string `json:"logger,omitempty"`
	Level  string `json:"level,omitempty"`

	Secure  bool   `json:"secure,omitempty"`
	Sender  string `json:"sender,omitempty"`
	Message string `json:"message,omitempty"`

	Player      string `json:"player,omitempty"`
	Advancement string `json:"advancement,omitempty"`

	Victim   string `json:"victim,omitempty"`
	Attacker string `json:"attacker,omitempty"`
	Weapon   string `json:"weapon,omitempty"`

	// Text is the part of the line the event was parsed from: the payload
	// for recognized lines, the whole line for unknown ones.
	Text string `json:"text,omitempty"`
	Span Span   `json:"span"`

	Data map[string]string `json:"data,omitempty"`

	// RawLine is only set when the caller asked for it.
	RawLine string `json:"raw_line,omitempty"`
}

// String converts b to a string, replacing invalid UTF-8 sequences with
// U+FFFD. Log files are not guaranteed to be valid UTF-8.
func String(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return string(bytes.ToValidUTF8(b, []byte("\uFFFD")))
}
