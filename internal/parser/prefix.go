package parser

import (
	"bytes"
	"fmt"
)

// Timestamp is the wall-clock prefix of a server log line. Fields are not
// range checked: "[99:99:99]" is a valid prefix.
type Timestamp struct {
	Hours   uint8
	Minutes uint8
	Seconds uint8
}

func (t Timestamp) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hours, t.Minutes, t.Seconds)
}

// Level is the severity in a logger tag.
type Level uint8

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = [...]string{
	LevelTrace: "TRACE",
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelFatal: "FATAL",
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return fmt.Sprintf("Level(%d)", l)
}

// ParseLevel maps an exact, upper-case level keyword to a Level.
func ParseLevel(b []byte) (Level, bool) {
	for l, name := range levelNames {
		if string(b) == name {
			return Level(l), true
		}
	}
	return 0, false
}

// LoggerContext is the "[name/LEVEL]" tag of a line. Name is a view into the line.
type LoggerContext struct {
	Name  []byte
	Level Level
}

func (c LoggerContext) String() string {
	return string(c.Name) + "/" + c.Level.String()
}

const timestampLen = len("[00:00:00]")

// parseTimestamp parses "[HH:MM:SS]" at the start of b and returns the
// number of bytes consumed.
func parseTimestamp(b []byte) (Timestamp, int, error) {
	if len(b) < timestampLen || b[0] != '[' || b[3] != ':' || b[6] != ':' || b[9] != ']' {
		return Timestamp{}, 0, fmt.Errorf("%w: timestamp", ErrPrefixMalformed)
	}
	var fields [3]uint8
	for i, off := range [3]int{1, 4, 7} {
		hi, lo := b[off], b[off+1]
		if !isDigit(hi) || !isDigit(lo) {
			return Timestamp{}, 0, fmt.Errorf("%w: timestamp field %d", ErrPrefixMalformed, i+1)
		}
		fields[i] = (hi-'0')*10 + lo - '0'
	}
	return Timestamp{Hours: fields[0], Minutes: fields[1], Seconds: fields[2]}, timestampLen, nil
}

// parseLoggerContext parses "[name/LEVEL]" at the start of b and returns the
// number of bytes consumed.
func parseLoggerContext(b []byte) (LoggerContext, int, error) {
	if len(b) == 0 || b[0] != '[' {
		return LoggerContext{}, 0, fmt.Errorf("%w: logger tag", ErrPrefixMalformed)
	}
	slash := bytes.IndexByte(b, '/')
	if slash < 0 {
		return LoggerContext{}, 0, fmt.Errorf("%w: logger tag has no level", ErrPrefixMalformed)
	}
	closing := bytes.IndexByte(b[slash:], ']')
	if closing < 0 {
		return LoggerContext{}, 0, fmt.Errorf("%w: unterminated logger tag", ErrPrefixMalformed)
	}
	closing += slash

	level, ok := ParseLevel(b[slash+1 : closing])
	if !ok {
		return LoggerContext{}, 0, fmt.Errorf("%w: unknown level %q", ErrPrefixMalformed, b[slash+1:closing])
	}
	return LoggerContext{Name: b[1:slash], Level: level}, closing + 1, nil
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

// isSpace reports ASCII whitespace: space, tab, newline, form feed, carriage return.
func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\f', '\r':
		return true
	}
	return false
}
