// Package pattern lets users define their own server log events in YAML.
//
// Each pattern is a regular expression with named capture groups. When it
// matches, the named groups are copied into Event.Data. A pattern may also
// be restricted to lines from one logger or at one level, the same way the
// built-in grammars only look at "Server thread/INFO" lines.
package pattern

// PatternFile is the structure of a YAML pattern file.
//
// Example YAML file:
//
//	version: 1
//	patterns:
//	  - id: server_stop
//	    event_type: server_stop
//	    logger: Server thread
//	    level: INFO
//	    regex: '^Stopping the server$'
//	  - id: tps_warning
//	    event_type: lag
//	    level: WARN
//	    regex: 'Running (?P<ms>\d+)ms or (?P<ticks>\d+) ticks behind'
type PatternFile struct {
	// Version is the file format version. Only version 1 is supported.
	Version int `yaml:"version"`

	Patterns []Pattern `yaml:"patterns"`
}

// Pattern is a single user-defined event.
type Pattern struct {
	// ID must be unique within a file.
	ID string `yaml:"id"`

	// EventType becomes Event.Type when the pattern matches.
	EventType string `yaml:"event_type"`

	// Logger, if set, restricts the pattern to lines whose logger tag has
	// exactly this name (e.g. "Server thread").
	Logger string `yaml:"logger,omitempty"`

	// Level, if set, restricts the pattern to lines at this level
	// (TRACE, DEBUG, INFO, WARN, ERROR or FATAL).
	Level string `yaml:"level,omitempty"`

	// Regex is matched against the payload of lines with a valid prefix and
	// against the whole line otherwise. Named groups (?P<name>...) are
	// copied into Event.Data.
	Regex string `yaml:"regex"`
}

// guarded reports whether the pattern only applies to prefixed lines.
func (p Pattern) guarded() bool {
	return p.Logger != "" || p.Level != ""
}
