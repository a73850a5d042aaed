package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gluemc/gluemc-go/pkg/mclog"
	"github.com/gluemc/gluemc-go/pkg/mclog/event"
)

// ValidEventTypes maps the names accepted by --types and --exclude-types to
// the built-in event types.
var ValidEventTypes = func() map[string]mclog.EventType {
	m := make(map[string]mclog.EventType)
	for _, t := range event.Types() {
		m[string(t)] = t
	}
	return m
}()

// ValidEventTypeNames returns the built-in event type names, sorted.
func ValidEventTypeNames() []string {
	names := make([]string, 0, len(ValidEventTypes))
	for name := range ValidEventTypes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// NormalizeEventTypes validates type names from the command line. Names are
// trimmed and lowercased and duplicates are dropped. Custom types produced
// by loaded pattern files are accepted alongside the built-in ones.
func NormalizeEventTypes(input []string, custom ...mclog.EventType) ([]mclog.EventType, error) {
	if len(input) == 0 {
		return nil, nil
	}

	known := make(map[string]mclog.EventType, len(ValidEventTypes)+len(custom))
	for name, t := range ValidEventTypes {
		known[name] = t
	}
	for _, t := range custom {
		known[strings.ToLower(string(t))] = t
	}

	seen := make(map[mclog.EventType]struct{}, len(input))
	out := make([]mclog.EventType, 0, len(input))
	for _, raw := range input {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			return nil, fmt.Errorf("empty event type in list")
		}
		t, ok := known[name]
		if !ok {
			return nil, fmt.Errorf("unknown event type %q (valid: %s)", raw, strings.Join(ValidEventTypeNames(), ", "))
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out, nil
}

// RejectOverlap fails when a type is both included and excluded.
func RejectOverlap(includes, excludes []mclog.EventType) error {
	for _, t := range includes {
		if slices.Contains(excludes, t) {
			return fmt.Errorf("event type %q is both included and excluded", t)
		}
	}
	return nil
}
