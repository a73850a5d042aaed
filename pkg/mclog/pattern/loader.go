package pattern

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gluemc/gluemc-go/internal/parser"
	"github.com/gluemc/gluemc-go/internal/safefile"
)

const (
	// MaxPatternFileSize is the largest pattern file Load accepts (1 MB).
	MaxPatternFileSize = 1 * 1024 * 1024

	// MaxPatternLength is the longest regex accepted, in bytes.
	MaxPatternLength = 512

	// MaxPatternCount is the most patterns a file may define. Every pattern
	// runs on every line, so this bounds the per-line cost.
	MaxPatternCount = 1000

	// SupportedVersion is the only file format version understood.
	SupportedVersion = 1
)

// sanitizePathError drops the path from an *os.PathError so error messages
// shown to users do not echo file system layout.
func sanitizePathError(err error) error {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return fmt.Errorf("%s: %w", pathErr.Op, pathErr.Err)
	}
	return err
}

// Load reads and validates a pattern file. Only regular files are read;
// FIFOs, devices and symlinks are rejected.
//
// Example:
//
//	pf, err := pattern.Load("patterns.yaml")
//	if err != nil {
//	    log.Fatalf("failed to load pattern file: %v", err)
//	}
func Load(path string) (*PatternFile, error) {
	data, err := safefile.ReadFile(path, MaxPatternFileSize)
	switch {
	case errors.Is(err, safefile.ErrNotRegularFile):
		return nil, errors.New("pattern file must be a regular file (not a symlink, FIFO, device, or special file)")
	case errors.Is(err, safefile.ErrTooLarge):
		return nil, fmt.Errorf("pattern file too large (max %d bytes)", MaxPatternFileSize)
	case err != nil:
		return nil, fmt.Errorf("failed to read pattern file: %w", sanitizePathError(err))
	}
	return LoadBytes(data)
}

// LoadBytes parses and validates a pattern file held in memory.
func LoadBytes(data []byte) (*PatternFile, error) {
	if len(data) == 0 {
		return nil, errors.New("pattern file is empty")
	}
	if len(data) > MaxPatternFileSize {
		return nil, fmt.Errorf("pattern file too large: %d bytes (max %d)", len(data), MaxPatternFileSize)
	}

	var pf PatternFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := pf.Validate(); err != nil {
		return nil, err
	}
	return &pf, nil
}

// Validate checks the version, the pattern count, required fields, id
// uniqueness, level names and regex length. It does not compile the
// regular expressions; NewRegexParser does.
func (pf *PatternFile) Validate() error {
	if pf.Version != SupportedVersion {
		return &ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (only version %d is supported)", pf.Version, SupportedVersion),
		}
	}
	if len(pf.Patterns) == 0 {
		return &ValidationError{Field: "patterns", Message: "at least one pattern is required"}
	}
	if len(pf.Patterns) > MaxPatternCount {
		return &ValidationError{
			Field:   "patterns",
			Message: fmt.Sprintf("too many patterns (%d), maximum allowed is %d", len(pf.Patterns), MaxPatternCount),
		}
	}

	seenIDs := make(map[string]int, len(pf.Patterns))
	for i, p := range pf.Patterns {
		if p.ID == "" {
			return &PatternError{Index: i, Field: "id", Message: "id is required"}
		}
		if p.EventType == "" {
			return &PatternError{Index: i, ID: p.ID, Field: "event_type", Message: "event_type is required"}
		}
		if p.Regex == "" {
			return &PatternError{Index: i, ID: p.ID, Field: "regex", Message: "regex is required"}
		}

		if prev, ok := seenIDs[p.ID]; ok {
			return &PatternError{
				Index:   i,
				ID:      p.ID,
				Field:   "id",
				Message: fmt.Sprintf("duplicate id (previously defined at pattern[%d])", prev),
			}
		}
		seenIDs[p.ID] = i

		if p.Level != "" {
			if _, ok := parser.ParseLevel([]byte(p.Level)); !ok {
				return &PatternError{
					Index:   i,
					ID:      p.ID,
					Field:   "level",
					Message: fmt.Sprintf("unknown level %q (want TRACE, DEBUG, INFO, WARN, ERROR or FATAL)", p.Level),
				}
			}
		}

		if len(p.Regex) > MaxPatternLength {
			return &PatternError{
				Index:   i,
				ID:      p.ID,
				Field:   "regex",
				Message: fmt.Sprintf("pattern too long: %d bytes (max %d)", len(p.Regex), MaxPatternLength),
			}
		}
	}
	return nil
}
