package pattern

import "fmt"

// ValidationError reports a problem with the file as a whole, like an
// unsupported version or an empty pattern list.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "pattern file: " + e.Field + ": " + e.Message
}

// PatternError reports a problem with one entry of the patterns list.
// Cause holds the underlying error when there is one, such as a regexp
// that failed to compile.
type PatternError struct {
	Index   int
	ID      string
	Field   string
	Message string
	Cause   error
}

func (e *PatternError) Error() string {
	name := fmt.Sprintf("#%d", e.Index+1)
	if e.ID != "" {
		name = fmt.Sprintf("%q", e.ID)
	}
	return fmt.Sprintf("pattern %s: %s: %s", name, e.Field, e.Message)
}

func (e *PatternError) Unwrap() error { return e.Cause }
