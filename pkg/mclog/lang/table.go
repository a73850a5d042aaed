package lang

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"sync/atomic"
)

// ErrAlreadyInstalled is returned by Install when a table is already in place.
var ErrAlreadyInstalled = errors.New("death template table already installed")

// Table is an ordered, immutable list of death templates. Order is match
// precedence: earlier templates are tried first.
//
// A Table is safe for concurrent use by multiple goroutines.
type Table struct {
	templates []Template
	skipped   int
}

// NewTable returns a table holding the given templates in order.
func NewTable(templates ...Template) *Table {
	return &Table{templates: append([]Template(nil), templates...)}
}

// Len returns the number of templates. A nil table is empty.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.templates)
}

// Skipped reports how many death entries were dropped as malformed while
// building the table.
func (t *Table) Skipped() int {
	if t == nil {
		return 0
	}
	return t.skipped
}

// At returns the i-th template.
func (t *Table) At(i int) Template {
	return t.templates[i]
}

// All iterates over the templates in precedence order.
func (t *Table) All() iter.Seq2[int, Template] {
	return func(yield func(int, Template) bool) {
		if t == nil {
			return
		}
		for i, tmpl := range t.templates {
			if !yield(i, tmpl) {
				return
			}
		}
	}
}

// BuildLines builds a table from localization lines, preserving their order.
// Malformed death entries are skipped.
func BuildLines(lines [][]byte) *Table {
	t := &Table{}
	for _, line := range lines {
		t.add(line)
	}
	return t
}

// Build reads a localization file line by line and builds a table from its
// death entries. Only read errors are returned; malformed entries are skipped.
func Build(r io.Reader) (*Table, error) {
	t := &Table{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxSourceSize)
	for sc.Scan() {
		t.add(sc.Bytes())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading localization source: %w", err)
	}
	return t, nil
}

// BuildBytes is Build over an in-memory localization file.
func BuildBytes(data []byte) (*Table, error) {
	return Build(bytes.NewReader(data))
}

func (t *Table) add(line []byte) {
	line = bytes.TrimSuffix(line, []byte("\r"))
	tmpl, ok, err := ParseEntry(line)
	switch {
	case !ok:
	case err != nil:
		t.skipped++
	default:
		t.templates = append(t.templates, tmpl)
	}
}

var installed atomic.Pointer[Table]

// Install publishes t as the process-wide template table. It can succeed only
// once; readers see either no table or the complete one.
func Install(t *Table) error {
	if t == nil {
		return errors.New("install: nil template table")
	}
	if !installed.CompareAndSwap(nil, t) {
		return ErrAlreadyInstalled
	}
	return nil
}

// Installed returns the process-wide template table, or nil before Install.
func Installed() *Table {
	return installed.Load()
}
