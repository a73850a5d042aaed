package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gluemc/gluemc-go/pkg/mclog"
)

func TestBuildParser_NoPatterns(t *testing.T) {
	p, custom, err := buildParser(nil, nil, true)
	if err != nil {
		t.Fatalf("buildParser(nil) error = %v", err)
	}
	def, ok := p.(mclog.DefaultParser)
	if !ok {
		t.Fatalf("buildParser(nil) = %T, want mclog.DefaultParser", p)
	}
	if !def.Strict {
		t.Error("strict flag was not passed to the default parser")
	}
	if custom != nil {
		t.Errorf("custom types = %v, want nil", custom)
	}
}

func TestBuildParser_ValidPattern(t *testing.T) {
	p, custom, err := buildParser([]string{"testdata/patterns.yaml"}, nil, false)
	if err != nil {
		t.Fatalf("buildParser() error = %v", err)
	}
	if len(custom) != 1 || custom[0] != "server_ready" {
		t.Errorf("custom types = %v, want [server_ready]", custom)
	}

	result, err := p.ParseLine(context.Background(), `[09:00:03] [Server thread/INFO]: Done (3.141s)! For help, type "help"`)
	if err != nil {
		t.Fatalf("ParseLine() error = %v", err)
	}
	if len(result.Events) != 2 {
		t.Fatalf("got %d events, want generic + server_ready", len(result.Events))
	}
	if result.Events[0].Type != mclog.EventGeneric {
		t.Errorf("first event = %s, want generic", result.Events[0].Type)
	}
	if got := result.Events[1].Data["seconds"]; got != "3.141" {
		t.Errorf("seconds = %q, want 3.141", got)
	}
}

func TestBuildParser_FileNotFound(t *testing.T) {
	_, _, err := buildParser([]string{"/nonexistent/patterns.yaml"}, nil, false)
	if err == nil {
		t.Fatal("buildParser() expected error for nonexistent file")
	}
	// Verify error message does NOT contain the path
	if strings.Contains(err.Error(), "/nonexistent") {
		t.Errorf("error message should not contain path: %s", err)
	}
}

func TestBuildParser_InvalidRegex(t *testing.T) {
	dir := t.TempDir()
	patternFile := filepath.Join(dir, "bad_regex.yaml")
	content := `version: 1
patterns:
  - id: bad
    event_type: test
    regex: '[invalid regex'
`
	if err := os.WriteFile(patternFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, _, err := buildParser([]string{patternFile}, nil, false)
	if err == nil {
		t.Fatal("buildParser() expected error for invalid regex")
	}
	if !strings.Contains(err.Error(), "pattern file 1") {
		t.Errorf("error should name the file position: %s", err)
	}
}
