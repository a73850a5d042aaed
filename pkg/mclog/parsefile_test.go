package mclog_test

import (
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gluemc/gluemc-go/pkg/mclog"
)

func types(events []mclog.Event) []mclog.EventType {
	out := make([]mclog.EventType, len(events))
	for i, ev := range events {
		out[i] = ev.Type
	}
	return out
}

func TestParseFileAll(t *testing.T) {
	events, err := mclog.ParseFileAll(context.Background(), "testdata/latest.log")
	require.NoError(t, err)

	assert.Equal(t, []mclog.EventType{
		mclog.EventGeneric,
		mclog.EventGeneric,
		mclog.EventJoin,
		mclog.EventChat,
		mclog.EventGeneric,
		mclog.EventAdvancement,
		mclog.EventDeath,
		mclog.EventUnknown,
		mclog.EventLeave,
	}, types(events))

	death := events[6]
	assert.Equal(t, "Steve", death.Victim)
	assert.Equal(t, "Zombie", death.Attacker)
	assert.Equal(t, "09:04:00", death.Time)
}

func TestParseFile_Filter(t *testing.T) {
	var got []mclog.Event
	for ev, err := range mclog.ParseFile(context.Background(), "testdata/latest.log",
		mclog.WithParseIncludeTypes(mclog.EventJoin, mclog.EventLeave, mclog.EventGeneric),
		mclog.WithParseExcludeTypes(mclog.EventGeneric),
		mclog.WithParseIncludeRawLine(true),
	) {
		require.NoError(t, err)
		got = append(got, ev)
	}

	require.Len(t, got, 2)
	assert.Equal(t, mclog.EventJoin, got[0].Type)
	assert.Equal(t, "[09:01:00] [Server thread/INFO]: Steve joined the game", got[0].RawLine)
	assert.Equal(t, mclog.EventLeave, got[1].Type)
}

func TestParseFile_Break(t *testing.T) {
	count := 0
	for _, err := range mclog.ParseFile(context.Background(), "testdata/latest.log") {
		require.NoError(t, err)
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestParseFile_NotFound(t *testing.T) {
	_, err := mclog.ParseFileAll(context.Background(), filepath.Join(t.TempDir(), "missing.log"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseFile_Directory(t *testing.T) {
	_, err := mclog.ParseFileAll(context.Background(), t.TempDir())
	assert.Error(t, err)
}

func TestParseFile_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "2024-01-15-1.log.gz")
	writeGzip(t, path, "[10:00:00] [Server thread/INFO]: Alex joined the game\n[10:00:01] [Server thread/INFO]: Alex drowned\n")

	events, err := mclog.ParseFileAll(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []mclog.EventType{mclog.EventJoin, mclog.EventDeath}, types(events))
	assert.Equal(t, "Alex", events[1].Victim)
}

func TestParseFile_StopOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latest.log")
	content := "[10:00:00] [Server thread/INFO]: Alex joined the game\ngarbage\n[10:00:01] [Server thread/INFO]: Alex left the game\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	strict := mclog.WithParseParser(mclog.DefaultParser{Strict: true})

	// Without StopOnError the diagnostic is dropped.
	events, err := mclog.ParseFileAll(context.Background(), path, strict)
	require.NoError(t, err)
	assert.Len(t, events, 3)

	events, err = mclog.ParseFileAll(context.Background(), path, strict, mclog.WithParseStopOnError(true))
	assert.ErrorIs(t, err, mclog.ErrPrefixMalformed)
	var pe *mclog.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "garbage", pe.Line)
	// The unknown event for the bad line is yielded before the error.
	assert.Equal(t, []mclog.EventType{mclog.EventJoin, mclog.EventUnknown}, types(events))
}

func TestParseReader_ReportErrors(t *testing.T) {
	content := "garbage\n[10:00:00] [Server thread/INFO]: Alex joined the game\nmore garbage\n"
	opts := []mclog.ParseOption{
		mclog.WithParseParser(mclog.DefaultParser{Strict: true}),
		mclog.WithParseReportErrors(true),
	}

	var events []mclog.Event
	var lines []string
	for ev, err := range mclog.ParseReader(context.Background(), strings.NewReader(content), opts...) {
		if err != nil {
			var pe *mclog.ParseError
			require.ErrorAs(t, err, &pe)
			lines = append(lines, pe.Line)
			continue
		}
		events = append(events, ev)
	}
	assert.Equal(t, []string{"garbage", "more garbage"}, lines)
	assert.Equal(t, []mclog.EventType{mclog.EventUnknown, mclog.EventJoin, mclog.EventUnknown}, types(events))
}

func TestParseDir_ReportErrorsContinues(t *testing.T) {
	dir := t.TempDir()
	writeGzip(t, filepath.Join(dir, "2024-01-15-1.log.gz"), "garbage\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "latest.log"),
		[]byte("[12:00:00] [Server thread/INFO]: Steve joined the game\n"), 0644))

	var errs int
	var players []string
	for ev, err := range mclog.ParseDir(context.Background(),
		mclog.WithDirLogDir(dir),
		mclog.WithDirParseOptions(
			mclog.WithParseParser(mclog.DefaultParser{Strict: true}),
			mclog.WithParseReportErrors(true),
		),
	) {
		if err != nil {
			assert.ErrorIs(t, err, mclog.ErrPrefixMalformed)
			errs++
			continue
		}
		if ev.Player != "" {
			players = append(players, ev.Player)
		}
	}
	assert.Equal(t, 1, errs)
	assert.Equal(t, []string{"Steve"}, players)
}

func TestParseReader_LineTooLong(t *testing.T) {
	content := "[10:00:00] [Server thread/INFO]: Steve joined the game\n" +
		"[10:00:01] [Server thread/INFO]: <Steve> " + strings.Repeat("a", 200) + "\n" +
		"[10:00:02] [Server thread/INFO]: Alex joined the game\n"

	var players []string
	var errs []error
	for ev, err := range mclog.ParseReader(context.Background(), strings.NewReader(content), mclog.WithParseMaxLineBytes(64)) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		players = append(players, ev.Player)
	}

	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], mclog.ErrLineTooLong)
	var pe *mclog.ParseError
	require.ErrorAs(t, errs[0], &pe)
	assert.True(t, strings.HasPrefix(pe.Line, "[10:00:01] [Server thread/INFO]: <Steve> aaa"))
	assert.Equal(t, []string{"Steve", "Alex"}, players)
}

func TestParseReader_LineTooLongStopOnError(t *testing.T) {
	content := strings.Repeat("x", 100) + "\n[10:00:02] [Server thread/INFO]: Alex joined the game\n"

	events, err := mclog.ParseFileAll(context.Background(), writeLog(t, content),
		mclog.WithParseMaxLineBytes(64), mclog.WithParseStopOnError(true))
	assert.ErrorIs(t, err, mclog.ErrLineTooLong)
	assert.Empty(t, events)
}

func TestParseReader_LineLengthBoundary(t *testing.T) {
	// A line of exactly the limit is fine, with or without a final newline.
	exact := "[10:00:00] [Server thread/INFO]: Steve joined the game"
	for _, content := range []string{exact, exact + "\n", exact + "\r\n"} {
		limit := len(strings.TrimSuffix(content, "\n"))
		events, err := mclog.ParseFileAll(context.Background(), writeLog(t, content), mclog.WithParseMaxLineBytes(limit))
		require.NoError(t, err, "content %q", content)
		require.Len(t, events, 1)
		assert.Equal(t, "Steve", events[0].Player)
	}
}

func TestParseDir_LongLineDoesNotStopIngestion(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.log")
	b := filepath.Join(dir, "b.log")
	require.NoError(t, os.WriteFile(a, []byte(
		"[10:00:00] [Server thread/INFO]: Steve joined the game\n"+
			"[10:00:01] [Server thread/INFO]: "+strings.Repeat("z", mclog.DefaultMaxLineBytes+10)+"\n"+
			"[10:00:02] [Server thread/INFO]: Alex joined the game\n"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("[11:00:00] [Server thread/INFO]: Bob joined the game\n"), 0644))

	var players []string
	var errs []error
	for ev, err := range mclog.ParseDir(context.Background(), mclog.WithDirPaths(a, b)) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		players = append(players, ev.Player)
	}

	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], mclog.ErrLineTooLong)
	assert.Contains(t, errs[0].Error(), "a.log")
	assert.Less(t, len(errs[0].Error()), 1024, "error must not carry the whole line")
	assert.Equal(t, []string{"Steve", "Alex", "Bob"}, players)
}

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "latest.log")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseReader_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var gotErr error
	for _, err := range mclog.ParseReader(ctx, strings.NewReader("a\nb\n")) {
		gotErr = err
	}
	assert.ErrorIs(t, gotErr, context.Canceled)
}

func TestParseDir(t *testing.T) {
	dir := t.TempDir()
	writeGzip(t, filepath.Join(dir, "2024-01-15-2.log.gz"), "[11:00:00] [Server thread/INFO]: Second joined the game\n")
	writeGzip(t, filepath.Join(dir, "2024-01-15-1.log.gz"), "[10:00:00] [Server thread/INFO]: First joined the game\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "latest.log"),
		[]byte("[12:00:00] [Server thread/INFO]: Third joined the game\n"), 0644))

	var players []string
	for ev, err := range mclog.ParseDir(context.Background(), mclog.WithDirLogDir(dir)) {
		require.NoError(t, err)
		players = append(players, ev.Player)
	}
	assert.Equal(t, []string{"First", "Second", "Third"}, players)

	players = nil
	for ev, err := range mclog.ParseDir(context.Background(),
		mclog.WithDirLogDir(dir),
		mclog.WithDirIncludeLatest(false),
	) {
		require.NoError(t, err)
		players = append(players, ev.Player)
	}
	assert.Equal(t, []string{"First", "Second"}, players)
}

func TestParseDir_Empty(t *testing.T) {
	for _, err := range mclog.ParseDir(context.Background(), mclog.WithDirLogDir(t.TempDir())) {
		assert.ErrorIs(t, err, mclog.ErrNoLogFiles)
	}
}

func writeGzip(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
}
