package parser

import (
	"testing"
)

// BenchmarkParse_Join benchmarks parsing a player join line.
func BenchmarkParse_Join(b *testing.B) {
	p := testParser(b)
	line := []byte("[12:34:56] [Server thread/INFO]: Steve joined the game")

	b.ReportAllocs()
	for b.Loop() {
		_, _, _ = p.Parse(line)
	}
}

// BenchmarkParse_Chat benchmarks parsing a secure chat line.
func BenchmarkParse_Chat(b *testing.B) {
	p := testParser(b)
	line := []byte("[12:34:56] [Server thread/INFO]: <Steve> anyone got spare iron?")

	b.ReportAllocs()
	for b.Loop() {
		_, _, _ = p.Parse(line)
	}
}

// BenchmarkParse_Death benchmarks a death line matched by a late template.
func BenchmarkParse_Death(b *testing.B) {
	p := testParser(b)
	line := []byte("[12:34:56] [Server thread/INFO]: Steve fell from a high place")

	b.ReportAllocs()
	for b.Loop() {
		_, _, _ = p.Parse(line)
	}
}

// BenchmarkParse_Generic benchmarks a Server thread line that exhausts
// every template.
func BenchmarkParse_Generic(b *testing.B) {
	p := testParser(b)
	line := []byte(`[12:34:56] [Server thread/INFO]: Done (3.141s)! For help, type "help"`)

	b.ReportAllocs()
	for b.Loop() {
		_, _, _ = p.Parse(line)
	}
}

// BenchmarkParse_OtherLogger benchmarks a line whose guard rejects every
// specific grammar.
func BenchmarkParse_OtherLogger(b *testing.B) {
	p := testParser(b)
	line := []byte("[12:34:56] [Worker-Main-1/INFO]: Preparing spawn area: 83%")

	b.ReportAllocs()
	for b.Loop() {
		_, _, _ = p.Parse(line)
	}
}

// BenchmarkParse_Mixed benchmarks a realistic mix of lines.
func BenchmarkParse_Mixed(b *testing.B) {
	p := testParser(b)
	lines := [][]byte{
		[]byte("[12:34:56] [Server thread/INFO]: Starting minecraft server version 1.21.1"),
		[]byte("[12:34:57] [Server thread/INFO]: Steve joined the game"),
		[]byte("[12:34:58] [Server thread/INFO]: <Steve> hi"),
		[]byte("[12:34:59] [Server thread/WARN]: Can't keep up! Is the server overloaded?"),
		[]byte("[12:35:00] [Server thread/INFO]: Steve has made the advancement [Stone Age]"),
		[]byte("[12:35:01] [Server thread/INFO]: Steve was slain by Zombie"),
		[]byte("[12:35:02] [Server thread/INFO]: Steve left the game"),
		[]byte("\tat java.base/java.lang.Thread.run(Thread.java:1583)"),
	}

	b.ReportAllocs()
	for b.Loop() {
		for _, line := range lines {
			_, _, _ = p.Parse(line)
		}
	}
}

func TestParse_NoAllocs(t *testing.T) {
	p := testParser(t)
	lines := []string{
		"[12:34:56] [Server thread/INFO]: Steve joined the game",
		"[12:34:56] [Server thread/INFO]: [Not Secure] <Steve> hi",
		"[12:34:56] [Server thread/INFO]: Bob was slain by Zombie using Sword",
		"[12:34:56] [Server thread/INFO]: Steve has reached the goal [Sky's the Limit]",
		"[12:34:56] [Worker-Main-1/INFO]: Preparing spawn area: 83%",
	}
	for _, s := range lines {
		line := []byte(s)
		allocs := testing.AllocsPerRun(100, func() {
			_, _, _ = p.Parse(line)
		})
		if allocs != 0 {
			t.Errorf("Parse(%q) allocated %.0f times per run, want 0", s, allocs)
		}
	}
}
