package pattern_test

import (
	"context"
	"testing"

	"github.com/gluemc/gluemc-go/pkg/mclog/pattern"
)

func BenchmarkRegexParser_ParseLine(b *testing.B) {
	p, err := pattern.NewRegexParserFromFile("testdata/valid.yaml")
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()

	lines := map[string]string{
		"match":    "[09:02:00] [Server thread/WARN]: Can't keep up! Is the server overloaded? Running 2034ms or 40 ticks behind",
		"guarded":  "[09:01:00] [Server thread/INFO]: Steve joined the game",
		"noPrefix": "\tat java.base/java.lang.Thread.run(Thread.java:1583)",
	}
	for name, line := range lines {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				_, _ = p.ParseLine(ctx, line)
			}
		})
	}
}
