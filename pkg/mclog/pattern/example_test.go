package pattern_test

import (
	"context"
	"fmt"
	"log"

	"github.com/gluemc/gluemc-go/pkg/mclog"
	"github.com/gluemc/gluemc-go/pkg/mclog/pattern"
)

func ExampleNewRegexParser() {
	pf, err := pattern.LoadBytes([]byte(`
version: 1
patterns:
  - id: lag
    event_type: lag
    level: WARN
    regex: 'Running (?P<ms>\d+)ms or (?P<ticks>\d+) ticks behind'
`))
	if err != nil {
		log.Fatal(err)
	}
	custom, err := pattern.NewRegexParser(pf)
	if err != nil {
		log.Fatal(err)
	}

	chain := &mclog.ParserChain{
		Mode:    mclog.ChainFirst,
		Parsers: []mclog.Parser{custom, mclog.DefaultParser{}},
	}
	result, err := chain.ParseLine(context.Background(),
		"[09:02:00] [Server thread/WARN]: Can't keep up! Is the server overloaded? Running 2034ms or 40 ticks behind")
	if err != nil {
		log.Fatal(err)
	}

	ev := result.Events[0]
	fmt.Println(ev.Type, ev.Data["ms"], ev.Data["ticks"])
	// Output:
	// lag 2034 40
}
