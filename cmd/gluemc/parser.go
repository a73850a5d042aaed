package main

import (
	"fmt"

	"github.com/gluemc/gluemc-go/pkg/mclog"
	"github.com/gluemc/gluemc-go/pkg/mclog/lang"
	"github.com/gluemc/gluemc-go/pkg/mclog/pattern"
)

// buildParser returns the parser for the vanilla grammars plus one parser per
// pattern file, run as a ChainAll chain. It also returns the custom event
// types the pattern files produce so --types can name them.
func buildParser(patternFiles []string, templates *lang.Table, strict bool) (mclog.Parser, []mclog.EventType, error) {
	def := mclog.DefaultParser{Templates: templates, Strict: strict}
	if len(patternFiles) == 0 {
		return def, nil, nil
	}

	parsers := []mclog.Parser{def}
	var custom []mclog.EventType
	for i, path := range patternFiles {
		rp, err := pattern.NewRegexParserFromFile(path)
		if err != nil {
			// Error from pattern package is already sanitized (no path)
			return nil, nil, fmt.Errorf("pattern file %d: %w", i+1, err)
		}
		parsers = append(parsers, rp)
		custom = append(custom, rp.EventTypes()...)
	}

	return &mclog.ParserChain{
		Mode:    mclog.ChainAll,
		Parsers: parsers,
	}, custom, nil
}
