// Package mclog parses and follows Minecraft server logs.
//
// This package allows you to:
//   - Parse server log lines into chat, join, leave, advancement and death events
//   - Follow logs/latest.log in real time, across server restarts
//   - Parse rotated .log.gz archives
//   - Add custom events with YAML pattern files (see package pattern)
//
// # Death messages
//
// Death messages have no fixed shape; they are matched against templates
// built from the game's localization file (en_us.json). Install a table once
// at startup so ParseLine and DefaultParser can use it:
//
//	table, err := lang.Load("en_us.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := lang.Install(table); err != nil {
//	    log.Fatal(err)
//	}
//
// Without templates, death lines come out as generic events.
//
// # Basic Usage
//
// To follow the server log:
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//
//	events, errs, err := mclog.WatchWithOptions(ctx,
//	    mclog.WithLogDir("/srv/minecraft/logs"),
//	    mclog.WithIncludeTypes(mclog.EventJoin, mclog.EventLeave, mclog.EventDeath),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for {
//	    select {
//	    case ev, ok := <-events:
//	        if !ok {
//	            return
//	        }
//	        switch ev.Type {
//	        case mclog.EventJoin:
//	            fmt.Printf("%s joined\n", ev.Player)
//	        case mclog.EventLeave:
//	            fmt.Printf("%s left\n", ev.Player)
//	        case mclog.EventDeath:
//	            fmt.Println(ev.Text)
//	        }
//	    case err, ok := <-errs:
//	        if !ok {
//	            return
//	        }
//	        log.Printf("error: %v", err)
//	    }
//	}
//
// To parse a single log line:
//
//	ev, _ := mclog.ParseLine(line)
//	fmt.Println(ev.Type)
//
// # Custom Parsers
//
// Implement the [Parser] interface for custom log parsing, and combine
// parsers with [ParserChain]:
//
//	chain := &mclog.ParserChain{
//	    Mode:    mclog.ChainAll,
//	    Parsers: []mclog.Parser{mclog.DefaultParser{}, customParser},
//	}
//
// # Disclaimer
//
// This is an unofficial tool and is not affiliated with Mojang Studios.
package mclog
