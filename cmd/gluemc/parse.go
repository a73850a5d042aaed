package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gluemc/gluemc-go/pkg/mclog"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file...]",
	Short: "Parse log files and print events",
	Long: `Parse Minecraft server log files and print their events.

With no arguments, every rotated archive in the log directory is parsed
oldest first, followed by latest.log. Files ending in .gz are decompressed.
Use "-" to read from standard input.

Examples:
  # Everything the server has logged
  gluemc parse --log-dir /srv/minecraft/logs

  # One archive, deaths only
  gluemc parse --types death logs/2024-01-15-1.log.gz

  # Report lines the parser could not fully recognize
  gluemc parse --strict logs/latest.log

  # From a pipe
  zcat logs/*.log.gz | gluemc parse -`,
	RunE: runParse,
}

func init() {
	f := parseCmd.Flags()
	f.StringP("format", "f", "jsonl", "Output format: jsonl, pretty")
	f.Bool("raw", false, "Include raw log lines in output")
	f.StringP("log-dir", "d", "", "Server log directory, used when no files are given")
	f.Bool("include-latest", true, "Parse latest.log after the archives when no files are given")
	f.StringSliceP("types", "t", nil, "Event types to include (comma-separated)")
	f.StringSlice("exclude-types", nil, "Event types to exclude (comma-separated)")
	f.StringSlice("patterns", nil, "YAML pattern files defining custom events")
	f.Bool("strict", false, "Report malformed lines, unrecognized payloads and unmatched deaths")
	f.Bool("stop-on-error", false, "Stop at the first reported line instead of continuing")
	registerCompletions(parseCmd)
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	format := viper.GetString("format")
	if err := checkFormat(format); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	templates, err := loadTemplates(ctx, viper.GetString("lang"), viper.GetString("lang-cache"), logger)
	if err != nil {
		return err
	}
	strict := viper.GetBool("strict")
	p, custom, err := buildParser(viper.GetStringSlice("patterns"), templates, strict)
	if err != nil {
		return err
	}
	include, exclude, err := typeFilter(custom)
	if err != nil {
		return err
	}

	stopOnError := viper.GetBool("stop-on-error")
	opts := []mclog.ParseOption{
		mclog.WithParseParser(p),
		mclog.WithParseFilter(include, exclude),
		mclog.WithParseIncludeRawLine(viper.GetBool("raw")),
		mclog.WithParseReportErrors(strict),
		mclog.WithParseStopOnError(stopOnError),
	}

	out := cmd.OutOrStdout()
	for _, src := range parseSources(ctx, cmd.InOrStdin(), args, opts) {
		if err := printEvents(src, format, out, stopOnError); err != nil {
			return err
		}
	}
	return nil
}

// parseSources returns one event sequence per argument, or a single
// sequence over the log directory when there are none.
func parseSources(ctx context.Context, stdin io.Reader, args []string, opts []mclog.ParseOption) []iter.Seq2[mclog.Event, error] {
	if len(args) == 0 {
		return []iter.Seq2[mclog.Event, error]{mclog.ParseDir(ctx,
			mclog.WithDirLogDir(viper.GetString("log-dir")),
			mclog.WithDirIncludeLatest(viper.GetBool("include-latest")),
			mclog.WithDirParseOptions(opts...),
		)}
	}

	seqs := make([]iter.Seq2[mclog.Event, error], 0, len(args))
	for _, arg := range args {
		if arg == "-" {
			seqs = append(seqs, mclog.ParseReader(ctx, stdin, opts...))
			continue
		}
		seqs = append(seqs, mclog.ParseFile(ctx, arg, opts...))
	}
	return seqs
}

// printEvents writes every event of seq. A line-level *mclog.ParseError is
// logged and skipped unless stopOnError is set. Any other error ends the run.
func printEvents(seq iter.Seq2[mclog.Event, error], format string, out io.Writer, stopOnError bool) error {
	for ev, err := range seq {
		if err != nil {
			var pe *mclog.ParseError
			if errors.As(err, &pe) && !stopOnError {
				logger.Warn("unparsed line", "line", pe.Line, "error", pe.Err)
				continue
			}
			return err
		}
		if err := OutputEvent(format, ev, out); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}
	return nil
}
