package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gluemc/gluemc-go/pkg/mclog"
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow the server log and print events",
	Long: `Follow a Minecraft server's latest.log in real time and print parsed events.

Events are output as JSON Lines by default (one JSON object per line),
which makes it easy to process with tools like jq. When the server restarts
and starts a new latest.log, tail follows the new file from its start.

Examples:
  # Follow ./logs/latest.log
  gluemc tail

  # Specify log directory
  gluemc tail --log-dir /srv/minecraft/logs

  # Output only join and leave events
  gluemc tail --types join,leave

  # Human-readable output, skipping stack trace lines
  gluemc tail --format pretty --exclude-types unknown

  # Replay the whole current log, then keep following
  gluemc tail --replay-last 0

  # Pipe to jq for filtering
  gluemc tail | jq 'select(.type == "death")'`,
	Args: cobra.NoArgs,
	RunE: runTail,
}

func init() {
	f := tailCmd.Flags()
	f.StringP("format", "f", "jsonl", "Output format: jsonl, pretty")
	f.Bool("raw", false, "Include raw log lines in output")
	addWatchFlags(tailCmd)
	registerCompletions(tailCmd)
	rootCmd.AddCommand(tailCmd)
}

// addWatchFlags registers the flags shared by commands that follow the log.
func addWatchFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("log-dir", "d", "",
		"Server log directory (default: ./logs, or the current directory if it holds latest.log)")
	f.StringSliceP("types", "t", nil,
		"Event types to include (comma-separated: chat,join,leave,advancement,death,generic,unknown)")
	f.StringSlice("exclude-types", nil, "Event types to exclude (comma-separated)")
	f.StringSlice("patterns", nil, "YAML pattern files defining custom events")
	f.Int("replay-last", -1,
		"Replay last N lines before following (-1 = disabled, 0 = from start)")
	f.Bool("wait", false, "Wait for latest.log to appear instead of failing")
	f.Duration("poll-interval", 0, "How often to check for a restarted log (default 2s)")
	f.Bool("stat-polling", false, "Poll file size instead of using filesystem notifications")
}

// typeFilter reads --types and --exclude-types.
func typeFilter(custom []mclog.EventType) (include, exclude []mclog.EventType, err error) {
	include, err = NormalizeEventTypes(viper.GetStringSlice("types"), custom...)
	if err != nil {
		return nil, nil, fmt.Errorf("--types: %w", err)
	}
	exclude, err = NormalizeEventTypes(viper.GetStringSlice("exclude-types"), custom...)
	if err != nil {
		return nil, nil, fmt.Errorf("--exclude-types: %w", err)
	}
	if err := RejectOverlap(include, exclude); err != nil {
		return nil, nil, err
	}
	return include, exclude, nil
}

// replayOption maps --replay-last to a watcher option; nil means no replay.
func replayOption(n int) mclog.WatchOption {
	switch {
	case n == 0:
		return mclog.WithReplayFromStart()
	case n > 0:
		return mclog.WithReplayLastN(n)
	default:
		return nil
	}
}

// watchOptions builds the watcher options from the bound flags and config.
func watchOptions(ctx context.Context) ([]mclog.WatchOption, error) {
	templates, err := loadTemplates(ctx, viper.GetString("lang"), viper.GetString("lang-cache"), logger)
	if err != nil {
		return nil, err
	}
	p, custom, err := buildParser(viper.GetStringSlice("patterns"), templates, false)
	if err != nil {
		return nil, err
	}
	include, exclude, err := typeFilter(custom)
	if err != nil {
		return nil, err
	}

	opts := []mclog.WatchOption{
		mclog.WithLogDir(viper.GetString("log-dir")),
		mclog.WithParser(p),
		mclog.WithFilter(include, exclude),
		mclog.WithIncludeRawLine(viper.GetBool("raw")),
		mclog.WithWaitForLogs(viper.GetBool("wait")),
		mclog.WithStatPolling(viper.GetBool("stat-polling")),
		mclog.WithLogger(logger),
		replayOption(viper.GetInt("replay-last")),
	}
	if d := viper.GetDuration("poll-interval"); d > 0 {
		opts = append(opts, mclog.WithPollInterval(d))
	}
	return opts, nil
}

func runTail(cmd *cobra.Command, _ []string) error {
	format := viper.GetString("format")
	if err := checkFormat(format); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts, err := watchOptions(ctx)
	if err != nil {
		return err
	}

	watcher, err := mclog.NewWatcherWithOptions(opts...)
	if err != nil {
		return err
	}
	defer watcher.Close()

	events, errs, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}
	logger.Debug("watching", "log_dir", watcher.LogDir())

	out := cmd.OutOrStdout()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := OutputEvent(format, ev, out); err != nil {
				return fmt.Errorf("output error: %w", err)
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("watch error", "error", err)

		case <-ctx.Done():
			return nil
		}
	}
}
