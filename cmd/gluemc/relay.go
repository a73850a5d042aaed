package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gluemc/gluemc-go/internal/relay"
	"github.com/gluemc/gluemc-go/pkg/mclog"
)

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Post server events to a chat webhook",
	Long: `Follow the server log and post chat, join, leave, advancement and death
events to a Discord-compatible webhook. Everything else can be mirrored to
a second "console" webhook in batches.

The webhook URLs are secrets; prefer the config file or the environment
(GLUEMC_WEBHOOK_URL, GLUEMC_CONSOLE_WEBHOOK_URL) over flags.

Examples:
  # Chat relay only
  GLUEMC_WEBHOOK_URL=https://discord.com/api/webhooks/... gluemc relay

  # With a console channel and a different avatar service
  gluemc relay --console-webhook-url "$CONSOLE_HOOK" \
    --avatar-url 'https://mc-heads.net/avatar/{name}/64'

  # Print the messages instead of posting them
  gluemc relay --dry-run --replay-last 50`,
	Args: cobra.NoArgs,
	RunE: runRelay,
}

func init() {
	f := relayCmd.Flags()
	f.String("webhook-url", "", "Webhook for chat and player notifications")
	f.String("console-webhook-url", "", "Webhook for the console mirror (disabled if empty)")
	f.String("avatar-url", relay.DefaultAvatarURL, "Avatar URL template; {name} is replaced by the player name")
	f.Bool("mirror-all", false, "Mirror every line to the console webhook, not only unrelayed ones")
	f.Bool("notices", true, `Post "Starting server" and "Stopping server" notices`)
	f.Float64("rate", relay.DefaultRate, "Sustained messages per second per webhook")
	f.Int("burst", relay.DefaultBurst, "Messages sent back to back before the rate applies")
	f.Duration("quiet-period", relay.DefaultQuietPeriod, "Console mirror flushes after this long without new lines")
	f.Bool("dry-run", false, "Print messages as JSON instead of posting them")
	addWatchFlags(relayCmd)
	registerCompletions(relayCmd)
	rootCmd.AddCommand(relayCmd)
}

// sinks returns the chat sink and, when configured, the console sink.
func sinks(out io.Writer) (chat, console relay.Sink, err error) {
	if viper.GetBool("dry-run") {
		chat = printSink(out, "chat")
		if viper.GetString("console-webhook-url") != "" {
			console = printSink(out, "console")
		}
		return chat, console, nil
	}

	opt := relay.WithRate(viper.GetFloat64("rate"), viper.GetInt("burst"))
	hook, err := relay.NewWebhook(viper.GetString("webhook-url"), opt)
	if err != nil {
		return nil, nil, fmt.Errorf("chat webhook: %w (set --webhook-url or GLUEMC_WEBHOOK_URL)", err)
	}
	chat = hook
	if u := viper.GetString("console-webhook-url"); u != "" {
		if console, err = relay.NewWebhook(u, opt); err != nil {
			return nil, nil, fmt.Errorf("console webhook: %w", err)
		}
	}
	return chat, console, nil
}

// printSink writes each message as a JSON line tagged with channel.
func printSink(out io.Writer, channel string) relay.Sink {
	var mu sync.Mutex
	enc := json.NewEncoder(out)
	return relay.SinkFunc(func(_ context.Context, msg relay.Message) error {
		mu.Lock()
		defer mu.Unlock()
		return enc.Encode(struct {
			Channel string `json:"channel"`
			relay.Message
		}{channel, msg})
	})
}

func runRelay(cmd *cobra.Command, _ []string) error {
	chat, consoleSink, err := sinks(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	renderer := relay.Renderer{AvatarURL: viper.GetString("avatar-url")}
	opts := []relay.Option{
		relay.WithRenderer(renderer),
		relay.WithMirrorAll(viper.GetBool("mirror-all")),
		relay.WithNotices(viper.GetBool("notices")),
		relay.WithLogger(logger),
	}
	if consoleSink != nil {
		opts = append(opts, relay.WithConsole(relay.NewConsole(consoleSink,
			relay.WithQuietPeriod(viper.GetDuration("quiet-period")),
			relay.WithConsoleRenderer(renderer),
			relay.WithConsoleLogger(logger),
		)))
	}
	r, err := relay.New(chat, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watchOpts, err := watchOptions(ctx)
	if err != nil {
		return err
	}
	// The console mirror forwards lines exactly as the server wrote them.
	watchOpts = append(watchOpts, mclog.WithIncludeRawLine(true))

	watcher, err := mclog.NewWatcherWithOptions(watchOpts...)
	if err != nil {
		return err
	}
	defer watcher.Close()

	events, errs, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}
	logger.Info("relaying", "log_dir", watcher.LogDir(), "console", consoleSink != nil)
	return r.Run(ctx, events, errs)
}
