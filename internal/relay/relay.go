package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gluemc/gluemc-go/pkg/mclog/event"
)

// Server lifecycle notices.
const (
	NoticeStarting = "Starting server"
	NoticeStopping = "Stopping server"
)

const noticeTimeout = 5 * time.Second

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// ErrNoSink is returned by New when no chat sink is given.
var ErrNoSink = errors.New("relay: chat sink is required")

// Relay forwards events to a chat sink and, optionally, raw lines to a
// console mirror.
type Relay struct {
	chat      Sink
	console   *Console
	renderer  Renderer
	mirrorAll bool
	notices   bool
	log       *slog.Logger
}

// Option configures a Relay.
type Option func(*Relay)

// WithConsole mirrors generic and unknown lines to c. The relay starts and
// stops c itself.
func WithConsole(c *Console) Option {
	return func(r *Relay) {
		r.console = c
	}
}

// WithMirrorAll mirrors every line to the console, not only the ones
// without a notification.
func WithMirrorAll(all bool) Option {
	return func(r *Relay) {
		r.mirrorAll = all
	}
}

// WithRenderer sets the message renderer.
func WithRenderer(rd Renderer) Option {
	return func(r *Relay) {
		r.renderer = rd
	}
}

// WithNotices controls the start and stop notices. Default: true.
func WithNotices(enabled bool) Option {
	return func(r *Relay) {
		r.notices = enabled
	}
}

// WithLogger sets the logger. Delivery failures are logged, never fatal.
func WithLogger(l *slog.Logger) Option {
	return func(r *Relay) {
		if l != nil {
			r.log = l
		}
	}
}

// New returns a relay posting notifications to chat.
func New(chat Sink, opts ...Option) (*Relay, error) {
	if chat == nil {
		return nil, ErrNoSink
	}
	r := &Relay{
		chat:    chat,
		notices: true,
		log:     discardLogger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// Run forwards events until events is closed or ctx is done, then sends
// the stop notice and flushes the console. Errors from errs are logged.
func (r *Relay) Run(ctx context.Context, events <-chan event.Event, errs <-chan error) error {
	consoleDone := make(chan error, 1)
	if r.console != nil {
		// The console outlives ctx so its last batch is still delivered.
		go func() { consoleDone <- r.console.Run(context.WithoutCancel(ctx)) }()
	} else {
		consoleDone <- nil
	}

	if r.notices {
		r.send(ctx, r.renderer.Notice(NoticeStarting, ColorGreen))
	}

	r.loop(ctx, events, errs)

	if r.notices {
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), noticeTimeout)
		r.send(stopCtx, r.renderer.Notice(NoticeStopping, ColorRed))
		cancel()
	}
	if r.console != nil {
		r.console.Close()
	}
	if err := <-consoleDone; err != nil {
		return fmt.Errorf("console mirror: %w", err)
	}
	return nil
}

func (r *Relay) loop(ctx context.Context, events <-chan event.Event, errs <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			r.handle(ctx, ev)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			r.log.Warn("watch error", "error", err)
		}
	}
}

func (r *Relay) handle(ctx context.Context, ev event.Event) {
	msg, notify := r.renderer.Render(ev)
	if notify {
		r.send(ctx, msg)
	}

	if r.console == nil || (notify && !r.mirrorAll) {
		return
	}
	if err := r.console.Write(ctx, ConsoleLine(ev)); err != nil {
		r.log.Debug("console write cancelled", "error", err)
	}
}

func (r *Relay) send(ctx context.Context, msg Message) {
	if err := r.chat.Send(ctx, msg); err != nil {
		r.log.Warn("notification delivery failed",
			"username", msg.Username,
			"headline", msg.headline(),
			"error", err,
		)
		return
	}
	r.log.Debug("notification sent", "username", msg.Username, "headline", msg.headline())
}

// ConsoleLine returns the text mirrored for ev: the raw line when it was
// kept, otherwise the line rebuilt from its parts.
func ConsoleLine(ev event.Event) string {
	if ev.RawLine != "" {
		return ev.RawLine
	}
	if ev.Time == "" {
		return ev.Text
	}
	return fmt.Sprintf("[%s] [%s/%s]: %s", ev.Time, ev.Logger, ev.Level, ev.Text)
}
