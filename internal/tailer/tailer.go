// Package tailer follows a growing log file line by line.
package tailer

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/nxadm/tail"
)

// Config controls how a file is followed.
type Config struct {
	// FromStart reads the existing content before following. When false,
	// only lines appended after New returns are delivered.
	FromStart bool

	// Poll uses stat polling instead of filesystem notifications. Useful on
	// network mounts and bind-mounted container volumes.
	Poll bool

	// ReOpen keeps following when the file is replaced, which is how the
	// server rotates latest.log on restart.
	ReOpen bool

	// MaxLineSize splits lines longer than this many bytes (0 = unlimited).
	MaxLineSize int
}

// DefaultConfig returns the configuration used by the watcher.
func DefaultConfig() Config {
	return Config{
		ReOpen: true,
	}
}

// Tailer delivers lines appended to a file.
type Tailer struct {
	t      *tail.Tail
	lines  chan string
	errs   chan error
	cancel context.CancelFunc
	done   chan struct{}

	stopOnce sync.Once
	stopErr  error
}

// New starts following path. Both channels are closed once ctx is cancelled
// or Stop is called.
func New(ctx context.Context, path string, cfg Config) (*Tailer, error) {
	whence := io.SeekEnd
	if cfg.FromStart {
		whence = io.SeekStart
	}

	t, err := tail.TailFile(path, tail.Config{
		Location:    &tail.SeekInfo{Offset: 0, Whence: whence},
		ReOpen:      cfg.ReOpen,
		Follow:      true,
		Poll:        cfg.Poll,
		MustExist:   true,
		MaxLineSize: cfg.MaxLineSize,
		Logger:      tail.DiscardingLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("tail %s: %w", path, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	tl := &Tailer{
		t:      t,
		lines:  make(chan string),
		errs:   make(chan error, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go tl.run(ctx)
	return tl, nil
}

func (tl *Tailer) run(ctx context.Context) {
	defer close(tl.done)
	defer close(tl.lines)
	defer close(tl.errs)

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-tl.t.Lines:
			if !ok {
				if err := tl.t.Err(); err != nil {
					tl.sendErr(ctx, err)
				}
				return
			}
			if line.Err != nil {
				tl.sendErr(ctx, line.Err)
				continue
			}
			select {
			case tl.lines <- strings.TrimSuffix(line.Text, "\r"):
			case <-ctx.Done():
				return
			}
		}
	}
}

func (tl *Tailer) sendErr(ctx context.Context, err error) {
	select {
	case tl.errs <- err:
	case <-ctx.Done():
	default:
	}
}

// Lines returns the channel of lines without their line terminator.
func (tl *Tailer) Lines() <-chan string { return tl.lines }

// Errors returns the channel of read errors.
func (tl *Tailer) Errors() <-chan error { return tl.errs }

// Stop stops following and waits for the delivery goroutine to exit.
// Safe to call more than once.
func (tl *Tailer) Stop() error {
	tl.stopOnce.Do(func() {
		tl.cancel()
		tl.stopErr = tl.t.Stop()
		<-tl.done
		tl.t.Cleanup()
	})
	return tl.stopErr
}
