package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gluemc/gluemc-go/internal/langcache"
	"github.com/gluemc/gluemc-go/pkg/mclog/lang"
)

// langNone disables death templates; death lines come out as generic events.
const langNone = "none"

func isURL(source string) bool {
	return strings.HasPrefix(source, "https://") || strings.HasPrefix(source, "http://")
}

// loadTemplates builds the death-template table from source: a local file,
// or a URL fetched through the cache at cachePath when one is set.
// It returns a nil table for "none" or an empty source.
func loadTemplates(ctx context.Context, source, cachePath string, log *slog.Logger) (*lang.Table, error) {
	if source == "" || source == langNone {
		log.Debug("death templates disabled")
		return nil, nil
	}

	var data []byte
	var err error
	if isURL(source) {
		data, err = downloadSource(ctx, source, cachePath, log)
	} else {
		data, err = lang.ReadFile(source)
	}
	if err != nil {
		return nil, err
	}

	t, err := lang.BuildBytes(data)
	if err != nil {
		return nil, fmt.Errorf("building death templates: %w", err)
	}
	log.Debug("death templates loaded", "templates", t.Len(), "skipped", t.Skipped())
	return t, nil
}

func downloadSource(ctx context.Context, url, cachePath string, log *slog.Logger) ([]byte, error) {
	if cachePath == "" {
		return lang.Download(ctx, nil, url)
	}

	c, err := openCache(cachePath, log)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	// Fetch logs when it falls back to a cached copy.
	data, _, err := c.Fetch(ctx, url)
	return data, err
}

func openCache(path string, log *slog.Logger) (*langcache.Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	c, err := langcache.Open(path, langcache.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("opening localization cache: %w", err)
	}
	return c, nil
}
