// Package langcache keeps downloaded localization files in a bbolt database
// so the relay can start without network access.
package langcache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/gluemc/gluemc-go/pkg/mclog/lang"
)

var bucketSources = []byte("sources")

// headerLen is the fetch timestamp stored in front of each value.
const headerLen = 8

// ErrNotCached is returned when a URL has never been stored.
var ErrNotCached = errors.New("localization source not cached")

// Entry is one cached localization file.
type Entry struct {
	URL     string
	Fetched time.Time
	Size    int
	Data    []byte
}

// Cache is a bbolt-backed store of localization files keyed by URL.
// It is safe for concurrent use.
type Cache struct {
	db     *bbolt.DB
	log    *slog.Logger
	client *http.Client
	now    func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used to report fallbacks to cached data.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.log = l
		}
	}
}

// WithHTTPClient sets the client used by Fetch. Default: http.DefaultClient.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Cache) {
		if client != nil {
			c.client = client
		}
	}
}

// Open opens or creates the cache database at path.
func Open(path string, opts ...Option) (*Cache, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("langcache: open %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSources)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("langcache: create bucket: %w", err)
	}

	c := &Cache{
		db:     db,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		client: http.DefaultClient,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Path returns the file path of the database.
func (c *Cache) Path() string {
	return c.db.Path()
}

// Put stores data for url, replacing any previous entry.
func (c *Cache) Put(url string, data []byte, fetched time.Time) error {
	value := make([]byte, headerLen+len(data))
	binary.BigEndian.PutUint64(value, uint64(fetched.UnixNano()))
	copy(value[headerLen:], data)

	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSources).Put([]byte(url), value)
	})
}

// Get returns the entry for url, or ErrNotCached.
func (c *Cache) Get(url string) (Entry, error) {
	var entry Entry
	err := c.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketSources).Get([]byte(url))
		if v == nil {
			return ErrNotCached
		}
		var err error
		entry, err = decode(url, v)
		return err
	})
	return entry, err
}

// Delete removes the entry for url. Deleting a missing entry is not an error.
func (c *Cache) Delete(url string) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSources).Delete([]byte(url))
	})
}

// List returns every entry without its data, ordered by URL.
func (c *Cache) List() ([]Entry, error) {
	var entries []Entry
	err := c.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSources).ForEach(func(k, v []byte) error {
			entry, err := decode(string(k), v)
			if err != nil {
				return err
			}
			entry.Data = nil
			entries = append(entries, entry)
			return nil
		})
	})
	return entries, err
}

// Fetch downloads url and stores the result. If the download fails and an
// earlier copy is cached, the cached copy is returned with stale set.
func (c *Cache) Fetch(ctx context.Context, url string) (data []byte, stale bool, err error) {
	data, err = lang.Download(ctx, c.client, url)
	if err == nil {
		if err := c.Put(url, data, c.now()); err != nil {
			c.log.Warn("could not cache localization source", "url", url, "error", err)
		}
		return data, false, nil
	}

	entry, cacheErr := c.Get(url)
	if cacheErr != nil {
		if !errors.Is(cacheErr, ErrNotCached) {
			c.log.Warn("reading localization cache failed", "url", url, "error", cacheErr)
		}
		return nil, false, err
	}
	c.log.Warn("using cached localization source",
		"url", url,
		"fetched", entry.Fetched,
		"error", err,
	)
	return entry.Data, true, nil
}

// decode copies v out of the transaction.
func decode(url string, v []byte) (Entry, error) {
	if len(v) < headerLen {
		return Entry{}, fmt.Errorf("langcache: corrupt entry for %s", url)
	}
	data := make([]byte, len(v)-headerLen)
	copy(data, v[headerLen:])
	return Entry{
		URL:     url,
		Fetched: time.Unix(0, int64(binary.BigEndian.Uint64(v))),
		Size:    len(data),
		Data:    data,
	}, nil
}
