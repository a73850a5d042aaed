package lang

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/gluemc/gluemc-go/internal/safefile"
)

const (
	// MaxSourceSize is the maximum accepted size of a localization file (16MB).
	// The vanilla en_us.json is around 1MB.
	MaxSourceSize = 16 * 1024 * 1024

	// DefaultURL is the vanilla English localization file.
	DefaultURL = "https://assets.mcasset.cloud/1.21.11/assets/minecraft/lang/en_us.json"
)

// ErrSourceTooLarge is returned when a localization source exceeds MaxSourceSize.
var ErrSourceTooLarge = errors.New("localization source too large")

// sanitizePathError drops the path from os.PathError so messages don't leak
// file system layout.
func sanitizePathError(err error) error {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return fmt.Errorf("%s: %w", pathErr.Op, pathErr.Err)
	}
	return err
}

// Load reads a localization file from disk and builds a table from it.
// Only regular files are accepted.
func Load(path string) (*Table, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return BuildBytes(data)
}

// ReadFile reads a localization file from disk with the size limit applied.
func ReadFile(path string) ([]byte, error) {
	data, err := safefile.ReadFile(path, MaxSourceSize)
	if errors.Is(err, safefile.ErrTooLarge) {
		return nil, fmt.Errorf("%w (max %d bytes)", ErrSourceTooLarge, MaxSourceSize)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read localization file: %w", sanitizePathError(err))
	}
	return data, nil
}

// Download fetches a localization file over HTTP. A nil client uses
// http.DefaultClient.
func Download(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building localization request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching localization source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching localization source: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxSourceSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading localization response: %w", err)
	}
	if len(data) > MaxSourceSize {
		return nil, fmt.Errorf("%w (max %d bytes)", ErrSourceTooLarge, MaxSourceSize)
	}
	return data, nil
}

// Fetch downloads a localization file and builds a table from it.
func Fetch(ctx context.Context, client *http.Client, url string) (*Table, error) {
	data, err := Download(ctx, client, url)
	if err != nil {
		return nil, err
	}
	return BuildBytes(data)
}
