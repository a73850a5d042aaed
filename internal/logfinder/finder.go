// Package logfinder locates a Minecraft server's log directory and files.
package logfinder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// EnvLogDir is the environment variable name for specifying log directory.
const EnvLogDir = "GLUEMC_LOGDIR"

// LatestLogName is the file the server writes to while running.
const LatestLogName = "latest.log"

// Sentinel errors.
var (
	ErrLogDirNotFound = errors.New("log directory not found")
	ErrNoLogFiles     = errors.New("no log files found")
)

// DefaultLogDirs returns candidate log directories relative to the working
// directory, in priority order.
func DefaultLogDirs() []string {
	return []string{
		"logs",
		filepath.Join("server", "logs"),
	}
}

// FindLogDir returns the server log directory.
//
// Priority:
//  1. explicit (if non-empty)
//  2. GLUEMC_LOGDIR environment variable
//  3. the first existing directory from DefaultLogDirs()
//
// The directory does not need to hold a log yet; the server creates
// latest.log on start. The returned path has symlinks resolved.
func FindLogDir(explicit string) (string, error) {
	if explicit != "" {
		if resolved := resolveLogDir(explicit); resolved != "" {
			return resolved, nil
		}
		return "", fmt.Errorf("%w: %s is not a directory", ErrLogDirNotFound, explicit)
	}

	if envDir := os.Getenv(EnvLogDir); envDir != "" {
		if resolved := resolveLogDir(envDir); resolved != "" {
			return resolved, nil
		}
		return "", fmt.Errorf("%w: %s environment variable points to invalid directory", ErrLogDirNotFound, EnvLogDir)
	}

	for _, dir := range DefaultLogDirs() {
		if resolved := resolveLogDir(dir); resolved != "" {
			return resolved, nil
		}
	}

	return "", ErrLogDirNotFound
}

// FindLatestLogFile returns the path of dir/latest.log.
// Returns ErrNoLogFiles if it does not exist or is not a regular file.
func FindLatestLogFile(dir string) (string, error) {
	path := filepath.Join(dir, LatestLogName)
	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNoLogFiles
		}
		return "", fmt.Errorf("stat %s: %w", LatestLogName, err)
	}
	if !info.Mode().IsRegular() {
		return "", ErrNoLogFiles
	}
	return path, nil
}

// FindArchivedLogFiles returns the rotated logs in dir (YYYY-MM-DD-N.log.gz)
// oldest first. The server numbers archives per day, so the order is by
// date and then by the numeric suffix.
func FindArchivedLogFiles(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.log.gz"))
	if err != nil {
		return nil, fmt.Errorf("globbing archived logs: %w", err)
	}

	archives := make([]archive, 0, len(matches))
	for _, m := range matches {
		info, err := os.Lstat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		a, ok := parseArchiveName(filepath.Base(m))
		if !ok {
			continue
		}
		a.path = m
		archives = append(archives, a)
	}

	sort.Slice(archives, func(i, j int) bool {
		if archives[i].date != archives[j].date {
			return archives[i].date < archives[j].date
		}
		return archives[i].seq < archives[j].seq
	})

	paths := make([]string, len(archives))
	for i, a := range archives {
		paths[i] = a.path
	}
	return paths, nil
}

type archive struct {
	path string
	date string
	seq  int
}

// parseArchiveName splits "2024-01-15-3.log.gz" into its date and sequence.
func parseArchiveName(name string) (archive, bool) {
	stem, ok := strings.CutSuffix(name, ".log.gz")
	if !ok || len(stem) < len("2006-01-02-1") || stem[10] != '-' {
		return archive{}, false
	}
	date := stem[:10]
	for i, c := range date {
		if i == 4 || i == 7 {
			if c != '-' {
				return archive{}, false
			}
			continue
		}
		if c < '0' || c > '9' {
			return archive{}, false
		}
	}
	seq := 0
	for _, c := range stem[11:] {
		if c < '0' || c > '9' {
			return archive{}, false
		}
		seq = seq*10 + int(c-'0')
	}
	return archive{date: date, seq: seq}, true
}

// SameFile reports whether path still names the file described by prev.
// The server replaces latest.log on restart, which shows up as a new inode.
func SameFile(prev os.FileInfo, path string) (bool, error) {
	cur, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return os.SameFile(prev, cur), nil
}

// resolveLogDir resolves symlinks and checks that dir is a directory.
// Returns the resolved path if valid, empty string otherwise.
func resolveLogDir(dir string) string {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return ""
	}

	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return ""
	}
	if !filepath.IsAbs(resolved) {
		if abs, err := filepath.Abs(resolved); err == nil {
			resolved = abs
		}
	}
	return resolved
}
