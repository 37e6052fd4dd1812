package media

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ParsePlaylist parses a local .m3u/.m3u8/.pls file into file paths.
// Relative entries are resolved against the playlist directory; URL entries
// are dropped.
func ParsePlaylist(path string) ([]string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !IsPlaylistExt(ext) {
		return nil, fmt.Errorf("unsupported playlist format %s", ext)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading playlist: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("playlist is not valid UTF-8")
	}

	text := strings.TrimPrefix(string(data), "\uFEFF")
	scanner := bufio.NewScanner(strings.NewReader(text))
	baseDir := filepath.Dir(abs)
	if ext == ".pls" {
		return parsePLS(scanner, baseDir), nil
	}
	return parseM3U(scanner, baseDir), nil
}

// ExpandInputs turns command arguments into a list of audio files. Playlists
// are expanded in place. Missing, unsupported, and directory entries are
// skipped and counted.
func ExpandInputs(args []string) ([]string, int, error) {
	var out []string
	skipped := 0
	for _, arg := range args {
		if IsPlaylistExt(filepath.Ext(arg)) {
			entries, err := ParsePlaylist(arg)
			if err != nil {
				return nil, skipped, err
			}
			kept := FilterPlayable(entries)
			skipped += len(entries) - len(kept)
			out = append(out, kept...)
			continue
		}
		kept := FilterPlayable([]string{arg})
		skipped += 1 - len(kept)
		out = append(out, kept...)
	}
	return out, skipped, nil
}

// FilterPlayable keeps only existing, non-directory, supported audio files.
func FilterPlayable(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		if !IsSupportedExt(filepath.Ext(p)) {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		out = append(out, p)
	}
	return out
}

func parseM3U(scanner *bufio.Scanner, baseDir string) []string {
	var entries []string
	for scanner.Scan() {
		line := strings.Trim(strings.TrimSpace(scanner.Text()), `"`)
		if line == "" || strings.HasPrefix(line, "#") || isURL(line) {
			continue
		}
		entries = append(entries, resolveEntry(line, baseDir))
	}
	return entries
}

func parsePLS(scanner *bufio.Scanner, baseDir string) []string {
	var entries []string
	for scanner.Scan() {
		key, val, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)
		if val == "" || isURL(val) || !isPLSFileKey(key) {
			continue
		}
		entries = append(entries, resolveEntry(val, baseDir))
	}
	return entries
}

func isPLSFileKey(key string) bool {
	rest, ok := strings.CutPrefix(strings.ToLower(key), "file")
	if !ok || rest == "" {
		return false
	}
	for i := 0; i < len(rest); i++ {
		if rest[i] < '0' || rest[i] > '9' {
			return false
		}
	}
	return true
}

func isURL(s string) bool {
	return strings.Contains(s, "://")
}

func resolveEntry(raw, baseDir string) string {
	p := filepath.Clean(raw)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}
