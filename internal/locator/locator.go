// Package locator implements the File Locator (spec §4.7): external
// download clients and this process may see the filesystem through
// different mount points, so a client-reported path is resolved through
// a small fallback chain before being treated as missing.
package locator

import (
	"os"
	"path/filepath"
	"strings"
)

const defaultSearchDepth = 3

var mediaExtensions = map[string]bool{".pdf": true, ".epub": true}

// Locator resolves client-reported paths against the locally-mounted
// downloads directory.
type Locator struct {
	downloadDir string
	searchDepth int
}

func New(downloadDir string, searchDepth int) *Locator {
	if searchDepth <= 0 {
		searchDepth = defaultSearchDepth
	}
	return &Locator{downloadDir: downloadDir, searchDepth: searchDepth}
}

// Locate resolves reportedPath per spec §4.7's ordered fallback: exact
// file, first pdf/epub within a directory, then a basename BFS under the
// downloads directory. Returns "" if nothing is found.
func (l *Locator) Locate(reportedPath string) string {
	if reportedPath == "" {
		return ""
	}

	if filepath.IsAbs(reportedPath) {
		info, err := os.Stat(reportedPath)
		if err == nil {
			if !info.IsDir() {
				return reportedPath
			}
			if found := firstMediaFile(reportedPath); found != "" {
				return found
			}
			return ""
		}
	}

	base := filepath.Base(reportedPath)
	return l.searchByBasename(base)
}

// firstMediaFile recursively walks dir and returns the first pdf/epub
// file found, or "" if none exists.
func firstMediaFile(dir string) string {
	var found string
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || found != "" {
			return nil
		}
		if !d.IsDir() && mediaExtensions[strings.ToLower(filepath.Ext(path))] {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	return found
}

// searchByBasename performs a breadth-first search under the downloads
// directory, up to l.searchDepth levels, for an entry named base. A
// directory match is resolved to its first pdf/epub via firstMediaFile.
func (l *Locator) searchByBasename(base string) string {
	type queued struct {
		path  string
		depth int
	}
	queue := []queued{{path: l.downloadDir, depth: 0}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(current.path)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			full := filepath.Join(current.path, entry.Name())
			if entry.Name() == base {
				if entry.IsDir() {
					if found := firstMediaFile(full); found != "" {
						return found
					}
					continue
				}
				return full
			}
			if entry.IsDir() && current.depth < l.searchDepth {
				queue = append(queue, queued{path: full, depth: current.depth + 1})
			}
		}
	}
	return ""
}
