package importpipeline

import (
	"io/fs"
	"path/filepath"
	"strings"
)

var scannableExtensions = map[string]bool{".pdf": true, ".epub": true}

// ScanDownloads walks downloadDir recursively and returns every
// *.pdf/*.epub file that does not live inside organizeDir (spec §4.6
// "Directory-scan-driven" entry point): the containment check compares
// resolved absolute paths so a downloads directory nested inside the
// organize tree, or vice versa, is still handled correctly.
func ScanDownloads(downloadDir, organizeDir string) ([]string, error) {
	absDownload, err := filepath.Abs(downloadDir)
	if err != nil {
		return nil, err
	}
	absOrganize := ""
	if organizeDir != "" {
		absOrganize, err = filepath.Abs(organizeDir)
		if err != nil {
			return nil, err
		}
	}

	var found []string
	err = filepath.WalkDir(absDownload, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !scannableExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if absOrganize != "" && isUnder(path, absOrganize) {
			return nil
		}
		found = append(found, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// isUnder reports whether path is inside dir, comparing as resolved
// absolute paths (spec §4.6 "path containment check").
func isUnder(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
