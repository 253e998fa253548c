// Package covercleanup reconciles the on-disk covers directory against
// LibraryEntry.cover_path references (§2 Cover Cleanup [EXPANSION],
// grounded in original_source/scheduler/cover_cleanup.py): orphaned
// cover files are deleted, and entries whose referenced cover is missing
// are cleared and queued for best-effort re-extraction.
package covercleanup

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/periodiq/periodiq/internal/importpipeline"
	"github.com/periodiq/periodiq/internal/repository"
)

// Result mirrors the Monitor's in-process counters style (spec §4.5).
type Result struct {
	OrphansDeleted  int
	MissingRequeued int
}

// coverQueue dispatches a re-extraction job instead of running it inline;
// satisfied by *internal/jobs.Queue. Declared locally (not imported from
// internal/jobs) to avoid a package cycle, the same seam
// internal/importpipeline.CoverQueue uses.
type coverQueue interface {
	EnqueueCover(libraryEntryID, sourcePath, destPath string) error
}

// Cleaner runs the cover-cleanup task.
type Cleaner struct {
	libraryEntries *repository.LibraryEntryRepository
	coversDir      string
	coverQueue     coverQueue
}

func New(libraryEntries *repository.LibraryEntryRepository, coversDir string) *Cleaner {
	return &Cleaner{libraryEntries: libraryEntries, coversDir: coversDir}
}

// WithCoverQueue routes re-extraction onto q instead of running it
// inline on this goroutine.
func (c *Cleaner) WithCoverQueue(q coverQueue) *Cleaner {
	c.coverQueue = q
	return c
}

// Run performs both halves of the task: delete orphaned cover files, and
// clear+requeue entries whose cover_path no longer points at a real file.
func (c *Cleaner) Run(ctx context.Context) (Result, error) {
	var result Result

	if err := os.MkdirAll(c.coversDir, 0o755); err != nil {
		return result, err
	}

	referenced, err := c.libraryEntries.AllCoverPaths()
	if err != nil {
		return result, err
	}
	referencedSet := make(map[string]bool, len(referenced))
	for _, p := range referenced {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		referencedSet[abs] = true
	}

	entries, err := os.ReadDir(c.coversDir)
	if err != nil {
		return result, err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".jpg") {
			continue
		}
		full := filepath.Join(c.coversDir, entry.Name())
		abs, err := filepath.Abs(full)
		if err != nil {
			abs = full
		}
		if referencedSet[abs] {
			continue
		}
		if err := os.Remove(full); err != nil {
			log.Printf("covercleanup: deleting orphaned cover %s: %v", full, err)
			continue
		}
		result.OrphansDeleted++
	}

	missing, err := c.libraryEntries.List("", "", "")
	if err != nil {
		return result, err
	}
	for _, e := range missing {
		if e.CoverPath == nil {
			continue
		}
		if _, err := os.Stat(*e.CoverPath); err == nil {
			continue
		}

		if err := c.libraryEntries.SetCoverPath(e.ID, nil); err != nil {
			log.Printf("covercleanup: clearing missing cover for %s: %v", e.ID, err)
			continue
		}
		result.MissingRequeued++

		dest := filepath.Join(c.coversDir, importpipeline.SafeTitle(e.Title)+".jpg")
		if c.coverQueue != nil {
			if err := c.coverQueue.EnqueueCover(e.ID.String(), e.FilePath, dest); err != nil {
				log.Printf("covercleanup: enqueue re-extraction for %s: %v", e.ID, err)
			}
			continue
		}

		extractor := importpipeline.ExtractorFor(e.FilePath)
		if written, err := extractor.Extract(ctx, e.FilePath, dest); err == nil && written != "" {
			if err := c.libraryEntries.SetCoverPath(e.ID, &written); err != nil {
				log.Printf("covercleanup: recording re-extracted cover for %s: %v", e.ID, err)
			}
		}
	}

	return result, nil
}
