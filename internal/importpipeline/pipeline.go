// Package importpipeline implements the Import Pipeline (spec §4.6):
// takes a completed download, either handed off by the Submission
// Monitor or found during a directory scan, and installs it into the
// library. The COMPLETED∧file_path=null transition and the LibraryEntry
// insert are written in the same *sql.Tx (spec §9 transactional
// invariant).
package importpipeline

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/periodiq/periodiq/internal/dedup"
	"github.com/periodiq/periodiq/internal/models"
	"github.com/periodiq/periodiq/internal/normalize"
	"github.com/periodiq/periodiq/internal/parse"
	"github.com/periodiq/periodiq/internal/repository"
)

// TrackingMode is the caller-requested post-import tracking side effect
// (spec §4.6 step 8); distinct from models.TrackingMode because "none"
// here means "delete existing tracking", not merely "no mode selected".
type TrackingMode string

const (
	TrackingAll   TrackingMode = "all"
	TrackingNew   TrackingMode = "new"
	TrackingWatch TrackingMode = "watch"
	TrackingNone  TrackingMode = "none"
)

// Options configures one Import call.
type Options struct {
	SkipOrganize bool
	TrackingMode TrackingMode
}

// CoverQueue dispatches a cover-extraction job for an already-persisted
// LibraryEntry onto a background worker pool, so a slow render never
// blocks the Monitor's polling loop (spec §5 EXPANSION). Satisfied by
// *internal/jobs.Queue; when nil, Import falls back to running the
// configured CoverExtractor inline before returning.
type CoverQueue interface {
	EnqueueCover(libraryEntryID, sourcePath, destPath string) error
}

// Outcome is the result of one Import call.
type Outcome string

const (
	OutcomeImported         Outcome = "imported"
	OutcomeDuplicateSkipped Outcome = "duplicate_skipped"
)

// Config tunes the pipeline's matching/organizing behavior.
type Config struct {
	OrganizeBaseDir     string
	CacheDir            string
	CategoryPrefix      string
	OrganizationPattern string
	FuzzyThreshold      int
	DuplicateDateThresholdDays int
}

// Pipeline installs completed downloads into the library.
type Pipeline struct {
	db             *sql.DB
	libraryEntries *repository.LibraryEntryRepository
	submissions    *repository.SubmissionRepository
	tracking       *repository.TrackingRepository
	checker        *dedup.Checker
	coverExtractor CoverExtractor
	coverQueue     CoverQueue
	cfg            Config
}

func New(
	db *sql.DB,
	libraryEntries *repository.LibraryEntryRepository,
	submissions *repository.SubmissionRepository,
	tracking *repository.TrackingRepository,
	checker *dedup.Checker,
	coverExtractor CoverExtractor,
	cfg Config,
) *Pipeline {
	if coverExtractor == nil {
		coverExtractor = DispatchingExtractor{}
	}
	return &Pipeline{
		db:             db,
		libraryEntries: libraryEntries,
		submissions:    submissions,
		tracking:       tracking,
		checker:        checker,
		coverExtractor: coverExtractor,
		cfg:            cfg,
	}
}

// WithCoverQueue routes cover extraction onto q instead of running it
// inline on this goroutine.
func (p *Pipeline) WithCoverQueue(q CoverQueue) *Pipeline {
	p.coverQueue = q
	return p
}

// Import runs the full 10-step algorithm against filePath. submission is
// nil for directory-scan-driven imports (spec §4.6). Any failure in
// steps 1-7 rolls back the transaction and leaves both the file (moved
// back if it had already been organized) and the submission (if any)
// untouched; the Monitor then records a failed submission-driven import
// as IMPORT_FAILED, while a loose file is found again by the next
// directory scan.
func (p *Pipeline) Import(ctx context.Context, filePath string, submission *models.Submission, opts Options) (Outcome, error) {
	// Step 1: parse filename.
	parsed := parse.ParseFile(filePath)

	// Step 2: normalize the title.
	title := normalize.Clean(parsed.Title)
	if title == "" {
		title = parsed.Title
	}

	category := Categorize(title)

	issueDate := parsed.IssueDate
	if !parsed.HasDate {
		issueDate = time.Now()
	}

	// Step 3: duplicate check against the library.
	existing, err := p.checker.InLibrary(title, issueDate, parsed.IsSpecialEdition, p.cfg.FuzzyThreshold, p.cfg.DuplicateDateThresholdDays)
	if err != nil {
		return "", fmt.Errorf("duplicate check: %w", err)
	}
	if existing != nil {
		log.Printf("importpipeline: skipping duplicate of %q (existing entry %s)", title, existing.ID)
		return OutcomeDuplicateSkipped, nil
	}

	// Step 6: decide organize mode and move the file.
	finalPath := filePath
	moved := false
	if !opts.SkipOrganize {
		target := BuildOrganizePath(p.cfg.OrganizeBaseDir, p.cfg.CategoryPrefix, p.cfg.OrganizationPattern, PathInputs{
			Category: string(category),
			Title:    title,
			Language: parsed.Language,
			Year:     parsed.Year,
			Month:    monthNumber(parsed.MonthName),
			Day:      issueDate.Day(),
			Issue:    parsed.IssueNumber,
			Volume:   parsed.Volume,
		})
		target = ResolveCollision(target, time.Now())
		if err := MoveFile(filePath, target); err != nil {
			return "", fmt.Errorf("move file: %w", err)
		}
		finalPath = target
		moved = true
	}
	committed := false
	defer func() {
		if moved && !committed {
			if err := MoveFile(finalPath, filePath); err != nil {
				log.Printf("importpipeline: restoring %s after failed import: %v", filePath, err)
			}
		}
	}()

	entry := &models.LibraryEntry{
		Title:     title,
		Language:  parsed.Language,
		IssueDate: issueDate,
		FilePath:  finalPath,
	}
	extra := models.ExtraMetadataFields{
		Category:       category,
		SpecialEdition: parsed.IsSpecialEdition,
		Volume:         parsed.Volume,
		IssueNumber:    parsed.IssueNumber,
	}
	extraJSON, err := json.Marshal(extra)
	if err != nil {
		return "", fmt.Errorf("marshal extra metadata: %w", err)
	}
	entry.ExtraMetadata = extraJSON

	// Step 7 + 10: insert the LibraryEntry and clear the submission's
	// file_path in the same transaction (spec §9 transactional
	// invariant) — this is the only place state=COMPLETED∧file_path=null
	// is ever produced.
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := p.libraryEntries.CreateTx(tx, entry); err != nil {
		return "", fmt.Errorf("insert library entry: %w", err)
	}

	if submission != nil {
		submission.FilePath = nil
		if err := p.submissions.UpdateTx(tx, submission); err != nil {
			return "", fmt.Errorf("mark submission processed: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	committed = true

	// Step 4: extract the cover now that the LibraryEntry has an id to
	// attach it to. Dispatched onto the background worker pool when one
	// is configured so a slow render never blocks this call; otherwise
	// falls back to extracting inline (stub by default — see
	// CoverExtractor).
	destCover := filepath.Join(p.cfg.CacheDir, ".covers", SafeTitle(title)+".jpg")
	if p.coverQueue != nil {
		if err := p.coverQueue.EnqueueCover(entry.ID.String(), finalPath, destCover); err != nil {
			log.Printf("importpipeline: enqueue cover extraction for %q: %v", title, err)
		}
	} else if written, err := p.coverExtractor.Extract(ctx, finalPath, destCover); err != nil {
		log.Printf("importpipeline: cover extraction failed for %q: %v", title, err)
	} else if written != "" {
		if err := p.libraryEntries.SetCoverPath(entry.ID, &written); err != nil {
			log.Printf("importpipeline: recording cover for %s: %v", entry.ID, err)
		}
	}

	// Step 8: tracking side effect.
	if err := p.applyTrackingMode(title, opts.TrackingMode); err != nil {
		log.Printf("importpipeline: tracking side effect failed for %q: %v", title, err)
	}

	// Step 9: delete the source file, only if it was actually moved.
	if moved && !opts.SkipOrganize {
		if _, err := os.Stat(filePath); err == nil {
			_ = os.Remove(filePath)
		}
	}

	return OutcomeImported, nil
}

func (p *Pipeline) applyTrackingMode(title string, mode TrackingMode) error {
	olid := deriveOLID(title)

	switch mode {
	case TrackingAll:
		return p.upsertTracking(olid, title, func(t *models.TrackingRecord) {
			t.ModeAllEditions = true
			t.ModeNewOnly = false
		})
	case TrackingNew:
		return p.upsertTracking(olid, title, func(t *models.TrackingRecord) {
			t.ModeAllEditions = false
			t.ModeNewOnly = true
		})
	case TrackingWatch:
		return p.upsertTracking(olid, title, func(t *models.TrackingRecord) {
			t.ModeAllEditions = false
			t.ModeNewOnly = false
		})
	case TrackingNone, "":
		return p.deleteTrackingByOLID(olid)
	default:
		return fmt.Errorf("unknown tracking mode %q", mode)
	}
}

func (p *Pipeline) upsertTracking(olid, title string, mutate func(*models.TrackingRecord)) error {
	records, err := p.tracking.List()
	if err != nil {
		return err
	}
	for _, t := range records {
		if t.OLID == olid {
			mutate(t)
			return p.tracking.Update(t)
		}
	}

	t := &models.TrackingRecord{OLID: olid, Title: title, Language: "English", Category: Categorize(title)}
	mutate(t)
	return p.tracking.Create(t)
}

func (p *Pipeline) deleteTrackingByOLID(olid string) error {
	records, err := p.tracking.List()
	if err != nil {
		return err
	}
	for _, t := range records {
		if t.OLID == olid {
			return p.tracking.Delete(t.ID)
		}
	}
	return nil
}

// deriveOLID derives a stable external-identifier-shaped key from a
// title when no real OLID is available (spec GLOSSARY: "opaque to the
// core, derived from title for tracking-record uniqueness").
func deriveOLID(title string) string {
	return "derived-" + strings.ToLower(strings.Join(strings.Fields(title), "-"))
}

func monthNumber(monthName string) int {
	for i := 1; i <= 12; i++ {
		if time.Month(i).String() == monthName {
			return i
		}
	}
	return 0
}
