// Package monitor implements the Submission Monitor (spec §4.5): polls
// the configured download client for pending submissions, reconciles
// lost jobs through the File Locator, and hands completed downloads off
// to the Import Pipeline.
package monitor

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/periodiq/periodiq/internal/client"
	"github.com/periodiq/periodiq/internal/importpipeline"
	"github.com/periodiq/periodiq/internal/locator"
	"github.com/periodiq/periodiq/internal/models"
	"github.com/periodiq/periodiq/internal/repository"
)

// Counters are the in-process run counters from spec §4.5 step 6 — they
// reset on process restart, and are exposed read-only via Snapshot.
type Counters struct {
	TotalRuns                int
	ClientDownloadsProcessed int
	ClientDownloadsFailed    int
	ClientFilesImported      int
	FolderFilesImported      int
	BadFilesDetected         int
	LastClientCheck          time.Time
	LastFolderScan           time.Time
}

// Monitor runs the submission-monitoring loop.
type Monitor struct {
	submissions  *repository.SubmissionRepository
	tracking     *repository.TrackingRepository
	pipeline     *importpipeline.Pipeline
	downloadClient client.DownloadClient
	locator      *locator.Locator
	downloadDir  string
	organizeDir  string

	mu       sync.Mutex
	counters Counters
}

func New(
	submissions *repository.SubmissionRepository,
	tracking *repository.TrackingRepository,
	pipeline *importpipeline.Pipeline,
	downloadClient client.DownloadClient,
	fileLocator *locator.Locator,
) *Monitor {
	return &Monitor{
		submissions:    submissions,
		tracking:       tracking,
		pipeline:       pipeline,
		downloadClient: downloadClient,
		locator:        fileLocator,
	}
}

// WithFolderScan enables the directory-scan-driven import entry point
// (spec §4.6): Run will, after polling submissions, walk downloadDir for
// loose *.pdf/*.epub files outside organizeDir and import each one.
func (m *Monitor) WithFolderScan(downloadDir, organizeDir string) *Monitor {
	m.downloadDir = downloadDir
	m.organizeDir = organizeDir
	return m
}

// Snapshot returns a copy of the current counters (spec §4.5 step 6).
func (m *Monitor) Snapshot() Counters {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters
}

// Run executes one monitor pass: spec §4.5 steps 1-5.
func (m *Monitor) Run(ctx context.Context) error {
	m.mu.Lock()
	m.counters.TotalRuns++
	m.counters.LastClientCheck = time.Now()
	m.mu.Unlock()

	pending, err := m.submissions.Pending()
	if err != nil {
		return err
	}

	for _, s := range pending {
		if err := m.processOne(ctx, s); err != nil {
			log.Printf("monitor: processing submission %s: %v", s.ID, err)
		}
	}

	m.scanFolder(ctx)

	return nil
}

// scanFolder runs the directory-scan-driven import entry point (spec
// §4.6): loose files that never went through a tracked Submission, e.g.
// manually dropped into the downloads directory. A no-op when no
// downloads directory has been configured via WithFolderScan.
func (m *Monitor) scanFolder(ctx context.Context) {
	if m.downloadDir == "" {
		return
	}

	m.mu.Lock()
	m.counters.LastFolderScan = time.Now()
	m.mu.Unlock()

	files, err := importpipeline.ScanDownloads(m.downloadDir, m.organizeDir)
	if err != nil {
		log.Printf("monitor: folder scan failed: %v", err)
		return
	}

	for _, f := range files {
		outcome, err := m.pipeline.Import(ctx, f, nil, importpipeline.Options{TrackingMode: importpipeline.TrackingWatch})
		if err != nil {
			log.Printf("monitor: folder-scan import of %s failed: %v", f, err)
			continue
		}
		if outcome == importpipeline.OutcomeImported {
			m.mu.Lock()
			m.counters.FolderFilesImported++
			m.mu.Unlock()
		}
	}
}

func (m *Monitor) processOne(ctx context.Context, s *models.Submission) error {
	if s.JobID == nil {
		return nil
	}

	// Step 2: poll the client for this job's status.
	status, err := m.downloadClient.GetStatus(ctx, *s.JobID)
	if err != nil {
		// A failed call is transient: the submission keeps its current
		// state and the next tick polls it again. A job the client no
		// longer recognizes comes back as StatusUnknown (handled below).
		return err
	}

	switch status.Status {
	case client.StatusDownloading:
		changed := false
		if s.State != models.SubmissionDownloading {
			s.State = models.SubmissionDownloading
			changed = true
		}
		// Persist the client's last-reported path as our last-known path
		// so reconcileLostJob has something to hand the File Locator once
		// the client no longer recognizes this job (spec §4.5 step 3).
		if status.FilePath != "" && (s.FilePath == nil || *s.FilePath != status.FilePath) {
			s.FilePath = &status.FilePath
			changed = true
		}
		if changed {
			return m.submissions.Update(s)
		}
		return nil

	case client.StatusPending, client.StatusUnknown:
		// Step 3: the client now reports pending/unknown for a job that
		// was previously downloading (or completed, though completed
		// submissions never reach this loop since Pending() only
		// returns non-terminal states) — this is the lost-job case: the
		// client auto-deleted its history after finishing. Otherwise a
		// bare "pending" from a submission that was already pending is
		// just the ordinary no-op tick.
		if s.State == models.SubmissionDownloading {
			return m.reconcileLostJob(ctx, s)
		}
		return nil

	case client.StatusCompleted:
		resolved := status.FilePath
		if resolved == "" || m.locator == nil {
			// fall through with whatever the client reported
		} else {
			resolved = m.locator.Locate(status.FilePath)
		}
		if resolved == "" {
			resolved = status.FilePath
		}
		return m.completeAndImport(ctx, s, resolved)

	case client.StatusFailed, client.StatusError:
		s.State = models.SubmissionFailed
		s.AttemptCount++
		if status.Error != "" {
			s.LastError = &status.Error
		}
		m.mu.Lock()
		m.counters.ClientDownloadsFailed++
		m.mu.Unlock()
		if s.IsBadFile() {
			m.mu.Lock()
			m.counters.BadFilesDetected++
			m.mu.Unlock()
		}
		return m.submissions.Update(s)

	default:
		return nil
	}
}

// reconcileLostJob attempts to locate the submission's file from its
// last known file_path when the client no longer recognizes the job id
// (spec §4.5 step 3): the File Locator is handed the last path the
// client reported while the job was still downloading, not a free-text
// search-result title.
func (m *Monitor) reconcileLostJob(ctx context.Context, s *models.Submission) error {
	if m.locator == nil || s.FilePath == nil {
		return nil
	}
	found := m.locator.Locate(*s.FilePath)
	if found == "" {
		return nil
	}
	return m.completeAndImport(ctx, s, found)
}

// completeAndImport hands a resolved file off to the Import Pipeline
// (spec §4.5 step 4) and, on success, deletes the job from the client if
// the tracking record requests it (spec §4.5 step 5).
func (m *Monitor) completeAndImport(ctx context.Context, s *models.Submission, filePath string) error {
	if filePath == "" {
		return nil
	}

	s.State = models.SubmissionCompleted
	s.FilePath = &filePath
	if err := m.submissions.Update(s); err != nil {
		return err
	}

	trackingMode := importpipeline.TrackingNone
	deleteOnCompletion := false
	if track, err := m.tracking.GetByID(s.TrackingID); err == nil {
		deleteOnCompletion = track.DeleteFromClientOnCompletion
		switch track.Mode() {
		case models.TrackingModeAllEditions:
			trackingMode = importpipeline.TrackingAll
		case models.TrackingModeNewOnly:
			trackingMode = importpipeline.TrackingNew
		default:
			trackingMode = importpipeline.TrackingWatch
		}
	}

	outcome, err := m.pipeline.Import(ctx, filePath, s, importpipeline.Options{TrackingMode: trackingMode})
	if err != nil {
		s.State = models.SubmissionImportFailed
		if msg := err.Error(); msg != "" {
			s.LastError = &msg
		}
		if updateErr := m.submissions.Update(s); updateErr != nil {
			log.Printf("monitor: marking submission %s import_failed: %v", s.ID, updateErr)
		}
		return err
	}

	// Only count a client-driven download as processed once the Import
	// Pipeline has actually succeeded on it — a submission that reaches
	// IMPORT_FAILED never got here. ClientFilesImported is kept distinct
	// from the folder-scan-only FolderFilesImported counter: they track
	// two different entry points (spec §4.6) into the same pipeline.
	m.mu.Lock()
	m.counters.ClientDownloadsProcessed++
	if outcome == importpipeline.OutcomeImported {
		m.counters.ClientFilesImported++
	}
	m.mu.Unlock()

	if deleteOnCompletion && s.JobID != nil {
		if _, err := m.downloadClient.Delete(ctx, *s.JobID); err != nil {
			log.Printf("monitor: deleting job %s from client: %v", *s.JobID, err)
		}
	}

	return nil
}
