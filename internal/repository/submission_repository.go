package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/periodiq/periodiq/internal/models"
)

type SubmissionRepository struct {
	db *sql.DB
}

func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

const submissionColumns = `id, tracking_id, search_result_id, status, job_id,
	source_url, result_title, fuzzy_match_group, client_name, attempt_count,
	last_error, file_path, created_at, updated_at`

func scanSubmission(row interface{ Scan(dest ...interface{}) error }) (*models.Submission, error) {
	s := &models.Submission{}
	err := row.Scan(
		&s.ID, &s.TrackingID, &s.SearchResultID, &s.State, &s.JobID,
		&s.SourceURL, &s.ResultTitle, &s.FuzzyMatchGroup, &s.ClientName, &s.AttemptCount,
		&s.LastError, &s.FilePath, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func (r *SubmissionRepository) Create(s *models.Submission) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	query := `
		INSERT INTO submissions (id, tracking_id, search_result_id, status, job_id,
			source_url, result_title, fuzzy_match_group, client_name, attempt_count, last_error, file_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	return r.db.QueryRow(query, s.ID, s.TrackingID, s.SearchResultID, s.State, s.JobID,
		s.SourceURL, s.ResultTitle, s.FuzzyMatchGroup, s.ClientName, s.AttemptCount, s.LastError, s.FilePath).
		Scan(&s.CreatedAt, &s.UpdatedAt)
}

func (r *SubmissionRepository) GetByID(id uuid.UUID) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	return scanSubmission(r.db.QueryRow(query, id))
}

func (r *SubmissionRepository) Update(s *models.Submission) error {
	query := `
		UPDATE submissions SET
			status = $2, job_id = $3, attempt_count = $4, last_error = $5,
			file_path = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	return r.db.QueryRow(query, s.ID, s.State, s.JobID, s.AttemptCount, s.LastError, s.FilePath).
		Scan(&s.UpdatedAt)
}

// UpdateTx is Update run within an existing transaction, used by
// internal/importpipeline to keep the file_path=null write in the same
// sql.Tx as the LibraryEntry insert (spec §9 transactional invariant).
func (r *SubmissionRepository) UpdateTx(tx *sql.Tx, s *models.Submission) error {
	query := `
		UPDATE submissions SET
			status = $2, job_id = $3, attempt_count = $4, last_error = $5,
			file_path = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	return tx.QueryRow(query, s.ID, s.State, s.JobID, s.AttemptCount, s.LastError, s.FilePath).
		Scan(&s.UpdatedAt)
}

// ForTrackingByState lists submissions for a tracking record, optionally
// filtered by state (pass "" for all).
func (r *SubmissionRepository) ForTrackingByState(trackingID uuid.UUID, state models.SubmissionState) ([]*models.Submission, error) {
	var rows *sql.Rows
	var err error
	if state == "" {
		rows, err = r.db.Query(`SELECT `+submissionColumns+` FROM submissions WHERE tracking_id = $1 ORDER BY created_at DESC`, trackingID)
	} else {
		rows, err = r.db.Query(`SELECT `+submissionColumns+` FROM submissions WHERE tracking_id = $1 AND status = $2 ORDER BY created_at DESC`, trackingID, state)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubmissions(rows)
}

// List filters submissions for the read-model HTTP endpoint; either
// filter may be empty/nil to mean "no filter".
func (r *SubmissionRepository) List(trackingID *uuid.UUID, state models.SubmissionState) ([]*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE 1=1`
	args := []any{}
	if trackingID != nil {
		args = append(args, *trackingID)
		query += fmt.Sprintf(" AND tracking_id = $%d", len(args))
	}
	if state != "" {
		args = append(args, state)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubmissions(rows)
}

// Pending returns every non-terminal submission with a job_id, the
// Monitor's poll set (spec §4.5 step 1).
func (r *SubmissionRepository) Pending() ([]*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions
		WHERE status IN ('pending', 'downloading') AND job_id IS NOT NULL
		ORDER BY created_at ASC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubmissions(rows)
}

// CompletedAwaitingImport returns submissions that finished downloading
// and still carry a file_path (spec §4.5 step 4).
func (r *SubmissionRepository) CompletedAwaitingImport() ([]*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions
		WHERE status = 'completed' AND file_path IS NOT NULL
		ORDER BY created_at ASC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubmissions(rows)
}

// IsBadFileURL reports whether sourceURL has a FAILED submission with
// attempt_count >= 3 anywhere in submission history — the blacklist is
// global, not scoped to one tracking record: spec §8.3 S3 is explicit
// that a bad URL is "suppressed from future Orchestrator batches for
// any tracking" (spec §4.4 step 4 bad-file filter, GLOSSARY "bad file").
func (r *SubmissionRepository) IsBadFileURL(sourceURL string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM submissions
			WHERE source_url = $1 AND status = 'failed' AND attempt_count >= 3
		)`, sourceURL).Scan(&exists)
	return exists, err
}

// ExistsForGroupInStates reports whether trackingID has any submission
// sharing groupKey whose state is one of states (spec §4.4 step 4
// "already-submitted" filter: only PENDING/DOWNLOADING/COMPLETED block
// a duplicate; SKIPPED and non-bad FAILED do not).
func (r *SubmissionRepository) ExistsForGroupInStates(trackingID uuid.UUID, groupKey string, states []models.SubmissionState) (bool, error) {
	if len(states) == 0 {
		return false, nil
	}
	strStates := make([]string, len(states))
	for i, s := range states {
		strStates[i] = string(s)
	}
	var exists bool
	err := r.db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM submissions
			WHERE tracking_id = $1 AND fuzzy_match_group = $2 AND status = ANY($3)
		)`, trackingID, groupKey, pq.Array(strStates)).Scan(&exists)
	return exists, err
}

// NewestForGroup returns the newest submission for a tracking record
// sharing a fuzzy-match group.
func (r *SubmissionRepository) NewestForGroup(trackingID uuid.UUID, groupKey string) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions
		WHERE tracking_id = $1 AND fuzzy_match_group = $2
		ORDER BY created_at DESC LIMIT 1`
	s, err := scanSubmission(r.db.QueryRow(query, trackingID, groupKey))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

// NewestSubmission returns the most recent submission anywhere in
// trackingID's history, regardless of fuzzy-match group — spec §4.4
// step 4's mode_new_only gate compares a candidate's publication date
// against "the most-recent submission for this tracking", not against
// the newest submission sharing the candidate's own group key.
func (r *SubmissionRepository) NewestSubmission(trackingID uuid.UUID) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions
		WHERE tracking_id = $1
		ORDER BY created_at DESC LIMIT 1`
	s, err := scanSubmission(r.db.QueryRow(query, trackingID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

func scanSubmissions(rows *sql.Rows) ([]*models.Submission, error) {
	submissions := []*models.Submission{}
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, s)
	}
	return submissions, rows.Err()
}
