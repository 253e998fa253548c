// Package models holds the core entities of the periodical tracker:
// TrackingRecord, SearchResult, Submission, LibraryEntry, and the
// single-row Credential. These map directly onto the tables owned by
// internal/repository.
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ──────────────────── Enums ────────────────────

// Category groups a periodical by kind for organization and filtering.
type Category string

const (
	CategoryMagazines Category = "Magazines"
	CategoryComics    Category = "Comics"
	CategoryNews      Category = "News"
	CategoryArticles  Category = "Articles"
)

// SubmissionState is the Submission state machine (spec §4.10).
type SubmissionState string

const (
	SubmissionPending      SubmissionState = "pending"
	SubmissionDownloading  SubmissionState = "downloading"
	SubmissionCompleted    SubmissionState = "completed"
	SubmissionFailed       SubmissionState = "failed"
	SubmissionSkipped      SubmissionState = "skipped"
	// SubmissionImportFailed is the REDESIGN FLAG from spec §9: a COMPLETED
	// submission whose import step fails lands here instead of being
	// silently relabeled FAILED, so the fact it once completed is never lost.
	SubmissionImportFailed SubmissionState = "import_failed"
)

// IsTerminal reports whether s is a terminal state of the submission
// state machine (no further Monitor-driven transitions occur).
func (s SubmissionState) IsTerminal() bool {
	switch s {
	case SubmissionCompleted, SubmissionFailed, SubmissionSkipped, SubmissionImportFailed:
		return true
	default:
		return false
	}
}

// TrackingMode resolves the "exactly one of {all, new_only, neither}"
// rule from spec §3.1 into a single value.
type TrackingMode int

const (
	TrackingModeNone TrackingMode = iota
	TrackingModeAllEditions
	TrackingModeNewOnly
	TrackingModeSelected
)

// ──────────────────── TrackingRecord ────────────────────

// TrackingRecord is a user's declared intent to acquire a periodical
// (spec §3.1).
type TrackingRecord struct {
	ID                           uuid.UUID       `json:"id" db:"id"`
	OLID                         string          `json:"olid" db:"olid"`
	Title                        string          `json:"title" db:"title"`
	Publisher                    *string         `json:"publisher,omitempty" db:"publisher"`
	ISSN                         *string         `json:"issn,omitempty" db:"issn"`
	FirstPublishYear             *int            `json:"first_publish_year,omitempty" db:"first_publish_year"`
	TotalEditionsKnown           int             `json:"total_editions_known" db:"total_editions_known"`
	Language                     string          `json:"language" db:"language"`
	Category                     Category        `json:"category" db:"category"`
	ModeAllEditions              bool            `json:"mode_all_editions" db:"track_all_editions"`
	ModeNewOnly                  bool            `json:"mode_new_only" db:"track_new_only"`
	SelectedEditions             map[string]bool `json:"selected_editions" db:"selected_editions"`
	SelectedYears                []int           `json:"selected_years" db:"selected_years"`
	DeleteFromClientOnCompletion bool            `json:"delete_from_client_on_completion" db:"delete_from_client_on_completion"`
	Metadata                     json.RawMessage `json:"metadata,omitempty" db:"periodical_metadata"`
	CreatedAt                    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt                    time.Time       `json:"updated_at" db:"updated_at"`
}

// Mode resolves the tracking-mode precedence documented in spec §3.1:
// exactly one of {all, new_only, neither} is meaningful.
func (t *TrackingRecord) Mode() TrackingMode {
	switch {
	case t.ModeAllEditions:
		return TrackingModeAllEditions
	case t.ModeNewOnly:
		return TrackingModeNewOnly
	default:
		return TrackingModeSelected
	}
}

// ──────────────────── SearchResult ────────────────────

// SearchResult is a provider-returned candidate for a tracked title
// (spec §3.1). Retained as an audit trail; not authoritative state.
type SearchResult struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	TrackingID         uuid.UUID       `json:"tracking_id" db:"tracking_id"`
	Provider           string          `json:"provider" db:"provider"`
	Query              string          `json:"query" db:"query"`
	Title              string          `json:"title" db:"title"`
	URL                string          `json:"url" db:"url"`
	PublicationDate    *time.Time      `json:"publication_date,omitempty" db:"publication_date"`
	RawMetadata        json.RawMessage `json:"raw_metadata,omitempty" db:"raw_metadata"`
	FuzzyMatchGroupID  string          `json:"fuzzy_match_group_id" db:"fuzzy_match_group_id"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
}

// ──────────────────── Submission ────────────────────

// Submission is one attempt to acquire a specific issue (spec §3.1).
type Submission struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	TrackingID      uuid.UUID       `json:"tracking_id" db:"tracking_id"`
	SearchResultID  *uuid.UUID      `json:"search_result_id,omitempty" db:"search_result_id"`
	State           SubmissionState `json:"state" db:"status"`
	JobID           *string         `json:"job_id,omitempty" db:"job_id"`
	SourceURL       string          `json:"source_url" db:"source_url"`
	ResultTitle     string          `json:"result_title" db:"result_title"`
	FuzzyMatchGroup string          `json:"fuzzy_match_group,omitempty" db:"fuzzy_match_group"`
	ClientName      string          `json:"client_name,omitempty" db:"client_name"`
	AttemptCount    int             `json:"attempt_count" db:"attempt_count"`
	LastError       *string         `json:"last_error,omitempty" db:"last_error"`
	FilePath        *string         `json:"file_path,omitempty" db:"file_path"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// IsBadFile reports whether this submission's source URL should be
// blacklisted from future submissions (spec §3.1, §4.4 step 4).
func (s *Submission) IsBadFile() bool {
	return s.State == SubmissionFailed && s.AttemptCount >= 3
}

// ──────────────────── LibraryEntry ────────────────────

// LibraryEntry is a catalog record for an imported file (spec §3.1).
type LibraryEntry struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	Title         string          `json:"title" db:"title"`
	Language      string          `json:"language" db:"language"`
	Publisher     *string         `json:"publisher,omitempty" db:"publisher"`
	ISSN          *string         `json:"issn,omitempty" db:"issn"`
	IssueDate     time.Time       `json:"issue_date" db:"issue_date"`
	FilePath      string          `json:"file_path" db:"file_path"`
	CoverPath     *string         `json:"cover_path,omitempty" db:"cover_path"`
	ExtraMetadata json.RawMessage `json:"extra_metadata,omitempty" db:"extra_metadata"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// ExtraMetadataFields is the typed shape of LibraryEntry.ExtraMetadata;
// the column stays JSON (additional keys may be written by out-of-scope
// providers) but the core reads these through typed accessors.
type ExtraMetadataFields struct {
	Category         Category `json:"category"`
	SpecialEdition   bool     `json:"special_edition"`
	OCRTextIndexed   bool     `json:"ocr_text_indexed,omitempty"`
	Volume           int      `json:"volume,omitempty"`
	IssueNumber      int      `json:"issue_number,omitempty"`
}

// ──────────────────── Credential ────────────────────

// Credential is the single-row credential store (spec §1, §4 [EXPANSION]).
type Credential struct {
	ID           uuid.UUID `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
