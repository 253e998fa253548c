// Package dedup provides the O(1) submission-dedup query surface used
// by the Download Orchestrator (spec §4.4 step 4, §4.9, §8.2 "dedup
// round-trip" law): given a fuzzy-match group key, has this tracking
// record already submitted something in that group, and is it already
// sitting in the library?
package dedup

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/periodiq/periodiq/internal/models"
	"github.com/periodiq/periodiq/internal/normalize"
	"github.com/periodiq/periodiq/internal/repository"
)

// Checker answers the Orchestrator's and Import Pipeline's duplicate
// questions.
type Checker struct {
	submissions    *repository.SubmissionRepository
	libraryEntries *repository.LibraryEntryRepository
}

func NewChecker(submissions *repository.SubmissionRepository, libraryEntries *repository.LibraryEntryRepository) *Checker {
	return &Checker{submissions: submissions, libraryEntries: libraryEntries}
}

// blockingStates are the submission states that make a matching group
// key "already submitted" (spec §4.4 step 4): SKIPPED and FAILED below
// the bad-file threshold do not block a resubmission attempt.
var blockingStates = []models.SubmissionState{
	models.SubmissionPending, models.SubmissionDownloading, models.SubmissionCompleted,
}

// AlreadySubmitted reports whether trackingID already has a
// PENDING/DOWNLOADING/COMPLETED submission sharing groupKey (spec §4.4
// step 4 "already-submitted" filter).
func (c *Checker) AlreadySubmitted(trackingID uuid.UUID, groupKey string) (bool, error) {
	return c.submissions.ExistsForGroupInStates(trackingID, groupKey, blockingStates)
}

// IsBadFile reports whether sourceURL is globally blacklisted (spec
// §4.4 step 4 bad-file filter, §8.3 S3: "suppressed ... for any
// tracking").
func (c *Checker) IsBadFile(_ uuid.UUID, sourceURL string) (bool, error) {
	return c.submissions.IsBadFileURL(sourceURL)
}

// NewestSubmissionDate resolves the mode_new_only Open Question per
// spec §9: compared against the most-recent submission anywhere in
// trackingID's history, not the tracking record's own creation date
// and not scoped to the candidate's fuzzy-match group — a tracking
// record's submission history gates every new candidate, including one
// whose group key has never been submitted before. ok is false if the
// tracking record has no prior submission at all.
func (c *Checker) NewestSubmissionDate(trackingID uuid.UUID) (t time.Time, ok bool, err error) {
	existing, err := c.submissions.NewestSubmission(trackingID)
	if err != nil {
		return time.Time{}, false, err
	}
	if existing == nil {
		return time.Time{}, false, nil
	}
	return existing.CreatedAt, true, nil
}

// InLibrary reports whether a fuzzy-matching LibraryEntry already exists
// within thresholdDays of issueDate (spec §8.1, §8.3 S5/S6): special
// editions are never matched against non-special editions regardless of
// title similarity or date proximity.
func (c *Checker) InLibrary(title string, issueDate time.Time, isSpecialEdition bool, fuzzyThreshold, thresholdDays int) (*models.LibraryEntry, error) {
	from := issueDate.AddDate(0, 0, -thresholdDays).Format("2006-01-02")
	to := issueDate.AddDate(0, 0, thresholdDays).Format("2006-01-02")

	candidates, err := c.libraryEntries.ByFuzzyTitleCandidates(from, to)
	if err != nil {
		return nil, err
	}

	for _, candidate := range candidates {
		candidateIsSpecial := false
		var fields models.ExtraMetadataFields
		if len(candidate.ExtraMetadata) > 0 {
			_ = json.Unmarshal(candidate.ExtraMetadata, &fields)
			candidateIsSpecial = fields.SpecialEdition
		}
		if candidateIsSpecial != isSpecialEdition {
			continue
		}
		if normalize.Matches(title, candidate.Title, fuzzyThreshold) {
			return candidate, nil
		}
	}
	return nil, nil
}
