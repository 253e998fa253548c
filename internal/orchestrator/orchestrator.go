// Package orchestrator implements the Download Orchestrator (spec
// §4.4): for one tracking record, search every configured provider,
// filter out anything already known, order what remains, cap the batch,
// and submit to the download client.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/periodiq/periodiq/internal/client"
	"github.com/periodiq/periodiq/internal/dedup"
	"github.com/periodiq/periodiq/internal/models"
	"github.com/periodiq/periodiq/internal/normalize"
	"github.com/periodiq/periodiq/internal/parse"
	"github.com/periodiq/periodiq/internal/providers"
	"github.com/periodiq/periodiq/internal/repository"
	"github.com/periodiq/periodiq/internal/tagged"
)

// Result is the Orchestrator's per-run outcome (spec §4.4 Outputs).
type Result struct {
	Submitted int
	Skipped   int
	Failed    int
}

// Orchestrator decides which new issues to submit for a tracking record,
// without resubmitting what is already known (spec §4.4).
type Orchestrator struct {
	tracking      *repository.TrackingRepository
	searchResults *repository.SearchResultRepository
	submissions   *repository.SubmissionRepository
	checker       *dedup.Checker
	providerList  []providers.SearchProvider
	downloadClient client.DownloadClient
	maxPerBatch   int
	fuzzyThreshold int
}

func New(
	tracking *repository.TrackingRepository,
	searchResults *repository.SearchResultRepository,
	submissions *repository.SubmissionRepository,
	checker *dedup.Checker,
	providerList []providers.SearchProvider,
	downloadClient client.DownloadClient,
	maxPerBatch int,
) *Orchestrator {
	if maxPerBatch <= 0 {
		maxPerBatch = 10
	}
	return &Orchestrator{
		tracking:       tracking,
		searchResults:  searchResults,
		submissions:    submissions,
		checker:        checker,
		providerList:   providerList,
		downloadClient: downloadClient,
		maxPerBatch:    maxPerBatch,
		fuzzyThreshold: 80,
	}
}

// WithFuzzyThreshold overrides the similarity threshold used to
// fuzzy-match a result's title against a tracking record's known
// editions list when no explicit edition-id is present (spec §4.4 step
// 4, "neither" mode).
func (o *Orchestrator) WithFuzzyThreshold(threshold int) *Orchestrator {
	if threshold > 0 {
		o.fuzzyThreshold = threshold
	}
	return o
}

// candidate bundles a provider hit with its derived group key, so
// filtering and ordering never recompute it.
type candidate struct {
	hit      providers.SearchHit
	groupKey string
	language string
}

// searchCandidates runs steps 2–3 of spec §4.4 for an already-loaded
// tracking record: query every provider and derive each hit's group key
// and language. Shared by Run (which goes on to filter/sort/submit) and
// Preview (which stops after filtering and sorting, for the UI).
func (o *Orchestrator) searchCandidates(ctx context.Context, track *models.TrackingRecord) []candidate {
	var hits []providers.SearchHit
	for _, provider := range o.providerList {
		found, err := provider.Search(ctx, track.Title)
		if err != nil {
			log.Printf("orchestrator: provider %s failed for %q: %v", provider.Name(), track.Title, err)
			continue
		}
		hits = append(hits, found...)
	}

	candidates := make([]candidate, 0, len(hits))
	for _, hit := range hits {
		meta := tagged.Decode(hit.RawMetadata)
		lang, ok := meta.String("language")
		if !ok {
			lang = parse.DetectLanguage(hit.Title)
		}
		candidates = append(candidates, candidate{
			hit:      hit,
			groupKey: normalize.GroupKey(hit.Title),
			language: lang,
		})
	}
	return candidates
}

// PreviewItem is a read-only view of a filtered, sorted candidate,
// returned by Preview for a UI to show before committing to a download
// (spec §6 EXPANSION "search only, no submission").
type PreviewItem struct {
	Title           string     `json:"title"`
	URL             string     `json:"url"`
	Provider        string     `json:"provider"`
	Language        string     `json:"language"`
	PublicationDate *time.Time `json:"publication_date,omitempty"`
}

// Preview runs steps 1–5 of spec §4.4 (load, search, filter, sort) for
// trackingID without submitting anything or writing audit rows.
func (o *Orchestrator) Preview(ctx context.Context, trackingID uuid.UUID) ([]PreviewItem, error) {
	track, err := o.tracking.GetByID(trackingID)
	if err != nil {
		return nil, fmt.Errorf("load tracking record: %w", err)
	}

	candidates := o.searchCandidates(ctx, track)
	kept, _, err := o.applyFilters(track, candidates)
	if err != nil {
		return nil, fmt.Errorf("apply filters: %w", err)
	}
	sortCandidates(kept)

	items := make([]PreviewItem, 0, len(kept))
	for _, c := range kept {
		items = append(items, PreviewItem{
			Title:           c.hit.Title,
			URL:             c.hit.URL,
			Provider:        c.hit.ProviderName,
			Language:        c.language,
			PublicationDate: c.hit.PublicationDate,
		})
	}
	return items, nil
}

// Run executes the full 8-step algorithm for trackingID (spec §4.4).
func (o *Orchestrator) Run(ctx context.Context, trackingID uuid.UUID) (Result, error) {
	var result Result

	// Step 1: load the tracking record.
	track, err := o.tracking.GetByID(trackingID)
	if err != nil {
		return result, fmt.Errorf("load tracking record: %w", err)
	}

	// Steps 2–3: search every provider and compute group keys.
	candidates := o.searchCandidates(ctx, track)

	// Step 4: filters, in order.
	kept, skippedDuplicates, err := o.applyFilters(track, candidates)
	if err != nil {
		return result, fmt.Errorf("apply filters: %w", err)
	}

	// Step 5: stable sort by language preference, then alphabetical,
	// then publication date descending.
	sortCandidates(kept)

	// Step 6: batch cap.
	if len(kept) > o.maxPerBatch {
		kept = kept[:o.maxPerBatch]
	}

	// Step 7: submit each kept candidate.
	for _, c := range kept {
		if err := o.submitOne(ctx, track, c); err != nil {
			result.Failed++
			log.Printf("orchestrator: submit failed for %q: %v", c.hit.Title, err)
			continue
		}
		result.Submitted++
	}

	// Step 8: audit rows for filtered duplicates.
	for _, c := range skippedDuplicates {
		o.recordSkipped(track, c)
		result.Skipped++
	}

	return result, nil
}

// applyFilters runs the bad-file, already-submitted, and tracking-mode
// filters in order (spec §4.4 step 4), returning what survives and what
// was dropped as a duplicate (for the step-8 audit trail). Bad-file
// drops are silently excluded per spec — they are not "duplicates".
func (o *Orchestrator) applyFilters(track *models.TrackingRecord, candidates []candidate) (kept, duplicates []candidate, err error) {
	for _, c := range candidates {
		isBad, err := o.checker.IsBadFile(track.ID, c.hit.URL)
		if err != nil {
			return nil, nil, err
		}
		if isBad {
			continue
		}

		alreadySubmitted, err := o.checker.AlreadySubmitted(track.ID, c.groupKey)
		if err != nil {
			return nil, nil, err
		}
		if alreadySubmitted {
			duplicates = append(duplicates, c)
			continue
		}

		if !o.passesTrackingMode(track, c) {
			continue
		}

		kept = append(kept, c)
	}
	return kept, duplicates, nil
}

func (o *Orchestrator) passesTrackingMode(track *models.TrackingRecord, c candidate) bool {
	switch track.Mode() {
	case models.TrackingModeAllEditions:
		return o.passesYearFilter(track, c)
	case models.TrackingModeNewOnly:
		newest, ok, err := o.checker.NewestSubmissionDate(track.ID)
		if err != nil {
			log.Printf("orchestrator: newest submission lookup failed: %v", err)
			return false
		}
		if ok && c.hit.PublicationDate != nil && c.hit.PublicationDate.Before(newest) {
			return false
		}
		return o.passesYearFilter(track, c)
	default:
		editionID, _ := tagged.Decode(c.hit.RawMetadata).EditionID()
		if editionID == "" {
			editionID = o.matchEditionByTitle(track, c)
		}
		if editionID == "" {
			return false
		}
		if !track.SelectedEditions[editionID] {
			return false
		}
		return o.passesYearFilter(track, c)
	}
}

// matchEditionByTitle resolves an edition id by fuzzy-matching the
// result's title against tracking.Metadata.editions when raw_metadata
// carries no explicit olid/edition_id (spec §4.4 step 4, "neither" mode
// fallback). Each entry in the editions list is expected to carry "id"
// and "title" keys.
func (o *Orchestrator) matchEditionByTitle(track *models.TrackingRecord, c candidate) string {
	editions, ok := tagged.Decode(track.Metadata).Editions()
	if !ok {
		return ""
	}
	for _, raw := range editions {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		editionTagged := tagged.Map(entry)
		title, ok := editionTagged.String("title")
		if !ok {
			continue
		}
		if !normalize.Matches(c.hit.Title, title, o.fuzzyThreshold) {
			continue
		}
		if id, ok := editionTagged.String("id", "olid", "edition_id"); ok {
			return id
		}
	}
	return ""
}

func (o *Orchestrator) passesYearFilter(track *models.TrackingRecord, c candidate) bool {
	if len(track.SelectedYears) == 0 {
		return true
	}
	if c.hit.PublicationDate == nil {
		return false
	}
	year := c.hit.PublicationDate.Year()
	for _, y := range track.SelectedYears {
		if y == year {
			return true
		}
	}
	return false
}

// sortCandidates applies spec §4.4 step 5: English first, then other
// languages alphabetically, then publication date descending.
func sortCandidates(candidates []candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		aEnglish := a.language == "English"
		bEnglish := b.language == "English"
		if aEnglish != bEnglish {
			return aEnglish
		}
		if !aEnglish && a.language != b.language {
			return a.language < b.language
		}
		switch {
		case a.hit.PublicationDate == nil && b.hit.PublicationDate == nil:
			return false
		case a.hit.PublicationDate == nil:
			return false
		case b.hit.PublicationDate == nil:
			return true
		default:
			return a.hit.PublicationDate.After(*b.hit.PublicationDate)
		}
	})
}

func (o *Orchestrator) submitOne(ctx context.Context, track *models.TrackingRecord, c candidate) error {
	sr := &models.SearchResult{
		TrackingID:        track.ID,
		Provider:          c.hit.ProviderName,
		Query:             track.Title,
		Title:             c.hit.Title,
		URL:               c.hit.URL,
		PublicationDate:   c.hit.PublicationDate,
		RawMetadata:       c.hit.RawMetadata,
		FuzzyMatchGroupID: c.groupKey,
	}
	if err := o.searchResults.Create(sr); err != nil {
		log.Printf("orchestrator: persisting search result failed (continuing): %v", err)
	}

	submission := &models.Submission{
		TrackingID:      track.ID,
		SourceURL:       c.hit.URL,
		ResultTitle:      c.hit.Title,
		FuzzyMatchGroup: c.groupKey,
		ClientName:      o.downloadClient.Name(),
		AttemptCount:    1,
	}
	if sr.ID != uuid.Nil {
		submission.SearchResultID = &sr.ID
	}

	jobID, ok, err := o.downloadClient.Submit(ctx, c.hit.URL, c.hit.Title)
	switch {
	case err != nil:
		msg := err.Error()
		submission.State = models.SubmissionFailed
		submission.LastError = &msg
	case !ok:
		msg := "Client rejected submission"
		submission.State = models.SubmissionFailed
		submission.LastError = &msg
	default:
		submission.State = models.SubmissionPending
		submission.JobID = &jobID
	}

	return o.submissions.Create(submission)
}

func (o *Orchestrator) recordSkipped(track *models.TrackingRecord, c candidate) {
	submission := &models.Submission{
		TrackingID:      track.ID,
		State:           models.SubmissionSkipped,
		SourceURL:       c.hit.URL,
		ResultTitle:     c.hit.Title,
		FuzzyMatchGroup: c.groupKey,
		AttemptCount:    1,
	}
	if err := o.submissions.Create(submission); err != nil {
		log.Printf("orchestrator: recording skipped submission failed: %v", err)
	}
}
