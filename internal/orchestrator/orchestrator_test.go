package orchestrator

import (
	"testing"
	"time"

	"github.com/periodiq/periodiq/internal/providers"
	"github.com/stretchr/testify/assert"
)

func TestSortCandidatesEnglishFirst(t *testing.T) {
	older := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

	candidates := []candidate{
		{hit: providers.SearchHit{Title: "Wired German", PublicationDate: &newer}, language: "German"},
		{hit: providers.SearchHit{Title: "Wired English", PublicationDate: &older}, language: "English"},
	}

	sortCandidates(candidates)

	assert.Equal(t, "Wired English", candidates[0].hit.Title)
	assert.Equal(t, "Wired German", candidates[1].hit.Title)
}

func TestSortCandidatesDateDescendingWithinLanguage(t *testing.T) {
	older := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

	candidates := []candidate{
		{hit: providers.SearchHit{Title: "Older", PublicationDate: &older}, language: "English"},
		{hit: providers.SearchHit{Title: "Newer", PublicationDate: &newer}, language: "English"},
	}

	sortCandidates(candidates)

	assert.Equal(t, "Newer", candidates[0].hit.Title)
	assert.Equal(t, "Older", candidates[1].hit.Title)
}

func TestSortCandidatesAlphabeticalAmongNonEnglish(t *testing.T) {
	candidates := []candidate{
		{hit: providers.SearchHit{Title: "Z"}, language: "Spanish", groupKey: "z"},
		{hit: providers.SearchHit{Title: "A"}, language: "French", groupKey: "a"},
	}
	sortCandidates(candidates)
	assert.Equal(t, "French", candidates[0].language)
	assert.Equal(t, "Spanish", candidates[1].language)
}
