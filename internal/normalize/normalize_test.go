package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"Wired.Magazine.GERMAN.No.12.2023.EBOOK-LORENZ-xpost",
		"NationalGeographic.2023-03.PDF",
		"PCGamer_UNPACK_Issue.44",
		"2600",
	}
	for _, in := range inputs {
		once := Clean(in)
		twice := Clean(once)
		assert.Equal(t, once, twice, "Clean must be idempotent for %q", in)
	}
}

func TestCleanOverrideTable(t *testing.T) {
	assert.Equal(t, "PC Gamer", Clean("pcgamer.No.44.2023"))
	assert.Equal(t, "2600", Clean("2600"))
	assert.Equal(t, "Wired", Clean("WIRED.MAGAZINE"))
}

func TestGroupKeyMonthEquality(t *testing.T) {
	assert.Equal(t, GroupKey("Wired December 2023"), GroupKey("Wired Dec 2023"))
}

func TestSimilarityIdentical(t *testing.T) {
	assert.Equal(t, 100, Similarity("Wired Magazine", "Wired Magazine"))
}

func TestSimilarityTokenSetOrderInsensitive(t *testing.T) {
	a := Similarity("National Geographic March", "March National Geographic")
	assert.Equal(t, 100, a)
}

func TestMatchesThreshold(t *testing.T) {
	assert.True(t, Matches("Wired Magazine December 2023", "Wired Magazine - Dec 2023", 60))
	assert.False(t, Matches("Wired Magazine", "Popular Science", 80))
}
