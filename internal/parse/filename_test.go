package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseFilenameTitleMonAbbrYear(t *testing.T) {
	p := ParseFilename("Wired Magazine - Dec2006")
	assert.Equal(t, "Wired Magazine", p.Title)
	assert.True(t, p.HasDate)
	assert.Equal(t, time.December, p.IssueDate.Month())
	assert.Equal(t, 2006, p.Year)
	assert.Equal(t, "title_monabbr_year", p.MatchedPattern)
	assert.Equal(t, ConfidenceHigh, p.Confidence)
}

func TestParseFilenameDotMonthYear(t *testing.T) {
	p := ParseFilename("Wired.Jan.2024")
	assert.Equal(t, "Wired", p.Title)
	assert.Equal(t, time.January, p.IssueDate.Month())
	assert.Equal(t, 2024, p.Year)
}

func TestParseFilenameMonthYearSpaced(t *testing.T) {
	p := ParseFilename("National Geographic January 2024")
	assert.Equal(t, "National Geographic", p.Title)
	assert.Equal(t, time.January, p.IssueDate.Month())
}

func TestParseFilenameYearMonth(t *testing.T) {
	p := ParseFilename("PC Gamer 2024-12")
	assert.Equal(t, "PC Gamer", p.Title)
	assert.Equal(t, time.December, p.IssueDate.Month())
	assert.Equal(t, 2024, p.Year)
}

func TestParseFilenameDateOnlyCompact(t *testing.T) {
	p := ParseFilename("Apr2001")
	assert.Equal(t, "", p.Title)
	assert.Equal(t, time.April, p.IssueDate.Month())
	assert.Equal(t, ConfidenceMedium, p.Confidence)
}

func TestParseFilenameYearOnly(t *testing.T) {
	p := ParseFilename("2015")
	assert.Equal(t, 2015, p.Year)
	assert.Equal(t, "year_only", p.MatchedPattern)
}

func TestParseFilenameFallback(t *testing.T) {
	p := ParseFilename("somefile")
	assert.Equal(t, "somefile", p.Title)
	assert.Equal(t, ConfidenceLow, p.Confidence)
}

func TestParseFilenameSpecialEdition(t *testing.T) {
	p := ParseFilename("Wired Annual - Dec2006")
	assert.True(t, p.IsSpecialEdition)
}

func TestIsPlausibleYear(t *testing.T) {
	assert.True(t, isPlausibleYear("2001"))
	assert.False(t, isPlausibleYear("2600"))
	assert.False(t, isPlausibleYear("abcd"))
}

func TestTitleFromDirectoryWalk(t *testing.T) {
	title, ok := TitleFromDirectoryWalk("/downloads/2600/2001/Apr2001.pdf")
	assert.True(t, ok)
	assert.Equal(t, "2600", title)
}

func TestParseFileCombinesDirectoryWalk(t *testing.T) {
	m := ParseFile("/data/_Magazines/National Geographic/2023/Dec2023.pdf")
	assert.Equal(t, "National Geographic", m.Title)
}

func TestParseFileLanguageDetection(t *testing.T) {
	m := ParseFile("/downloads/Wired.GERMAN.Dec2023.pdf")
	assert.Equal(t, "German", m.Language)
}

func TestParseFileDefaultLanguage(t *testing.T) {
	m := ParseFile("/downloads/Wired - Dec2023.pdf")
	assert.Equal(t, "English", m.Language)
}
