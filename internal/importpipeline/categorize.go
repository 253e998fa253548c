package importpipeline

import (
	"strings"

	"github.com/periodiq/periodiq/internal/models"
)

// categoryKeywords is the ordered keyword map from spec §4.6 step 5;
// the first matching category wins, Magazines is the default.
var categoryKeywords = []struct {
	category models.Category
	keywords []string
}{
	{models.CategoryComics, []string{"comic", "comics", "manga", "graphic novel"}},
	{models.CategoryNews, []string{"newspaper", "news", "gazette", "tribune", "herald"}},
	{models.CategoryArticles, []string{"digest", "journal", "bulletin", "newsletter"}},
}

// Categorize matches title against the ordered category-keyword map,
// defaulting to Magazines.
func Categorize(title string) models.Category {
	lower := strings.ToLower(title)
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.category
			}
		}
	}
	return models.CategoryMagazines
}
