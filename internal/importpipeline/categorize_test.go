package importpipeline

import (
	"testing"

	"github.com/periodiq/periodiq/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCategorizeComics(t *testing.T) {
	assert.Equal(t, models.CategoryComics, Categorize("Amazing Spider-Man Comic"))
}

func TestCategorizeNews(t *testing.T) {
	assert.Equal(t, models.CategoryNews, Categorize("Daily Tribune Newspaper"))
}

func TestCategorizeArticles(t *testing.T) {
	assert.Equal(t, models.CategoryArticles, Categorize("Harvard Business Journal"))
}

func TestCategorizeDefaultsToMagazines(t *testing.T) {
	assert.Equal(t, models.CategoryMagazines, Categorize("National Geographic"))
}
