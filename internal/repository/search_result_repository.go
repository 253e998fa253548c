package repository

import (
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/periodiq/periodiq/internal/models"
)

type SearchResultRepository struct {
	db *sql.DB
}

func NewSearchResultRepository(db *sql.DB) *SearchResultRepository {
	return &SearchResultRepository{db: db}
}

const searchResultColumns = `id, tracking_id, provider, query, title, url,
	publication_date, raw_metadata, fuzzy_match_group_id, created_at`

func scanSearchResult(row interface{ Scan(dest ...interface{}) error }) (*models.SearchResult, error) {
	sr := &models.SearchResult{}
	err := row.Scan(
		&sr.ID, &sr.TrackingID, &sr.Provider, &sr.Query, &sr.Title, &sr.URL,
		&sr.PublicationDate, &sr.RawMetadata, &sr.FuzzyMatchGroupID, &sr.CreatedAt,
	)
	return sr, err
}

func (r *SearchResultRepository) Create(sr *models.SearchResult) error {
	if sr.ID == uuid.Nil {
		sr.ID = uuid.New()
	}
	if len(sr.RawMetadata) == 0 {
		sr.RawMetadata = json.RawMessage(`{}`)
	}

	query := `
		INSERT INTO search_results (id, tracking_id, provider, query, title, url,
			publication_date, raw_metadata, fuzzy_match_group_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`

	return r.db.QueryRow(query, sr.ID, sr.TrackingID, sr.Provider, sr.Query, sr.Title, sr.URL,
		sr.PublicationDate, sr.RawMetadata, sr.FuzzyMatchGroupID).
		Scan(&sr.CreatedAt)
}

func (r *SearchResultRepository) GetByID(id uuid.UUID) (*models.SearchResult, error) {
	query := `SELECT ` + searchResultColumns + ` FROM search_results WHERE id = $1`
	return scanSearchResult(r.db.QueryRow(query, id))
}

// ByFuzzyGroup returns every SearchResult sharing a fuzzy-match group key
// for a given tracking record. The Orchestrator's dedup check does not
// use it; that check queries submissions through
// SubmissionRepository.ExistsForGroupInStates.
func (r *SearchResultRepository) ByFuzzyGroup(trackingID uuid.UUID, groupKey string) ([]*models.SearchResult, error) {
	query := `SELECT ` + searchResultColumns + ` FROM search_results
		WHERE tracking_id = $1 AND fuzzy_match_group_id = $2`
	rows, err := r.db.Query(query, trackingID, groupKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []*models.SearchResult{}
	for rows.Next() {
		sr, err := scanSearchResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, sr)
	}
	return results, rows.Err()
}
