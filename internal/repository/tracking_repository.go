package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/periodiq/periodiq/internal/models"
)

type TrackingRepository struct {
	db *sql.DB
}

func NewTrackingRepository(db *sql.DB) *TrackingRepository {
	return &TrackingRepository{db: db}
}

const trackingColumns = `id, olid, title, publisher, issn, first_publish_year,
	total_editions_known, language, category, track_all_editions, track_new_only,
	selected_editions, selected_years, delete_from_client_on_completion,
	periodical_metadata, created_at, updated_at`

func scanTracking(row interface{ Scan(dest ...interface{}) error }) (*models.TrackingRecord, error) {
	t := &models.TrackingRecord{}
	var selectedEditions, selectedYears []byte
	err := row.Scan(
		&t.ID, &t.OLID, &t.Title, &t.Publisher, &t.ISSN, &t.FirstPublishYear,
		&t.TotalEditionsKnown, &t.Language, &t.Category, &t.ModeAllEditions, &t.ModeNewOnly,
		&selectedEditions, &selectedYears, &t.DeleteFromClientOnCompletion,
		&t.Metadata, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(selectedEditions) > 0 {
		_ = json.Unmarshal(selectedEditions, &t.SelectedEditions)
	}
	if len(selectedYears) > 0 {
		_ = json.Unmarshal(selectedYears, &t.SelectedYears)
	}
	return t, nil
}

func (r *TrackingRepository) Create(t *models.TrackingRecord) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	selectedEditions, err := json.Marshal(t.SelectedEditions)
	if err != nil {
		return fmt.Errorf("marshal selected_editions: %w", err)
	}
	selectedYears, err := json.Marshal(t.SelectedYears)
	if err != nil {
		return fmt.Errorf("marshal selected_years: %w", err)
	}
	if len(t.Metadata) == 0 {
		t.Metadata = json.RawMessage(`{}`)
	}

	query := `
		INSERT INTO tracking_records (id, olid, title, publisher, issn, first_publish_year,
			total_editions_known, language, category, track_all_editions, track_new_only,
			selected_editions, selected_years, delete_from_client_on_completion, periodical_metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at`

	return r.db.QueryRow(query, t.ID, t.OLID, t.Title, t.Publisher, t.ISSN, t.FirstPublishYear,
		t.TotalEditionsKnown, t.Language, t.Category, t.ModeAllEditions, t.ModeNewOnly,
		selectedEditions, selectedYears, t.DeleteFromClientOnCompletion, t.Metadata).
		Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (r *TrackingRepository) GetByID(id uuid.UUID) (*models.TrackingRecord, error) {
	query := `SELECT ` + trackingColumns + ` FROM tracking_records WHERE id = $1`
	t, err := scanTracking(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("tracking record not found")
	}
	return t, err
}

func (r *TrackingRepository) List() ([]*models.TrackingRecord, error) {
	query := `SELECT ` + trackingColumns + ` FROM tracking_records ORDER BY created_at DESC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*models.TrackingRecord{}
	for rows.Next() {
		t, err := scanTracking(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, t)
	}
	return records, rows.Err()
}

func (r *TrackingRepository) Update(t *models.TrackingRecord) error {
	selectedEditions, err := json.Marshal(t.SelectedEditions)
	if err != nil {
		return fmt.Errorf("marshal selected_editions: %w", err)
	}
	selectedYears, err := json.Marshal(t.SelectedYears)
	if err != nil {
		return fmt.Errorf("marshal selected_years: %w", err)
	}

	query := `
		UPDATE tracking_records SET
			title = $2, publisher = $3, issn = $4, first_publish_year = $5,
			total_editions_known = $6, language = $7, category = $8,
			track_all_editions = $9, track_new_only = $10,
			selected_editions = $11, selected_years = $12,
			delete_from_client_on_completion = $13, periodical_metadata = $14,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	return r.db.QueryRow(query, t.ID, t.Title, t.Publisher, t.ISSN, t.FirstPublishYear,
		t.TotalEditionsKnown, t.Language, t.Category, t.ModeAllEditions, t.ModeNewOnly,
		selectedEditions, selectedYears, t.DeleteFromClientOnCompletion, t.Metadata).
		Scan(&t.UpdatedAt)
}

func (r *TrackingRepository) Delete(id uuid.UUID) error {
	_, err := r.db.Exec(`DELETE FROM tracking_records WHERE id = $1`, id)
	return err
}

// DueForAutoDownload returns tracking records eligible for the
// scheduler's auto_download task: everything that isn't explicitly
// tracking-mode "none" (spec §4.4 step 1).
func (r *TrackingRepository) DueForAutoDownload() ([]*models.TrackingRecord, error) {
	query := `SELECT ` + trackingColumns + ` FROM tracking_records
		WHERE track_all_editions = TRUE OR track_new_only = TRUE
		   OR selected_editions != '{}' OR selected_years != '[]'
		ORDER BY created_at ASC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*models.TrackingRecord{}
	for rows.Next() {
		t, err := scanTracking(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, t)
	}
	return records, rows.Err()
}
