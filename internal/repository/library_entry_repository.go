package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/periodiq/periodiq/internal/models"
)

type LibraryEntryRepository struct {
	db *sql.DB
}

func NewLibraryEntryRepository(db *sql.DB) *LibraryEntryRepository {
	return &LibraryEntryRepository{db: db}
}

const libraryEntryColumns = `id, title, language, publisher, issn, issue_date,
	file_path, cover_path, extra_metadata, created_at, updated_at`

func scanLibraryEntry(row interface{ Scan(dest ...interface{}) error }) (*models.LibraryEntry, error) {
	e := &models.LibraryEntry{}
	err := row.Scan(
		&e.ID, &e.Title, &e.Language, &e.Publisher, &e.ISSN, &e.IssueDate,
		&e.FilePath, &e.CoverPath, &e.ExtraMetadata, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

func (r *LibraryEntryRepository) Create(e *models.LibraryEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if len(e.ExtraMetadata) == 0 {
		e.ExtraMetadata = json.RawMessage(`{}`)
	}
	query := `
		INSERT INTO library_entries (id, title, language, publisher, issn, issue_date,
			file_path, cover_path, extra_metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`
	return r.db.QueryRow(query, e.ID, e.Title, e.Language, e.Publisher, e.ISSN, e.IssueDate,
		e.FilePath, e.CoverPath, e.ExtraMetadata).
		Scan(&e.CreatedAt, &e.UpdatedAt)
}

// CreateTx is Create run within an existing transaction, used by
// internal/importpipeline to commit the new LibraryEntry in the same
// sql.Tx as the Submission's file_path=null write (spec §9).
func (r *LibraryEntryRepository) CreateTx(tx *sql.Tx, e *models.LibraryEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if len(e.ExtraMetadata) == 0 {
		e.ExtraMetadata = json.RawMessage(`{}`)
	}
	query := `
		INSERT INTO library_entries (id, title, language, publisher, issn, issue_date,
			file_path, cover_path, extra_metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`
	return tx.QueryRow(query, e.ID, e.Title, e.Language, e.Publisher, e.ISSN, e.IssueDate,
		e.FilePath, e.CoverPath, e.ExtraMetadata).
		Scan(&e.CreatedAt, &e.UpdatedAt)
}

func (r *LibraryEntryRepository) GetByID(id uuid.UUID) (*models.LibraryEntry, error) {
	query := `SELECT ` + libraryEntryColumns + ` FROM library_entries WHERE id = $1`
	e, err := scanLibraryEntry(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("library entry not found")
	}
	return e, err
}

// SetCoverPath updates only the cover_path column, used by
// internal/covercleanup to clear a missing reference.
func (r *LibraryEntryRepository) SetCoverPath(id uuid.UUID, coverPath *string) error {
	_, err := r.db.Exec(`UPDATE library_entries SET cover_path = $2, updated_at = NOW() WHERE id = $1`, id, coverPath)
	return err
}

// List filters by title substring, category, and/or language for the
// library read-model endpoint; any filter left empty is ignored.
func (r *LibraryEntryRepository) List(titleFilter, category, language string) ([]*models.LibraryEntry, error) {
	query := `SELECT ` + libraryEntryColumns + ` FROM library_entries WHERE 1=1`
	args := []any{}
	if titleFilter != "" {
		args = append(args, "%"+titleFilter+"%")
		query += fmt.Sprintf(" AND title ILIKE $%d", len(args))
	}
	if category != "" {
		args = append(args, category)
		query += fmt.Sprintf(" AND extra_metadata->>'category' = $%d", len(args))
	}
	if language != "" {
		args = append(args, language)
		query += fmt.Sprintf(" AND language = $%d", len(args))
	}
	query += " ORDER BY issue_date DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*models.LibraryEntry{}
	for rows.Next() {
		e, err := scanLibraryEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ByFuzzyTitleCandidates returns every entry for a rough date window,
// narrowed further in Go by internal/normalize.Similarity — the
// duplicate check in the Import Pipeline is fuzzy, not exact (spec §4.6
// step 3), and category-agnostic: spec §8.1's duplicate invariant scopes
// a match by title and date proximity alone, since the same periodical
// can categorize differently across two imports.
func (r *LibraryEntryRepository) ByFuzzyTitleCandidates(dateFrom, dateTo string) ([]*models.LibraryEntry, error) {
	query := `SELECT ` + libraryEntryColumns + ` FROM library_entries
		WHERE issue_date BETWEEN $1 AND $2`
	rows, err := r.db.Query(query, dateFrom, dateTo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*models.LibraryEntry{}
	for rows.Next() {
		e, err := scanLibraryEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AllCoverPaths returns every non-null cover_path, used by
// internal/covercleanup to find orphaned files on disk.
func (r *LibraryEntryRepository) AllCoverPaths() ([]string, error) {
	rows, err := r.db.Query(`SELECT cover_path FROM library_entries WHERE cover_path IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	paths := []string{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}
