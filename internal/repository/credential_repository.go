package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/periodiq/periodiq/internal/models"
)

// CredentialRepository backs the single-row credential store (spec §1,
// §4 [EXPANSION]): there is never more than one Credential row.
type CredentialRepository struct {
	db *sql.DB
}

func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

const credentialColumns = `id, username, password_hash, created_at, updated_at`

func scanCredential(row interface{ Scan(dest ...interface{}) error }) (*models.Credential, error) {
	c := &models.Credential{}
	err := row.Scan(&c.ID, &c.Username, &c.PasswordHash, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Get returns the single credential row, or a "credential not configured"
// error if setup has not run yet.
func (r *CredentialRepository) Get() (*models.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials LIMIT 1`
	c, err := scanCredential(r.db.QueryRow(query))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("credential not configured")
	}
	return c, err
}

// Upsert replaces the single credential row, used both for first-run
// setup and for password changes.
func (r *CredentialRepository) Upsert(c *models.Credential) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err := r.db.Exec(`DELETE FROM credentials`)
	if err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	query := `
		INSERT INTO credentials (id, username, password_hash)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`
	return r.db.QueryRow(query, c.ID, c.Username, c.PasswordHash).Scan(&c.CreatedAt, &c.UpdatedAt)
}
