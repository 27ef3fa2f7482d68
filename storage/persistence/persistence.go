package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kylycht/fxpad/storage"
)

// schema of the blob table, applied by EnsureSchema
const schemaQuery = `CREATE TABLE IF NOT EXISTS fx_blob (
					key        TEXT PRIMARY KEY,
					body       TEXT NOT NULL,
					updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
				 )`

type Persistence struct {
	dbConn *sql.DB
}

func New(dbConn *sql.DB) *Persistence {
	return &Persistence{
		dbConn: dbConn,
	}
}

// EnsureSchema creates the blob table when missing
func (p *Persistence) EnsureSchema(ctx context.Context) error {
	_, err := p.dbConn.ExecContext(ctx, schemaQuery)
	return err
}

// ReadText implements storage.BlobStore.
func (p *Persistence) ReadText(ctx context.Context, key string) (string, error) {
	readQuery := `SELECT body
				 FROM fx_blob
				 WHERE key=$1`

	var body string
	err := p.dbConn.QueryRowContext(ctx, readQuery, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", err
	}

	return body, nil
}

// WriteText implements storage.BlobStore.
// A single upsert statement replaces the row atomically.
func (p *Persistence) WriteText(ctx context.Context, key, text string) error {
	writeQuery := `INSERT INTO fx_blob (key, body, updated_at)
				  VALUES ($1, $2, now())
				  ON CONFLICT (key) DO UPDATE
				  SET body=EXCLUDED.body, updated_at=EXCLUDED.updated_at`

	_, err := p.dbConn.ExecContext(ctx, writeQuery, key, text)
	return err
}

// Delete implements storage.BlobStore.
func (p *Persistence) Delete(ctx context.Context, key string) error {
	_, err := p.dbConn.ExecContext(ctx, `DELETE FROM fx_blob WHERE key=$1`, key)
	return err
}

// Exists implements storage.BlobStore.
func (p *Persistence) Exists(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := p.dbConn.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM fx_blob WHERE key=$1)`, key).Scan(&exists)
	return exists, err
}
