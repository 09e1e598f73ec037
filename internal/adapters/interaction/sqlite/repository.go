package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"3tcapital/biohoneypot/internal/core/interaction"
)

// Repository archives interaction records in a local SQLite file. Like the
// PostgreSQL archive it is write-only.
type Repository struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (or creates) the database at path and prepares the schema.
func Open(path string, log *slog.Logger) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite archive: %w", err)
	}
	// One writer at a time; the forwarder workers queue on the pool.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL; PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure sqlite archive: %w", err)
	}

	repo := &Repository{db: db, log: log}
	if err := repo.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize sqlite schema: %w", err)
	}
	return repo, nil
}

func (r *Repository) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS honeypot_interaction (
			id TEXT PRIMARY KEY,
			captured_at TEXT NOT NULL,
			endpoint TEXT NOT NULL,
			method TEXT NOT NULL,
			source_address TEXT NOT NULL,
			headers TEXT NOT NULL,
			body TEXT,
			user_agent TEXT NOT NULL,
			token_claims TEXT,
			archived_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_honeypot_interaction_source ON honeypot_interaction(source_address, captured_at)`,
		`CREATE INDEX IF NOT EXISTS idx_honeypot_interaction_captured_at ON honeypot_interaction(captured_at)`,
	}
	for _, stmt := range statements {
		if _, err := r.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Save persists rec. Saving the same ID twice keeps the first copy.
func (r *Repository) Save(ctx context.Context, rec interaction.Record) error {
	headersJSON, err := json.Marshal(rec.Headers)
	if err != nil {
		return fmt.Errorf("marshal headers: %w", err)
	}
	bodyJSON, err := json.Marshal(rec.Body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}

	var claims sql.NullString
	if len(rec.TokenClaims) > 0 {
		raw, err := json.Marshal(rec.TokenClaims)
		if err != nil {
			return fmt.Errorf("marshal token claims: %w", err)
		}
		claims = sql.NullString{String: string(raw), Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO honeypot_interaction (
			id, captured_at, endpoint, method, source_address,
			headers, body, user_agent, token_claims, archived_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Timestamp.UTC().Format(time.RFC3339Nano),
		rec.Endpoint,
		rec.Method,
		rec.SourceAddress,
		string(headersJSON),
		string(bodyJSON),
		rec.UserAgent,
		claims,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}

	if r.log != nil {
		r.log.Debug("interaction archived",
			"interaction_id", rec.ID,
			"endpoint", rec.Endpoint,
			"archive", "sqlite",
		)
	}
	return nil
}

// Close releases the database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

var _ interaction.Sink = (*Repository)(nil)
