package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"3tcapital/biohoneypot/internal/core/interaction"
)

// Repository archives interaction records in PostgreSQL. It is write-only:
// the in-memory store is never rebuilt from it.
type Repository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewRepository creates a PostgreSQL interaction archive.
func NewRepository(pool *pgxpool.Pool, log *slog.Logger) *Repository {
	return &Repository{pool: pool, log: log}
}

const insertInteraction = `
	INSERT INTO honeypot_interaction (
		id, captured_at, endpoint, method, source_address,
		headers, body, user_agent, token_claims
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (id) DO NOTHING
`

// Save persists rec.
func (r *Repository) Save(ctx context.Context, rec interaction.Record) error {
	headersJSON, err := json.Marshal(rec.Headers)
	if err != nil {
		return fmt.Errorf("marshal headers: %w", err)
	}
	bodyJSON, err := json.Marshal(rec.Body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}

	var claimsJSON []byte
	if len(rec.TokenClaims) > 0 {
		claimsJSON, err = json.Marshal(rec.TokenClaims)
		if err != nil {
			return fmt.Errorf("marshal token claims: %w", err)
		}
	}

	_, err = r.pool.Exec(ctx, insertInteraction,
		rec.ID,
		rec.Timestamp,
		rec.Endpoint,
		rec.Method,
		rec.SourceAddress,
		headersJSON,
		bodyJSON,
		rec.UserAgent,
		claimsJSON,
	)
	if err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}

	if r.log != nil {
		r.log.Debug("interaction archived",
			"interaction_id", rec.ID,
			"endpoint", rec.Endpoint,
			"source_address", rec.SourceAddress,
		)
	}
	return nil
}

var _ interaction.Sink = (*Repository)(nil)
