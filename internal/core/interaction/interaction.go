package interaction

import (
	"context"
	"time"
)

// UnknownUserAgent is recorded when the request carries no User-Agent header.
const UnknownUserAgent = "Unknown"

// Record is one captured inbound request. Records are never modified once
// they have been appended to a Store.
type Record struct {
	ID            string            `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	Endpoint      string            `json:"endpoint"`
	Method        string            `json:"method"`
	SourceAddress string            `json:"source_address"`
	Headers       map[string]string `json:"headers"`
	Body          any               `json:"body"`
	UserAgent     string            `json:"user_agent"`
	TokenClaims   map[string]any    `json:"token_claims,omitempty"`
}

// Stats summarises the store contents at query time.
type Stats struct {
	TotalInteractions     int            `json:"total_interactions"`
	UniqueIPs             int            `json:"unique_ips"`
	MostAccessedEndpoints map[string]int `json:"most_accessed_endpoints"`
	RecentActivity        int            `json:"recent_activity"`
}

// Store holds captured records in insertion order.
type Store interface {
	// Append stamps the record with the capture time and stores it.
	// The stored copy is returned.
	Append(ctx context.Context, rec Record) (Record, error)

	// Recent returns at most limit records, oldest first.
	Recent(ctx context.Context, limit int) ([]Record, error)

	// Snapshot returns every record currently held, oldest first.
	Snapshot(ctx context.Context) ([]Record, error)

	// Len reports the number of records currently held.
	Len() int
}

// Sink receives records for storage outside the process.
type Sink interface {
	Save(ctx context.Context, rec Record) error
}
