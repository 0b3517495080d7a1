// Package exports records generated audit files.
package exports

import (
	"context"
	"time"
)

// Status of a recorded export.
type Status string

const (
	StatusGenerated Status = "generated"
	StatusFailed    Status = "failed"
)

// Record is what the generator hands to a Sink after serializing a document.
type Record struct {
	TenantID    string
	PeriodFrom  time.Time
	PeriodTo    time.Time
	GeneratedAt time.Time
	Status      Status
	FileContent []byte
}

// Sink persists export records and assigns their IDs.
type Sink interface {
	Save(ctx context.Context, rec Record) (string, error)
}

// Discard is a Sink that keeps nothing and assigns no IDs.
type Discard struct{}

func (Discard) Save(context.Context, Record) (string, error) { return "", nil }
