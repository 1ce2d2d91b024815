// Package export runs asynchronous dashboard exports: a query result is
// materialized in one or more formats, stored as blob artifacts and tracked
// through an export record with an audit trail.
package export

import (
	"context"
	"errors"
	"time"

	"launchdash/internal/launch"
)

// Status describes the lifecycle stage of an export request.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Terminal reports whether no further transitions follow s.
func (s Status) Terminal() bool { return s == StatusSucceeded || s == StatusFailed }

// Query names the dashboard query an export materializes.
type Query string

const (
	QueryOutcomes        Query = "outcomes"
	QueryPayloadOutcomes Query = "payload-outcomes"
)

// Format is an artifact encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
	FormatPNG  Format = "png"
)

var (
	// ErrNotFound is returned for an unknown export id.
	ErrNotFound = errors.New("export not found")
	// ErrQueueFull is returned when the worker cannot accept more requests.
	ErrQueueFull = errors.New("export queue full")
	// ErrStopped is returned once the worker has been stopped; it is also the
	// failure reason of exports left in the queue at shutdown.
	ErrStopped = errors.New("export worker stopped")
	// ErrInvalidRequest wraps synchronous validation failures.
	ErrInvalidRequest = errors.New("invalid export request")
)

// Artifact is one stored rendering of an export.
type Artifact struct {
	ID          string         `json:"id"`
	Format      Format         `json:"format"`
	ContentType string         `json:"content_type"`
	SizeBytes   int64          `json:"size_bytes"`
	Key         string         `json:"key"`
	URL         string         `json:"url,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Record tracks an export request and its artifacts.
type Record struct {
	ID          string              `json:"id"`
	Query       Query               `json:"query"`
	Site        string              `json:"site"`
	Range       launch.PayloadRange `json:"range"`
	Formats     []Format            `json:"formats"`
	Status      Status              `json:"status"`
	Error       string              `json:"error,omitempty"`
	Artifacts   []Artifact          `json:"artifacts,omitempty"`
	RequestedBy string              `json:"requested_by"`
	Reason      string              `json:"reason,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
}

// Copy returns a record that shares no slices or maps with r.
func (r Record) Copy() Record {
	dup := r
	dup.Formats = append([]Format(nil), r.Formats...)
	if len(r.Artifacts) > 0 {
		dup.Artifacts = make([]Artifact, len(r.Artifacts))
		for i, a := range r.Artifacts {
			a.Metadata = cloneMap(a.Metadata)
			dup.Artifacts[i] = a
		}
	}
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		dup.CompletedAt = &t
	}
	return dup
}

// Input is an enqueue request. Range nil selects the full payload bounds.
type Input struct {
	Query       Query                `json:"query"`
	Site        string               `json:"site"`
	Range       *launch.PayloadRange `json:"range,omitempty"`
	Formats     []Format             `json:"formats"`
	RequestedBy string               `json:"requested_by"`
	Reason      string               `json:"reason,omitempty"`
}

// AuditEntry is one step of an export's audit trail.
type AuditEntry struct {
	ID         string         `json:"id"`
	ExportID   string         `json:"export_id"`
	Action     string         `json:"action"`
	Actor      string         `json:"actor"`
	Status     Status         `json:"status"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// RecordStore persists export records and their audit trail.
type RecordStore interface {
	SaveExport(ctx context.Context, record Record) error
	GetExport(ctx context.Context, id string) (Record, bool, error)
	AppendAudit(ctx context.Context, entry AuditEntry) error
	ListAudit(ctx context.Context, exportID string) ([]AuditEntry, error)
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
