// Package feedback provides clinician feedback storage for diagnosis
// results. It stores agreements and corrections so the disease catalog and
// scoring weights can be audited against real clinical outcomes.
package feedback

import (
	"context"
	"io"
	"time"
)

// Feedback represents a clinician's verdict on one diagnosis result.
type Feedback struct {
	ID                 int64     `json:"id,omitempty"`
	CaseID             string    `json:"case_id"`                 // UUID assigned to the diagnosis request
	SuggestedDiagnosis string    `json:"suggested_diagnosis"`     // System's primary diagnosis
	ClinicianDiagnosis string    `json:"clinician_diagnosis"`     // Clinician's final diagnosis
	ClinicianAgreed    bool      `json:"clinician_agreed"`        // Did the clinician agree with the suggestion?
	Confidence         float64   `json:"confidence"`              // System confidence at suggestion time
	ModelVersion       string    `json:"model_version,omitempty"` // Scoring model that produced the suggestion
	Notes              string    `json:"notes,omitempty"`         // Clinician notes
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Store defines the interface for feedback storage operations.
type Store interface {
	// Save stores or updates clinician feedback for a case.
	// If feedback for the same case_id exists, it will be updated.
	Save(ctx context.Context, feedback *Feedback) error

	// Get retrieves feedback for a case. Returns nil when absent.
	Get(ctx context.Context, caseID string) (*Feedback, error)

	// List returns feedback entries with pagination, newest first.
	List(ctx context.Context, limit, offset int) ([]*Feedback, error)

	// Count returns the total number of feedback entries.
	Count(ctx context.Context) (int64, error)

	// AgreementRate returns the fraction of entries where the clinician
	// agreed with the suggested diagnosis. Zero entries yields 0.
	AgreementRate(ctx context.Context) (float64, error)

	// Delete removes a feedback entry by ID.
	Delete(ctx context.Context, id int64) error

	// ExportJSON exports all feedback to a JSON writer.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// ImportJSON imports feedback from a JSON reader.
	// Returns the number of imported and skipped entries.
	ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error)

	// Close closes the store and releases resources.
	Close() error
}

// FeedbackExport represents the JSON export format.
type FeedbackExport struct {
	Version    string      `json:"version"`
	ExportedAt time.Time   `json:"exported_at"`
	Count      int         `json:"count"`
	Feedback   []*Feedback `json:"feedback"`
}
