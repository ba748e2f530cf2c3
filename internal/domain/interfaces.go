package domain

import (
	"context"
)

// ScoringStrategy computes a match score between a patient presentation and
// one disease profile. Implementations must be pure with respect to their
// inputs; a strategy may consult external capabilities but must degrade
// rather than fail.
type ScoringStrategy interface {
	// Score returns a value in [0,1] for the disease given the patient.
	// The rule-based strategy additionally caps its result at 0.95.
	Score(ctx context.Context, patient *PatientRecord, disease *DiseaseProfile) float64

	// Version identifies the strategy for result metadata
	Version() string
}

// SimilarityProvider returns a semantic closeness score between two text
// spans. This is an optional collaborator; absence or failure must degrade
// to rule-based scoring.
type SimilarityProvider interface {
	// Similarity returns a cosine-style score in [-1,1]
	Similarity(ctx context.Context, textA, textB string) (float64, error)
}

// EntityExtractor extracts medical entities from free text. Optional
// collaborator; absence yields an empty entity list.
type EntityExtractor interface {
	ExtractEntities(ctx context.Context, text string) ([]ExtractedEntity, error)
}

// ConfigManager provides access to application configuration
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetDatabaseConfig() *DatabaseConfig
	Validate() error
}
