package domain

import (
	"time"
)

// Core Enums and Types

// GeneticPattern represents the inheritance pattern associated with a disease
type GeneticPattern string

const (
	AUTOSOMAL_DOMINANT  GeneticPattern = "autosomal_dominant"
	AUTOSOMAL_RECESSIVE GeneticPattern = "autosomal_recessive"
	AUTOIMMUNE          GeneticPattern = "autoimmune"
	MOSTLY_SPORADIC     GeneticPattern = "mostly_sporadic"
	SPORADIC            GeneticPattern = "sporadic"
	X_LINKED            GeneticPattern = "x_linked"
	PATTERN_UNKNOWN     GeneticPattern = "unknown"
)

// String returns the string form of the pattern
func (p GeneticPattern) String() string {
	return string(p)
}

// Hereditary reports whether the pattern supports a family-history bonus.
// Only a strictly sporadic pattern is excluded; "mostly_sporadic" still has
// familial forms.
func (p GeneticPattern) Hereditary() bool {
	return p != SPORADIC
}

// Request/Response Models

// PatientRecord represents an incoming diagnosis request. Missing optional
// fields carry their zero values: age 0 means unspecified, empty gender is
// normalized to "unknown" during processing.
type PatientRecord struct {
	Symptoms       []string           `json:"symptoms"`
	ClinicalNotes  string             `json:"clinical_notes,omitempty"`
	Age            int                `json:"age,omitempty"`
	Gender         string             `json:"gender,omitempty"`
	LabValues      map[string]float64 `json:"lab_values,omitempty"`
	MedicalHistory []string           `json:"medical_history,omitempty"`
}

// DiagnosisResult represents the output of a single diagnosis
type DiagnosisResult struct {
	PrimaryDiagnosis       string              `json:"primary_diagnosis"`
	Confidence             float64             `json:"confidence"`
	DifferentialDiagnoses  []DifferentialEntry `json:"differential_diagnoses"`
	ExtractedEntities      []ExtractedEntity   `json:"extracted_entities"`
	Recommendations        []string            `json:"recommendations"`
	RiskFactors            []string            `json:"risk_factors"`
	ModelVersion           string              `json:"model_version"`
	ProcessingTime         time.Duration       `json:"processing_time"`
}

// DifferentialEntry is one candidate disease in the ranked differential
type DifferentialEntry struct {
	Disease     string  `json:"disease"`
	Probability float64 `json:"probability"`
}

// ExtractedEntity represents a medical entity found in the patient narrative
type ExtractedEntity struct {
	Label       string  `json:"label"`
	SurfaceForm string  `json:"surface_form"`
	Score       float64 `json:"score"`
}

// Core Data Models

// DiseaseProfile represents one disease in the knowledge base. Profiles are
// built once at startup and never mutated afterwards.
type DiseaseProfile struct {
	Name              string         `json:"name"`
	KeySymptoms       []string       `json:"key_symptoms"`
	SecondarySymptoms []string       `json:"secondary_symptoms"`
	GeneticPattern    GeneticPattern `json:"genetic_pattern"`
}

// KnownSymptoms returns the key and secondary symptoms as one sequence,
// key symptoms first
func (d *DiseaseProfile) KnownSymptoms() []string {
	out := make([]string, 0, len(d.KeySymptoms)+len(d.SecondarySymptoms))
	out = append(out, d.KeySymptoms...)
	out = append(out, d.SecondarySymptoms...)
	return out
}

// DiseaseScore is an intermediate per-disease score, never cached across
// patients
type DiseaseScore struct {
	Disease string  `json:"disease"`
	Score   float64 `json:"score"`
}

// Configuration Models

// Config represents the main application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Similarity SimilarityConfig `mapstructure:"similarity"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Feedback   FeedbackConfig   `mapstructure:"feedback"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// FeedbackConfig selects and configures the clinician feedback store
type FeedbackConfig struct {
	Driver     string `mapstructure:"driver"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// SimilarityConfig represents the optional semantic similarity provider
// configuration. When Enabled is false (or the provider fails to start),
// the scorer runs rule-based only.
type SimilarityConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	EmbedBaseURL string        `mapstructure:"embed_base_url"`
	NERBaseURL   string        `mapstructure:"ner_base_url"`
	APIKey       string        `mapstructure:"api_key"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RateLimit    int           `mapstructure:"rate_limit"`
}

// CacheConfig represents cache configuration
type CacheConfig struct {
	RedisURL     string        `mapstructure:"redis_url"`
	RedisEnabled bool          `mapstructure:"redis_enabled"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	MaxItems     int           `mapstructure:"max_items"`
	MaxRetries   int           `mapstructure:"max_retries"`
	PoolSize     int           `mapstructure:"pool_size"`
	PoolTimeout  time.Duration `mapstructure:"pool_timeout"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
