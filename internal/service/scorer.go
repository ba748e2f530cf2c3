package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/raredx-server/internal/domain"
)

// Scoring weights for the rule-based strategy
const (
	keySymptomWeight       = 3.0
	secondarySymptomWeight = 1.0
	familyHistoryBonus     = 2.0
	ruleScoreCap           = 0.95
)

// RuleBasedStrategy scores a patient against a disease profile using
// weighted symptom matching. It is the default strategy and the fallback
// when the similarity provider is unavailable.
type RuleBasedStrategy struct {
	logger  *logrus.Logger
	matcher *SymptomMatcher
}

// NewRuleBasedStrategy creates the deterministic weighted-symptom scorer
func NewRuleBasedStrategy(logger *logrus.Logger, matcher *SymptomMatcher) *RuleBasedStrategy {
	return &RuleBasedStrategy{
		logger:  logger,
		matcher: matcher,
	}
}

// Score computes the proportion of achievable evidence weight the patient
// record actually achieves against the disease profile. Each catalog
// symptom contributes its weight to the possible total exactly once; the
// first patient symptom that matches it contributes the same weight to the
// achieved total. Every family-history item adds a bonus to both totals
// when the disease has a hereditary inheritance pattern, so unmatched
// family history never inflates a sporadic disease's score. The result is
// capped below 1.0 to reflect diagnostic uncertainty.
func (s *RuleBasedStrategy) Score(ctx context.Context, patient *domain.PatientRecord, disease *domain.DiseaseProfile) float64 {
	achieved := 0.0
	possible := 0.0

	for _, keySymptom := range disease.KeySymptoms {
		possible += keySymptomWeight
		for _, patientSymptom := range patient.Symptoms {
			if s.matcher.Matches(patientSymptom, keySymptom) {
				achieved += keySymptomWeight
				break
			}
		}
	}

	for _, secondarySymptom := range disease.SecondarySymptoms {
		possible += secondarySymptomWeight
		for _, patientSymptom := range patient.Symptoms {
			if s.matcher.Matches(patientSymptom, secondarySymptom) {
				achieved += secondarySymptomWeight
				break
			}
		}
	}

	// Each qualifying history item contributes its own bonus; two distinct
	// family-history entries move both totals twice.
	for _, historyItem := range patient.MedicalHistory {
		if strings.Contains(Normalize(historyItem), "family history") && disease.GeneticPattern.Hereditary() {
			achieved += familyHistoryBonus
			possible += familyHistoryBonus
		}
	}

	if possible == 0 {
		return 0.0
	}

	score := achieved / possible
	if score > ruleScoreCap {
		score = ruleScoreCap
	}
	return score
}

// Version identifies the scoring model for result provenance
func (s *RuleBasedStrategy) Version() string {
	return "rule_based_v1.0"
}

// Similarity blending weights. Narrative similarity dominates; the symptom
// match ratio keeps the blended score anchored to observable findings.
const (
	similarityWeight = 0.7
	matchRatioWeight = 0.3
)

// SimilarityStrategy blends an external text-similarity signal with the
// symptom match ratio. Any provider failure falls back to rule-based
// scoring for that disease, so a flaky provider degrades quality, never
// availability.
type SimilarityStrategy struct {
	logger   *logrus.Logger
	matcher  *SymptomMatcher
	provider domain.SimilarityProvider
	fallback *RuleBasedStrategy
}

// NewSimilarityStrategy creates the similarity-augmented scorer
func NewSimilarityStrategy(logger *logrus.Logger, matcher *SymptomMatcher, provider domain.SimilarityProvider, fallback *RuleBasedStrategy) *SimilarityStrategy {
	return &SimilarityStrategy{
		logger:   logger,
		matcher:  matcher,
		provider: provider,
		fallback: fallback,
	}
}

// Score blends narrative cosine similarity with the symptom match ratio.
func (s *SimilarityStrategy) Score(ctx context.Context, patient *domain.PatientRecord, disease *domain.DiseaseProfile) float64 {
	patientText := buildPatientText(patient)
	diseaseText := buildDiseaseText(disease)

	similarity, err := s.provider.Similarity(ctx, patientText, diseaseText)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"disease": disease.Name,
			"error":   err.Error(),
		}).Warn("Similarity provider failed, falling back to rule-based scoring")
		return s.fallback.Score(ctx, patient, disease)
	}

	ratio := s.symptomMatchRatio(patient, disease)
	score := similarityWeight*similarity + matchRatioWeight*ratio
	return clamp(score, 0.0, 1.0)
}

// symptomMatchRatio returns the count of patient symptoms that match any
// of the disease's known symptoms, divided by the count of known symptoms.
// The numerator runs over patient symptoms, so a single patient symptom
// counts once even when it matches several known symptoms.
func (s *SimilarityStrategy) symptomMatchRatio(patient *domain.PatientRecord, disease *domain.DiseaseProfile) float64 {
	known := disease.KnownSymptoms()
	if len(known) == 0 {
		return 0.0
	}

	matched := 0
	for _, patientSymptom := range patient.Symptoms {
		for _, knownSymptom := range known {
			if s.matcher.Matches(patientSymptom, knownSymptom) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(known))
}

// Version identifies the scoring model for result provenance
func (s *SimilarityStrategy) Version() string {
	return "similarity_augmented_v1.0"
}

func buildPatientText(patient *domain.PatientRecord) string {
	parts := make([]string, 0, len(patient.Symptoms))
	for _, symptom := range patient.Symptoms {
		parts = append(parts, Normalize(symptom))
	}
	text := strings.Join(parts, ", ")
	if patient.ClinicalNotes != "" {
		text = text + ". " + patient.ClinicalNotes
	}
	return text
}

func buildDiseaseText(disease *domain.DiseaseProfile) string {
	known := disease.KnownSymptoms()
	parts := make([]string, 0, len(known))
	for _, symptom := range known {
		parts = append(parts, Normalize(symptom))
	}
	return fmt.Sprintf("Patient with %s typically presents with %s", disease.Name, strings.Join(parts, ", "))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
