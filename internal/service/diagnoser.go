package service

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/raredx-server/internal/catalog"
	"github.com/raredx-server/internal/domain"
)

// unknownDiagnosis is the sentinel primary diagnosis when the catalog is
// empty or a batch item fails
const unknownDiagnosis = "Unknown"

// DiagnosisService orchestrates one full diagnostic pass: narrative
// synthesis, entity extraction, differential ranking, confidence and
// recommendation generation.
type DiagnosisService struct {
	logger      *logrus.Logger
	catalog     *catalog.Catalog
	ranker      *DifferentialRanker
	recommender *RecommendationEngine
	extractor   domain.EntityExtractor
}

// NewDiagnosisService creates the diagnostic orchestrator
func NewDiagnosisService(
	logger *logrus.Logger,
	cat *catalog.Catalog,
	ranker *DifferentialRanker,
	recommender *RecommendationEngine,
	extractor domain.EntityExtractor,
) *DiagnosisService {
	return &DiagnosisService{
		logger:      logger,
		catalog:     cat,
		ranker:      ranker,
		recommender: recommender,
		extractor:   extractor,
	}
}

// Diagnose runs the full pipeline for one patient record. Extraction
// failures are logged and yield an empty entity list; they never abort the
// diagnosis. The result is deterministic for a given record and catalog
// when the rule-based strategy is active.
func (s *DiagnosisService) Diagnose(ctx context.Context, patient *domain.PatientRecord) *domain.DiagnosisResult {
	started := time.Now()

	record := *patient
	if record.Gender == "" {
		record.Gender = "unknown"
	}
	if record.Age < 0 {
		record.Age = 0
	}

	narrative := SynthesizeNarrative(&record)

	entities, err := s.extractor.ExtractEntities(ctx, narrative)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Warn("Entity extraction failed, continuing without entities")
		entities = []domain.ExtractedEntity{}
	}

	ranked := s.ranker.Rank(ctx, &record)

	// The differential is always the top of the full ranking, zero scores
	// included; "Unknown" is reserved for an empty catalog. Confidence is
	// derived from the full ranked list, so with two or more candidates it
	// stays clamped to [0.5, 0.95] no matter how weak the top score is.
	differential := make([]domain.DifferentialEntry, 0, maxDifferential)
	for _, candidate := range ranked {
		differential = append(differential, domain.DifferentialEntry{
			Disease:     candidate.Disease,
			Probability: candidate.Score,
		})
		if len(differential) == maxDifferential {
			break
		}
	}

	primary := unknownDiagnosis
	confidence := s.ranker.Confidence(ranked)
	if len(differential) > 0 {
		primary = differential[0].Disease
	}

	var recommendations []string
	if primary != unknownDiagnosis {
		recommendations = s.recommender.Recommend(primary, record.Symptoms, record.LabValues)
	} else {
		recommendations = []string{}
	}

	result := &domain.DiagnosisResult{
		PrimaryDiagnosis:      primary,
		Confidence:            confidence,
		DifferentialDiagnoses: differential,
		ExtractedEntities:     entities,
		Recommendations:       recommendations,
		RiskFactors:           s.assessRiskFactors(&record),
		ModelVersion:          s.ranker.Strategy().Version(),
		ProcessingTime:        time.Since(started),
	}

	s.logger.WithFields(logrus.Fields{
		"primary_diagnosis": result.PrimaryDiagnosis,
		"confidence":        result.Confidence,
		"differential_size": len(result.DifferentialDiagnoses),
		"model_version":     result.ModelVersion,
		"duration_ms":       result.ProcessingTime.Milliseconds(),
	}).Info("Diagnosis completed")

	return result
}

// BatchDiagnose processes records independently and in input order. A
// panic in one item is recovered, logged, and replaced with a sentinel
// result; the remaining items still run.
func (s *DiagnosisService) BatchDiagnose(ctx context.Context, patients []domain.PatientRecord) []domain.DiagnosisResult {
	results := make([]domain.DiagnosisResult, 0, len(patients))

	for i := range patients {
		result := s.diagnoseIsolated(ctx, i, &patients[i])
		results = append(results, *result)
	}

	return results
}

func (s *DiagnosisService) diagnoseIsolated(ctx context.Context, index int, patient *domain.PatientRecord) (result *domain.DiagnosisResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithFields(logrus.Fields{
				"batch_index": index,
				"panic":       r,
			}).Warn("Diagnosis failed for batch item, emitting sentinel result")
			result = sentinelResult(s.ranker.Strategy().Version())
		}
	}()
	return s.Diagnose(ctx, patient)
}

func sentinelResult(modelVersion string) *domain.DiagnosisResult {
	return &domain.DiagnosisResult{
		PrimaryDiagnosis:      unknownDiagnosis,
		Confidence:            confidenceFloor,
		DifferentialDiagnoses: []domain.DifferentialEntry{},
		ExtractedEntities:     []domain.ExtractedEntity{},
		Recommendations:       []string{},
		RiskFactors:           []string{},
		ModelVersion:          modelVersion,
	}
}

// assessRiskFactors derives patient-level risk observations from the
// record. The list order is fixed so repeated calls compare equal.
func (s *DiagnosisService) assessRiskFactors(patient *domain.PatientRecord) []string {
	factors := []string{"Age-related disease susceptibility"}

	for _, historyItem := range patient.MedicalHistory {
		if strings.Contains(Normalize(historyItem), "family") {
			factors = append(factors, "Positive family history")
			break
		}
	}

	hasNeurological := false
	hasNeuromuscular := false
	hasRespiratory := false
	for _, symptom := range patient.Symptoms {
		symptomClean := Normalize(symptom)
		if strings.Contains(symptomClean, "neurological") || strings.Contains(symptomClean, "cognitive") {
			hasNeurological = true
		}
		if strings.Contains(symptomClean, "muscle") || strings.Contains(symptomClean, "weakness") {
			hasNeuromuscular = true
		}
		if strings.Contains(symptomClean, "breathing") || strings.Contains(symptomClean, "respiratory") {
			hasRespiratory = true
		}
	}
	if hasNeurological {
		factors = append(factors, "Neurological involvement")
	}
	if hasNeuromuscular {
		factors = append(factors, "Neuromuscular involvement")
	}
	if hasRespiratory {
		factors = append(factors, "Respiratory complications")
	}

	if len(patient.Symptoms) > 3 {
		factors = append(factors, "Multiple system involvement")
	}

	return factors
}
