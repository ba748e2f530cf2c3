package service

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/raredx-server/internal/catalog"
	"github.com/raredx-server/internal/domain"
)

// maxDifferential bounds the differential diagnosis list returned to callers
const maxDifferential = 5

// Confidence bounds. The floor reflects irreducible uncertainty in a
// screening tool; the ceiling matches the rule-based score cap.
const (
	confidenceFloor = 0.5
	confidenceCeil  = 0.95
)

// DifferentialRanker scores every catalog disease against a patient record
// and produces a stably ordered candidate list.
type DifferentialRanker struct {
	logger   *logrus.Logger
	catalog  *catalog.Catalog
	strategy domain.ScoringStrategy
}

// NewDifferentialRanker creates a ranker using the given scoring strategy
func NewDifferentialRanker(logger *logrus.Logger, cat *catalog.Catalog, strategy domain.ScoringStrategy) *DifferentialRanker {
	return &DifferentialRanker{
		logger:   logger,
		catalog:  cat,
		strategy: strategy,
	}
}

// Rank scores the patient against all catalog diseases, descending by
// score. The sort is stable: ties preserve catalog insertion order, so
// identical inputs always yield identical rankings.
func (r *DifferentialRanker) Rank(ctx context.Context, patient *domain.PatientRecord) []domain.DiseaseScore {
	profiles := r.catalog.Profiles()
	scores := make([]domain.DiseaseScore, 0, len(profiles))

	for i := range profiles {
		score := r.strategy.Score(ctx, patient, &profiles[i])
		scores = append(scores, domain.DiseaseScore{
			Disease: profiles[i].Name,
			Score:   score,
		})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})

	return scores
}

// Confidence derives an overall confidence from the ranked candidate list.
// A large margin between the top two candidates boosts confidence; a
// narrow margin suppresses it toward the top score itself.
func (r *DifferentialRanker) Confidence(ranked []domain.DiseaseScore) float64 {
	switch len(ranked) {
	case 0:
		return confidenceFloor
	case 1:
		return ranked[0].Score
	}

	top := ranked[0].Score
	margin := top - ranked[1].Score
	return clamp(top*(1.0+margin), confidenceFloor, confidenceCeil)
}

// Strategy exposes the active scoring strategy, used for result provenance
func (r *DifferentialRanker) Strategy() domain.ScoringStrategy {
	return r.strategy
}
