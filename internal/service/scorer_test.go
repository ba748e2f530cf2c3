package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raredx-server/internal/catalog"
	"github.com/raredx-server/internal/domain"
)

func newTestRuleStrategy(t *testing.T) (*RuleBasedStrategy, *catalog.Catalog) {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	cat := catalog.New()
	return NewRuleBasedStrategy(logger, NewSymptomMatcher(cat)), cat
}

func TestRuleBasedStrategy_HuntingtonPresentation(t *testing.T) {
	strategy, cat := newTestRuleStrategy(t)
	huntington := cat.Get("Huntington Disease")
	require.NotNil(t, huntington)

	patient := &domain.PatientRecord{
		Symptoms: []string{
			"involuntary_movements",
			"cognitive_decline",
			"behavioral_changes",
			"depression",
		},
		MedicalHistory: []string{"Family history of similar symptoms"},
	}

	// 4 of 5 key symptoms (12 of 15) plus the family history bonus (2 of 2)
	// over 15 + 3 + 2 achievable weight.
	score := strategy.Score(context.Background(), patient, huntington)
	assert.InDelta(t, 0.7, score, 1e-9)
	assert.Greater(t, score, 0.6)
}

func TestRuleBasedStrategy_PerfectMatchIsCapped(t *testing.T) {
	strategy, cat := newTestRuleStrategy(t)
	huntington := cat.Get("Huntington Disease")
	require.NotNil(t, huntington)

	patient := &domain.PatientRecord{
		Symptoms:       append(append([]string{}, huntington.KeySymptoms...), huntington.SecondarySymptoms...),
		MedicalHistory: []string{"family history of Huntington disease"},
	}

	score := strategy.Score(context.Background(), patient, huntington)
	assert.Equal(t, ruleScoreCap, score)
}

func TestRuleBasedStrategy_NoMatchesScoresZero(t *testing.T) {
	strategy, cat := newTestRuleStrategy(t)
	huntington := cat.Get("Huntington Disease")
	require.NotNil(t, huntington)

	patient := &domain.PatientRecord{
		Symptoms: []string{"headache", "nausea"},
	}

	assert.Equal(t, 0.0, strategy.Score(context.Background(), patient, huntington))
}

func TestRuleBasedStrategy_EmptyProfileScoresZero(t *testing.T) {
	strategy, _ := newTestRuleStrategy(t)

	patient := &domain.PatientRecord{Symptoms: []string{"chorea"}}
	empty := &domain.DiseaseProfile{Name: "Empty", GeneticPattern: domain.SPORADIC}

	assert.Equal(t, 0.0, strategy.Score(context.Background(), patient, empty))
}

func TestRuleBasedStrategy_FamilyHistoryGating(t *testing.T) {
	strategy, _ := newTestRuleStrategy(t)

	hereditary := &domain.DiseaseProfile{
		Name:           "Hereditary",
		KeySymptoms:    []string{"tremor"},
		GeneticPattern: domain.AUTOSOMAL_DOMINANT,
	}
	sporadic := &domain.DiseaseProfile{
		Name:           "Sporadic",
		KeySymptoms:    []string{"tremor"},
		GeneticPattern: domain.SPORADIC,
	}

	patient := &domain.PatientRecord{
		Symptoms:       []string{"tremor"},
		MedicalHistory: []string{"Family history of neurological disease"},
	}

	// Hereditary: (3 + 2) / (3 + 2) capped at 0.95.
	// Sporadic: bonus not applied on either side, 3/3 capped at 0.95.
	assert.Equal(t, ruleScoreCap, strategy.Score(context.Background(), patient, hereditary))
	assert.Equal(t, ruleScoreCap, strategy.Score(context.Background(), patient, sporadic))

	// With a partial symptom match the gating becomes visible: the bonus
	// lifts the hereditary score and leaves the sporadic score untouched.
	hereditary.KeySymptoms = []string{"tremor", "dystonia"}
	sporadic.KeySymptoms = []string{"tremor", "dystonia"}

	hereditaryScore := strategy.Score(context.Background(), patient, hereditary)
	sporadicScore := strategy.Score(context.Background(), patient, sporadic)
	assert.InDelta(t, 5.0/8.0, hereditaryScore, 1e-9)
	assert.InDelta(t, 3.0/6.0, sporadicScore, 1e-9)
}

func TestRuleBasedStrategy_MostlySporadicStillHereditary(t *testing.T) {
	strategy, cat := newTestRuleStrategy(t)
	als := cat.Get("Amyotrophic Lateral Sclerosis")
	require.NotNil(t, als)

	patient := &domain.PatientRecord{
		Symptoms:       []string{"fasciculations"},
		MedicalHistory: []string{"family history of ALS"},
	}

	// ALS is mostly sporadic but familial forms exist, so the history
	// bonus applies: (3 + 2) / (15 + 3 + 2).
	score := strategy.Score(context.Background(), patient, als)
	assert.InDelta(t, 5.0/20.0, score, 1e-9)
}

func TestRuleBasedStrategy_FamilyHistoryAccumulatesPerItem(t *testing.T) {
	strategy, cat := newTestRuleStrategy(t)
	huntington := cat.Get("Huntington Disease")
	require.NotNil(t, huntington)

	patient := &domain.PatientRecord{
		MedicalHistory: []string{
			"Family history of cardiac disease",
			"Family history of neurological disease",
		},
	}

	// No symptoms match, but each history item adds its own bonus:
	// (2 + 2) / (15 + 3 + 2 + 2).
	score := strategy.Score(context.Background(), patient, huntington)
	assert.InDelta(t, 4.0/22.0, score, 1e-9)

	// A single item yields the smaller 2/20 share, so a second entry is
	// visible in the total.
	patient.MedicalHistory = patient.MedicalHistory[:1]
	single := strategy.Score(context.Background(), patient, huntington)
	assert.InDelta(t, 2.0/20.0, single, 1e-9)
	assert.Greater(t, score, single)
}

func TestRuleBasedStrategy_Version(t *testing.T) {
	strategy, _ := newTestRuleStrategy(t)
	assert.Equal(t, "rule_based_v1.0", strategy.Version())
}

type stubSimilarityProvider struct {
	similarity float64
	err        error
}

func (s *stubSimilarityProvider) Similarity(_ context.Context, _, _ string) (float64, error) {
	return s.similarity, s.err
}

func newTestSimilarityStrategy(t *testing.T, provider domain.SimilarityProvider) (*SimilarityStrategy, *catalog.Catalog) {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	cat := catalog.New()
	matcher := NewSymptomMatcher(cat)
	fallback := NewRuleBasedStrategy(logger, matcher)
	return NewSimilarityStrategy(logger, matcher, provider, fallback), cat
}

func TestSimilarityStrategy_BlendsSimilarityAndMatchRatio(t *testing.T) {
	strategy, cat := newTestSimilarityStrategy(t, &stubSimilarityProvider{similarity: 0.8})
	huntington := cat.Get("Huntington Disease")
	require.NotNil(t, huntington)

	patient := &domain.PatientRecord{
		Symptoms: []string{"chorea", "depression"},
	}

	// Both patient symptoms match a known symptom, so the ratio is 2 of 8:
	// 0.7*0.8 + 0.3*0.25 = 0.635. "chorea" counts once even though it also
	// satisfies the involuntary movements synonym.
	score := strategy.Score(context.Background(), patient, huntington)
	assert.InDelta(t, 0.635, score, 1e-9)
}

func TestSimilarityStrategy_ClampsToUnitInterval(t *testing.T) {
	strategy, cat := newTestSimilarityStrategy(t, &stubSimilarityProvider{similarity: 1.5})
	huntington := cat.Get("Huntington Disease")
	require.NotNil(t, huntington)

	patient := &domain.PatientRecord{
		Symptoms: append(append([]string{}, huntington.KeySymptoms...), huntington.SecondarySymptoms...),
	}

	score := strategy.Score(context.Background(), patient, huntington)
	assert.Equal(t, 1.0, score)
}

func TestSimilarityStrategy_FallsBackOnProviderError(t *testing.T) {
	strategy, cat := newTestSimilarityStrategy(t, &stubSimilarityProvider{err: errors.New("connection refused")})
	huntington := cat.Get("Huntington Disease")
	require.NotNil(t, huntington)

	patient := &domain.PatientRecord{
		Symptoms: []string{
			"involuntary_movements",
			"cognitive_decline",
			"behavioral_changes",
			"depression",
		},
		MedicalHistory: []string{"Family history of similar symptoms"},
	}

	// Provider failure yields the rule-based score for this disease.
	score := strategy.Score(context.Background(), patient, huntington)
	assert.InDelta(t, 0.7, score, 1e-9)
}

func TestSimilarityStrategy_Version(t *testing.T) {
	strategy, _ := newTestSimilarityStrategy(t, &stubSimilarityProvider{})
	assert.Equal(t, "similarity_augmented_v1.0", strategy.Version())
}
