package service

import (
	"context"
	"strings"

	"github.com/raredx-server/internal/catalog"
	"github.com/raredx-server/internal/domain"
)

// keywordEntityScore is the fixed score assigned to keyword-matched
// entities; keyword matching has no probabilistic model behind it.
const keywordEntityScore = 0.9

// KeywordEntityExtractor finds catalog symptom mentions in free text by
// normalized substring search. It serves as the offline stand-in for a
// model-backed NER service and shares its output shape.
type KeywordEntityExtractor struct {
	catalog *catalog.Catalog
}

// NewKeywordEntityExtractor creates a catalog-backed keyword extractor
func NewKeywordEntityExtractor(cat *catalog.Catalog) *KeywordEntityExtractor {
	return &KeywordEntityExtractor{catalog: cat}
}

// ExtractEntities scans the text for every catalog symptom in catalog
// order and emits one SYMPTOM entity per distinct match
func (e *KeywordEntityExtractor) ExtractEntities(ctx context.Context, text string) ([]domain.ExtractedEntity, error) {
	textClean := Normalize(text)
	entities := make([]domain.ExtractedEntity, 0)
	seen := make(map[string]bool)

	for _, profile := range e.catalog.Profiles() {
		for _, symptom := range profile.KnownSymptoms() {
			symptomClean := Normalize(symptom)
			if seen[symptomClean] {
				continue
			}
			if symptomClean != "" && strings.Contains(textClean, symptomClean) {
				seen[symptomClean] = true
				entities = append(entities, domain.ExtractedEntity{
					SurfaceForm: symptomClean,
					Label:       "SYMPTOM",
					Score:       keywordEntityScore,
				})
			}
		}
	}

	return entities, nil
}
