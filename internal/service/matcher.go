package service

import (
	"strings"

	"github.com/raredx-server/internal/catalog"
)

// Normalize lower-cases a symptom string and collapses separators so that
// "Muscle_Weakness", "muscle-weakness" and "muscle weakness" normalize
// identically. Normalize is idempotent.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	return strings.Join(strings.Fields(s), " ")
}

// SymptomMatcher decides whether a patient-reported symptom satisfies a
// catalog symptom. Matching is deterministic: a pure function of the two
// strings and the catalog's static synonym table.
type SymptomMatcher struct {
	catalog *catalog.Catalog
}

// NewSymptomMatcher creates a matcher backed by the given knowledge base
func NewSymptomMatcher(cat *catalog.Catalog) *SymptomMatcher {
	return &SymptomMatcher{catalog: cat}
}

// Matches reports whether patientSymptom satisfies catalogSymptom.
// The clauses apply in order: exact equality, substring containment in
// either direction, then synonym lookup keyed by the catalog symptom only.
// The substring clause is deliberately permissive ("weakness" matches
// "muscle weakness"); this mirrors the reference scoring behavior and must
// not be tightened.
func (m *SymptomMatcher) Matches(patientSymptom, catalogSymptom string) bool {
	patientClean := Normalize(patientSymptom)
	catalogClean := Normalize(catalogSymptom)

	// Exact match
	if patientClean == catalogClean {
		return true
	}

	// Partial match, both directions
	if strings.Contains(patientClean, catalogClean) || strings.Contains(catalogClean, patientClean) {
		return true
	}

	// Synonym matching, catalog side only
	for _, synonym := range m.catalog.Synonyms(catalogClean) {
		if strings.Contains(patientClean, strings.ToLower(synonym)) {
			return true
		}
	}

	return false
}
