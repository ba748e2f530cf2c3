package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/raredx-server/internal/catalog"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase passthrough", "chorea", "chorea"},
		{"uppercase folded", "CHOREA", "chorea"},
		{"underscores to spaces", "muscle_weakness", "muscle weakness"},
		{"hyphens to spaces", "muscle-weakness", "muscle weakness"},
		{"whitespace collapsed", "  muscle   weakness  ", "muscle weakness"},
		{"mixed separators", "Muscle_Weakness-Test", "muscle weakness test"},
		{"empty string", "", ""},
		{"idempotent", "muscle weakness", "muscle weakness"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestSymptomMatcher_Matches(t *testing.T) {
	matcher := NewSymptomMatcher(catalog.New())

	tests := []struct {
		name           string
		patientSymptom string
		catalogSymptom string
		expected       bool
	}{
		{"exact match", "chorea", "chorea", true},
		{"exact after normalization", "Muscle_Weakness", "muscle weakness", true},
		{"patient contains catalog", "severe muscle weakness", "muscle weakness", true},
		{"catalog contains patient", "weakness", "muscle_weakness", true},
		{"synonym match", "chorea", "involuntary_movements", true},
		{"synonym for dysphagia", "dysphagia", "difficulty_swallowing", true},
		{"synonym for diplopia", "diplopia", "double_vision", true},
		{"synonym embedded in longer phrase", "patient reports seeing double at night", "double_vision", true},
		{"no relation", "headache", "chorea", false},
		{"synonym lookup is catalog-side only", "involuntary movements", "dyskinesia", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, matcher.Matches(tt.patientSymptom, tt.catalogSymptom))
		})
	}
}

func TestSymptomMatcher_SubstringIsPermissive(t *testing.T) {
	matcher := NewSymptomMatcher(catalog.New())

	// "pain" is a substring of "bone pain"; the matcher accepts this by
	// contract even though it is clinically loose.
	assert.True(t, matcher.Matches("pain", "bone_pain"))
	assert.True(t, matcher.Matches("bone pain", "pain"))
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"Muscle_Weakness", "  Chorea  ", "difficulty-swallowing", "Involuntary   Movements"}
	for _, s := range inputs {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once))
	}
}
