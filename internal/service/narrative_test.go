package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/raredx-server/internal/domain"
)

func TestSynthesizeNarrative_FullRecord(t *testing.T) {
	patient := &domain.PatientRecord{
		Symptoms:       []string{"involuntary_movements", "cognitive_decline"},
		ClinicalNotes:  "Progressive symptoms over two years",
		Age:            45,
		Gender:         "male",
		MedicalHistory: []string{"Family history of similar symptoms"},
		LabValues:      map[string]float64{"alt": 32.0, "creatinine": 0.9},
	}

	narrative := SynthesizeNarrative(patient)
	assert.Equal(t,
		"Patient is a 45-year-old male presenting with involuntary movements, cognitive decline. "+
			"Clinical notes: Progressive symptoms over two years. "+
			"Medical history: Family history of similar symptoms. "+
			"Laboratory findings: alt 32.0, creatinine 0.9.",
		narrative)
}

func TestSynthesizeNarrative_DefaultsUnknownGender(t *testing.T) {
	patient := &domain.PatientRecord{
		Symptoms: []string{"fatigue"},
		Age:      30,
	}

	narrative := SynthesizeNarrative(patient)
	assert.Equal(t, "Patient is a 30-year-old unknown presenting with fatigue.", narrative)
}

func TestSynthesizeNarrative_LabKeysSorted(t *testing.T) {
	patient := &domain.PatientRecord{
		Symptoms: []string{"fatigue"},
		Age:      30,
		LabValues: map[string]float64{
			"platelets":  200.0,
			"alt":        40.0,
			"hemoglobin": 13.5,
		},
	}

	// Map iteration order is random; the narrative must not be.
	expected := SynthesizeNarrative(patient)
	for i := 0; i < 20; i++ {
		assert.Equal(t, expected, SynthesizeNarrative(patient))
	}
	assert.Contains(t, expected, "Laboratory findings: alt 40.0, hemoglobin 13.5, platelets 200.0.")
}
