package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/raredx-server/internal/domain"
)

// SynthesizeNarrative renders a patient record as a clinical narrative
// suitable for text-based entity extraction and similarity scoring. Lab
// values are emitted in sorted key order so the same record always
// produces the same text.
func SynthesizeNarrative(patient *domain.PatientRecord) string {
	var b strings.Builder

	gender := patient.Gender
	if gender == "" {
		gender = "unknown"
	}

	symptoms := make([]string, 0, len(patient.Symptoms))
	for _, symptom := range patient.Symptoms {
		symptoms = append(symptoms, Normalize(symptom))
	}

	fmt.Fprintf(&b, "Patient is a %d-year-old %s presenting with %s. ",
		patient.Age, gender, strings.Join(symptoms, ", "))

	if patient.ClinicalNotes != "" {
		fmt.Fprintf(&b, "Clinical notes: %s. ", patient.ClinicalNotes)
	}

	if len(patient.MedicalHistory) > 0 {
		fmt.Fprintf(&b, "Medical history: %s. ", strings.Join(patient.MedicalHistory, ", "))
	}

	if len(patient.LabValues) > 0 {
		keys := make([]string, 0, len(patient.LabValues))
		for key := range patient.LabValues {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		findings := make([]string, 0, len(keys))
		for _, key := range keys {
			findings = append(findings, fmt.Sprintf("%s %.1f", key, patient.LabValues[key]))
		}
		fmt.Fprintf(&b, "Laboratory findings: %s.", strings.Join(findings, ", "))
	}

	return strings.TrimSpace(b.String())
}
