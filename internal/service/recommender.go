package service

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/raredx-server/internal/catalog"
)

// diseaseRecommendation maps a primary diagnosis to its clinical follow-up
// plan. Matching is by substring on the diagnosis name so that variant
// renderings ("Amyotrophic Lateral Sclerosis (ALS)") still hit.
type diseaseRecommendation struct {
	needles []string
	items   []string
}

// RecommendationEngine produces deterministic clinical recommendations
// from the primary diagnosis, the reported symptoms, and lab values.
type RecommendationEngine struct {
	logger  *logrus.Logger
	catalog *catalog.Catalog
	table   []diseaseRecommendation
}

// NewRecommendationEngine creates the recommendation engine
func NewRecommendationEngine(logger *logrus.Logger, cat *catalog.Catalog) *RecommendationEngine {
	return &RecommendationEngine{
		logger:  logger,
		catalog: cat,
		table:   diseaseRecommendations(),
	}
}

func diseaseRecommendations() []diseaseRecommendation {
	return []diseaseRecommendation{
		{
			needles: []string{"huntington"},
			items: []string{
				"Genetic counseling and confirmatory genetic testing",
				"Neurological evaluation and monitoring",
				"Psychiatric assessment for mood and behavioral symptoms",
				"Physical and occupational therapy evaluation",
				"Family genetic counseling for at-risk relatives",
			},
		},
		{
			needles: []string{"cystic fibrosis"},
			items: []string{
				"Sweat chloride test for confirmation",
				"Pulmonary function testing",
				"Nutritional assessment and pancreatic enzyme evaluation",
				"Sputum culture for respiratory pathogens",
				"CFTR genetic mutation analysis",
			},
		},
		{
			needles: []string{"myasthenia gravis"},
			items: []string{
				"Acetylcholine receptor antibody testing",
				"Electromyography with repetitive nerve stimulation",
				"CT chest to evaluate for thymoma",
				"Neurological consultation",
				"Edrophonium test if antibody testing inconclusive",
			},
		},
		{
			needles: []string{"amyotrophic", "als"},
			items: []string{
				"Electromyography and nerve conduction studies",
				"MRI brain and spine to exclude other causes",
				"Neurology referral for specialized ALS evaluation",
				"Pulmonary function testing for respiratory assessment",
				"Multidisciplinary care team coordination",
			},
		},
		{
			needles: []string{"wilson"},
			items: []string{
				"Serum ceruloplasmin and copper studies",
				"24-hour urinary copper excretion",
				"Slit-lamp examination for Kayser-Fleischer rings",
				"Liver function assessment and hepatology referral",
				"ATP7B genetic testing",
			},
		},
	}
}

// genericRecommendations applies when the primary diagnosis has no
// disease-specific plan, including the Unknown sentinel
func genericRecommendations() []string {
	return []string{
		"Specialist referral based on presenting symptoms",
		"Additional diagnostic testing as clinically indicated",
		"Genetic counseling if hereditary condition suspected",
		"Symptomatic management and supportive care",
		"Regular monitoring and follow-up",
	}
}

// Recommend builds the recommendation list for a diagnosis. Output order is
// deterministic: disease plan (or generic plan) first, then symptom-driven
// additions in symptom order, then lab-driven additions. Duplicates keep
// their first occurrence.
func (e *RecommendationEngine) Recommend(primaryDiagnosis string, symptoms []string, labValues map[string]float64) []string {
	recommendations := make([]string, 0, 8)
	seen := make(map[string]bool)

	add := func(item string) {
		if !seen[item] {
			seen[item] = true
			recommendations = append(recommendations, item)
		}
	}

	diagnosisClean := Normalize(primaryDiagnosis)
	matched := false
	for _, entry := range e.table {
		for _, needle := range entry.needles {
			if strings.Contains(diagnosisClean, needle) {
				for _, item := range entry.items {
					add(item)
				}
				matched = true
				break
			}
		}
		if matched {
			break
		}
	}
	if !matched {
		for _, item := range genericRecommendations() {
			add(item)
		}
	}

	for _, symptom := range symptoms {
		symptomClean := Normalize(symptom)
		if strings.Contains(symptomClean, "muscle weakness") {
			add("Creatine kinase level to assess muscle damage")
		}
		if strings.Contains(symptomClean, "seizures") {
			add("Electroencephalogram (EEG) evaluation")
		}
		if strings.Contains(symptomClean, "heart problems") || strings.Contains(symptomClean, "cardiomyopathy") {
			add("Echocardiogram and cardiology consultation")
		}
	}

	if alt, ok := labValues["alt"]; ok {
		if altRange, found := e.catalog.LabRange("alt"); found && alt > altRange.High {
			add("Hepatology consultation for elevated liver enzymes")
		}
	}
	if ast, ok := labValues["ast"]; ok {
		if astRange, found := e.catalog.LabRange("ast"); found && ast > astRange.High {
			add("Hepatology consultation for elevated liver enzymes")
		}
	}
	if creatinine, ok := labValues["creatinine"]; ok {
		if creatinineRange, found := e.catalog.LabRange("creatinine"); found && creatinine > creatinineRange.High {
			add("Nephrology evaluation for kidney function")
		}
	}

	return recommendations
}
