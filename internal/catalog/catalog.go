// Package catalog holds the static rare-disease knowledge base: disease
// profiles, the symptom synonym table, and laboratory reference ranges.
// The catalog is built once at startup and is read-only afterwards, so it
// can be shared freely across concurrent diagnoses.
package catalog

import (
	"github.com/raredx-server/internal/domain"
)

// LabRange is the normal reference interval for a laboratory test
type LabRange struct {
	Low  float64
	High float64
}

// Catalog is the immutable disease knowledge base
type Catalog struct {
	profiles  []domain.DiseaseProfile
	byName    map[string]int
	synonyms  map[string][]string
	labRanges map[string]LabRange
}

// New builds the default knowledge base
func New() *Catalog {
	c := &Catalog{
		byName:    make(map[string]int),
		synonyms:  make(map[string][]string),
		labRanges: make(map[string]LabRange),
	}

	c.initializeProfiles()
	c.initializeSynonyms()
	c.initializeLabRanges()

	return c
}

// Profiles returns all disease profiles in catalog insertion order.
// Callers must not mutate the returned slice.
func (c *Catalog) Profiles() []domain.DiseaseProfile {
	return c.profiles
}

// Get returns the profile for a disease name, or nil if unknown
func (c *Catalog) Get(name string) *domain.DiseaseProfile {
	idx, ok := c.byName[name]
	if !ok {
		return nil
	}
	return &c.profiles[idx]
}

// Len returns the number of diseases in the catalog
func (c *Catalog) Len() int {
	return len(c.profiles)
}

// Synonyms returns alternate phrasings for a normalized catalog symptom.
// The table is keyed by the catalog side only; patient symptoms have no
// synonym entries of their own.
func (c *Catalog) Synonyms(normalizedSymptom string) []string {
	return c.synonyms[normalizedSymptom]
}

// LabRange returns the reference interval for a lab test and whether the
// test is known
func (c *Catalog) LabRange(test string) (LabRange, bool) {
	r, ok := c.labRanges[test]
	return r, ok
}

// addProfile appends a disease to the catalog, preserving insertion order
func (c *Catalog) addProfile(name string, pattern domain.GeneticPattern, key, secondary []string) {
	c.byName[name] = len(c.profiles)
	c.profiles = append(c.profiles, domain.DiseaseProfile{
		Name:              name,
		KeySymptoms:       key,
		SecondarySymptoms: secondary,
		GeneticPattern:    pattern,
	})
}

// initializeProfiles sets up the disease knowledge base
func (c *Catalog) initializeProfiles() {
	c.addProfile("Huntington Disease", domain.AUTOSOMAL_DOMINANT,
		[]string{"involuntary_movements", "chorea", "cognitive_decline", "behavioral_changes", "depression"},
		[]string{"speech_problems", "balance_problems", "anxiety"})

	c.addProfile("Cystic Fibrosis", domain.AUTOSOMAL_RECESSIVE,
		[]string{"chronic_cough", "thick_mucus", "recurrent_lung_infections", "poor_weight_gain", "salty_skin"},
		[]string{"digestive_problems", "infertility", "clubbing_of_fingers"})

	c.addProfile("Myasthenia Gravis", domain.AUTOIMMUNE,
		[]string{"muscle_weakness", "double_vision", "drooping_eyelids", "difficulty_swallowing", "slurred_speech"},
		[]string{"fatigue", "breathing_difficulties", "weakness_in_arms"})

	c.addProfile("Amyotrophic Lateral Sclerosis", domain.MOSTLY_SPORADIC,
		[]string{"muscle_weakness", "muscle_atrophy", "fasciculations", "speech_problems", "difficulty_swallowing"},
		[]string{"breathing_problems", "cramping", "stiffness"})

	c.addProfile("Wilson Disease", domain.AUTOSOMAL_RECESSIVE,
		[]string{"liver_problems", "neurological_symptoms", "psychiatric_symptoms", "tremor", "dystonia"},
		[]string{"kayser_fleischer_rings", "hepatitis", "cirrhosis"})

	c.addProfile("Duchenne Muscular Dystrophy", domain.X_LINKED,
		[]string{"muscle_weakness", "muscle_atrophy", "contractures", "scoliosis", "cardiomyopathy"},
		[]string{"delayed_walking", "frequent_falls", "enlarged_calves"})

	c.addProfile("Fabry Disease", domain.X_LINKED,
		[]string{"pain", "burning_sensation", "rash", "kidney_problems", "heart_problems"},
		[]string{"hearing_loss", "corneal_deposits", "gastrointestinal_problems"})

	c.addProfile("Gaucher Disease", domain.AUTOSOMAL_RECESSIVE,
		[]string{"fatigue", "bone_pain", "enlarged_liver", "enlarged_spleen", "bleeding"},
		[]string{"bruising", "anemia", "bone_fractures"})

	c.addProfile("Pompe Disease", domain.AUTOSOMAL_RECESSIVE,
		[]string{"muscle_weakness", "breathing_problems", "heart_problems", "feeding_difficulties"},
		[]string{"enlarged_tongue", "poor_muscle_tone"})

	c.addProfile("Tay-Sachs Disease", domain.AUTOSOMAL_RECESSIVE,
		[]string{"developmental_delay", "seizures", "vision_loss", "hearing_loss", "muscle_weakness"},
		[]string{"exaggerated_startle_response", "cherry_red_spot"})
}

// initializeSynonyms sets up alternate phrasings keyed by normalized catalog
// symptom. A synonym matches when it appears as a substring of the normalized
// patient symptom.
func (c *Catalog) initializeSynonyms() {
	c.synonyms["involuntary movements"] = []string{"chorea", "dyskinesia", "abnormal movements", "uncontrolled movements"}
	c.synonyms["muscle weakness"] = []string{"weakness", "fatigue", "tired muscles", "muscle fatigue"}
	c.synonyms["difficulty swallowing"] = []string{"dysphagia", "swallowing problems", "trouble swallowing"}
	c.synonyms["double vision"] = []string{"diplopia", "seeing double", "vision problems"}
	c.synonyms["chronic cough"] = []string{"persistent cough", "ongoing cough", "cough"}
	c.synonyms["thick mucus"] = []string{"sticky mucus", "viscous sputum", "thick sputum"}
	c.synonyms["recurrent lung infections"] = []string{"repeated pneumonia", "frequent respiratory infections"}
}

// initializeLabRanges sets up normal reference intervals. The recommendation
// engine reads the upper bounds of alt, ast and creatinine for its referral
// triggers.
func (c *Catalog) initializeLabRanges() {
	c.labRanges["hemoglobin"] = LabRange{12.0, 16.0}
	c.labRanges["white_blood_cells"] = LabRange{4.0, 11.0}
	c.labRanges["platelets"] = LabRange{150, 450}
	c.labRanges["glucose"] = LabRange{70, 100}
	c.labRanges["creatinine"] = LabRange{0.6, 1.2}
	c.labRanges["alt"] = LabRange{7, 56}
	c.labRanges["ast"] = LabRange{10, 40}
	c.labRanges["bilirubin"] = LabRange{0.2, 1.2}
	c.labRanges["cholesterol"] = LabRange{125, 200}
	c.labRanges["triglycerides"] = LabRange{50, 150}
}
