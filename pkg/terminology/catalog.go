package terminology

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Confidence tiers reflect how specific a concept's keyword set is.
const (
	ConfidenceHigh   = 0.95
	ConfidenceMedium = 0.90
	ConfidenceLow    = 0.85
)

// SemanticTypeSignOrSymptom is the UMLS semantic type shared by every default concept.
const SemanticTypeSignOrSymptom = "T184"

type Concept struct {
	ID             string   `yaml:"id" json:"concept_id"`
	Name           string   `yaml:"name" json:"name"`
	Keywords       []string `yaml:"keywords" json:"keywords"`
	BaseConfidence float64  `yaml:"confidence" json:"base_confidence"`
	Category       Category `yaml:"category" json:"category"`
}

type catalogFile struct {
	Concepts []Concept `yaml:"concepts"`
}

// Load reads a concept catalog from YAML. An empty path selects the built-in set.
func Load(path string) ([]Concept, error) {
	if path == "" {
		return DefaultConcepts(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading concept catalog: %w", err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("parsing concept catalog: %w", err)
	}
	if len(file.Concepts) == 0 {
		return nil, fmt.Errorf("concept catalog %s is empty: %w", path, ErrInvalidConcept)
	}
	return file.Concepts, nil
}

// DefaultConcepts returns the verified symptom concepts bundled with the engine.
func DefaultConcepts() []Concept {
	return []Concept{
		{
			ID:   "C3807341",
			Name: "Chest Pain",
			Keywords: []string{
				"chest pain", "chest ache", "chest discomfort", "thoracic pain",
				"pain in chest", "chest hurts", "chest pressure", "chest tightness",
				"heart pain", "cardiac pain", "chest burning",
			},
			BaseConfidence: ConfidenceHigh,
			Category:       CategoryCardiovascular,
		},
		{
			ID:   "C4230442",
			Name: "Dyspnea",
			Keywords: []string{
				"shortness of breath", "difficulty breathing", "dyspnea", "breathless",
				"can't breathe", "breathing problems", "respiratory distress",
				"labored breathing", "air hunger", "breathlessness", "winded",
			},
			BaseConfidence: ConfidenceHigh,
			Category:       CategoryRespiratory,
		},
		{
			ID:   "C0004093",
			Name: "Asthenia",
			Keywords: []string{
				"asthenia", "weakness", "weak", "general weakness", "body weakness",
				"muscle weakness", "feeling weak", "lack of strength",
			},
			BaseConfidence: ConfidenceLow,
			Category:       CategoryGeneral,
		},
		{
			ID:   "C0015967",
			Name: "Fever",
			Keywords: []string{
				"fever", "febrile", "high temperature", "pyrexia", "hyperthermia",
				"hot", "burning up", "feverish", "temp", "temperature", "running a fever",
			},
			BaseConfidence: ConfidenceHigh,
			Category:       CategorySystemic,
		},
		{
			ID:   "C0018681",
			Name: "Headache",
			Keywords: []string{
				"headache", "head pain", "migraine", "head ache", "cephalgia",
				"cranial pain", "head hurts", "pain in head", "head throbbing",
				"skull pain", "head pounding",
			},
			BaseConfidence: ConfidenceHigh,
			Category:       CategoryNeurological,
		},
		{
			ID:   "C3554470",
			Name: "Nausea",
			Keywords: []string{
				"nausea", "nauseous", "nauseated", "queasy", "sick to stomach",
				"feel sick", "upset stomach", "queasiness", "stomach upset",
				"motion sickness", "feeling nauseous",
			},
			BaseConfidence: ConfidenceMedium,
			Category:       CategoryGastrointestinal,
		},
		{
			ID:   "C4230730",
			Name: "Vomiting",
			Keywords: []string{
				"vomiting", "vomit", "throwing up", "puking", "retching",
				"emesis", "sick", "brought up", "regurgitation", "upchuck",
			},
			BaseConfidence: ConfidenceHigh,
			Category:       CategoryGastrointestinal,
		},
		{
			ID:   "C0012833",
			Name: "Dizziness",
			Keywords: []string{
				"dizziness", "dizzy", "lightheaded", "vertigo", "spinning",
				"unsteady", "balance problems", "off balance", "wobbly",
				"faint", "lightheadedness", "room spinning",
			},
			BaseConfidence: ConfidenceMedium,
			Category:       CategoryNeurological,
		},
		{
			ID:   "C0030193",
			Name: "Pain",
			Keywords: []string{
				"pain", "ache", "aching", "hurt", "hurting", "sore", "painful",
				"tender", "throbbing", "sharp pain", "dull pain", "burning pain",
				"stabbing", "cramping", "discomfort",
			},
			BaseConfidence: ConfidenceLow,
			Category:       CategoryPain,
		},
		{
			ID:   "C0015672",
			Name: "Fatigue",
			Keywords: []string{
				"fatigue", "tired", "exhausted", "exhaustion", "weary",
				"lack of energy", "run down", "worn out", "drained", "lethargic",
				"sleepy", "drowsy", "feeling tired",
			},
			BaseConfidence: ConfidenceLow,
			Category:       CategorySystemic,
		},
		{
			ID:   "C3554472",
			Name: "Diarrhea",
			Keywords: []string{
				"diarrhea", "loose stools", "watery stools", "frequent bowel movements",
				"runny stool", "liquid stool", "bowel urgency",
			},
			BaseConfidence: ConfidenceMedium,
			Category:       CategoryGastrointestinal,
		},
		{
			ID:   "C1963177",
			Name: "Muscle Pain",
			Keywords: []string{
				"muscle pain", "muscle ache", "muscle soreness", "myalgia",
				"muscle cramps", "muscle stiffness", "sore muscles", "muscle tenderness",
			},
			BaseConfidence: ConfidenceMedium,
			Category:       CategoryMusculoskeletal,
		},
		{
			ID:   "C1969971",
			Name: "Insomnia",
			Keywords: []string{
				"insomnia", "sleeplessness", "can't sleep", "difficulty sleeping",
				"trouble sleeping", "sleep problems", "unable to sleep",
				"sleep disturbance", "restless sleep",
			},
			BaseConfidence: ConfidenceMedium,
			Category:       CategorySleep,
		},
		{
			ID:   "C4227880",
			Name: "Rash",
			Keywords: []string{
				"rash", "skin rash", "eruption", "skin eruption", "skin lesions",
				"red spots", "skin irritation", "dermatitis",
			},
			BaseConfidence: ConfidenceMedium,
			Category:       CategoryDermatological,
		},
		{
			ID:   "C3160712",
			Name: "Palpitations",
			Keywords: []string{
				"palpitations", "heart palpitations", "heart racing", "rapid heartbeat",
				"irregular heartbeat", "heart fluttering", "heart pounding",
				"fast pulse", "skipped beats",
			},
			BaseConfidence: ConfidenceMedium,
			Category:       CategoryCardiovascular,
		},
		{
			ID:   "C4228281",
			Name: "Anxiety",
			Keywords: []string{
				"anxiety", "anxious", "worried", "nervous", "panic",
				"restless", "on edge", "stressed", "tense", "apprehensive",
			},
			BaseConfidence: ConfidenceLow,
			Category:       CategoryPsychological,
		},
		{
			ID:   "C0009676",
			Name: "Confusion",
			Keywords: []string{
				"confusion", "confused", "disoriented", "bewildered",
				"mental fog", "cloudy thinking", "difficulty concentrating",
			},
			BaseConfidence: ConfidenceMedium,
			Category:       CategoryNeurological,
		},
		{
			ID:   "C0344232",
			Name: "Blurred Vision",
			Keywords: []string{
				"blurred vision", "blurry vision", "vision problems", "fuzzy vision",
				"difficulty seeing", "vision disturbance", "unclear vision",
			},
			BaseConfidence: ConfidenceMedium,
			Category:       CategoryVisual,
		},
		{
			ID:   "C0033774",
			Name: "Itching",
			Keywords: []string{
				"itching", "itchy", "pruritus", "scratching", "skin irritation",
				"urge to scratch", "tickling sensation",
			},
			BaseConfidence: ConfidenceMedium,
			Category:       CategoryDermatological,
		},
		{
			ID:   "C1262477",
			Name: "Weight Loss",
			Keywords: []string{
				"weight loss", "losing weight", "dropped weight", "lost pounds",
				"unintentional weight loss", "weight reduction",
			},
			BaseConfidence: ConfidenceMedium,
			Category:       CategoryGeneral,
		},
	}
}
