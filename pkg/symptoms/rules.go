package symptoms

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var ErrInvalidRules = errors.New("invalid matching rules")

// NegationScope selects which matchers consult the negation filter.
type NegationScope string

const (
	// NegationScopeAll checks negation for direct, phrase and contextual matches.
	NegationScopeAll NegationScope = "all"
	// NegationScopeDirect checks negation for direct matches only.
	NegationScopeDirect NegationScope = "direct"
)

func (s NegationScope) Valid() bool {
	return s == NegationScopeAll || s == NegationScopeDirect
}

// Intensity factors applied to a concept's base confidence.
const (
	IntensityHigh   = 1.3
	IntensityMedium = 1.2
	IntensityLow    = 1.1
	IntensityDull   = 0.9
	IntensityMild   = 0.8
	IntensitySlight = 0.7
)

type Intensifier struct {
	Word   string  `yaml:"word" json:"word"`
	Factor float64 `yaml:"factor" json:"factor"`
}

type BodyPart struct {
	Word      string `yaml:"word" json:"word"`
	ConceptID string `yaml:"concept_id" json:"concept_id"`
}

type Rules struct {
	Intensifiers         []Intensifier `yaml:"intensifiers" json:"intensifiers"`
	NegationWords        []string      `yaml:"negation_words" json:"negation_words"`
	NegationWindow       int           `yaml:"negation_window" json:"negation_window"`
	NegationScope        NegationScope `yaml:"negation_scope" json:"negation_scope"`
	BodyParts            []BodyPart    `yaml:"body_parts" json:"body_parts"`
	PainIndicators       []string      `yaml:"pain_indicators" json:"pain_indicators"`
	ProximityWindow      int           `yaml:"proximity_window" json:"proximity_window"`
	ContextualConfidence float64       `yaml:"contextual_confidence" json:"contextual_confidence"`
}

// LoadRules reads matching rules from YAML on top of DefaultRules, so a file
// only needs the settings it overrides. An empty path returns the defaults.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Rules{}, fmt.Errorf("reading rules: %w", err)
	}
	if err := yaml.Unmarshal(content, &rules); err != nil {
		return Rules{}, fmt.Errorf("parsing rules: %w", err)
	}
	return rules, nil
}

func DefaultRules() Rules {
	return Rules{
		Intensifiers: []Intensifier{
			{Word: "severe", Factor: IntensityMedium},
			{Word: "intense", Factor: IntensityMedium},
			{Word: "extreme", Factor: IntensityHigh},
			{Word: "terrible", Factor: IntensityMedium},
			{Word: "mild", Factor: IntensityMild},
			{Word: "slight", Factor: IntensitySlight},
			{Word: "minor", Factor: IntensitySlight},
			{Word: "chronic", Factor: IntensityLow},
			{Word: "persistent", Factor: IntensityLow},
			{Word: "constant", Factor: IntensityLow},
			{Word: "acute", Factor: IntensityMedium},
			{Word: "sharp", Factor: IntensityLow},
			{Word: "dull", Factor: IntensityDull},
		},
		NegationWords: []string{
			"no", "not", "without", "never", "absent", "free", "clear",
			"denies", "negative", "lacks", "missing",
		},
		NegationWindow: 20,
		NegationScope:  NegationScopeAll,
		BodyParts: []BodyPart{
			{Word: "head", ConceptID: "C0018681"},
			{Word: "chest", ConceptID: "C3807341"},
			{Word: "stomach", ConceptID: "C3554470"},
			{Word: "abdomen", ConceptID: "C3554470"},
			{Word: "muscle", ConceptID: "C1963177"},
			{Word: "muscles", ConceptID: "C1963177"},
			{Word: "heart", ConceptID: "C3160712"},
		},
		PainIndicators:       []string{"pain", "ache", "hurt", "sore", "discomfort", "aching"},
		ProximityWindow:      40,
		ContextualConfidence: 0.85,
	}
}

func (r Rules) validate() error {
	for _, in := range r.Intensifiers {
		if in.Word == "" || in.Factor <= 0 {
			return fmt.Errorf("intensifier %q factor %v: %w", in.Word, in.Factor, ErrInvalidRules)
		}
	}
	if len(r.NegationWords) == 0 {
		return fmt.Errorf("negation vocabulary empty: %w", ErrInvalidRules)
	}
	if r.NegationWindow <= 0 || r.ProximityWindow <= 0 {
		return fmt.Errorf("windows must be positive: %w", ErrInvalidRules)
	}
	if !r.NegationScope.Valid() {
		return fmt.Errorf("negation scope %q: %w", r.NegationScope, ErrInvalidRules)
	}
	if r.ContextualConfidence < 0 || r.ContextualConfidence > 1 {
		return fmt.Errorf("contextual confidence %v outside [0,1]: %w", r.ContextualConfidence, ErrInvalidRules)
	}
	return nil
}
