package symptoms

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/mediaid/platform/pkg/terminology"
)

// Strategy names the matcher that produced a match.
type Strategy string

const (
	StrategyDirect     Strategy = "direct"
	StrategyPhrase     Strategy = "phrase"
	StrategyContextual Strategy = "contextual"
)

func (s Strategy) Valid() bool {
	switch s {
	case StrategyDirect, StrategyPhrase, StrategyContextual:
		return true
	}
	return false
}

// Match is a single hit produced while scanning one text. Start and End are
// character offsets into the normalized text.
type Match struct {
	ConceptID    string
	Name         string
	DetectedText string
	Start        int
	End          int
	Confidence   float64
	Category     terminology.Category
	Strategy     Strategy
	Intensity    string
}

// Symptom is the enriched, deduplicated output record. Start and End are
// character offsets into Normalize(text), not into the raw input.
type Symptom struct {
	ConceptID     string               `json:"concept_id"`
	Name          string               `json:"name"`
	CanonicalName string               `json:"canonical_name"`
	DetectedText  string               `json:"detected_text"`
	Start         int                  `json:"start"`
	End           int                  `json:"end"`
	Confidence    float64              `json:"confidence"`
	Category      terminology.Category `json:"category"`
	Strategy      Strategy             `json:"match_strategy"`
	Intensity     string               `json:"intensity_modifier,omitempty"`
	KeywordCount  int                  `json:"keyword_count"`
	TypeIDs       []string             `json:"type_ids"`
}

type conceptInfo struct {
	name         string
	confidence   float64
	category     terminology.Category
	keywordCount int
}

type compiledKeyword struct {
	keyword string
	ids     []string
	re      *regexp.Regexp
}

type compiledTerm struct {
	word      string
	conceptID string
	re        *regexp.Regexp
}

// Detector runs the keyword matching pipeline. It only reads its fields after
// construction and is safe for concurrent use.
type Detector struct {
	db       *terminology.Database
	index    *terminology.Index
	concepts map[string]conceptInfo
	keywords []compiledKeyword

	intensifiers         map[string]float64
	negation             *regexp.Regexp
	negationWindow       int
	negationScope        NegationScope
	bodyParts            []compiledTerm
	painIndicators       []compiledTerm
	proximityWindow      int
	contextualConfidence float64
}

func NewDetector(db *terminology.Database, index *terminology.Index, rules Rules) (*Detector, error) {
	if db == nil || index == nil {
		return nil, fmt.Errorf("concept database and index required: %w", ErrInvalidRules)
	}
	if err := rules.validate(); err != nil {
		return nil, err
	}

	d := &Detector{
		db:                   db,
		index:                index,
		concepts:             make(map[string]conceptInfo, db.Len()),
		intensifiers:         make(map[string]float64, len(rules.Intensifiers)),
		negationWindow:       rules.NegationWindow,
		negationScope:        rules.NegationScope,
		proximityWindow:      rules.ProximityWindow,
		contextualConfidence: rules.ContextualConfidence,
	}

	for _, c := range db.Concepts() {
		d.concepts[c.ID] = conceptInfo{
			name:         c.Name,
			confidence:   c.BaseConfidence,
			category:     c.Category,
			keywordCount: len(c.Keywords),
		}
	}

	for _, kw := range index.Keywords() {
		d.keywords = append(d.keywords, compiledKeyword{
			keyword: kw,
			ids:     index.Lookup(kw),
			re:      wordPattern(kw, true),
		})
	}

	for _, in := range rules.Intensifiers {
		d.intensifiers[strings.ToLower(in.Word)] = in.Factor
	}

	words := make([]string, 0, len(rules.NegationWords))
	for _, w := range rules.NegationWords {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			words = append(words, regexp.QuoteMeta(w))
		}
	}
	d.negation = regexp.MustCompile(`\b(?:` + strings.Join(words, "|") + `)\b`)

	for _, bp := range rules.BodyParts {
		if _, ok := d.concepts[bp.ConceptID]; !ok {
			return nil, fmt.Errorf("body part %q maps to unknown concept %q: %w", bp.Word, bp.ConceptID, ErrInvalidRules)
		}
		word := strings.ToLower(bp.Word)
		d.bodyParts = append(d.bodyParts, compiledTerm{word: word, conceptID: bp.ConceptID, re: wordPattern(word, true)})
	}
	for _, p := range rules.PainIndicators {
		word := strings.ToLower(p)
		d.painIndicators = append(d.painIndicators, compiledTerm{word: word, re: wordPattern(word, false)})
	}

	return d, nil
}

// NewDefaultDetector builds the bundled concept set with the default rules.
func NewDefaultDetector() (*Detector, error) {
	db, idx, err := terminology.Build(terminology.DefaultConcepts())
	if err != nil {
		return nil, err
	}
	return NewDetector(db, idx, DefaultRules())
}

// LoadDetector builds a detector from a concepts file and a rules file. Empty
// paths fall back to the bundled defaults and a non-empty scope overrides the
// rules file.
func LoadDetector(conceptsPath, rulesPath string, scope NegationScope) (*Detector, error) {
	concepts, err := terminology.Load(conceptsPath)
	if err != nil {
		return nil, err
	}
	db, idx, err := terminology.Build(concepts)
	if err != nil {
		return nil, err
	}
	rules, err := LoadRules(rulesPath)
	if err != nil {
		return nil, err
	}
	if scope != "" {
		rules.NegationScope = scope
	}
	return NewDetector(db, idx, rules)
}

// Analyze returns the symptoms found in text, at most one per concept,
// ordered by descending confidence. Blank text yields an empty slice.
func (d *Detector) Analyze(text string) []Symptom {
	normalized := Normalize(text)
	if strings.TrimSpace(normalized) == "" {
		return []Symptom{}
	}

	var matches []Match
	matches = append(matches, d.FindDirect(normalized)...)
	matches = append(matches, d.FindPhrase(normalized)...)
	matches = append(matches, d.FindContextual(normalized)...)

	return d.Finalize(matches)
}

// Finalize lets intensified phrases replace the plain hits they cover, keeps
// the highest-confidence match per concept (first seen wins ties) and ranks
// the survivors.
func (d *Detector) Finalize(matches []Match) []Symptom {
	matches = supersedeByPhrase(matches)

	best := make(map[string]int, len(matches))
	var unique []Match
	for _, m := range matches {
		i, seen := best[m.ConceptID]
		if !seen {
			best[m.ConceptID] = len(unique)
			unique = append(unique, m)
			continue
		}
		if m.Confidence > unique[i].Confidence {
			unique[i] = m
		}
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].Confidence > unique[j].Confidence
	})

	out := make([]Symptom, 0, len(unique))
	for _, m := range unique {
		info := d.concepts[m.ConceptID]
		out = append(out, Symptom{
			ConceptID:     m.ConceptID,
			Name:          m.Name,
			CanonicalName: info.name,
			DetectedText:  m.DetectedText,
			Start:         m.Start,
			End:           m.End,
			Confidence:    round2(m.Confidence),
			Category:      info.category,
			Strategy:      m.Strategy,
			Intensity:     m.Intensity,
			KeywordCount:  info.keywordCount,
			TypeIDs:       []string{terminology.SemanticTypeSignOrSymptom},
		})
	}
	return out
}

func supersedeByPhrase(matches []Match) []Match {
	var phrases []Match
	for _, m := range matches {
		if m.Strategy == StrategyPhrase {
			phrases = append(phrases, m)
		}
	}
	if len(phrases) == 0 {
		return matches
	}

	kept := make([]Match, 0, len(matches))
	for _, m := range matches {
		if m.Strategy != StrategyPhrase && coveredBy(m, phrases) {
			continue
		}
		kept = append(kept, m)
	}
	return kept
}

func coveredBy(m Match, phrases []Match) bool {
	for _, p := range phrases {
		if p.ConceptID == m.ConceptID && p.Start <= m.Start && m.End <= p.End {
			return true
		}
	}
	return false
}

// Lookup returns the concept registered under id.
func (d *Detector) Lookup(id string) (terminology.Concept, bool) {
	return d.db.Lookup(id)
}

func (d *Detector) Search(query string) []terminology.SearchResult {
	return d.db.Search(query)
}

func (d *Detector) Statistics() terminology.Statistics {
	return d.db.Statistics(d.index)
}
