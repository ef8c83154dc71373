package terminology

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrInvalidConcept   = errors.New("invalid concept")
	ErrDuplicateConcept = errors.New("duplicate concept id")
)

// Database holds the concepts in catalog order. It is never mutated after Build.
type Database struct {
	concepts map[string]Concept
	order    []string
}

// Index maps a lowercase keyword to the ids of the concepts it signals.
// Keys keep first-insertion order so that matching is deterministic.
type Index struct {
	entries map[string][]string
	keys    []string
}

// SearchResult is a concept found by Search together with where the query hit.
type SearchResult struct {
	Concept
	MatchIn string `json:"match_in"`
}

const (
	MatchInName     = "name"
	MatchInKeywords = "keywords"
)

type Statistics struct {
	TotalConcepts         int              `json:"total_concepts"`
	TotalKeywords         int              `json:"total_keywords"`
	IndexedKeywords       int              `json:"indexed_keywords"`
	Categories            map[Category]int `json:"categories"`
	AvgKeywordsPerConcept float64          `json:"avg_keywords_per_concept"`
}

// Build validates the concepts and derives the keyword index. Every concept's
// lowercased name is indexed alongside its explicit keywords.
func Build(concepts []Concept) (*Database, *Index, error) {
	db := &Database{
		concepts: make(map[string]Concept, len(concepts)),
		order:    make([]string, 0, len(concepts)),
	}
	idx := &Index{entries: make(map[string][]string)}

	for i, c := range concepts {
		normalized, err := normalizeConcept(c)
		if err != nil {
			return nil, nil, fmt.Errorf("concept #%d (%q): %w", i, c.ID, err)
		}
		if _, exists := db.concepts[normalized.ID]; exists {
			return nil, nil, fmt.Errorf("concept %q: %w", normalized.ID, ErrDuplicateConcept)
		}
		db.concepts[normalized.ID] = normalized
		db.order = append(db.order, normalized.ID)

		for _, kw := range normalized.Keywords {
			idx.add(kw, normalized.ID)
		}
		idx.add(strings.ToLower(normalized.Name), normalized.ID)
	}

	return db, idx, nil
}

// MustBuild is Build for static data known to be valid.
func MustBuild(concepts []Concept) (*Database, *Index) {
	db, idx, err := Build(concepts)
	if err != nil {
		panic(err)
	}
	return db, idx
}

func normalizeConcept(c Concept) (Concept, error) {
	out := Concept{
		ID:             strings.TrimSpace(c.ID),
		Name:           strings.TrimSpace(c.Name),
		BaseConfidence: c.BaseConfidence,
		Category:       c.Category,
	}
	if out.ID == "" {
		return Concept{}, fmt.Errorf("missing id: %w", ErrInvalidConcept)
	}
	if out.Name == "" {
		return Concept{}, fmt.Errorf("missing name: %w", ErrInvalidConcept)
	}
	if math.IsNaN(out.BaseConfidence) || out.BaseConfidence < 0 || out.BaseConfidence > 1 {
		return Concept{}, fmt.Errorf("confidence %v outside [0,1]: %w", out.BaseConfidence, ErrInvalidConcept)
	}
	if !out.Category.Valid() {
		return Concept{}, fmt.Errorf("unknown category %q: %w", out.Category, ErrInvalidConcept)
	}
	for _, kw := range c.Keywords {
		clean := strings.ToLower(strings.TrimSpace(kw))
		if clean == "" {
			continue
		}
		out.Keywords = append(out.Keywords, clean)
	}
	if len(out.Keywords) == 0 {
		return Concept{}, fmt.Errorf("no keywords: %w", ErrInvalidConcept)
	}
	return out, nil
}

func (idx *Index) add(keyword, id string) {
	ids, ok := idx.entries[keyword]
	if !ok {
		idx.keys = append(idx.keys, keyword)
	}
	for _, existing := range ids {
		if existing == id {
			return
		}
	}
	idx.entries[keyword] = append(ids, id)
}

// Lookup returns the concept ids signalled by keyword.
func (idx *Index) Lookup(keyword string) []string {
	ids := idx.entries[keyword]
	if len(ids) == 0 {
		return nil
	}
	return append([]string(nil), ids...)
}

func (idx *Index) Contains(keyword string) bool {
	_, ok := idx.entries[keyword]
	return ok
}

// Keywords returns every indexed keyword in insertion order.
func (idx *Index) Keywords() []string {
	return append([]string(nil), idx.keys...)
}

func (idx *Index) Len() int {
	return len(idx.keys)
}

// Lookup returns a copy of the concept with the given id.
func (db *Database) Lookup(id string) (Concept, bool) {
	c, ok := db.concepts[strings.TrimSpace(id)]
	if !ok {
		return Concept{}, false
	}
	return c.clone(), true
}

// Concepts returns copies of all concepts in catalog order.
func (db *Database) Concepts() []Concept {
	out := make([]Concept, 0, len(db.order))
	for _, id := range db.order {
		out = append(out, db.concepts[id].clone())
	}
	return out
}

func (db *Database) Len() int {
	return len(db.order)
}

// Search does a case-insensitive substring match against names, then keywords.
func (db *Database) Search(query string) []SearchResult {
	q := strings.ToLower(strings.TrimSpace(query))
	results := []SearchResult{}
	if q == "" {
		return results
	}
	for _, id := range db.order {
		c := db.concepts[id]
		switch {
		case strings.Contains(strings.ToLower(c.Name), q):
			results = append(results, SearchResult{Concept: c.clone(), MatchIn: MatchInName})
		case containsSubstring(c.Keywords, q):
			results = append(results, SearchResult{Concept: c.clone(), MatchIn: MatchInKeywords})
		}
	}
	return results
}

func (db *Database) Statistics(idx *Index) Statistics {
	stats := Statistics{
		TotalConcepts: len(db.order),
		Categories:    make(map[Category]int),
	}
	for _, id := range db.order {
		c := db.concepts[id]
		stats.Categories[c.Category]++
		stats.TotalKeywords += len(c.Keywords)
	}
	if idx != nil {
		stats.IndexedKeywords = idx.Len()
	}
	if stats.TotalConcepts > 0 {
		avg := float64(stats.TotalKeywords) / float64(stats.TotalConcepts)
		stats.AvgKeywordsPerConcept = math.Round(avg*10) / 10
	}
	return stats
}

func (c Concept) clone() Concept {
	c.Keywords = append([]string(nil), c.Keywords...)
	return c
}

func containsSubstring(values []string, q string) bool {
	for _, v := range values {
		if strings.Contains(v, q) {
			return true
		}
	}
	return false
}
