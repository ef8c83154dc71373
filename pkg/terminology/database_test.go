package terminology

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConceptsBuild(t *testing.T) {
	db, idx, err := Build(DefaultConcepts())
	require.NoError(t, err)
	assert.Equal(t, 20, db.Len())

	for _, c := range db.Concepts() {
		assert.NotEmpty(t, c.Keywords, c.ID)
		assert.True(t, c.Category.Valid(), c.ID)
		assert.GreaterOrEqual(t, c.BaseConfidence, 0.0)
		assert.LessOrEqual(t, c.BaseConfidence, 1.0)
		assert.Contains(t, idx.Lookup(c.Keywords[0]), c.ID)
	}
}

func TestBuildIndexesNameAsKeyword(t *testing.T) {
	_, idx, err := Build(DefaultConcepts())
	require.NoError(t, err)

	assert.Equal(t, []string{"C1963177"}, idx.Lookup("muscle pain"))
	assert.Equal(t, []string{"C1262477"}, idx.Lookup("weight loss"))
	assert.Equal(t, []string{"C0004093"}, idx.Lookup("asthenia"))
	assert.True(t, idx.Contains("blurred vision"))
}

func TestBuildSharedKeywordAccumulatesIDs(t *testing.T) {
	_, idx, err := Build(DefaultConcepts())
	require.NoError(t, err)

	assert.Equal(t, []string{"C4227880", "C0033774"}, idx.Lookup("skin irritation"))
	// "fever" is both a keyword and the lowercased name; it must not be listed twice.
	assert.Equal(t, []string{"C0015967"}, idx.Lookup("fever"))
}

func TestBuildNormalizesKeywords(t *testing.T) {
	db, idx, err := Build([]Concept{{
		ID:             "X1",
		Name:           "Hiccups",
		Keywords:       []string{"  Hiccup ", "", "SINGULTUS"},
		BaseConfidence: 0.5,
		Category:       CategoryGeneral,
	}})
	require.NoError(t, err)

	c, ok := db.Lookup("X1")
	require.True(t, ok)
	assert.Equal(t, []string{"hiccup", "singultus"}, c.Keywords)
	assert.Equal(t, []string{"hiccup", "singultus", "hiccups"}, idx.Keywords())
}

func TestBuildRejectsMalformedConcepts(t *testing.T) {
	valid := Concept{ID: "A", Name: "A", Keywords: []string{"a"}, BaseConfidence: 0.5, Category: CategoryPain}

	cases := map[string]func(c *Concept){
		"missing id":       func(c *Concept) { c.ID = " " },
		"missing name":     func(c *Concept) { c.Name = "" },
		"no keywords":      func(c *Concept) { c.Keywords = []string{" "} },
		"confidence high":  func(c *Concept) { c.BaseConfidence = 1.5 },
		"confidence below": func(c *Concept) { c.BaseConfidence = -0.1 },
		"bad category":     func(c *Concept) { c.Category = "cosmic" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid
			c.Keywords = append([]string(nil), valid.Keywords...)
			mutate(&c)
			_, _, err := Build([]Concept{c})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConcept), err.Error())
		})
	}
}

func TestBuildRejectsDuplicateIDs(t *testing.T) {
	c := Concept{ID: "A", Name: "A", Keywords: []string{"a"}, BaseConfidence: 0.5, Category: CategoryPain}
	_, _, err := Build([]Concept{c, c})
	require.ErrorIs(t, err, ErrDuplicateConcept)
}

func TestLookupReturnsCopy(t *testing.T) {
	db, _ := MustBuild(DefaultConcepts())

	c, ok := db.Lookup("C0018681")
	require.True(t, ok)
	assert.Equal(t, "Headache", c.Name)
	c.Keywords[0] = "mutated"

	again, _ := db.Lookup("C0018681")
	assert.Equal(t, "headache", again.Keywords[0])

	_, ok = db.Lookup("C9999999")
	assert.False(t, ok)
}

func TestSearchByNameAndKeyword(t *testing.T) {
	db, _ := MustBuild(DefaultConcepts())

	results := db.Search("Vision")
	require.Len(t, results, 1)
	assert.Equal(t, "C0344232", results[0].ID)
	assert.Equal(t, MatchInName, results[0].MatchIn)

	results = db.Search("migraine")
	require.Len(t, results, 1)
	assert.Equal(t, "C0018681", results[0].ID)
	assert.Equal(t, MatchInKeywords, results[0].MatchIn)

	// "pain" hits names first, keywords second, each concept once.
	results = db.Search("pain")
	ids := map[string]string{}
	for _, r := range results {
		_, dup := ids[r.ID]
		assert.False(t, dup, r.ID)
		ids[r.ID] = r.MatchIn
	}
	assert.Equal(t, MatchInName, ids["C3807341"])
	assert.Equal(t, MatchInKeywords, ids["C0018681"])

	assert.Empty(t, db.Search("   "))
}

func TestStatistics(t *testing.T) {
	db, idx := MustBuild(DefaultConcepts())
	stats := db.Statistics(idx)

	assert.Equal(t, 20, stats.TotalConcepts)
	total := 0
	for _, c := range DefaultConcepts() {
		total += len(c.Keywords)
	}
	assert.Equal(t, total, stats.TotalKeywords)
	assert.Equal(t, idx.Len(), stats.IndexedKeywords)
	assert.Equal(t, 3, stats.Categories[CategoryGastrointestinal])
	assert.Equal(t, 1, stats.Categories[CategoryPain])
	assert.InDelta(t, float64(total)/20, stats.AvgKeywordsPerConcept, 0.05)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concepts.yaml")
	content := `concepts:
  - id: C0037384
    name: Sneezing
    category: respiratory
    confidence: 0.9
    keywords: [sneezing, sneeze, sneezes]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	concepts, err := Load(path)
	require.NoError(t, err)
	require.Len(t, concepts, 1)
	assert.Equal(t, CategoryRespiratory, concepts[0].Category)

	_, idx, err := Build(concepts)
	require.NoError(t, err)
	assert.Equal(t, []string{"C0037384"}, idx.Lookup("sneezing"))
}

func TestLoadRejectsUnknownCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concepts.yaml")
	content := "concepts:\n  - id: X\n    name: X\n    category: cosmic\n    confidence: 0.5\n    keywords: [x]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadDefaultsAndEmpty(t *testing.T) {
	concepts, err := Load("")
	require.NoError(t, err)
	assert.Len(t, concepts, 20)

	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("concepts: []\n"), 0o600))
	_, err = Load(path)
	require.ErrorIs(t, err, ErrInvalidConcept)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
