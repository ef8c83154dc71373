package symptoms

import "strings"

// FindDirect reports every word-bounded occurrence of an indexed keyword,
// one match per concept sharing the keyword. Negated occurrences are skipped.
func (d *Detector) FindDirect(text string) []Match {
	var matches []Match
	for _, kw := range d.keywords {
		if !strings.Contains(text, kw.keyword) {
			continue
		}
		for _, loc := range kw.re.FindAllStringIndex(text, -1) {
			if d.IsNegated(text, loc[0], loc[1]) {
				continue
			}
			for _, id := range kw.ids {
				info := d.concepts[id]
				matches = append(matches, d.newMatch(text, loc[0], loc[1], id, info.name, info.confidence, StrategyDirect, ""))
			}
		}
	}
	return matches
}

// FindPhrase reports an intensifier immediately followed by an indexed
// single-word keyword, scaling the concept's confidence by the intensifier.
func (d *Detector) FindPhrase(text string) []Match {
	var matches []Match
	tokens := tokenize(text)
	for i := 0; i+1 < len(tokens); i++ {
		modifier, next := tokens[i], tokens[i+1]
		factor, ok := d.intensifiers[modifier.text]
		if !ok || next.text == "" || !d.index.Contains(next.text) {
			continue
		}
		if d.negationScope == NegationScopeAll && d.IsNegated(text, modifier.start, next.end) {
			continue
		}
		prefix := titleWord(modifier.text)
		for _, id := range d.index.Lookup(next.text) {
			info := d.concepts[id]
			confidence := round2(min(1.0, info.confidence*factor))
			matches = append(matches, d.newMatch(text, modifier.start, next.end, id, prefix+" "+info.name, confidence, StrategyPhrase, modifier.text))
		}
	}
	return matches
}

// FindContextual pairs the first occurrence of each body-part word with the
// first occurrence of each pain indicator lying within the proximity window.
func (d *Detector) FindContextual(text string) []Match {
	var matches []Match
	for _, bp := range d.bodyParts {
		bodyLoc := bp.re.FindStringIndex(text)
		if bodyLoc == nil {
			continue
		}
		bodyPos := charOffset(text, bodyLoc[0])
		for _, pi := range d.painIndicators {
			painLoc := pi.re.FindStringIndex(text)
			if painLoc == nil {
				continue
			}
			if abs(bodyPos-charOffset(text, painLoc[0])) > d.proximityWindow {
				continue
			}
			start, end := min(bodyLoc[0], painLoc[0]), max(bodyLoc[1], painLoc[1])
			if d.negationScope == NegationScopeAll && d.IsNegated(text, start, end) {
				continue
			}
			name := titleWord(bp.word) + " " + titleWord(pi.word)
			matches = append(matches, d.newMatch(text, start, end, bp.conceptID, name, d.contextualConfidence, StrategyContextual, ""))
		}
	}
	return matches
}

// IsNegated reports whether a negation word appears in the characters just
// before the match. start and end are byte offsets into the normalized text.
func (d *Detector) IsNegated(text string, start, end int) bool {
	if start <= 0 || start > len(text) {
		return false
	}
	window := text[windowStart(text, start, d.negationWindow):start]
	return d.negation.MatchString(window)
}

func (d *Detector) newMatch(text string, start, end int, id, name string, confidence float64, strategy Strategy, intensity string) Match {
	return Match{
		ConceptID:    id,
		Name:         name,
		DetectedText: text[start:end],
		Start:        charOffset(text, start),
		End:          charOffset(text, end),
		Confidence:   confidence,
		Category:     d.concepts[id].category,
		Strategy:     strategy,
		Intensity:    intensity,
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
