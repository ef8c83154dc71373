package symptoms

import (
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds compatibility forms and lowercases the text. All offsets
// reported by the engine refer to the normalized string.
func Normalize(text string) string {
	return strings.ToLower(norm.NFKC.String(text))
}

type token struct {
	text       string
	start, end int
}

// tokenize splits on whitespace and trims punctuation from both ends of each
// token, keeping byte positions of the trimmed token.
func tokenize(text string) []token {
	var tokens []token
	start := -1
	flush := func(end int) {
		raw := text[start:end]
		trimmedLeft := strings.TrimLeftFunc(raw, unicode.IsPunct)
		s := start + len(raw) - len(trimmedLeft)
		word := strings.TrimRightFunc(trimmedLeft, unicode.IsPunct)
		tokens = append(tokens, token{text: word, start: s, end: s + len(word)})
		start = -1
	}
	for i, r := range text {
		if unicode.IsSpace(r) {
			if start >= 0 {
				flush(i)
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		flush(len(text))
	}
	return tokens
}

// wordPattern anchors term at word boundaries. Boundaries are only added next
// to word characters, and the trailing one is optional so that inflections
// such as "hurts" can match "hurt".
func wordPattern(term string, trailing bool) *regexp.Regexp {
	var b strings.Builder
	first, _ := utf8.DecodeRuneInString(term)
	last, _ := utf8.DecodeLastRuneInString(term)
	if isWordRune(first) {
		b.WriteString(`\b`)
	}
	b.WriteString(regexp.QuoteMeta(term))
	if trailing && isWordRune(last) {
		b.WriteString(`\b`)
	}
	return regexp.MustCompile(b.String())
}

func isWordRune(r rune) bool {
	return r == '_' || (r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)))
}

// windowStart walks back n characters from the byte offset end.
func windowStart(text string, end, n int) int {
	i := end
	for n > 0 && i > 0 {
		_, size := utf8.DecodeLastRuneInString(text[:i])
		i -= size
		n--
	}
	return i
}

func charOffset(text string, byteOffset int) int {
	return utf8.RuneCountInString(text[:byteOffset])
}

func titleWord(s string) string {
	return cases.Title(language.English).String(s)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
