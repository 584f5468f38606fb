package analytics

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const minTokenLength = 3

// Tokenizer lowercases text, strips punctuation and drops stopwords and
// tokens shorter than three characters. No stemming is applied.
type Tokenizer struct {
	stopwords map[string]struct{}
}

func NewTokenizer(lex *Lexicon) *Tokenizer {
	return &Tokenizer{stopwords: lex.stopwords}
}

func (t *Tokenizer) Tokenize(text string) []string {
	tokens := []string{}
	if text == "" {
		return tokens
	}

	normalized := strings.Map(func(r rune) rune {
		if isWordRune(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, strings.ToLower(text))

	for _, field := range strings.Fields(normalized) {
		if utf8.RuneCountInString(field) < minTokenLength {
			continue
		}
		if _, stop := t.stopwords[field]; stop {
			continue
		}
		tokens = append(tokens, field)
	}
	return tokens
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

// overlap counts the distinct tokens that appear in words.
func overlap(tokens map[string]struct{}, words map[string]struct{}) int {
	small, large := tokens, words
	if len(small) > len(large) {
		small, large = large, small
	}
	n := 0
	for w := range small {
		if _, ok := large[w]; ok {
			n++
		}
	}
	return n
}
