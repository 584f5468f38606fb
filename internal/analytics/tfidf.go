package analytics

import (
	"cmp"
	"math"
	"slices"
)

// TermFrequency maps each distinct token to its share of the document.
func TermFrequency(tokens []string) map[string]float64 {
	tf := make(map[string]float64, len(tokens))
	if len(tokens) == 0 {
		return tf
	}
	for _, tok := range tokens {
		tf[tok]++
	}
	total := float64(len(tokens))
	for tok, count := range tf {
		tf[tok] = count / total
	}
	return tf
}

// InverseDocumentFrequency computes ln(N/df) over the batch for every token
// whose document frequency reaches minDocFreq. Rarer tokens are left out.
func InverseDocumentFrequency(corpus [][]string, minDocFreq int) map[string]float64 {
	idf := make(map[string]float64)
	if len(corpus) == 0 {
		return idf
	}

	df := make(map[string]int)
	for _, doc := range corpus {
		for tok := range tokenSet(doc) {
			df[tok]++
		}
	}

	n := float64(len(corpus))
	for tok, freq := range df {
		if freq >= minDocFreq {
			idf[tok] = math.Log(n / float64(freq))
		}
	}
	return idf
}

// TFIDF weights the tokens present in both maps; tokens missing from idf are dropped.
func TFIDF(tf, idf map[string]float64) map[string]float64 {
	weights := make(map[string]float64, len(tf))
	for tok, freq := range tf {
		if w, ok := idf[tok]; ok {
			weights[tok] = freq * w
		}
	}
	return weights
}

type weightedTerm struct {
	term   string
	weight float64
}

// KeyPhrases returns up to n tokens with the highest TF-IDF weight. Equal
// weights keep the order in which the tokens first occur.
func KeyPhrases(tokens []string, idf map[string]float64, n int) []string {
	weights := TFIDF(TermFrequency(tokens), idf)
	phrases := []string{}
	if len(weights) == 0 || n <= 0 {
		return phrases
	}

	terms := make([]weightedTerm, 0, len(weights))
	seen := make(map[string]struct{}, len(weights))
	for _, tok := range tokens {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		if w, ok := weights[tok]; ok {
			terms = append(terms, weightedTerm{term: tok, weight: w})
		}
	}

	slices.SortStableFunc(terms, func(a, b weightedTerm) int {
		return cmp.Compare(b.weight, a.weight)
	})

	for i := 0; i < len(terms) && i < n; i++ {
		phrases = append(phrases, terms[i].term)
	}
	return phrases
}
