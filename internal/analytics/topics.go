package analytics

import (
	"cmp"
	"slices"
)

// TopicDetector scores each catalogue topic by the share of document tokens
// that are distinct keyword hits.
type TopicDetector struct {
	topics []topicKeywords
}

func NewTopicDetector(lex *Lexicon) *TopicDetector {
	return &TopicDetector{topics: lex.topics}
}

// Detect returns the matching topics ordered by relevance, highest first.
// Topics without a match are omitted; ties keep catalogue order.
func (d *TopicDetector) Detect(tokens []string) []TopicScore {
	scores := []TopicScore{}
	if len(tokens) == 0 {
		return scores
	}

	set := tokenSet(tokens)
	total := float64(len(tokens))
	for _, t := range d.topics {
		if matches := overlap(set, t.keywords); matches > 0 {
			scores = append(scores, TopicScore{Topic: t.name, Relevance: float64(matches) / total})
		}
	}

	slices.SortStableFunc(scores, func(a, b TopicScore) int {
		return cmp.Compare(b.Relevance, a.Relevance)
	})
	return scores
}

// keywords returns the union of every topic's keywords.
func (d *TopicDetector) keywords() map[string]struct{} {
	all := make(map[string]struct{})
	for _, t := range d.topics {
		for w := range t.keywords {
			all[w] = struct{}{}
		}
	}
	return all
}
