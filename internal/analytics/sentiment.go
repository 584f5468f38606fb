package analytics

const (
	textSentimentWeight   = 0.4
	ratingSentimentWeight = 0.6

	positiveThreshold = 0.3
	negativeThreshold = -0.3

	neutralRating = 3.0
)

// SentimentScorer blends lexicon polarity with the item's own ratings:
// 0.4 * (pos - neg) / tokens + 0.6 * (mean rating - 3) / 2.
type SentimentScorer struct {
	positive map[string]struct{}
	negative map[string]struct{}
}

func NewSentimentScorer(lex *Lexicon) *SentimentScorer {
	return &SentimentScorer{positive: lex.positive, negative: lex.negative}
}

func (s *SentimentScorer) Score(tokens []string, ratings Ratings) SentimentResult {
	set := tokenSet(tokens)
	pos := overlap(set, s.positive)
	neg := overlap(set, s.negative)

	var text float64
	if len(tokens) > 0 {
		text = float64(pos-neg) / float64(len(tokens))
	}

	avg := neutralRating
	if values := ratings.Values(); len(values) > 0 {
		avg = mean(intsToFloats(values))
	}
	rating := (avg - neutralRating) / 2

	combined := textSentimentWeight*text + ratingSentimentWeight*rating

	return SentimentResult{
		Score:         combined,
		Label:         sentimentLabel(combined),
		PositiveWords: pos,
		NegativeWords: neg,
		AverageRating: avg,
	}
}

func sentimentLabel(score float64) SentimentLabel {
	switch {
	case score > positiveThreshold:
		return SentimentPositive
	case score < negativeThreshold:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}
