package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentimentScorer_Score(t *testing.T) {
	lex := loadEnglishLexicon(t)
	tokenizer := NewTokenizer(lex)
	scorer := NewSentimentScorer(lex)

	tests := []struct {
		name           string
		text           string
		ratings        Ratings
		expectedScore  float64
		expectedLabel  SentimentLabel
		expectedPos    int
		expectedNeg    int
		expectedAvgRat float64
	}{
		{
			name:           "negative words and lowest ratings",
			text:           "dirty, loud, wifi never works",
			ratings:        allRatings(1),
			expectedScore:  -0.76,
			expectedLabel:  SentimentNegative,
			expectedNeg:    2,
			expectedAvgRat: 1,
		},
		{
			name:           "no text and highest ratings",
			ratings:        allRatings(5),
			expectedScore:  0.6,
			expectedLabel:  SentimentPositive,
			expectedAvgRat: 5,
		},
		{
			name:           "no ratings falls back to neutral rating",
			text:           "clean quiet desk",
			expectedScore:  0.4 * 2.0 / 3.0,
			expectedLabel:  SentimentNeutral,
			expectedPos:    2,
			expectedAvgRat: 3,
		},
		{
			name:           "repeated words counted once",
			text:           "bad bad bad coffee",
			ratings:        Ratings{Overall: rating(3)},
			expectedScore:  0.4 * -1.0 / 4.0,
			expectedLabel:  SentimentNeutral,
			expectedNeg:    1,
			expectedAvgRat: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := scorer.Score(tokenizer.Tokenize(tt.text), tt.ratings)
			assert.InDelta(t, tt.expectedScore, result.Score, 1e-9)
			assert.Equal(t, tt.expectedLabel, result.Label)
			assert.Equal(t, tt.expectedPos, result.PositiveWords)
			assert.Equal(t, tt.expectedNeg, result.NegativeWords)
			assert.InDelta(t, tt.expectedAvgRat, result.AverageRating, 1e-9)
		})
	}
}

func TestSentimentScorer_Bounds(t *testing.T) {
	lex := loadEnglishLexicon(t)
	tokenizer := NewTokenizer(lex)
	scorer := NewSentimentScorer(lex)

	texts := []string{"", "bad", "great", "dirty loud slow broken", "clean quiet fast great"}
	for _, text := range texts {
		for v := MinRating; v <= MaxRating; v++ {
			result := scorer.Score(tokenizer.Tokenize(text), allRatings(v))
			assert.GreaterOrEqual(t, result.Score, -1.0)
			assert.LessOrEqual(t, result.Score, 1.0)
		}
	}
}

func TestSentimentLabel_Thresholds(t *testing.T) {
	assert.Equal(t, SentimentNeutral, sentimentLabel(0.3))
	assert.Equal(t, SentimentPositive, sentimentLabel(0.31))
	assert.Equal(t, SentimentNeutral, sentimentLabel(-0.3))
	assert.Equal(t, SentimentNegative, sentimentLabel(-0.31))
}
