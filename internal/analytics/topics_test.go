package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicDetector_Detect(t *testing.T) {
	lex := DefaultLexicon()
	tokenizer := NewTokenizer(lex)
	detector := NewTopicDetector(lex)

	tests := []struct {
		name     string
		text     string
		expected []TopicScore
	}{
		{
			name: "ties keep catalogue order",
			text: "De wifi is traag en het bureau was vies",
			expected: []TopicScore{
				{Topic: "cleanliness", Relevance: 0.25},
				{Topic: "wifi", Relevance: 0.25},
				{Topic: "comfort", Relevance: 0.25},
			},
		},
		{
			name: "distinct keyword hits counted once",
			text: "koffie koffie printer stoel",
			expected: []TopicScore{
				{Topic: "amenities", Relevance: 0.5},
				{Topic: "comfort", Relevance: 0.25},
			},
		},
		{
			name:     "no matching keywords",
			text:     "helemaal niets bijzonders",
			expected: []TopicScore{},
		},
		{
			name:     "empty text",
			text:     "",
			expected: []TopicScore{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detector.Detect(tokenizer.Tokenize(tt.text))
			require.Len(t, got, len(tt.expected))
			for i := range tt.expected {
				assert.Equal(t, tt.expected[i].Topic, got[i].Topic)
				assert.InDelta(t, tt.expected[i].Relevance, got[i].Relevance, 1e-9)
			}
		})
	}
}

func TestTopicDetector_RelevanceBounds(t *testing.T) {
	lex := loadEnglishLexicon(t)
	tokenizer := NewTokenizer(lex)
	detector := NewTopicDetector(lex)

	texts := []string{
		"wifi",
		"wifi internet connection network",
		"the chair was comfortable but the room was cramped and cold",
		"coffee printer toilet parking",
	}
	for _, text := range texts {
		for _, topic := range detector.Detect(tokenizer.Tokenize(text)) {
			assert.Greater(t, topic.Relevance, 0.0, text)
			assert.LessOrEqual(t, topic.Relevance, 1.0, text)
		}
	}
}
