package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateInsights(t *testing.T) {
	tests := []struct {
		name     string
		input    insightInput
		expected []string
	}{
		{
			name:     "single item",
			input:    insightInput{total: 1, stats: map[RatingType]RatingStats{RatingWifi: {Mean: 1}}},
			expected: []string{"Not enough feedback for reliable insights (at least 2 items needed)"},
		},
		{
			name: "dominant topic in small batch",
			input: insightInput{
				total:      3,
				topics:     []TopicFrequency{{Topic: "wifi", Relevance: 0.9, Items: 2}, {Topic: "noise", Relevance: 0.2, Items: 1}},
				sentiments: map[SentimentLabel]int{SentimentNeutral: 3},
			},
			expected: []string{"Most discussed topic is 'wifi' (mentioned in 2 of 3 feedback items, 67%)"},
		},
		{
			name: "dominant topic follows relevance order",
			input: insightInput{
				total: 12,
				topics: []TopicFrequency{
					{Topic: "noise", Relevance: 2.5, Items: 3},
					{Topic: "wifi", Relevance: 1.2, Items: 5},
				},
				sentiments: map[SentimentLabel]int{SentimentNeutral: 12},
			},
			expected: []string{"Most discussed topic is 'noise' (mentioned in 3 of 12 feedback items, 25%)"},
		},
		{
			name: "most relevant topic with too few items suppresses the insight",
			input: insightInput{
				total: 3,
				topics: []TopicFrequency{
					{Topic: "amenities", Relevance: 1, Items: 1},
					{Topic: "wifi", Relevance: 0.4, Items: 2},
				},
				sentiments: map[SentimentLabel]int{SentimentNeutral: 3},
			},
			expected: []string{"3 feedback items received and analyzed"},
		},
		{
			name: "general cluster is skipped",
			input: insightInput{
				total: 4,
				topics: []TopicFrequency{
					{Topic: GeneralCluster, Relevance: 3, Items: 3},
					{Topic: "wifi", Relevance: 0.8, Items: 2},
				},
				sentiments: map[SentimentLabel]int{SentimentNeutral: 4},
			},
			expected: []string{"Most discussed topic is 'wifi' (mentioned in 2 of 4 feedback items, 50%)"},
		},
		{
			name: "dominant topic below threshold",
			input: insightInput{
				total:      12,
				topics:     []TopicFrequency{{Topic: "wifi", Relevance: 1, Items: 2}},
				sentiments: map[SentimentLabel]int{SentimentNeutral: 12},
			},
			expected: []string{"12 feedback items received and analyzed"},
		},
		{
			name: "positive skew",
			input: insightInput{
				total:      10,
				sentiments: map[SentimentLabel]int{SentimentPositive: 7, SentimentNeutral: 2, SentimentNegative: 1},
			},
			expected: []string{"Predominantly positive feedback (70.0% positive)"},
		},
		{
			name: "negative skew",
			input: insightInput{
				total:      5,
				sentiments: map[SentimentLabel]int{SentimentPositive: 1, SentimentNeutral: 1, SentimentNegative: 3},
			},
			expected: []string{"Significant share of negative responses (60.0% negative)"},
		},
		{
			name: "rating extremes in rating order",
			input: insightInput{
				total:      3,
				sentiments: map[SentimentLabel]int{SentimentNeutral: 3},
				stats: map[RatingType]RatingStats{
					RatingOverall: {Mean: 4.5, Min: 4, Max: 5},
					RatingWifi:    {Mean: 2, Min: 1, Max: 3},
					RatingSpace:   {Mean: 3, Min: 3, Max: 3},
				},
			},
			expected: []string{
				"Low score for wifi: average 2.0/5",
				"High score for overall: average 4.5/5",
			},
		},
		{
			name: "largest cluster ties go to first",
			input: insightInput{
				total:      9,
				sentiments: map[SentimentLabel]int{SentimentNeutral: 9},
				clusters: []clusterSize{
					{name: GeneralCluster, size: 5},
					{name: "wifi", size: 2},
					{name: "noise", size: 2},
				},
			},
			expected: []string{"Notably much feedback about 'wifi' (2 of 9 items, 22%)"},
		},
		{
			name: "high variance",
			input: insightInput{
				total:      4,
				sentiments: map[SentimentLabel]int{SentimentNeutral: 4},
				stats: map[RatingType]RatingStats{
					RatingCleanliness: {Mean: 3, Std: 2, Min: 1, Max: 5},
				},
			},
			expected: []string{
				"Scores for cleanliness vary widely (from 1.0 to 5.0 stars), some users are very satisfied and others are not",
			},
		},
		{
			name: "fallback best and worst",
			input: insightInput{
				total:      3,
				sentiments: map[SentimentLabel]int{SentimentNeutral: 3},
				stats: map[RatingType]RatingStats{
					RatingCleanliness: {Mean: 3.5},
					RatingWifi:        {Mean: 3},
				},
			},
			expected: []string{
				"Best score: cleanliness (average 3.5/5)",
				"Lowest score: wifi (average 3.0/5)",
			},
		},
		{
			name: "fallback single rating type",
			input: insightInput{
				total:      2,
				sentiments: map[SentimentLabel]int{SentimentNeutral: 2},
				stats:      map[RatingType]RatingStats{RatingOverall: {Mean: 3}},
			},
			expected: []string{"Best score: overall (average 3.0/5)"},
		},
		{
			name: "fallback without ratings",
			input: insightInput{
				total:      3,
				sentiments: map[SentimentLabel]int{SentimentNeutral: 3},
			},
			expected: []string{"3 feedback items received and analyzed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, generateInsights(tt.input))
		})
	}
}

func TestSignificanceThreshold(t *testing.T) {
	assert.Equal(t, 2, significanceThreshold(3, topicShareThreshold))
	assert.Equal(t, 2, significanceThreshold(9, clusterShareThreshold))
	assert.Equal(t, 2, significanceThreshold(10, topicShareThreshold))
	assert.Equal(t, 5, significanceThreshold(20, topicShareThreshold))
	assert.Equal(t, 8, significanceThreshold(20, clusterShareThreshold))
}

func TestDominantTopic(t *testing.T) {
	topic, ok := dominantTopic([]TopicFrequency{
		{Topic: "amenities", Relevance: 1, Items: 1},
		{Topic: "wifi", Relevance: 0.4, Items: 2},
	})
	assert.True(t, ok)
	assert.Equal(t, "amenities", topic.Topic)

	_, ok = dominantTopic([]TopicFrequency{{Topic: GeneralCluster, Items: 4}})
	assert.False(t, ok)

	_, ok = dominantTopic(nil)
	assert.False(t, ok)
}
