package analytics

import "fmt"

const (
	// GeneralCluster collects items without any detected topic.
	GeneralCluster = "general"

	minInsightItems       = 2
	smallBatchSize        = 10
	minSignificantCount   = 2
	topicShareThreshold   = 0.25
	clusterShareThreshold = 0.4
	positiveSkewPct       = 60.0
	negativeSkewPct       = 40.0
	lowRatingMean         = 2.5
	highRatingMean        = 4.0
	varianceMinItems      = 4
	highRatingStd         = 1.5
)

type clusterSize struct {
	name string
	size int
}

type insightInput struct {
	total      int
	topics     []TopicFrequency
	sentiments map[SentimentLabel]int
	stats      map[RatingType]RatingStats
	clusters   []clusterSize
}

// generateInsights renders the notable patterns of a batch as sentences.
// Rules fire in a fixed order; the fallback only runs when none fired.
func generateInsights(in insightInput) []string {
	insights := []string{}
	if in.total < minInsightItems {
		return append(insights, fmt.Sprintf(
			"Not enough feedback for reliable insights (at least %d items needed)", minInsightItems))
	}

	if topic, ok := dominantTopic(in.topics); ok {
		if topic.Items >= significanceThreshold(in.total, topicShareThreshold) {
			insights = append(insights, fmt.Sprintf(
				"Most discussed topic is '%s' (mentioned in %d of %d feedback items, %.0f%%)",
				topic.Topic, topic.Items, in.total, percentage(topic.Items, in.total)))
		}
	}

	classified := 0
	for _, n := range in.sentiments {
		classified += n
	}
	if classified > 0 {
		positivePct := percentage(in.sentiments[SentimentPositive], classified)
		negativePct := percentage(in.sentiments[SentimentNegative], classified)
		if positivePct > positiveSkewPct {
			insights = append(insights, fmt.Sprintf("Predominantly positive feedback (%.1f%% positive)", positivePct))
		} else if negativePct > negativeSkewPct {
			insights = append(insights, fmt.Sprintf("Significant share of negative responses (%.1f%% negative)", negativePct))
		}
	}

	for _, t := range RatingTypes {
		stats, ok := in.stats[t]
		if !ok {
			continue
		}
		if stats.Mean < lowRatingMean {
			insights = append(insights, fmt.Sprintf("Low score for %s: average %.1f/5", t, stats.Mean))
		} else if stats.Mean > highRatingMean {
			insights = append(insights, fmt.Sprintf("High score for %s: average %.1f/5", t, stats.Mean))
		}
	}

	if largest, ok := largestCluster(in.clusters); ok {
		if largest.size >= significanceThreshold(in.total, clusterShareThreshold) {
			insights = append(insights, fmt.Sprintf(
				"Notably much feedback about '%s' (%d of %d items, %.0f%%)",
				largest.name, largest.size, in.total, percentage(largest.size, in.total)))
		}
	}

	if in.total >= varianceMinItems {
		for _, t := range RatingTypes {
			stats, ok := in.stats[t]
			if ok && stats.Std > highRatingStd {
				insights = append(insights, fmt.Sprintf(
					"Scores for %s vary widely (from %.1f to %.1f stars), some users are very satisfied and others are not",
					t, stats.Min, stats.Max))
			}
		}
	}

	if len(insights) > 0 {
		return insights
	}
	return fallbackInsights(in)
}

func fallbackInsights(in insightInput) []string {
	var insights []string

	var best, worst RatingType
	bestMean, worstMean := 0.0, float64(MaxRating+1)
	for _, t := range RatingTypes {
		stats, ok := in.stats[t]
		if !ok {
			continue
		}
		if stats.Mean > bestMean {
			best, bestMean = t, stats.Mean
		}
		if stats.Mean < worstMean {
			worst, worstMean = t, stats.Mean
		}
	}

	if best != "" {
		insights = append(insights, fmt.Sprintf("Best score: %s (average %.1f/5)", best, bestMean))
	}
	if worst != "" && worst != best {
		insights = append(insights, fmt.Sprintf("Lowest score: %s (average %.1f/5)", worst, worstMean))
	}
	if len(insights) == 0 {
		insights = append(insights, fmt.Sprintf("%d feedback items received and analyzed", in.total))
	}
	return insights
}

// dominantTopic is the head of the frequency table, which is ordered by
// summed relevance. The general cluster never counts as a topic.
func dominantTopic(topics []TopicFrequency) (TopicFrequency, bool) {
	for _, t := range topics {
		if t.Topic != GeneralCluster {
			return t, true
		}
	}
	return TopicFrequency{}, false
}

// largestCluster returns the biggest topic cluster; ties go to the cluster
// that appeared first in the batch.
func largestCluster(clusters []clusterSize) (clusterSize, bool) {
	var best clusterSize
	found := false
	for _, c := range clusters {
		if c.name == GeneralCluster {
			continue
		}
		if !found || c.size > best.size {
			best, found = c, true
		}
	}
	return best, found
}

// significanceThreshold is 2 for small batches and a share of the batch
// (never below 2) otherwise.
func significanceThreshold(total int, share float64) int {
	if total < smallBatchSize {
		return minSignificantCount
	}
	return max(minSignificantCount, int(float64(total)*share))
}

func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
