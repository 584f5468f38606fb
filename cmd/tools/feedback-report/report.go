package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"desk-feedback-workers/internal/analytics"
)

const previewLength = 60

// writeReport renders a batch result for a terminal.
func writeReport(out io.Writer, result *analytics.BatchResult) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "Feedback report: %d items\n", result.TotalItems)

	fmt.Fprintln(w, "\nInsights:")
	for _, insight := range result.Insights {
		fmt.Fprintf(w, "  - %s\n", insight)
	}

	if len(result.Topics) > 0 {
		fmt.Fprintln(w, "\nTopics:")
		fmt.Fprintln(w, "  topic\trelevance\titems")
		for _, t := range result.Topics {
			fmt.Fprintf(w, "  %s\t%.2f\t%d\n", t.Topic, t.Relevance, t.Items)
		}
	}

	s := result.SentimentDistribution
	fmt.Fprintf(w, "\nSentiment: positive %d, neutral %d, negative %d\n",
		s[analytics.SentimentPositive], s[analytics.SentimentNeutral], s[analytics.SentimentNegative])

	u := result.UrgencyDistribution
	fmt.Fprintf(w, "Urgency: insufficient %d, adequate %d, excellent %d\n",
		u[analytics.BucketInsufficient], u[analytics.BucketAdequate], u[analytics.BucketExcellent])

	if len(result.RatingStatistics) > 0 {
		fmt.Fprintln(w, "\nRatings:")
		fmt.Fprintln(w, "  rating\tmean\tmedian\tstd\tcount")
		for _, t := range analytics.RatingTypes {
			stats, ok := result.RatingStatistics[t]
			if !ok {
				continue
			}
			fmt.Fprintf(w, "  %s\t%.1f\t%.1f\t%.2f\t%d\n", t, stats.Mean, stats.Median, stats.Std, stats.Count)
		}
	}

	if len(result.UrgentItems) > 0 {
		fmt.Fprintln(w, "\nNeeds attention:")
		for _, item := range result.UrgentItems {
			fmt.Fprintf(w, "  #%d\t%.0f\t%s\n", item.FeedbackID, item.Urgency, preview(item.FullText))
		}
	}
}

func preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= previewLength {
		return text
	}
	return string(runes[:previewLength-3]) + "..."
}
