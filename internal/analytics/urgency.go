package analytics

const (
	maxUrgency          = 100.0
	noRatingsUrgency    = 50.0
	criticalTopicWeight = 10.0
	criticalTopicWindow = 3

	// A comment counts as unexpectedly negative when urgency exceeds the
	// rating-implied urgency by more than this many points.
	negativeCommentMargin = 15.0
)

// DefaultCriticalTopics are the topics whose presence raises urgency.
var DefaultCriticalTopics = []string{"wifi", "cleanliness", "amenities", "comfort"}

// UrgencyScorer ranks feedback for admin attention on a 0-100 scale, higher
// meaning worse. The base is the rating shortfall; sentiment, critical topics
// and negative words add to it.
type UrgencyScorer struct {
	critical map[string]struct{}
}

func NewUrgencyScorer(criticalTopics []string) *UrgencyScorer {
	return &UrgencyScorer{critical: wordSet(criticalTopics)}
}

func (u *UrgencyScorer) Score(sentiment SentimentResult, ratings Ratings, topics []TopicScore) float64 {
	urgency := noRatingsUrgency
	if len(ratings.Values()) > 0 {
		urgency = maxUrgency - BasicScore(ratings)
	}

	switch {
	case sentiment.Score < -0.5:
		urgency += 30
	case sentiment.Score < -0.2:
		urgency += 20
	case sentiment.Score < 0:
		urgency += 10
	}

	for i, t := range topics {
		if i == criticalTopicWindow {
			break
		}
		if _, ok := u.critical[t.Topic]; ok {
			urgency += criticalTopicWeight * t.Relevance
		}
	}

	switch {
	case sentiment.NegativeWords >= 3:
		urgency += 15
	case sentiment.NegativeWords >= 2:
		urgency += 10
	case sentiment.NegativeWords >= 1:
		urgency += 5
	}

	return clamp(urgency, 0, maxUrgency)
}

// BasicScore is the rating total as a percentage of the maximum, or 0 when
// the item carries no ratings.
func BasicScore(ratings Ratings) float64 {
	values := ratings.Values()
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values)*MaxRating) * 100
}

// NegativeCommentsDetected reports whether the comment pushed urgency well
// beyond what the ratings alone imply.
func NegativeCommentsDetected(urgency, basicScore float64) bool {
	return urgency > (maxUrgency-basicScore)+negativeCommentMargin
}

// Bucket places an urgency value in the three-level histogram.
func Bucket(urgency float64) UrgencyBucket {
	switch {
	case urgency > 50:
		return BucketInsufficient
	case urgency >= 25:
		return BucketAdequate
	default:
		return BucketExcellent
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
