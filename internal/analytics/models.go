package analytics

import (
	"fmt"
	"time"
)

// RatingType names one of the five numeric ratings a feedback row carries.
type RatingType string

const (
	RatingCleanliness RatingType = "cleanliness"
	RatingWifi        RatingType = "wifi"
	RatingSpace       RatingType = "space"
	RatingQuiet       RatingType = "quiet"
	RatingOverall     RatingType = "overall"
)

// RatingTypes is the fixed iteration order for ratings, statistics and insights.
var RatingTypes = []RatingType{
	RatingCleanliness,
	RatingWifi,
	RatingSpace,
	RatingQuiet,
	RatingOverall,
}

const (
	MinRating = 1
	MaxRating = 5
)

// Ratings holds the optional star ratings of a feedback item. Values use the
// natural star convention: 1 is the worst experience, 5 the best.
type Ratings struct {
	Cleanliness *int `json:"cleanliness,omitempty"`
	Wifi        *int `json:"wifi,omitempty"`
	Space       *int `json:"space,omitempty"`
	Quiet       *int `json:"quiet,omitempty"`
	Overall     *int `json:"overall,omitempty"`
}

// Get returns the rating of the given type, or nil when absent.
func (r Ratings) Get(t RatingType) *int {
	switch t {
	case RatingCleanliness:
		return r.Cleanliness
	case RatingWifi:
		return r.Wifi
	case RatingSpace:
		return r.Space
	case RatingQuiet:
		return r.Quiet
	case RatingOverall:
		return r.Overall
	}
	return nil
}

// Values returns the present ratings in RatingTypes order.
func (r Ratings) Values() []int {
	values := make([]int, 0, len(RatingTypes))
	for _, t := range RatingTypes {
		if v := r.Get(t); v != nil {
			values = append(values, *v)
		}
	}
	return values
}

// Validate rejects ratings outside the 1-5 domain.
func (r Ratings) Validate() error {
	for _, t := range RatingTypes {
		v := r.Get(t)
		if v == nil {
			continue
		}
		if *v < MinRating || *v > MaxRating {
			return fmt.Errorf("%w: %s rating %d outside %d-%d", ErrInvalidRating, t, *v, MinRating, MaxRating)
		}
	}
	return nil
}

// FeedbackRecord is one feedback row handed to the analyzer. DeskNumber,
// BuildingName and Department are passed through for display only.
type FeedbackRecord struct {
	ID           int64      `json:"feedbackId"`
	Ratings      Ratings    `json:"ratings"`
	Comment      string     `json:"comment"`
	Reviewed     bool       `json:"reviewed"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
	DeskNumber   string     `json:"deskNumber,omitempty"`
	BuildingName string     `json:"buildingName,omitempty"`
	Department   string     `json:"department,omitempty"`
}

type TopicScore struct {
	Topic     string  `json:"topic"`
	Relevance float64 `json:"relevance"`
}

type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
)

type SentimentResult struct {
	Score         float64        `json:"score"`
	Label         SentimentLabel `json:"label"`
	PositiveWords int            `json:"positiveWords"`
	NegativeWords int            `json:"negativeWords"`
	AverageRating float64        `json:"averageRating"`
}

// AnalyzedItem is the per-record analysis output.
type AnalyzedItem struct {
	FeedbackID               int64           `json:"feedbackId"`
	Topics                   []TopicScore    `json:"topics"`
	Sentiment                SentimentResult `json:"sentiment"`
	KeyPhrases               []string        `json:"keyPhrases"`
	Ratings                  Ratings         `json:"ratings"`
	Urgency                  float64         `json:"urgency"`
	BasicScore               float64         `json:"basicScore"`
	NegativeCommentsDetected bool            `json:"negativeCommentsDetected"`
	Summary                  string          `json:"summary"`
	FullText                 string          `json:"fullText"`
	Reviewed                 bool            `json:"reviewed"`
	CreatedAt                *time.Time      `json:"createdAt,omitempty"`
	DeskNumber               string          `json:"deskNumber,omitempty"`
	BuildingName             string          `json:"buildingName,omitempty"`
	Department               string          `json:"department,omitempty"`
}

// TopicFrequency aggregates one topic over the batch: the summed relevance
// and the number of items mentioning it.
type TopicFrequency struct {
	Topic     string  `json:"topic"`
	Relevance float64 `json:"relevance"`
	Items     int     `json:"items"`
}

type RatingStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Count  int     `json:"count"`
}

type UrgencyBucket string

const (
	BucketInsufficient UrgencyBucket = "insufficient"
	BucketAdequate     UrgencyBucket = "adequate"
	BucketExcellent    UrgencyBucket = "excellent"
)

// BatchResult is the aggregate output of one analysis call.
type BatchResult struct {
	TotalItems            int                        `json:"totalItems"`
	Topics                []TopicFrequency           `json:"topics"`
	SentimentDistribution map[SentimentLabel]int     `json:"sentimentDistribution"`
	Insights              []string                   `json:"insights"`
	RatingStatistics      map[RatingType]RatingStats `json:"ratingStatistics"`
	Clusters              map[string]int             `json:"clusters"`
	DetailedItems         []AnalyzedItem             `json:"detailedItems"`
	UrgentItems           []AnalyzedItem             `json:"urgentItems"`
	PositiveItems         []AnalyzedItem             `json:"positiveItems"`
	UrgencyDistribution   map[UrgencyBucket]int      `json:"urgencyDistribution"`
}

func newEmptyResult() *BatchResult {
	return &BatchResult{
		Topics: []TopicFrequency{},
		SentimentDistribution: map[SentimentLabel]int{
			SentimentPositive: 0,
			SentimentNeutral:  0,
			SentimentNegative: 0,
		},
		Insights:         []string{},
		RatingStatistics: map[RatingType]RatingStats{},
		Clusters:         map[string]int{},
		DetailedItems:    []AnalyzedItem{},
		UrgentItems:      []AnalyzedItem{},
		PositiveItems:    []AnalyzedItem{},
		UrgencyDistribution: map[UrgencyBucket]int{
			BucketInsufficient: 0,
			BucketAdequate:     0,
			BucketExcellent:    0,
		},
	}
}
