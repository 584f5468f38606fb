// Package analytics turns a batch of desk feedback into topics, sentiment,
// urgency rankings, clusters and readable insights. It is a pure batch
// computation: every call recomputes corpus statistics from its own input.
package analytics

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"
)

var (
	ErrInvalidRating  = errors.New("invalid rating")
	ErrInvalidConfig  = errors.New("invalid analyzer config")
	ErrInvalidLexicon = errors.New("invalid lexicon")
)

const topicTableSize = 10

type Config struct {
	// MinWordFreq is the document frequency a token needs to receive an IDF weight.
	MinWordFreq int
	// NumTopics caps the topics listed per item.
	NumTopics        int
	KeyPhraseCount   int
	DetailLimit      int
	HighlightLimit   int
	SummaryStrategy  string
	SummaryMaxLength int
	CriticalTopics   []string
	// Workers is the number of goroutines analyzing items of one batch.
	Workers int
}

func DefaultConfig() Config {
	return Config{
		MinWordFreq:      2,
		NumTopics:        5,
		KeyPhraseCount:   3,
		DetailLimit:      20,
		HighlightLimit:   10,
		SummaryStrategy:  SummaryRewrite,
		SummaryMaxLength: 150,
		CriticalTopics:   DefaultCriticalTopics,
		Workers:          1,
	}
}

func (c Config) Validate() error {
	switch {
	case c.MinWordFreq <= 0:
		return fmt.Errorf("%w: min_word_freq must be positive, got %d", ErrInvalidConfig, c.MinWordFreq)
	case c.NumTopics <= 0:
		return fmt.Errorf("%w: num_topics must be positive, got %d", ErrInvalidConfig, c.NumTopics)
	case c.KeyPhraseCount <= 0:
		return fmt.Errorf("%w: key_phrase_count must be positive, got %d", ErrInvalidConfig, c.KeyPhraseCount)
	case c.DetailLimit <= 0:
		return fmt.Errorf("%w: detail_limit must be positive, got %d", ErrInvalidConfig, c.DetailLimit)
	case c.HighlightLimit <= 0:
		return fmt.Errorf("%w: highlight_limit must be positive, got %d", ErrInvalidConfig, c.HighlightLimit)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	}

	switch c.SummaryStrategy {
	case SummaryRewrite:
	case SummaryExtractive:
		if c.SummaryMaxLength <= 0 {
			return fmt.Errorf("%w: summary_max_length must be positive, got %d", ErrInvalidConfig, c.SummaryMaxLength)
		}
	default:
		return fmt.Errorf("%w: unknown summary strategy %q", ErrInvalidConfig, c.SummaryStrategy)
	}
	return nil
}

// Analyzer runs the feedback pipeline. It holds no per-call state and is
// safe for concurrent use.
type Analyzer struct {
	config     Config
	tokenizer  *Tokenizer
	topics     *TopicDetector
	sentiment  *SentimentScorer
	urgency    *UrgencyScorer
	summarizer Summarizer
}

func NewAnalyzer(lex *Lexicon, config Config) (*Analyzer, error) {
	if lex == nil {
		return nil, fmt.Errorf("%w: lexicon is required", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.CriticalTopics == nil {
		config.CriticalTopics = DefaultCriticalTopics
	}

	var summarizer Summarizer
	if config.SummaryStrategy == SummaryExtractive {
		summarizer = NewExtractiveSummarizer(lex, config.SummaryMaxLength)
	} else {
		summarizer = NewRewriteSummarizer(lex)
	}

	return &Analyzer{
		config:     config,
		tokenizer:  NewTokenizer(lex),
		topics:     NewTopicDetector(lex),
		sentiment:  NewSentimentScorer(lex),
		urgency:    NewUrgencyScorer(config.CriticalTopics),
		summarizer: summarizer,
	}, nil
}

func (a *Analyzer) Config() Config {
	return a.config
}

// analyzedRecord keeps the full topic list next to the trimmed output item.
type analyzedRecord struct {
	item   AnalyzedItem
	topics []TopicScore
}

// Analyze processes one batch. Records with ratings outside 1-5 fail the
// whole call; an empty batch yields an empty result.
func (a *Analyzer) Analyze(records []FeedbackRecord) (*BatchResult, error) {
	for _, rec := range records {
		if err := rec.Ratings.Validate(); err != nil {
			return nil, fmt.Errorf("feedback %d: %w", rec.ID, err)
		}
	}

	result := newEmptyResult()
	if len(records) == 0 {
		return result, nil
	}

	corpus := make([][]string, len(records))
	for i, rec := range records {
		corpus[i] = a.tokenizer.Tokenize(rec.Comment)
	}
	idf := InverseDocumentFrequency(corpus, a.config.MinWordFreq)

	analyzed := make([]analyzedRecord, len(records))
	a.forEach(len(records), func(i int) {
		analyzed[i] = a.analyzeItem(records[i], corpus[i], idf)
	})

	result.TotalItems = len(records)
	a.aggregate(result, analyzed)
	return result, nil
}

// forEach runs fn for every index, fanning out over the configured workers.
// Each index is handled exactly once and writes only its own slot.
func (a *Analyzer) forEach(n int, fn func(i int)) {
	workers := min(a.config.Workers, n)
	if workers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				fn(i)
			}
		}()
	}
	for i := 0; i < n; i++ {
		indexes <- i
	}
	close(indexes)
	wg.Wait()
}

func (a *Analyzer) analyzeItem(rec FeedbackRecord, tokens []string, idf map[string]float64) analyzedRecord {
	topics := a.topics.Detect(tokens)
	sentiment := a.sentiment.Score(tokens, rec.Ratings)
	urgency := a.urgency.Score(sentiment, rec.Ratings, topics)
	basic := BasicScore(rec.Ratings)

	listed := topics
	if len(listed) > a.config.NumTopics {
		listed = listed[:a.config.NumTopics]
	}

	return analyzedRecord{
		topics: topics,
		item: AnalyzedItem{
			FeedbackID:               rec.ID,
			Topics:                   listed,
			Sentiment:                sentiment,
			KeyPhrases:               KeyPhrases(tokens, idf, a.config.KeyPhraseCount),
			Ratings:                  rec.Ratings,
			Urgency:                  urgency,
			BasicScore:               basic,
			NegativeCommentsDetected: NegativeCommentsDetected(urgency, basic),
			Summary:                  a.summarizer.Summarize(rec.Comment),
			FullText:                 rec.Comment,
			Reviewed:                 rec.Reviewed,
			CreatedAt:                rec.CreatedAt,
			DeskNumber:               rec.DeskNumber,
			BuildingName:             rec.BuildingName,
			Department:               rec.Department,
		},
	}
}

func (a *Analyzer) aggregate(result *BatchResult, analyzed []analyzedRecord) {
	frequency := make(map[string]*TopicFrequency)
	var clusters []clusterSize
	clusterIndex := make(map[string]int)
	ratings := make(map[RatingType][]float64)

	for _, rec := range analyzed {
		for _, t := range rec.topics {
			f, ok := frequency[t.Topic]
			if !ok {
				f = &TopicFrequency{Topic: t.Topic}
				frequency[t.Topic] = f
			}
			f.Relevance += t.Relevance
			f.Items++
		}

		cluster := GeneralCluster
		if len(rec.topics) > 0 {
			cluster = rec.topics[0].Topic
		}
		if idx, ok := clusterIndex[cluster]; ok {
			clusters[idx].size++
		} else {
			clusterIndex[cluster] = len(clusters)
			clusters = append(clusters, clusterSize{name: cluster, size: 1})
		}

		result.SentimentDistribution[rec.item.Sentiment.Label]++

		for _, t := range RatingTypes {
			if v := rec.item.Ratings.Get(t); v != nil {
				ratings[t] = append(ratings[t], float64(*v))
			}
		}
	}

	table := a.topicTable(frequency)
	if len(table) > topicTableSize {
		result.Topics = table[:topicTableSize]
	} else {
		result.Topics = table
	}

	for t, values := range ratings {
		result.RatingStatistics[t] = describe(values)
	}
	for _, c := range clusters {
		result.Clusters[c.name] = c.size
	}

	result.Insights = generateInsights(insightInput{
		total:      len(analyzed),
		topics:     table,
		sentiments: result.SentimentDistribution,
		stats:      result.RatingStatistics,
		clusters:   clusters,
	})

	sorted := make([]AnalyzedItem, len(analyzed))
	for i, rec := range analyzed {
		sorted[i] = rec.item
	}
	slices.SortStableFunc(sorted, func(x, y AnalyzedItem) int {
		return cmp.Compare(y.Urgency, x.Urgency)
	})

	var urgent, positive []AnalyzedItem
	for _, item := range sorted {
		result.UrgencyDistribution[Bucket(item.Urgency)]++
		switch Bucket(item.Urgency) {
		case BucketInsufficient:
			urgent = append(urgent, item)
		case BucketExcellent:
			positive = append(positive, item)
		}
	}

	result.DetailedItems = head(sorted, a.config.DetailLimit)
	result.UrgentItems = head(urgent, a.config.HighlightLimit)
	result.PositiveItems = tail(positive, a.config.HighlightLimit)
}

// topicTable orders topics by summed relevance, ties in catalogue order.
func (a *Analyzer) topicTable(frequency map[string]*TopicFrequency) []TopicFrequency {
	table := make([]TopicFrequency, 0, len(frequency))
	for _, t := range a.topics.topics {
		if f, ok := frequency[t.name]; ok {
			table = append(table, *f)
		}
	}
	slices.SortStableFunc(table, func(x, y TopicFrequency) int {
		return cmp.Compare(y.Relevance, x.Relevance)
	})
	return table
}

func head(items []AnalyzedItem, n int) []AnalyzedItem {
	if len(items) > n {
		items = items[:n]
	}
	return append([]AnalyzedItem{}, items...)
}

func tail(items []AnalyzedItem, n int) []AnalyzedItem {
	if len(items) > n {
		items = items[len(items)-n:]
	}
	return append([]AnalyzedItem{}, items...)
}
