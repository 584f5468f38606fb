package models

type QueryType string

const (
	QueryTypeFeedbackBatch         QueryType = "feedback_batch"
	QueryTypeFeedbackUnreviewed    QueryType = "feedback_unreviewed"
	QueryTypeFeedbackByID          QueryType = "feedback_by_id"
	QueryTypeFeedbackSummaryCounts QueryType = "feedback_summary_counts"
)
