package querypostgresql

import (
	"desk-feedback-workers/internal/common/validation"
	"desk-feedback-workers/internal/models"
)

type Input struct {
	QueryType      string `json:"queryType"`
	OrganizationID int64  `json:"organizationId"`
	FeedbackID     int64  `json:"feedbackId,omitempty"`
}

type Output struct {
	Data               interface{} `json:"data"`
	RowCount           int         `json:"rowCount"`
	QueryExecutionTime int64       `json:"queryExecutionTime"` // milliseconds
}

type QueryType = models.QueryType

var (
	QueryTypeFeedbackBatch         = models.QueryTypeFeedbackBatch
	QueryTypeFeedbackUnreviewed    = models.QueryTypeFeedbackUnreviewed
	QueryTypeFeedbackByID          = models.QueryTypeFeedbackByID
	QueryTypeFeedbackSummaryCounts = models.QueryTypeFeedbackSummaryCounts
)

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["queryType", "organizationId"],
  "properties": {
    "queryType":      {"type": "string", "minLength": 1},
    "organizationId": {"type": "integer", "minimum": 1},
    "feedbackId":     {"type": "integer", "minimum": 1}
  }
}`)
