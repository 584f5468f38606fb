package markfeedbackreviewed

import (
	"time"

	"desk-feedback-workers/internal/common/validation"
)

type Input struct {
	OrganizationID int64   `json:"organizationId"`
	FeedbackIDs    []int64 `json:"feedbackIds"`
}

type Output struct {
	OrganizationID int64     `json:"organizationId"`
	Requested      int       `json:"requested"`
	Updated        int64     `json:"updated"`
	ReviewedAt     time.Time `json:"reviewedAt"`
}

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["organizationId", "feedbackIds"],
  "properties": {
    "organizationId": {"type": "integer", "minimum": 1},
    "feedbackIds": {
      "type": "array",
      "minItems": 1,
      "items": {"type": "integer", "minimum": 1}
    }
  }
}`)
