package analyzefeedback

import (
	"desk-feedback-workers/internal/analytics"
	"desk-feedback-workers/internal/common/validation"
)

// Input carries either an organization to load feedback for or the
// feedback itself, never both.
type Input struct {
	OrganizationID *int64                     `json:"organizationId,omitempty"`
	Feedback       []analytics.FeedbackRecord `json:"feedback,omitempty"`
	OnlyUnreviewed bool                       `json:"onlyUnreviewed,omitempty"`
	MinWordFreq    *int                       `json:"minWordFreq,omitempty"`
	NumTopics      *int                       `json:"numTopics,omitempty"`
	Publish        bool                       `json:"publish,omitempty"`
}

type Output struct {
	AnalysisID     string                 `json:"analysisId"`
	OrganizationID *int64                 `json:"organizationId,omitempty"`
	ItemCount      int                    `json:"itemCount"`
	Cached         bool                   `json:"cached"`
	Published      bool                   `json:"published"`
	Result         *analytics.BatchResult `json:"result"`
}

// Ratings are only type-checked here; the analyzer owns the 1-5 range.
var inputSchema = validation.MustCompile(`{
  "type": "object",
  "oneOf": [
    {"required": ["organizationId"]},
    {"required": ["feedback"]}
  ],
  "properties": {
    "organizationId": {"type": "integer", "minimum": 1},
    "onlyUnreviewed": {"type": "boolean"},
    "minWordFreq":    {"type": "integer", "minimum": 1},
    "numTopics":      {"type": "integer", "minimum": 1},
    "publish":        {"type": "boolean"},
    "feedback": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["feedbackId"],
        "properties": {
          "feedbackId": {"type": "integer"},
          "comment":    {"type": ["string", "null"]},
          "reviewed":   {"type": "boolean"},
          "createdAt":  {"type": ["string", "null"], "format": "date-time"},
          "ratings": {
            "type": "object",
            "properties": {
              "cleanliness": {"type": ["integer", "null"]},
              "wifi":        {"type": ["integer", "null"]},
              "space":       {"type": ["integer", "null"]},
              "quiet":       {"type": ["integer", "null"]},
              "overall":     {"type": ["integer", "null"]}
            }
          }
        }
      }
    }
  }
}`)
