package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
  "type": "object",
  "properties": {
    "organizationId": {"type": "integer", "minimum": 1},
    "feedbackIds": {"type": "array", "items": {"type": "integer"}, "minItems": 1}
  },
  "required": ["organizationId", "feedbackIds"]
}`

func TestSchema_ValidateJSON(t *testing.T) {
	schema := MustCompile(testSchema)

	tests := []struct {
		name          string
		document      string
		valid         bool
		expectedField string
	}{
		{name: "valid", document: `{"organizationId": 3, "feedbackIds": [1, 2]}`, valid: true},
		{name: "missing field", document: `{"organizationId": 3}`, expectedField: "feedbackIds"},
		{name: "below minimum", document: `{"organizationId": 0, "feedbackIds": [1]}`, expectedField: "organizationId"},
		{name: "wrong item type", document: `{"organizationId": 1, "feedbackIds": ["a"]}`, expectedField: "feedbackIds.0"},
		{name: "malformed", document: `{`, expectedField: "(root)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := schema.ValidateJSON(tt.document)
			assert.Equal(t, tt.valid, result.Valid)
			if tt.valid {
				assert.NoError(t, result.Error())
				return
			}
			require.NotEmpty(t, result.Errors)
			assert.Contains(t, result.Error().Error(), tt.expectedField)
		})
	}
}

func TestSchema_ValidateInput(t *testing.T) {
	schema := MustCompile(testSchema)

	result := schema.ValidateInput(map[string]interface{}{
		"organizationId": 2,
		"feedbackIds":    []int{5},
	})
	assert.True(t, result.Valid)
}

func TestCompile_Invalid(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	assert.Error(t, err)
}
