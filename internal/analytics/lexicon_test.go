package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLexicon(t *testing.T) {
	lex := DefaultLexicon()

	assert.Equal(t, "nl", lex.Language)
	assert.Equal(t, []string{
		"cleanliness", "wifi", "space", "noise",
		"comfort", "amenities", "temperature", "location",
	}, lex.Topics())
	assert.True(t, lex.HasTopic("wifi"))
	assert.False(t, lex.HasTopic(GeneralCluster))
	for _, topic := range DefaultCriticalTopics {
		assert.True(t, lex.HasTopic(topic), topic)
	}
}

func TestLoadLexicon(t *testing.T) {
	t.Run("empty path yields default", func(t *testing.T) {
		lex, err := LoadLexicon("")
		require.NoError(t, err)
		assert.Equal(t, "nl", lex.Language)
	})

	t.Run("file override", func(t *testing.T) {
		lex, err := LoadLexicon("testdata/lexicon_en.yaml")
		require.NoError(t, err)
		assert.Equal(t, "en", lex.Language)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadLexicon("testdata/missing.yaml")
		assert.ErrorIs(t, err, ErrInvalidLexicon)
	})
}

func TestParseLexicon_Errors(t *testing.T) {
	tests := []struct {
		name          string
		data          string
		expectedError string
	}{
		{
			name:          "malformed yaml",
			data:          "topics: [",
			expectedError: "invalid lexicon",
		},
		{
			name:          "no topics",
			data:          "language: nl\nstopwords: [de]\n",
			expectedError: "no topics defined",
		},
		{
			name:          "unnamed topic",
			data:          "topics:\n  - keywords: [wifi]\n",
			expectedError: "topic without name",
		},
		{
			name:          "reserved name",
			data:          "topics:\n  - name: general\n    keywords: [wifi]\n",
			expectedError: "reserved",
		},
		{
			name:          "duplicate topic",
			data:          "topics:\n  - name: wifi\n    keywords: [wifi]\n  - name: wifi\n    keywords: [internet]\n",
			expectedError: "duplicate topic",
		},
		{
			name:          "topic without keywords",
			data:          "topics:\n  - name: wifi\n",
			expectedError: "has no keywords",
		},
		{
			name:          "invalid rewrite pattern",
			data:          "topics:\n  - name: wifi\n    keywords: [wifi]\nsummary:\n  rewrites:\n    - pattern: '(('\n      replacement: x\n",
			expectedError: "rewrite 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLexicon([]byte(tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidLexicon)
			assert.Contains(t, err.Error(), tt.expectedError)
		})
	}
}

func TestParseLexicon_NormalizesWords(t *testing.T) {
	lex, err := ParseLexicon([]byte("topics:\n  - name: wifi\n    keywords: [' WiFi ', Internet]\nstopwords: [DE]\n"))
	require.NoError(t, err)

	tokens := NewTokenizer(lex).Tokenize("de wifi internet")
	assert.Equal(t, []string{"wifi", "internet"}, tokens)
	assert.Len(t, NewTopicDetector(lex).Detect(tokens), 1)
}

func TestLexicon_Fingerprint(t *testing.T) {
	assert.Equal(t, DefaultLexicon().Fingerprint(), DefaultLexicon().Fingerprint())
	assert.Len(t, DefaultLexicon().Fingerprint(), 64)

	english, err := LoadLexicon("testdata/lexicon_en.yaml")
	require.NoError(t, err)
	assert.NotEqual(t, DefaultLexicon().Fingerprint(), english.Fingerprint())
}
