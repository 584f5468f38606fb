package analytics

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func loadEnglishLexicon(t *testing.T) *Lexicon {
	t.Helper()
	data, err := os.ReadFile("testdata/lexicon_en.yaml")
	require.NoError(t, err)
	lex, err := ParseLexicon(data)
	require.NoError(t, err)
	return lex
}

func rating(v int) *int {
	return &v
}

func allRatings(v int) Ratings {
	return Ratings{
		Cleanliness: rating(v),
		Wifi:        rating(v),
		Space:       rating(v),
		Quiet:       rating(v),
		Overall:     rating(v),
	}
}
