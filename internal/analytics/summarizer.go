package analytics

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	SummaryRewrite    = "rewrite"
	SummaryExtractive = "extractive"

	bulletPrefix     = "• "
	minClauseLength  = 3
	fallbackWords    = 3
	ellipsis         = "..."
	sentenceJoiner   = ". "
	sentenceTerminal = "."
)

var (
	commaSplit    = regexp.MustCompile(`,\s*`)
	sentenceSplit = regexp.MustCompile(`[.!?]+`)
	wordPattern   = regexp.MustCompile(`[\p{L}\p{N}_]+`)
)

// Summarizer condenses one free-text comment.
type Summarizer interface {
	Summarize(text string) string
}

// RewriteSummarizer normalizes known idioms, splits the comment into clauses
// and keeps the meaningful words of each clause as a bullet point.
type RewriteSummarizer struct {
	lex         summaryLexicon
	conjunction *regexp.Regexp
}

func NewRewriteSummarizer(lex *Lexicon) *RewriteSummarizer {
	s := &RewriteSummarizer{lex: lex.summary}
	if len(lex.summary.conjunctions) > 0 {
		quoted := make([]string, len(lex.summary.conjunctions))
		for i, c := range lex.summary.conjunctions {
			quoted[i] = regexp.QuoteMeta(c)
		}
		s.conjunction = regexp.MustCompile(`\s+(?:` + strings.Join(quoted, "|") + `)\s+`)
	}
	return s
}

func (s *RewriteSummarizer) Summarize(text string) string {
	if text == "" {
		return ""
	}

	var bullets []string
	seen := make(map[string]struct{})
	for _, clause := range s.clauses(s.rewrite(strings.ToLower(text))) {
		words := s.filter(wordPattern.FindAllString(clause, -1))
		if len(words) == 0 {
			continue
		}
		bullet := capitalize(strings.Join(words, " "))
		if _, dup := seen[bullet]; dup {
			continue
		}
		seen[bullet] = struct{}{}
		bullets = append(bullets, bullet)
	}

	switch len(bullets) {
	case 0:
		return s.fallback(text)
	case 1:
		return bullets[0]
	}

	lines := make([]string, len(bullets))
	for i, b := range bullets {
		lines[i] = bulletPrefix + b
	}
	return strings.Join(lines, "\n")
}

func (s *RewriteSummarizer) rewrite(text string) string {
	for _, rule := range s.lex.rewrites {
		text = rule.pattern.ReplaceAllString(text, rule.replacement)
	}
	return text
}

// clauses splits on commas, then conjunctions, then sentence punctuation.
func (s *RewriteSummarizer) clauses(text string) []string {
	var out []string
	for _, commaPart := range commaSplit.Split(text, -1) {
		parts := []string{commaPart}
		if s.conjunction != nil {
			parts = s.conjunction.Split(commaPart, -1)
		}
		for _, part := range parts {
			for _, sentence := range sentenceSplit.Split(part, -1) {
				sentence = strings.TrimSpace(sentence)
				if utf8.RuneCountInString(sentence) < minClauseLength {
					continue
				}
				out = append(out, sentence)
			}
		}
	}
	return out
}

func (s *RewriteSummarizer) filter(words []string) []string {
	var kept []string
	for _, w := range words {
		if strings.ContainsRune(w, '_') {
			continue
		}
		if repl, ok := s.lex.replacements[w]; ok {
			if repl != "" {
				kept = append(kept, repl)
			}
			continue
		}
		if _, ok := s.lex.subjects[w]; ok {
			kept = append(kept, w)
			continue
		}
		if _, ok := s.lex.keep[w]; ok {
			kept = append(kept, w)
			continue
		}
		if _, ok := s.lex.stopwords[w]; ok {
			continue
		}
		kept = append(kept, w)
	}

	deduped := kept[:0]
	for _, w := range kept {
		if len(deduped) == 0 || deduped[len(deduped)-1] != w {
			deduped = append(deduped, w)
		}
	}
	return deduped
}

// fallback returns the first raw words without stopwords, or the raw words
// themselves when all of them are stopwords.
func (s *RewriteSummarizer) fallback(text string) string {
	first := strings.Fields(text)
	if len(first) > fallbackWords {
		first = first[:fallbackWords]
	}

	var kept []string
	for _, w := range first {
		if _, stop := s.lex.stopwords[strings.ToLower(w)]; !stop {
			kept = append(kept, w)
		}
	}
	if len(kept) == 0 {
		return strings.Join(first, " ")
	}
	return capitalize(strings.Join(kept, " "))
}

// ExtractiveSummarizer keeps the sentences with the most sentiment or topic
// words that fit within maxLength characters.
type ExtractiveSummarizer struct {
	tokenizer *Tokenizer
	signal    map[string]struct{}
	maxLength int
}

func NewExtractiveSummarizer(lex *Lexicon, maxLength int) *ExtractiveSummarizer {
	signal := NewTopicDetector(lex).keywords()
	for w := range lex.positive {
		signal[w] = struct{}{}
	}
	for w := range lex.negative {
		signal[w] = struct{}{}
	}
	return &ExtractiveSummarizer{
		tokenizer: NewTokenizer(lex),
		signal:    signal,
		maxLength: maxLength,
	}
}

type scoredSentence struct {
	index int
	text  string
	score int
}

func (s *ExtractiveSummarizer) Summarize(text string) string {
	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) <= s.maxLength {
		return text
	}

	var sentences []scoredSentence
	for _, raw := range sentenceSplit.Split(text, -1) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		score := 0
		for _, tok := range s.tokenizer.Tokenize(raw) {
			if _, ok := s.signal[tok]; ok {
				score++
			}
		}
		sentences = append(sentences, scoredSentence{index: len(sentences), text: raw, score: score})
	}
	if len(sentences) == 0 {
		return truncate(text, s.maxLength)
	}

	ranked := slices.Clone(sentences)
	slices.SortStableFunc(ranked, func(a, b scoredSentence) int {
		return cmp.Compare(b.score, a.score)
	})

	selected := make([]bool, len(sentences))
	length := 0
	count := 0
	for _, cand := range ranked {
		added := utf8.RuneCountInString(cand.text) + utf8.RuneCountInString(sentenceTerminal)
		if count > 0 {
			added += utf8.RuneCountInString(sentenceJoiner) - utf8.RuneCountInString(sentenceTerminal)
		}
		if length+added > s.maxLength {
			continue
		}
		selected[cand.index] = true
		length += added
		count++
	}

	if count == 0 {
		return truncate(sentences[0].text, s.maxLength)
	}

	var parts []string
	for i, sent := range sentences {
		if selected[i] {
			parts = append(parts, sent.text)
		}
	}
	return strings.Join(parts, sentenceJoiner) + sentenceTerminal
}

func truncate(text string, maxLength int) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	if maxLength <= len(ellipsis) {
		return string(runes[:maxLength])
	}
	return strings.TrimSpace(string(runes[:maxLength-len(ellipsis)])) + ellipsis
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
