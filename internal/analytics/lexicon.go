package analytics

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed lexicons/nl.yaml
var defaultLexiconYAML []byte

// Lexicon is the immutable word data the analyzer components are built from:
// stopwords, polarity words, the topic catalogue and the summarizer tables.
type Lexicon struct {
	Language string

	stopwords map[string]struct{}
	positive  map[string]struct{}
	negative  map[string]struct{}
	topics    []topicKeywords
	summary   summaryLexicon

	fingerprint string
}

type topicKeywords struct {
	name     string
	keywords map[string]struct{}
}

type rewriteRule struct {
	pattern     *regexp.Regexp
	replacement string
}

type summaryLexicon struct {
	conjunctions []string
	stopwords    map[string]struct{}
	subjects     map[string]struct{}
	keep         map[string]struct{}
	replacements map[string]string
	rewrites     []rewriteRule
}

type lexiconFile struct {
	Language  string   `yaml:"language"`
	Stopwords []string `yaml:"stopwords"`
	Positive  []string `yaml:"positive"`
	Negative  []string `yaml:"negative"`
	Topics    []struct {
		Name     string   `yaml:"name"`
		Keywords []string `yaml:"keywords"`
	} `yaml:"topics"`
	Summary struct {
		Conjunctions []string          `yaml:"conjunctions"`
		Stopwords    []string          `yaml:"stopwords"`
		Subjects     []string          `yaml:"subjects"`
		Keep         []string          `yaml:"keep"`
		Replacements map[string]string `yaml:"replacements"`
		Rewrites     []struct {
			Pattern     string `yaml:"pattern"`
			Replacement string `yaml:"replacement"`
		} `yaml:"rewrites"`
	} `yaml:"summary"`
}

// DefaultLexicon returns the embedded Dutch lexicon.
func DefaultLexicon() *Lexicon {
	lex, err := ParseLexicon(defaultLexiconYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded lexicon is invalid: %v", err))
	}
	return lex
}

// Fingerprint identifies the lexicon source; two lexicons parsed from the
// same bytes share it.
func (l *Lexicon) Fingerprint() string {
	return l.fingerprint
}

// LoadLexicon reads a lexicon YAML file. An empty path yields the default lexicon.
func LoadLexicon(path string) (*Lexicon, error) {
	if path == "" {
		return DefaultLexicon(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidLexicon, path, err)
	}
	return ParseLexicon(data)
}

func ParseLexicon(data []byte) (*Lexicon, error) {
	var file lexiconFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLexicon, err)
	}
	if len(file.Topics) == 0 {
		return nil, fmt.Errorf("%w: no topics defined", ErrInvalidLexicon)
	}

	sum := sha256.Sum256(data)
	lex := &Lexicon{
		Language:    file.Language,
		stopwords:   wordSet(file.Stopwords),
		positive:    wordSet(file.Positive),
		negative:    wordSet(file.Negative),
		topics:      make([]topicKeywords, 0, len(file.Topics)),
		fingerprint: hex.EncodeToString(sum[:]),
	}

	seen := make(map[string]struct{}, len(file.Topics))
	for _, t := range file.Topics {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: topic without name", ErrInvalidLexicon)
		}
		if name == GeneralCluster {
			return nil, fmt.Errorf("%w: topic name %q is reserved", ErrInvalidLexicon, name)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: duplicate topic %q", ErrInvalidLexicon, name)
		}
		if len(t.Keywords) == 0 {
			return nil, fmt.Errorf("%w: topic %q has no keywords", ErrInvalidLexicon, name)
		}
		seen[name] = struct{}{}
		lex.topics = append(lex.topics, topicKeywords{name: name, keywords: wordSet(t.Keywords)})
	}

	lex.summary = summaryLexicon{
		conjunctions: lowerAll(file.Summary.Conjunctions),
		stopwords:    wordSet(file.Summary.Stopwords),
		subjects:     wordSet(file.Summary.Subjects),
		keep:         wordSet(file.Summary.Keep),
		replacements: make(map[string]string, len(file.Summary.Replacements)),
	}
	for from, to := range file.Summary.Replacements {
		lex.summary.replacements[strings.ToLower(from)] = strings.ToLower(to)
	}
	for i, r := range file.Summary.Rewrites {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: rewrite %d: %v", ErrInvalidLexicon, i, err)
		}
		lex.summary.rewrites = append(lex.summary.rewrites, rewriteRule{pattern: re, replacement: r.Replacement})
	}

	return lex, nil
}

// Topics returns the topic names in declaration order.
func (l *Lexicon) Topics() []string {
	names := make([]string, len(l.topics))
	for i, t := range l.topics {
		names[i] = t.name
	}
	return names
}

func (l *Lexicon) HasTopic(name string) bool {
	for _, t := range l.topics {
		if t.name == name {
			return true
		}
	}
	return false
}

func wordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}

func lowerAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			out = append(out, w)
		}
	}
	return out
}
