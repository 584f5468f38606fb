// cmd/tools/feedback-report/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"desk-feedback-workers/internal/analytics"
	"desk-feedback-workers/internal/common/config"
	analyzefeedback "desk-feedback-workers/internal/workers/feedback/analyze-feedback"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		help(stdout)
		return 1
	}

	switch args[0] {
	case "analyze":
		return analyze(args[1:], stdin, stdout, stderr)
	case "lexicon":
		return checkLexicon(args[1:], stdout, stderr)
	case "help":
		help(stdout)
		return 0
	default:
		help(stdout)
		return 1
	}
}

func analyze(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("analyze", flag.ContinueOnError)
	cmd.SetOutput(stderr)
	input := cmd.String("input", "-", "Path to a JSON array of feedback records, - for stdin")
	lexiconPath := cmd.String("lexicon", "", "Lexicon YAML file (default: embedded Dutch lexicon)")
	configPath := cmd.String("config", "", "Worker config file providing the analytics section")
	format := cmd.String("format", "json", "Output format: json or text")
	minWordFreq := cmd.Int("min-word-freq", 0, "Minimum document frequency for key phrases")
	numTopics := cmd.Int("num-topics", 0, "Topics listed per item")
	strategy := cmd.String("strategy", "", "Summary strategy: rewrite or extractive")
	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if *format != "json" && *format != "text" {
		fmt.Fprintf(stderr, "Error: unknown format %q\n", *format)
		return 2
	}

	engine := analytics.DefaultConfig()
	if *configPath != "" {
		cfg, err := config.LoadFromFile(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Error loading config: %v\n", err)
			return 1
		}
		engine = analyzefeedback.EngineConfig(cfg.Analytics)
		if *lexiconPath == "" {
			*lexiconPath = cfg.Analytics.LexiconPath
		}
	}
	if *minWordFreq != 0 {
		engine.MinWordFreq = *minWordFreq
	}
	if *numTopics != 0 {
		engine.NumTopics = *numTopics
	}
	if *strategy != "" {
		engine.SummaryStrategy = *strategy
	}

	lex, err := analytics.LoadLexicon(*lexiconPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading lexicon: %v\n", err)
		return 1
	}

	analyzer, err := analytics.NewAnalyzer(lex, engine)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	records, err := readRecords(*input, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading feedback: %v\n", err)
		return 1
	}

	result, err := analyzer.Analyze(records)
	if err != nil {
		fmt.Fprintf(stderr, "Error analyzing feedback: %v\n", err)
		return 1
	}

	if *format == "text" {
		writeReport(stdout, result)
		return 0
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(stderr, "Error writing result: %v\n", err)
		return 1
	}
	return 0
}

func checkLexicon(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("lexicon", flag.ContinueOnError)
	cmd.SetOutput(stderr)
	path := cmd.String("path", "", "Lexicon YAML file to validate")
	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if *path == "" {
		fmt.Fprintln(stderr, "Error: -path is required for lexicon.")
		cmd.Usage()
		return 2
	}

	lex, err := analytics.LoadLexicon(*path)
	if err != nil {
		fmt.Fprintf(stderr, "Lexicon validation failed: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Lexicon validation passed. Language: %s\n", lex.Language)
	return 0
}

func readRecords(path string, stdin io.Reader) ([]analytics.FeedbackRecord, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var records []analytics.FeedbackRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return records, nil
}

func help(w io.Writer) {
	fmt.Fprintln(w, `
Usage: feedback-report <command> [flags]

Commands:
  analyze  Analyze a JSON array of feedback records
  lexicon  Validate a lexicon file
  help     Show this help message

Examples:
  feedback-report analyze -input feedback.json -format text
  feedback-report analyze -input feedback.json -config configs/config.yaml
  feedback-report lexicon -path lexicons/en.yaml

Use 'feedback-report <command> -h' for more information about a command.`)
}
