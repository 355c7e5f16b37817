package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"spam_bot/internal/filter"
	"spam_bot/internal/ruleset"
)

var (
	rulesetPath  string
	outputFormat string
)

var checkCmd = &cobra.Command{
	Use:   "check [text...]",
	Short: "Run a ruleset against text",
	Long: `Run every filter of a ruleset against each argument. With no arguments
the whole of standard input is checked as a single post.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&rulesetPath, "file", "f", "", "Path to the ruleset YAML file")
	checkCmd.Flags().StringVar(&outputFormat, "format", "table", "Output format: table, json")
	_ = checkCmd.MarkFlagRequired("file")
}

type checkHit struct {
	ID          int64   `json:"id"`
	Description string  `json:"description"`
	Kind        string  `json:"kind"`
	Start       *int    `json:"start,omitempty"`
	End         *int    `json:"end,omitempty"`
	Accuracy    float64 `json:"accuracy"`
}

type checkResult struct {
	Text string     `json:"text"`
	Hits []checkHit `json:"hits"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	engine, err := selectedEngine()
	if err != nil {
		return err
	}
	defs, err := ruleset.LoadFile(rulesetPath)
	if err != nil {
		return err
	}
	set, err := ruleset.BuildSet(defs, engine)
	if err != nil {
		return err
	}

	texts := args
	if len(texts) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		texts = []string{string(data)}
	}

	results := make([]checkResult, 0, len(texts))
	for _, text := range texts {
		hits, err := set.Check(filter.Post{Body: text})
		if err != nil {
			return fmt.Errorf("check %q: %w", text, err)
		}
		results = append(results, toCheckResult(text, hits))
	}

	switch outputFormat {
	case "json":
		return outputCheckJSON(cmd, results)
	case "table":
		return outputCheckTable(cmd, results)
	default:
		return fmt.Errorf("unknown output format: %s", outputFormat)
	}
}

func toCheckResult(text string, hits []filter.Hit) checkResult {
	r := checkResult{Text: text, Hits: make([]checkHit, 0, len(hits))}
	for _, h := range hits {
		ch := checkHit{
			ID:          h.ID,
			Description: h.Filter.Description(),
			Kind:        h.Filter.Kind().String(),
			Accuracy:    h.Filter.Accuracy(),
		}
		if sp := h.Result.Span; sp != nil {
			ch.Start, ch.End = &sp.Start, &sp.End
		}
		r.Hits = append(r.Hits, ch)
	}
	return r
}

func outputCheckJSON(cmd *cobra.Command, results []checkResult) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}

func outputCheckTable(cmd *cobra.Command, results []checkResult) error {
	s, err := newStyles(colorMode, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, s.heading.Sprintf("Text: %s", oneLine(r.Text)))
		if len(r.Hits) == 0 {
			fmt.Fprintln(w, s.miss.Sprint("  no match"))
			continue
		}
		fmt.Fprintf(w, "  ID\tKind\tSpan\tAccuracy\tDescription\n")
		for _, h := range r.Hits {
			span := "-"
			if h.Start != nil {
				span = fmt.Sprintf("%d-%d", *h.Start, *h.End)
			}
			fmt.Fprintf(w, "  %d\t%s\t%s\t%.2f\t%s\n", h.ID, h.Kind, span, h.Accuracy, s.rule.Sprint(h.Description))
		}
	}
	return nil
}

func oneLine(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "\n", " ")
	if r := []rune(s); len(r) > 60 {
		return string(r[:57]) + "..."
	}
	return s
}
