package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spec-kit/triage-service/internal/corpus"
	"github.com/spec-kit/triage-service/internal/domain"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatAnalysis(result domain.AnalysisResult) string {
	var b strings.Builder
	b.WriteString("=== Support Ticket Analysis ===\n")
	fmt.Fprintf(&b, "Summary: %s\n", result.Summary)
	fmt.Fprintf(&b, "Extracted Issue: %s\n", result.Issue)
	fmt.Fprintf(&b, "Sentiment: %s\n", result.Sentiment)
	fmt.Fprintf(&b, "Priority: %s\n", result.Priority)
	fmt.Fprintf(&b, "Assigned Team: %s\n", result.Team)
	fmt.Fprintf(&b, "Estimated Resolution: %.1f hours\n", result.EstimatedTime)
	fmt.Fprintf(&b, "Suggested Solution: %s\n", result.Solution)
	fmt.Fprintf(&b, "Confidence Score: %.2f\n", result.Confidence)

	if len(result.SimilarCases) > 0 {
		b.WriteString("\nSimilar Cases:\n")
		for i, c := range result.SimilarCases {
			fmt.Fprintf(&b, "  %d. [%.2f] %s (%s)\n", i+1, c.Similarity, c.Issue, c.Priority)
		}
	}
	if len(result.ActionItems) > 0 {
		b.WriteString("\nAction Items:\n")
		for _, item := range result.ActionItems {
			fmt.Fprintf(&b, "  - %s\n", item)
		}
	}
	return b.String()
}

func formatStats(stats corpus.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Source: %s\n", stats.Source)
	fmt.Fprintf(&b, "Tickets: %d\n", stats.Tickets)
	for _, p := range domain.Priorities {
		if n := stats.ByPriority[p]; n > 0 {
			fmt.Fprintf(&b, "  %-8s %d\n", p, n)
		}
	}
	if stats.WithResolutionHours > 0 {
		fmt.Fprintf(&b, "Avg resolution: %.1f hours over %d tickets\n", stats.AvgResolutionHours, stats.WithResolutionHours)
	}
	return b.String()
}
